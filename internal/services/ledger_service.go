package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hogar/internal/calendar"
	apperrors "hogar/internal/errors"
	"hogar/internal/metrics"
	"hogar/internal/models"
	"hogar/internal/pagination"
)

// ledgerService stores household income and expense entries.
type ledgerService struct {
	db      *gorm.DB
	members MembershipServicer
	now     func() time.Time
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, members MembershipServicer) LedgerServicer {
	return &ledgerService{
		db:      db,
		members: members,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AddEntry records an entry for any member of the household.
func (s *ledgerService) AddEntry(userID, householdID string, in EntryInput) (*models.LedgerEntry, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	typ, err := parseEntryType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(in.Amount); err != nil {
		return nil, err
	}

	occursAt := s.now()
	if in.OccursAt != nil && *in.OccursAt != "" {
		if occursAt, err = ParseInstant(*in.OccursAt); err != nil {
			return nil, err
		}
	}

	entry := &models.LedgerEntry{
		HouseholdID: householdID,
		UserID:      userID,
		Type:        typ,
		Amount:      in.Amount,
		Category:    trimmedOrNil(in.Category),
		Note:        trimmedOrNil(in.Note),
		OccursAt:    occursAt,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	metrics.LedgerEntriesCreated.WithLabelValues(metrics.SourceManual).Inc()
	return entry, nil
}

// ListEntries returns entries inside the inclusive [From, To] window, newest
// first.
func (s *ledgerService) ListEntries(userID, householdID string, filter EntryFilter) ([]models.LedgerEntry, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	query := s.db.Where("household_id = ?", householdID)
	if filter.From != nil {
		query = query.Where("occurs_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("occurs_at <= ?", filter.To.UTC())
	}

	var entries []models.LedgerEntry
	if err := query.Scopes(pagination.EntriesWindow.Take(filter.Limit)).
		Order("occurs_at DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}

// UpdateEntry applies the provided fields. Only the author or an admin may
// change an entry.
func (s *ledgerService) UpdateEntry(userID, householdID, entryID string, in EntryUpdate) (*models.LedgerEntry, error) {
	entry, err := s.modifiableEntry(userID, householdID, entryID)
	if err != nil {
		return nil, err
	}

	if in.Type != nil {
		if entry.Type, err = parseEntryType(*in.Type); err != nil {
			return nil, err
		}
	}
	if in.Amount != nil {
		if err := requirePositive(*in.Amount); err != nil {
			return nil, err
		}
		entry.Amount = *in.Amount
	}
	if in.Category != nil {
		entry.Category = trimmedOrNil(in.Category)
	}
	if in.Note != nil {
		entry.Note = trimmedOrNil(in.Note)
	}
	if in.OccursAt != nil {
		if entry.OccursAt, err = ParseInstant(*in.OccursAt); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// DeleteEntry removes an entry. Only the author or an admin may delete it.
func (s *ledgerService) DeleteEntry(userID, householdID, entryID string) error {
	entry, err := s.modifiableEntry(userID, householdID, entryID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// modifiableEntry loads an entry scoped to householdID and checks that
// userID may change it. Entries of other households read as not found.
func (s *ledgerService) modifiableEntry(userID, householdID, entryID string) (*models.LedgerEntry, error) {
	member, err := s.members.AssertMember(userID, householdID)
	if err != nil {
		return nil, err
	}

	var entry models.LedgerEntry
	if err := s.db.Where("id = ? AND household_id = ?", entryID, householdID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !canModify(member, entry.UserID) {
		return nil, apperrors.ErrNotResourceOwner
	}
	return &entry, nil
}

// MonthlySummary totals a YYYY-MM month and carries the running balance of
// everything before it.
func (s *ledgerService) MonthlySummary(userID, householdID, month string) (*MonthlySummary, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	start, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, apperrors.ErrInvalidMonth
	}
	start, end := calendar.MonthWindow(start)

	inMonth, err := sumByType(s.db.Model(&models.LedgerEntry{}).
		Where("household_id = ? AND occurs_at >= ? AND occurs_at < ?", householdID, start, end))
	if err != nil {
		return nil, err
	}
	prior, err := sumByType(s.db.Model(&models.LedgerEntry{}).
		Where("household_id = ? AND occurs_at < ?", householdID, start))
	if err != nil {
		return nil, err
	}

	income := inMonth[string(models.EntryTypeIncome)]
	expense := inMonth[string(models.EntryTypeExpense)]
	net := income.Sub(expense)
	opening := prior[string(models.EntryTypeIncome)].Sub(prior[string(models.EntryTypeExpense)])

	return &MonthlySummary{
		Month:          calendar.FormatMonth(start),
		Income:         income,
		Expense:        expense,
		Net:            net,
		OpeningBalance: opening,
		ClosingBalance: opening.Add(net),
	}, nil
}

// typeTotal is one row of a SUM(amount) GROUP BY type aggregation.
type typeTotal struct {
	Type  string
	Total decimal.Decimal
}

// sumByType runs a grouped amount sum over query. Types without rows are
// absent from the map and read as decimal zero.
func sumByType(query *gorm.DB) (map[string]decimal.Decimal, error) {
	var rows []typeTotal
	if err := query.Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.Type] = r.Total
	}
	return totals, nil
}
