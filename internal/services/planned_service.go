package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"hogar/internal/calendar"
	apperrors "hogar/internal/errors"
	"hogar/internal/marker"
	"hogar/internal/metrics"
	"hogar/internal/models"
	"hogar/internal/pagination"
)

const maxConceptLength = 120

// plannedService manages forecast entries that become ledger rows when
// settled.
type plannedService struct {
	db      *gorm.DB
	members MembershipServicer
	now     func() time.Time
}

// NewPlannedService creates a new PlannedServicer.
func NewPlannedService(db *gorm.DB, members MembershipServicer) PlannedServicer {
	return &plannedService{
		db:      db,
		members: members,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validateConcept(concept string) (string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" || utf8.RuneCountInString(concept) > maxConceptLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "concept must be 1-120 characters")
	}
	return concept, nil
}

// optionalMonth trims a YYYY-MM label. Blank values clear it.
func optionalMonth(month *string) (*string, error) {
	m := trimmedOrNil(month)
	if m == nil {
		return nil, nil
	}
	if _, err := calendar.ParseMonth(*m); err != nil {
		return nil, apperrors.ErrInvalidMonth
	}
	return m, nil
}

// CreatePlanned adds a forecast entry for any member.
func (s *plannedService) CreatePlanned(userID, householdID string, in PlannedInput) (*models.PlannedEntry, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	concept, err := validateConcept(in.Concept)
	if err != nil {
		return nil, err
	}
	typ, err := parseEntryType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(in.Amount); err != nil {
		return nil, err
	}
	due, err := ParseInstant(in.DueDate)
	if err != nil {
		return nil, err
	}
	month, err := optionalMonth(in.Month)
	if err != nil {
		return nil, err
	}

	planned := &models.PlannedEntry{
		HouseholdID: householdID,
		CreatedBy:   userID,
		Concept:     concept,
		Type:        typ,
		Amount:      in.Amount,
		DueDate:     due,
		Month:       month,
		Notes:       trimmedOrNil(in.Notes),
		Category:    trimmedOrNil(in.Category),
	}
	if err := s.db.Create(planned).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return planned, nil
}

// ListPlanned returns unsettled entries ordered by due date. A month limits
// the result to entries due inside it.
func (s *plannedService) ListPlanned(userID, householdID string, month *string) ([]models.PlannedEntry, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	query := s.db.Where("household_id = ? AND settled_at IS NULL", householdID)
	if month != nil && *month != "" {
		start, err := calendar.ParseMonth(*month)
		if err != nil {
			return nil, apperrors.ErrInvalidMonth
		}
		start, end := calendar.MonthWindow(start)
		query = query.Where("due_date >= ? AND due_date < ?", start, end)
	}

	var planned []models.PlannedEntry
	if err := query.Order("due_date ASC").Order("created_at ASC").
		Scopes(pagination.ScheduleCap.Take(nil)).
		Find(&planned).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return planned, nil
}

// UpdatePlanned changes the provided fields. Only the creator or an admin
// may do so.
func (s *plannedService) UpdatePlanned(userID, householdID, plannedID string, in PlannedUpdate) (*models.PlannedEntry, error) {
	planned, err := s.modifiablePlanned(userID, householdID, plannedID)
	if err != nil {
		return nil, err
	}

	if in.Concept != nil {
		if planned.Concept, err = validateConcept(*in.Concept); err != nil {
			return nil, err
		}
	}
	if in.Type != nil {
		if planned.Type, err = parseEntryType(*in.Type); err != nil {
			return nil, err
		}
	}
	if in.Amount != nil {
		if err := requirePositive(*in.Amount); err != nil {
			return nil, err
		}
		planned.Amount = *in.Amount
	}
	if in.DueDate != nil {
		if planned.DueDate, err = ParseInstant(*in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.Month != nil {
		if planned.Month, err = optionalMonth(in.Month); err != nil {
			return nil, err
		}
	}
	if in.Notes != nil {
		planned.Notes = trimmedOrNil(in.Notes)
	}
	if in.Category != nil {
		planned.Category = trimmedOrNil(in.Category)
	}

	if err := s.db.Save(planned).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return planned, nil
}

// DeletePlanned removes a planned entry. Only the creator or an admin may
// do so.
func (s *plannedService) DeletePlanned(userID, householdID, plannedID string) error {
	planned, err := s.modifiablePlanned(userID, householdID, plannedID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(planned).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SettlePlanned books the planned entry into the ledger on its due date and
// stamps settled_at. Settling twice reports AlreadySettled and writes
// nothing.
func (s *plannedService) SettlePlanned(userID, householdID, plannedID string) (*SettleResult, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}
	planned, err := s.findPlanned(householdID, plannedID)
	if err != nil {
		return nil, err
	}
	if planned.SettledAt != nil {
		metrics.IdempotentNoops.WithLabelValues(metrics.OpSettle).Inc()
		return &SettleResult{Planned: planned, AlreadySettled: true}, nil
	}

	now := s.now()
	note := marker.Note(marker.Planned(planned.Concept), planned.Notes)
	entry := &models.LedgerEntry{
		HouseholdID: householdID,
		UserID:      userID,
		Type:        planned.Type,
		Amount:      planned.Amount,
		Category:    planned.Category,
		Note:        &note,
		OccursAt:    planned.DueDate,
	}

	already := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PlannedEntry{}).
			Where("id = ? AND settled_at IS NULL", planned.ID).
			Update("settled_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			already = true
			return nil
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if already {
		metrics.IdempotentNoops.WithLabelValues(metrics.OpSettle).Inc()
		return &SettleResult{Planned: planned, AlreadySettled: true}, nil
	}

	planned.SettledAt = &now
	metrics.LedgerEntriesCreated.WithLabelValues(metrics.SourcePlanned).Inc()
	return &SettleResult{Planned: planned, Entry: entry}, nil
}

func (s *plannedService) findPlanned(householdID, plannedID string) (*models.PlannedEntry, error) {
	var planned models.PlannedEntry
	if err := s.db.Where("id = ? AND household_id = ?", plannedID, householdID).First(&planned).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlannedNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &planned, nil
}

func (s *plannedService) modifiablePlanned(userID, householdID, plannedID string) (*models.PlannedEntry, error) {
	member, err := s.members.AssertMember(userID, householdID)
	if err != nil {
		return nil, err
	}
	planned, err := s.findPlanned(householdID, plannedID)
	if err != nil {
		return nil, err
	}
	if !canModify(member, planned.CreatedBy) {
		return nil, apperrors.ErrNotResourceOwner
	}
	return planned, nil
}
