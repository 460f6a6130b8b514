package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"hogar/internal/calendar"
	apperrors "hogar/internal/errors"
	"hogar/internal/marker"
	"hogar/internal/metrics"
	"hogar/internal/models"
	"hogar/internal/pagination"
	"hogar/internal/recurrence"
)

// recurringService manages monthly templates and posts their instances
// into the ledger on demand.
type recurringService struct {
	db      *gorm.DB
	members MembershipServicer
	now     func() time.Time
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, members MembershipServicer) RecurringServicer {
	return &recurringService{
		db:      db,
		members: members,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// normalizeRule trims and validates a rule. A blank rule returns nil.
func normalizeRule(rule *string) (*string, error) {
	r := trimmedOrNil(rule)
	if r == nil {
		return nil, nil
	}
	if _, err := recurrence.Parse(*r); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRecurrence, err.Error())
	}
	upper := strings.ToUpper(*r)
	return &upper, nil
}

// CreateRecurring adds a definition. Admin only. Without a rule the
// definition falls on dayOfMonth, clamped to 1..31 and defaulting to 1.
func (s *recurringService) CreateRecurring(userID, householdID string, in RecurringInput) (*models.RecurringDefinition, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
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

	rule, err := normalizeRule(in.RRule)
	if err != nil {
		return nil, err
	}
	if rule != nil && in.DayOfMonth != nil {
		return nil, apperrors.ErrScheduleConflict
	}

	def := &models.RecurringDefinition{
		HouseholdID: householdID,
		CreatedBy:   userID,
		Active:      true,
		Concept:     concept,
		Type:        typ,
		Amount:      in.Amount,
		RRule:       rule,
		Notes:       trimmedOrNil(in.Notes),
		Category:    trimmedOrNil(in.Category),
	}
	if rule == nil {
		day := 1
		if in.DayOfMonth != nil {
			day = recurrence.ClampDayOfMonth(*in.DayOfMonth)
		}
		def.DayOfMonth = &day
	}

	if err := s.db.Create(def).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return def, nil
}

// ListRecurring returns the active definitions, newest first. With a month
// each definition carries its occurrence in that month.
func (s *recurringService) ListRecurring(userID, householdID string, month *string) ([]models.RecurringDefinition, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	var monthStart *time.Time
	if month != nil && *month != "" {
		start, err := calendar.ParseMonth(*month)
		if err != nil {
			return nil, apperrors.ErrInvalidMonth
		}
		monthStart = &start
	}

	var defs []models.RecurringDefinition
	if err := s.db.Where("household_id = ? AND active = ?", householdID, true).
		Order("created_at DESC").
		Scopes(pagination.ScheduleCap.Take(nil)).
		Find(&defs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if monthStart != nil {
		for i := range defs {
			at := recurrence.Occurrence(*monthStart, defs[i].DayOfMonth, defs[i].RRule)
			defs[i].OccursAt = &at
		}
	}
	return defs, nil
}

// UpdateRecurring changes the provided fields. Admin only. Sending a rule
// clears dayOfMonth and sending dayOfMonth clears the rule; sending both is
// rejected. A null dayOfMonth clears the whole schedule.
func (s *recurringService) UpdateRecurring(userID, householdID, recurringID string, in RecurringUpdate) (*models.RecurringDefinition, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}
	def, err := s.findRecurring(householdID, recurringID)
	if err != nil {
		return nil, err
	}
	if in.RRule != nil && in.DayOfMonth.Value != nil {
		return nil, apperrors.ErrScheduleConflict
	}

	if in.Concept != nil {
		if def.Concept, err = validateConcept(*in.Concept); err != nil {
			return nil, err
		}
	}
	if in.Type != nil {
		if def.Type, err = parseEntryType(*in.Type); err != nil {
			return nil, err
		}
	}
	if in.Amount != nil {
		if err := requirePositive(*in.Amount); err != nil {
			return nil, err
		}
		def.Amount = *in.Amount
	}
	switch {
	case in.RRule != nil:
		if def.RRule, err = normalizeRule(in.RRule); err != nil {
			return nil, err
		}
		def.DayOfMonth = nil
	case in.DayOfMonth.Value != nil:
		day := recurrence.ClampDayOfMonth(*in.DayOfMonth.Value)
		def.DayOfMonth = &day
		def.RRule = nil
	case in.DayOfMonth.Set:
		def.DayOfMonth = nil
		def.RRule = nil
	}
	if in.Notes != nil {
		def.Notes = trimmedOrNil(in.Notes)
	}
	if in.Category != nil {
		def.Category = trimmedOrNil(in.Category)
	}
	if in.Active != nil {
		def.Active = *in.Active
	}

	if err := s.db.Save(def).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return def, nil
}

// DeleteRecurring removes a definition. Entries already posted stay in the
// ledger. Admin only.
func (s *recurringService) DeleteRecurring(userID, householdID, recurringID string) error {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return err
	}
	def, err := s.findRecurring(householdID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(def).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// PostInstance books one occurrence into the ledger. An explicit OccursAt
// pins the date (moved to noon UTC); otherwise the occurrence is computed
// for Month, defaulting to the current month. If an entry carrying the
// definition's marker already exists on that UTC day, it is returned with
// Already set and nothing is written.
func (s *recurringService) PostInstance(userID, householdID, recurringID string, in PostInput) (*PostResult, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}
	def, err := s.findRecurring(householdID, recurringID)
	if err != nil {
		return nil, err
	}
	if !def.Active {
		return nil, apperrors.ErrRecurringInactive
	}

	occursAt, err := s.occurrenceFor(def, in)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := calendar.DayWindow(occursAt)
	tag := marker.Recurring(def.Concept)

	result := &PostResult{OccursAt: occursAt}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.LedgerEntry
		err := tx.Where("household_id = ? AND occurs_at >= ? AND occurs_at < ?", householdID, dayStart, dayEnd).
			Where(marker.ContainsClause, marker.ContainsPattern(tag)).
			First(&existing).Error
		if err == nil {
			result.Entry = &existing
			result.Already = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		note := marker.Note(tag, def.Notes)
		entry := &models.LedgerEntry{
			HouseholdID: householdID,
			UserID:      userID,
			Type:        def.Type,
			Amount:      def.Amount,
			Category:    def.Category,
			Note:        &note,
			OccursAt:    occursAt,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		result.Entry = entry
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if result.Already {
		metrics.IdempotentNoops.WithLabelValues(metrics.OpPostRecurring).Inc()
	} else {
		metrics.LedgerEntriesCreated.WithLabelValues(metrics.SourceRecurring).Inc()
	}
	return result, nil
}

func (s *recurringService) occurrenceFor(def *models.RecurringDefinition, in PostInput) (time.Time, error) {
	if in.OccursAt != nil && *in.OccursAt != "" {
		at, err := ParseInstant(*in.OccursAt)
		if err != nil {
			return time.Time{}, err
		}
		return calendar.NoonUTC(at.Year(), at.Month(), at.Day()), nil
	}

	monthStart := calendar.MonthStart(s.now())
	if in.Month != nil && *in.Month != "" {
		start, err := calendar.ParseMonth(*in.Month)
		if err != nil {
			return time.Time{}, apperrors.ErrInvalidMonth
		}
		monthStart = start
	}
	return recurrence.Occurrence(monthStart, def.DayOfMonth, def.RRule), nil
}

func (s *recurringService) findRecurring(householdID, recurringID string) (*models.RecurringDefinition, error) {
	var def models.RecurringDefinition
	if err := s.db.Where("id = ? AND household_id = ?", recurringID, householdID).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &def, nil
}
