package services

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hogar/internal/errors"
	"hogar/internal/marker"
	"hogar/internal/metrics"
	"hogar/internal/models"
	"hogar/internal/pagination"
)

const maxGoalNameLength = 64

// savingsService manages savings goals and their deposits and withdrawals.
type savingsService struct {
	db      *gorm.DB
	members MembershipServicer
	now     func() time.Time
}

// NewSavingsService creates a new SavingsServicer.
func NewSavingsService(db *gorm.DB, members MembershipServicer) SavingsServicer {
	return &savingsService{
		db:      db,
		members: members,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validateGoalName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxGoalNameLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be 1-64 characters")
	}
	return name, nil
}

// CreateGoal adds a goal. Admin only.
func (s *savingsService) CreateGoal(userID, householdID string, in GoalInput) (*models.SavingsGoal, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}

	name, err := validateGoalName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(in.Target); err != nil {
		return nil, err
	}

	goal := &models.SavingsGoal{
		HouseholdID: householdID,
		Name:        name,
		Target:      in.Target,
		CreatedBy:   userID,
	}
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		goal.Deadline = &d
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// ListGoals returns every goal of the household with its saved balance,
// newest first.
func (s *savingsService) ListGoals(userID, householdID string) ([]GoalWithProgress, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	var goals []models.SavingsGoal
	if err := s.db.Where("household_id = ?", householdID).Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(goals) == 0 {
		return []GoalWithProgress{}, nil
	}

	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}

	var rows []struct {
		GoalID string
		Type   string
		Total  decimal.Decimal
	}
	if err := s.db.Model(&models.SavingsTxn{}).
		Select("goal_id, type, COALESCE(SUM(amount), 0) AS total").
		Where("goal_id IN ?", ids).
		Group("goal_id, type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	saved := make(map[string]decimal.Decimal, len(goals))
	for _, r := range rows {
		switch models.SavingsTxnType(r.Type) {
		case models.SavingsDeposit:
			saved[r.GoalID] = saved[r.GoalID].Add(r.Total)
		case models.SavingsWithdraw:
			saved[r.GoalID] = saved[r.GoalID].Sub(r.Total)
		}
	}

	out := make([]GoalWithProgress, len(goals))
	for i, g := range goals {
		out[i] = GoalWithProgress{
			SavingsGoal: g,
			Saved:       saved[g.ID],
			Progress:    progress(saved[g.ID], g.Target),
		}
	}
	return out, nil
}

// UpdateGoal changes the provided fields. Admin only.
func (s *savingsService) UpdateGoal(userID, householdID, goalID string, in GoalUpdate) (*models.SavingsGoal, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}
	goal, err := s.findGoal(householdID, goalID)
	if err != nil {
		return nil, err
	}
	if in.Name == nil && in.Target == nil && !in.Deadline.Set {
		return nil, apperrors.ErrNothingToUpdate
	}

	if in.Name != nil {
		if goal.Name, err = validateGoalName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Target != nil {
		if err := requirePositive(*in.Target); err != nil {
			return nil, err
		}
		goal.Target = *in.Target
	}
	if in.Deadline.Set {
		goal.Deadline = nil
		if in.Deadline.Value != nil {
			d := in.Deadline.Value.UTC()
			goal.Deadline = &d
		}
	}

	if err := s.db.Save(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// DeleteGoal removes the goal, its transactions and the ledger entries
// mirrored from its deposits in one transaction. Admin only.
func (s *savingsService) DeleteGoal(userID, householdID, goalID string) error {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return err
	}
	goal, err := s.findGoal(householdID, goalID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.SavingsTxn{}).Error; err != nil {
			return err
		}
		if err := tx.Where("household_id = ? AND category = ?", householdID, models.SavingsCategory).
			Where(marker.ContainsClause, marker.ContainsPattern(marker.Savings(goal.ID))).
			Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(goal).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddTxn records a deposit or withdrawal. A deposit also books an EXPENSE
// in the ledger under the savings category, tagged with the goal marker so
// DeleteGoal can find it again.
func (s *savingsService) AddTxn(userID, householdID, goalID string, in SavingsTxnInput) (*models.SavingsTxn, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}
	goal, err := s.findGoal(householdID, goalID)
	if err != nil {
		return nil, err
	}

	typ, ok := models.ParseSavingsTxnType(in.Type)
	if !ok {
		return nil, apperrors.ErrInvalidSavingsType
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
	note := trimmedOrNil(in.Note)

	txn := &models.SavingsTxn{
		GoalID:   goal.ID,
		UserID:   userID,
		Type:     typ,
		Amount:   in.Amount,
		Note:     note,
		OccursAt: occursAt,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if typ != models.SavingsDeposit {
			return nil
		}
		category := models.SavingsCategory
		mirrored := marker.Note(marker.Savings(goal.ID), note)
		return tx.Create(&models.LedgerEntry{
			HouseholdID: householdID,
			UserID:      userID,
			Type:        models.EntryTypeExpense,
			Amount:      in.Amount,
			Category:    &category,
			Note:        &mirrored,
			OccursAt:    occursAt,
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if typ == models.SavingsDeposit {
		metrics.LedgerEntriesCreated.WithLabelValues(metrics.SourceSavings).Inc()
	}
	return txn, nil
}

// ListTxns returns the goal's most recent transactions.
func (s *savingsService) ListTxns(userID, householdID, goalID string) ([]models.SavingsTxn, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}
	goal, err := s.findGoal(householdID, goalID)
	if err != nil {
		return nil, err
	}

	var txns []models.SavingsTxn
	if err := s.db.Where("goal_id = ?", goal.ID).
		Scopes(pagination.SavingsWindow.Take(nil)).
		Order("occurs_at DESC").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}

// GoalSummary reports saved, progress and what is left to reach the target.
func (s *savingsService) GoalSummary(userID, householdID, goalID string) (*GoalSummary, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}
	goal, err := s.findGoal(householdID, goalID)
	if err != nil {
		return nil, err
	}

	totals, err := sumByType(s.db.Model(&models.SavingsTxn{}).Where("goal_id = ?", goal.ID))
	if err != nil {
		return nil, err
	}
	saved := totals[string(models.SavingsDeposit)].Sub(totals[string(models.SavingsWithdraw)])

	remaining := goal.Target.Sub(saved)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &GoalSummary{
		GoalID:    goal.ID,
		Target:    goal.Target,
		Saved:     saved,
		Progress:  progress(saved, goal.Target),
		Remaining: remaining,
	}, nil
}

func (s *savingsService) findGoal(householdID, goalID string) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := s.db.Where("id = ? AND household_id = ?", goalID, householdID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// progress is saved/target as a percentage clamped to [0, 100]. Non-finite
// results read as 0.
func progress(saved, target decimal.Decimal) float64 {
	p := saved.InexactFloat64() / target.InexactFloat64() * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}
