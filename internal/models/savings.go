package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SavingsCategory is the ledger category used for mirrored deposits.
const SavingsCategory = "Ahorros"

// SavingsGoal is a named savings target inside a household.
type SavingsGoal struct {
	Base
	HouseholdID string          `gorm:"type:uuid;not null;index" json:"household_id"`
	Name        string          `gorm:"size:64;not null" json:"name"`
	Target      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"target"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	CreatedBy   string          `gorm:"type:uuid;not null" json:"created_by"`
}

// SavingsTxnType is the direction of a savings movement.
type SavingsTxnType string

const (
	SavingsDeposit  SavingsTxnType = "DEPOSIT"
	SavingsWithdraw SavingsTxnType = "WITHDRAW"
)

// ParseSavingsTxnType case-folds s into a SavingsTxnType.
func ParseSavingsTxnType(s string) (SavingsTxnType, bool) {
	switch t := SavingsTxnType(strings.ToUpper(strings.TrimSpace(s))); t {
	case SavingsDeposit, SavingsWithdraw:
		return t, true
	}
	return "", false
}

// SavingsTxn moves money into or out of a goal.
type SavingsTxn struct {
	Base
	GoalID   string          `gorm:"type:uuid;not null;index" json:"goal_id"`
	UserID   string          `gorm:"type:uuid;not null" json:"user_id"`
	Type     SavingsTxnType  `gorm:"type:varchar(16);not null" json:"type"`
	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Note     *string         `gorm:"size:500" json:"note,omitempty"`
	OccursAt time.Time       `gorm:"not null" json:"occurs_at"`
}
