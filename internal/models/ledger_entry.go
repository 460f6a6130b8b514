package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a money movement.
type EntryType string

const (
	EntryTypeIncome  EntryType = "INCOME"
	EntryTypeExpense EntryType = "EXPENSE"
)

// ParseEntryType case-folds s into an EntryType.
func ParseEntryType(s string) (EntryType, bool) {
	switch t := EntryType(strings.ToUpper(strings.TrimSpace(s))); t {
	case EntryTypeIncome, EntryTypeExpense:
		return t, true
	}
	return "", false
}

// LedgerEntry is a single income or expense row in a household ledger.
// Savings deposits, settled planned entries and posted recurring
// definitions also land here, tagged with a marker in Note.
type LedgerEntry struct {
	Base
	HouseholdID string          `gorm:"type:uuid;not null;index:idx_ledger_household_occurs" json:"household_id"`
	UserID      string          `gorm:"type:uuid;not null" json:"user_id"`
	Type        EntryType       `gorm:"type:varchar(16);not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category    *string         `gorm:"size:64" json:"category,omitempty"`
	Note        *string         `gorm:"size:500" json:"note,omitempty"`
	OccursAt    time.Time       `gorm:"not null;index:idx_ledger_household_occurs" json:"occurs_at"`
}
