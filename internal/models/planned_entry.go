package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlannedEntry is a one-off future income or expense. Settling it posts a
// ledger entry and stamps SettledAt.
type PlannedEntry struct {
	Base
	HouseholdID string          `gorm:"type:uuid;not null;index" json:"household_id"`
	CreatedBy   string          `gorm:"type:uuid;not null" json:"created_by"`
	Concept     string          `gorm:"size:120;not null" json:"concept"`
	Type        EntryType       `gorm:"type:varchar(16);not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"not null" json:"due_date"`
	Month       *string         `gorm:"size:7" json:"month,omitempty"`
	Notes       *string         `gorm:"size:500" json:"notes,omitempty"`
	Category    *string         `gorm:"size:64" json:"category,omitempty"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
}
