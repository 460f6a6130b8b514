package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringDefinition is a monthly template for income or expense. Exactly
// one of DayOfMonth and RRule drives the schedule.
type RecurringDefinition struct {
	Base
	HouseholdID string          `gorm:"type:uuid;not null;index" json:"household_id"`
	CreatedBy   string          `gorm:"type:uuid;not null" json:"created_by"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	Concept     string          `gorm:"size:120;not null" json:"concept"`
	Type        EntryType       `gorm:"type:varchar(16);not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	DayOfMonth  *int            `json:"day_of_month,omitempty"`
	RRule       *string         `gorm:"column:rrule;size:255" json:"rrule,omitempty"`
	Notes       *string         `gorm:"size:500" json:"notes,omitempty"`
	Category    *string         `gorm:"size:64" json:"category,omitempty"`

	// OccursAt is the computed occurrence for a requested month. Not stored.
	OccursAt *time.Time `gorm:"-" json:"occurs_at,omitempty"`
}
