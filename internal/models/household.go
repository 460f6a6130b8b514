package models

import "time"

// Household is a shared budget between its members.
type Household struct {
	Base
	Name     string `gorm:"size:64;not null" json:"name"`
	Currency string `gorm:"size:3;not null;default:'EUR'" json:"currency"`
}

// Role is a member's privilege level inside a household.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// AtLeastAdmin reports whether r may manage invites, join requests and
// other members' records.
func (r Role) AtLeastAdmin() bool {
	return r == RoleOwner || r == RoleAdmin
}

// HouseholdMember links a user to a household. A user appears at most once
// per household.
type HouseholdMember struct {
	HouseholdID string    `gorm:"type:uuid;primaryKey" json:"household_id"`
	UserID      string    `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role        Role      `gorm:"type:varchar(16);not null;default:'MEMBER'" json:"role"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
