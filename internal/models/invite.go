package models

import "time"

// Invite is a shareable join code. Only the SHA-256 hash of the code is
// stored; the plaintext is returned once at creation.
type Invite struct {
	Base
	HouseholdID     string     `gorm:"type:uuid;not null;index" json:"household_id"`
	CodeHash        string     `gorm:"size:64;not null;index" json:"-"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expires_at"`
	MaxUses         int        `gorm:"not null;default:10" json:"max_uses"`
	Uses            int        `gorm:"not null;default:0" json:"uses"`
	RequireApproval bool       `gorm:"not null" json:"require_approval"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	CreatedBy       string     `gorm:"type:uuid;not null" json:"created_by"`
}

// JoinRequestStatus is the lifecycle state of a join request.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

// JoinRequest is created when a user redeems an invite that requires
// approval. It moves from PENDING to APPROVED or REJECTED exactly once.
type JoinRequest struct {
	Base
	HouseholdID string            `gorm:"type:uuid;not null;index" json:"household_id"`
	UserID      string            `gorm:"type:uuid;not null;index" json:"user_id"`
	InviteID    string            `gorm:"type:uuid;not null" json:"invite_id"`
	Status      JoinRequestStatus `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	DecidedAt   *time.Time        `json:"decided_at,omitempty"`
	DecidedBy   *string           `gorm:"type:uuid" json:"decided_by,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
