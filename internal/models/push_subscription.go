package models

// PushSubscription is a browser Web Push endpoint registered by a user.
type PushSubscription struct {
	Base
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint string `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256dh   string `gorm:"not null" json:"-"`
	Auth     string `gorm:"not null" json:"-"`
}
