package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "hogar/internal/errors"
	"hogar/internal/models"
)

// deviceService stores the Web Push subscriptions of users.
type deviceService struct {
	db *gorm.DB
}

// NewDeviceService creates a new DeviceServicer.
func NewDeviceService(db *gorm.DB) DeviceServicer {
	return &deviceService{db: db}
}

// RegisterPushSubscription upserts by endpoint. A browser that re-subscribes
// under another account moves the endpoint to that account.
func (s *deviceService) RegisterPushSubscription(userID string, in PushSubscriptionInput) (*models.PushSubscription, error) {
	endpoint := strings.TrimSpace(in.Endpoint)
	p256dh := strings.TrimSpace(in.P256dh)
	auth := strings.TrimSpace(in.Auth)
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "endpoint, p256dh and auth are required")
	}

	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var stored models.PushSubscription
	if err := s.db.Where("endpoint = ?", endpoint).First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stored, nil
}

// DeletePushSubscription removes one of the caller's endpoints. Unknown
// endpoints are ignored.
func (s *deviceService) DeletePushSubscription(userID, endpoint string) error {
	if err := s.db.Where("user_id = ? AND endpoint = ?", userID, strings.TrimSpace(endpoint)).
		Delete(&models.PushSubscription{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
