package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"hogar/internal/logger"
	"hogar/internal/models"
)

// auditService records who changed what in which household.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes an audit row. Failures are logged and dropped so auditing can
// never fail the request it describes. householdID may be empty for
// account-level actions.
func (s *auditService) Log(userID, householdID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	var changesJSON string
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		HouseholdID:  householdID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"household_id", householdID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
