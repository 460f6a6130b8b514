package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "hogar/internal/errors"
	"hogar/internal/models"
)

// membershipService answers who belongs to a household and with which role.
type membershipService struct {
	db *gorm.DB
}

// NewMembershipService creates a new MembershipServicer.
func NewMembershipService(db *gorm.DB) MembershipServicer {
	return &membershipService{db: db}
}

// GetMembership returns the membership or nil when the user does not belong
// to the household.
func (s *membershipService) GetMembership(userID, householdID string) (*models.HouseholdMember, error) {
	var m models.HouseholdMember
	err := s.db.Where("household_id = ? AND user_id = ?", householdID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &m, nil
}

// AssertMember fails with ErrNotMember unless the user belongs to the household.
func (s *membershipService) AssertMember(userID, householdID string) (*models.HouseholdMember, error) {
	m, err := s.GetMembership(userID, householdID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.ErrNotMember
	}
	return m, nil
}

// AssertAdmin fails unless the user is an OWNER or ADMIN of the household.
func (s *membershipService) AssertAdmin(userID, householdID string) (*models.HouseholdMember, error) {
	m, err := s.AssertMember(userID, householdID)
	if err != nil {
		return nil, err
	}
	if !m.Role.AtLeastAdmin() {
		return nil, apperrors.ErrAdminRequired
	}
	return m, nil
}
