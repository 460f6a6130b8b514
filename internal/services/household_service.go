package services

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "hogar/internal/errors"
	"hogar/internal/models"
)

const (
	maxHouseholdName = 64
	defaultCurrency  = "EUR"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// householdService handles household lifecycle and member listing.
type householdService struct {
	db      *gorm.DB
	members MembershipServicer
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB, members MembershipServicer) HouseholdServicer {
	return &householdService{db: db, members: members}
}

func normalizeHouseholdName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if utf8.RuneCountInString(name) > maxHouseholdName {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be at most 64 characters")
	}
	return name, nil
}

func normalizeCurrency(currency string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if !currencyPattern.MatchString(c) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be a 3-letter ISO 4217 code")
	}
	return c, nil
}

// CreateHousehold creates a household and makes userID its OWNER.
func (s *householdService) CreateHousehold(userID, name, currency string) (*models.Household, error) {
	name, err := normalizeHouseholdName(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(currency) == "" {
		currency = defaultCurrency
	}
	currency, err = normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	household := &models.Household{Name: name, Currency: currency}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(household).Error; err != nil {
			return err
		}
		return tx.Create(&models.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      userID,
			Role:        models.RoleOwner,
			JoinedAt:    time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return household, nil
}

// MyHouseholds lists the caller's households, newest membership first.
func (s *householdService) MyHouseholds(userID string) ([]HouseholdWithRole, error) {
	var memberships []models.HouseholdMember
	if err := s.db.Where("user_id = ?", userID).Order("joined_at DESC").Find(&memberships).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(memberships) == 0 {
		return []HouseholdWithRole{}, nil
	}

	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.HouseholdID
	}
	var households []models.Household
	if err := s.db.Where("id IN ?", ids).Find(&households).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byID := make(map[string]models.Household, len(households))
	for _, h := range households {
		byID[h.ID] = h
	}

	result := make([]HouseholdWithRole, 0, len(memberships))
	for _, m := range memberships {
		h, ok := byID[m.HouseholdID]
		if !ok {
			continue
		}
		result = append(result, HouseholdWithRole{Household: h, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return result, nil
}

// UpdateHousehold renames a household or changes its currency. Admin only.
func (s *householdService) UpdateHousehold(userID, householdID string, name, currency *string) (*models.Household, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		n, err := normalizeHouseholdName(*name)
		if err != nil {
			return nil, err
		}
		updates["name"] = n
	}
	if currency != nil {
		c, err := normalizeCurrency(*currency)
		if err != nil {
			return nil, err
		}
		updates["currency"] = c
	}
	if len(updates) == 0 {
		return nil, apperrors.ErrNothingToUpdate
	}

	var household models.Household
	if err := s.db.Where("id = ?", householdID).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&household).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}

// DeleteHousehold removes a household and every row it owns. Owner only.
func (s *householdService) DeleteHousehold(userID, householdID string) error {
	var count int64
	if err := s.db.Model(&models.Household{}).Where("id = ?", householdID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrHouseholdNotFound
	}

	m, err := s.members.AssertMember(userID, householdID)
	if err != nil {
		return err
	}
	if m.Role != models.RoleOwner {
		return apperrors.ErrOwnerRequired
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		goalIDs := tx.Model(&models.SavingsGoal{}).Select("id").Where("household_id = ?", householdID)
		if err := tx.Where("goal_id IN (?)", goalIDs).Delete(&models.SavingsTxn{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.SavingsGoal{},
			&models.LedgerEntry{},
			&models.PlannedEntry{},
			&models.RecurringDefinition{},
			&models.JoinRequest{},
			&models.Invite{},
			&models.HouseholdMember{},
		} {
			if err := tx.Where("household_id = ?", householdID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", householdID).Delete(&models.Household{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListMembers returns the household's members, oldest first.
func (s *householdService) ListMembers(userID, householdID string) ([]models.HouseholdMember, error) {
	if _, err := s.members.AssertMember(userID, householdID); err != nil {
		return nil, err
	}

	var members []models.HouseholdMember
	if err := s.db.Preload("User").
		Where("household_id = ?", householdID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}
