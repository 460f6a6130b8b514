package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "hogar/internal/errors"
	"hogar/internal/models"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseInstant parses an RFC 3339 timestamp or a bare YYYY-MM-DD date into
// a UTC instant. Values without a zone are read as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidDate, "invalid date: "+s)
}

// trimmedOrNil trims s and maps blank values to nil so they store as NULL.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func parseEntryType(s string) (models.EntryType, error) {
	t, ok := models.ParseEntryType(s)
	if !ok {
		return "", apperrors.ErrInvalidEntryType
	}
	return t, nil
}

// maxAmount is the first value that no longer fits NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

// requirePositive rejects zero and negative amounts. The sign of a money
// movement lives in its type, never in the amount. Amounts must also fit
// the stored NUMERIC(14,2) exactly.
func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must have at most 2 decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be less than 1000000000000")
	}
	return nil
}

// canModify reports whether member may change a record authored by authorID.
func canModify(member *models.HouseholdMember, authorID string) bool {
	return member.UserID == authorID || member.Role.AtLeastAdmin()
}
