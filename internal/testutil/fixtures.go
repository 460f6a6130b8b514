package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hogar/internal/invitecode"
	"hogar/internal/models"
)

// TestPepper is the invite pepper used by fixtures and service tests.
const TestPepper = "test-pepper"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, panicking on bad input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", nextID()))
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHousehold creates a EUR household with ownerID as OWNER.
func CreateTestHousehold(t *testing.T, db *gorm.DB, ownerID string) *models.Household {
	t.Helper()

	h := &models.Household{Name: fmt.Sprintf("Casa %d", nextID()), Currency: "EUR"}
	if err := db.Create(h).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}
	AddTestMember(t, db, h.ID, ownerID, models.RoleOwner)
	return h
}

// AddTestMember adds userID to householdID with role.
func AddTestMember(t *testing.T, db *gorm.DB, householdID, userID string, role models.Role) *models.HouseholdMember {
	t.Helper()

	m := &models.HouseholdMember{
		HouseholdID: householdID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
	return m
}

// CreateTestInvite stores an invite for code hashed with TestPepper.
func CreateTestInvite(t *testing.T, db *gorm.DB, householdID, createdBy, code string, maxUses int, requireApproval bool) *models.Invite {
	t.Helper()

	inv := &models.Invite{
		HouseholdID:     householdID,
		CodeHash:        invitecode.Hash(invitecode.Normalize(code), TestPepper),
		ExpiresAt:       time.Now().UTC().Add(24 * time.Hour),
		MaxUses:         maxUses,
		RequireApproval: requireApproval,
		CreatedBy:       createdBy,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test invite: %v", err)
	}
	return inv
}

// CreateTestEntry creates a ledger entry.
func CreateTestEntry(t *testing.T, db *gorm.DB, householdID, userID string, typ models.EntryType, amount string, occursAt time.Time) *models.LedgerEntry {
	t.Helper()

	e := &models.LedgerEntry{
		HouseholdID: householdID,
		UserID:      userID,
		Type:        typ,
		Amount:      Dec(amount),
		OccursAt:    occursAt.UTC(),
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return e
}

// CreateTestGoal creates a savings goal.
func CreateTestGoal(t *testing.T, db *gorm.DB, householdID, createdBy, target string) *models.SavingsGoal {
	t.Helper()

	g := &models.SavingsGoal{
		HouseholdID: householdID,
		Name:        fmt.Sprintf("Goal %d", nextID()),
		Target:      Dec(target),
		CreatedBy:   createdBy,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return g
}

// CreateTestPlanned creates an unsettled planned entry.
func CreateTestPlanned(t *testing.T, db *gorm.DB, householdID, createdBy, concept string, typ models.EntryType, amount string, due time.Time) *models.PlannedEntry {
	t.Helper()

	p := &models.PlannedEntry{
		HouseholdID: householdID,
		CreatedBy:   createdBy,
		Concept:     concept,
		Type:        typ,
		Amount:      Dec(amount),
		DueDate:     due.UTC(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test planned entry: %v", err)
	}
	return p
}

// CreateTestRecurring creates an active recurring definition on dayOfMonth.
func CreateTestRecurring(t *testing.T, db *gorm.DB, householdID, createdBy, concept string, dayOfMonth int) *models.RecurringDefinition {
	t.Helper()

	r := &models.RecurringDefinition{
		HouseholdID: householdID,
		CreatedBy:   createdBy,
		Active:      true,
		Concept:     concept,
		Type:        models.EntryTypeExpense,
		Amount:      Dec("50"),
		DayOfMonth:  &dayOfMonth,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create test recurring definition: %v", err)
	}
	return r
}
