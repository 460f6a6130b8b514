package services

import (
	"strings"
	"testing"
	"time"

	"hogar/internal/models"
	"hogar/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateHousehold(t *testing.T) {
	t.Run("creator_becomes_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewHouseholdService(db, NewMembershipService(db))
		user := testutil.CreateTestUser(t, db)

		h, err := svc.CreateHousehold(user.ID, "  Casa  ", "eur")
		testutil.AssertNoError(t, err)

		if h.Name != "Casa" || h.Currency != "EUR" {
			t.Errorf("expected trimmed name and upper currency, got %q %q", h.Name, h.Currency)
		}
		var m models.HouseholdMember
		if err := db.Where("household_id = ? AND user_id = ?", h.ID, user.ID).First(&m).Error; err != nil {
			t.Fatalf("owner membership missing: %v", err)
		}
		if m.Role != models.RoleOwner {
			t.Errorf("expected OWNER, got %s", m.Role)
		}
	})

	t.Run("default_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewHouseholdService(db, NewMembershipService(db))
		user := testutil.CreateTestUser(t, db)

		h, err := svc.CreateHousehold(user.ID, "Casa", "")
		testutil.AssertNoError(t, err)
		if h.Currency != "EUR" {
			t.Errorf("expected EUR, got %s", h.Currency)
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewHouseholdService(db, NewMembershipService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateHousehold(user.ID, "   ", "EUR")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateHousehold(user.ID, strings.Repeat("a", 65), "EUR")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateHousehold(user.ID, "Casa", "EU1")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestMyHouseholds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHouseholdService(db, NewMembershipService(db))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	first := testutil.CreateTestHousehold(t, db, user.ID)
	second := testutil.CreateTestHousehold(t, db, other.ID)
	db.Create(&models.HouseholdMember{HouseholdID: second.ID, UserID: user.ID, Role: models.RoleMember, JoinedAt: time.Now().UTC().Add(time.Hour)})

	list, err := svc.MyHouseholds(user.ID)
	testutil.AssertNoError(t, err)

	if len(list) != 2 {
		t.Fatalf("expected 2 households, got %d", len(list))
	}
	if list[0].ID != second.ID || list[0].Role != models.RoleMember {
		t.Errorf("expected newest membership first, got %+v", list[0])
	}
	if list[1].ID != first.ID || list[1].Role != models.RoleOwner {
		t.Errorf("unexpected second entry %+v", list[1])
	}
}

func TestUpdateHousehold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHouseholdService(db, NewMembershipService(db))
	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)
	testutil.AddTestMember(t, db, h.ID, member.ID, models.RoleMember)

	t.Run("admin_updates", func(t *testing.T) {
		updated, err := svc.UpdateHousehold(owner.ID, h.ID, strPtr("Piso"), strPtr("usd"))
		testutil.AssertNoError(t, err)
		if updated.Name != "Piso" || updated.Currency != "USD" {
			t.Errorf("unexpected household %+v", updated)
		}
	})

	t.Run("nothing_to_update", func(t *testing.T) {
		_, err := svc.UpdateHousehold(owner.ID, h.ID, nil, nil)
		testutil.AssertAppError(t, err, "NOTHING_TO_UPDATE")
	})

	t.Run("member_forbidden", func(t *testing.T) {
		_, err := svc.UpdateHousehold(member.ID, h.ID, strPtr("Nope"), nil)
		testutil.AssertAppError(t, err, "ADMIN_REQUIRED")
	})
}

func TestDeleteHousehold(t *testing.T) {
	t.Run("owner_cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewHouseholdService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)
		h := testutil.CreateTestHousehold(t, db, owner.ID)
		keep := testutil.CreateTestHousehold(t, db, owner.ID)

		testutil.CreateTestEntry(t, db, h.ID, owner.ID, models.EntryTypeIncome, "10", time.Now())
		testutil.CreateTestEntry(t, db, keep.ID, owner.ID, models.EntryTypeIncome, "10", time.Now())
		goal := testutil.CreateTestGoal(t, db, h.ID, owner.ID, "100")
		db.Create(&models.SavingsTxn{GoalID: goal.ID, UserID: owner.ID, Type: models.SavingsDeposit, Amount: testutil.Dec("5"), OccursAt: time.Now().UTC()})
		testutil.CreateTestInvite(t, db, h.ID, owner.ID, "ABCDEFGH", 5, false)
		testutil.CreateTestPlanned(t, db, h.ID, owner.ID, "Rent", models.EntryTypeExpense, "500", time.Now())
		testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Gym", 5)

		testutil.AssertNoError(t, svc.DeleteHousehold(owner.ID, h.ID))

		for _, model := range []interface{}{&models.SavingsTxn{}, &models.SavingsGoal{}, &models.Invite{}, &models.PlannedEntry{}, &models.RecurringDefinition{}} {
			var count int64
			db.Model(model).Count(&count)
			if count != 0 {
				t.Errorf("expected no %T rows, got %d", model, count)
			}
		}
		var entries int64
		db.Model(&models.LedgerEntry{}).Count(&entries)
		if entries != 1 {
			t.Errorf("expected only the other household's entry to remain, got %d", entries)
		}
		var households int64
		db.Model(&models.Household{}).Where("id = ?", h.ID).Count(&households)
		if households != 0 {
			t.Error("household row should be gone")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewHouseholdService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)

		err := svc.DeleteHousehold(owner.ID, "0190f7a2-0000-7000-8000-00000000dead")
		testutil.AssertAppError(t, err, "HOUSEHOLD_NOT_FOUND")
	})

	t.Run("admin_cannot_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewHouseholdService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestUser(t, db)
		h := testutil.CreateTestHousehold(t, db, owner.ID)
		testutil.AddTestMember(t, db, h.ID, admin.ID, models.RoleAdmin)

		err := svc.DeleteHousehold(admin.ID, h.ID)
		testutil.AssertAppError(t, err, "OWNER_REQUIRED")
	})
}

func TestListMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHouseholdService(db, NewMembershipService(db))
	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)
	db.Create(&models.HouseholdMember{HouseholdID: h.ID, UserID: member.ID, Role: models.RoleMember, JoinedAt: time.Now().UTC().Add(time.Minute)})

	list, err := svc.ListMembers(member.ID, h.ID)
	testutil.AssertNoError(t, err)
	if len(list) != 2 || list[0].UserID != owner.ID {
		t.Fatalf("expected owner first of 2 members, got %+v", list)
	}
	if list[0].User == nil || list[0].User.Email != owner.Email {
		t.Errorf("expected preloaded user, got %+v", list[0].User)
	}

	_, err = svc.ListMembers(stranger.ID, h.ID)
	testutil.AssertAppError(t, err, "NOT_MEMBER")
}
