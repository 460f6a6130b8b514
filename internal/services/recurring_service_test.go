package services

import (
	"testing"
	"time"

	"hogar/internal/models"
	"hogar/internal/testutil"
)

func TestCreateRecurring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringService(db, NewMembershipService(db))
	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)
	testutil.AddTestMember(t, db, h.ID, member.ID, models.RoleMember)

	base := RecurringInput{Concept: "Alquiler", Type: "EXPENSE", Amount: testutil.Dec("800")}

	t.Run("day_defaults_and_clamps", func(t *testing.T) {
		def, err := svc.CreateRecurring(owner.ID, h.ID, base)
		testutil.AssertNoError(t, err)
		if def.DayOfMonth == nil || *def.DayOfMonth != 1 || def.RRule != nil || !def.Active {
			t.Errorf("unexpected default schedule %+v", def)
		}

		in := base
		in.DayOfMonth = intPtr(45)
		def, err = svc.CreateRecurring(owner.ID, h.ID, in)
		testutil.AssertNoError(t, err)
		if *def.DayOfMonth != 31 {
			t.Errorf("expected clamp to 31, got %d", *def.DayOfMonth)
		}
	})

	t.Run("rule_leaves_day_empty", func(t *testing.T) {
		in := base
		in.RRule = strPtr("freq=monthly;bymonthday=-1")
		def, err := svc.CreateRecurring(owner.ID, h.ID, in)
		testutil.AssertNoError(t, err)
		if def.DayOfMonth != nil || def.RRule == nil || *def.RRule != "FREQ=MONTHLY;BYMONTHDAY=-1" {
			t.Errorf("unexpected rule schedule %+v", def)
		}
	})

	t.Run("conflict_and_bad_rule", func(t *testing.T) {
		in := base
		in.RRule = strPtr("BYMONTHDAY=5")
		in.DayOfMonth = intPtr(5)
		_, err := svc.CreateRecurring(owner.ID, h.ID, in)
		testutil.AssertAppError(t, err, "SCHEDULE_CONFLICT")

		in = base
		in.RRule = strPtr("FREQ=WEEKLY")
		_, err = svc.CreateRecurring(owner.ID, h.ID, in)
		testutil.AssertAppError(t, err, "INVALID_RECURRENCE")
	})

	t.Run("amount_precision", func(t *testing.T) {
		for _, amount := range []string{"0.004", "12.345", "1000000000000"} {
			in := base
			in.Amount = testutil.Dec(amount)
			_, err := svc.CreateRecurring(owner.ID, h.ID, in)
			testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		}
	})

	t.Run("member_forbidden", func(t *testing.T) {
		_, err := svc.CreateRecurring(member.ID, h.ID, base)
		testutil.AssertAppError(t, err, "ADMIN_REQUIRED")
	})
}

func TestListRecurringOccurrences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringService(db, NewMembershipService(db))
	owner := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)

	testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Gym", 31)
	lastDay, err := svc.CreateRecurring(owner.ID, h.ID, RecurringInput{Concept: "Nomina", Type: "INCOME", Amount: testutil.Dec("2000"), RRule: strPtr("BYMONTHDAY=-1")})
	testutil.AssertNoError(t, err)
	inactive := testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Old", 3)
	db.Model(inactive).Update("active", false)

	list, err := svc.ListRecurring(owner.ID, h.ID, strPtr("2024-02"))
	testutil.AssertNoError(t, err)
	if len(list) != 2 {
		t.Fatalf("expected 2 active definitions, got %d", len(list))
	}
	want := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	for _, d := range list {
		if d.OccursAt == nil || !d.OccursAt.Equal(want) {
			t.Errorf("%s: expected %v, got %v", d.Concept, want, d.OccursAt)
		}
	}
	if list[0].ID != lastDay.ID {
		t.Error("expected newest definition first")
	}

	plain, err := svc.ListRecurring(owner.ID, h.ID, nil)
	testutil.AssertNoError(t, err)
	if plain[0].OccursAt != nil {
		t.Error("occurrence should only be computed for a month")
	}
}

func TestUpdateRecurringSchedule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringService(db, NewMembershipService(db))
	owner := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)
	def := testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Agua", 10)

	updated, err := svc.UpdateRecurring(owner.ID, h.ID, def.ID, RecurringUpdate{RRule: strPtr("BYMONTHDAY=15")})
	testutil.AssertNoError(t, err)
	if updated.DayOfMonth != nil || updated.RRule == nil {
		t.Errorf("rule should replace day, got %+v", updated)
	}

	updated, err = svc.UpdateRecurring(owner.ID, h.ID, def.ID, RecurringUpdate{DayOfMonth: OptionalInt{Set: true, Value: intPtr(0)}})
	testutil.AssertNoError(t, err)
	if updated.RRule != nil || updated.DayOfMonth == nil || *updated.DayOfMonth != 1 {
		t.Errorf("day should replace rule, got %+v", updated)
	}

	_, err = svc.UpdateRecurring(owner.ID, h.ID, def.ID, RecurringUpdate{DayOfMonth: OptionalInt{Set: true, Value: intPtr(2)}, RRule: strPtr("BYMONTHDAY=2")})
	testutil.AssertAppError(t, err, "SCHEDULE_CONFLICT")

	_, err = svc.UpdateRecurring(owner.ID, h.ID, def.ID, RecurringUpdate{RRule: strPtr("BYMONTHDAY=-1")})
	testutil.AssertNoError(t, err)
	updated, err = svc.UpdateRecurring(owner.ID, h.ID, def.ID, RecurringUpdate{DayOfMonth: OptionalInt{Set: true}})
	testutil.AssertNoError(t, err)
	if updated.DayOfMonth != nil || updated.RRule != nil {
		t.Errorf("null day should clear the schedule, got %+v", updated)
	}
	list, err := svc.ListRecurring(owner.ID, h.ID, strPtr("2024-03"))
	testutil.AssertNoError(t, err)
	if len(list) != 1 || list[0].OccursAt == nil || list[0].OccursAt.Day() != 1 {
		t.Errorf("cleared schedule should fall on day 1, got %+v", list)
	}

	updated, err = svc.UpdateRecurring(owner.ID, h.ID, def.ID, RecurringUpdate{Active: boolPtr(false)})
	testutil.AssertNoError(t, err)
	if updated.Active {
		t.Error("expected definition deactivated")
	}

	testutil.AssertNoError(t, svc.DeleteRecurring(owner.ID, h.ID, def.ID))
	err = svc.DeleteRecurring(owner.ID, h.ID, def.ID)
	testutil.AssertAppError(t, err, "RECURRING_NOT_FOUND")
}

func TestPostInstance(t *testing.T) {
	t.Run("idempotent_per_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		h := testutil.CreateTestHousehold(t, db, owner.ID)
		testutil.AddTestMember(t, db, h.ID, member.ID, models.RoleMember)
		def := testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Internet", 31)

		first, err := svc.PostInstance(member.ID, h.ID, def.ID, PostInput{Month: strPtr("2024-04")})
		testutil.AssertNoError(t, err)
		want := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)
		if first.Already || !first.OccursAt.Equal(want) || !first.Entry.OccursAt.Equal(want) {
			t.Fatalf("unexpected first post %+v", first)
		}
		if first.Entry.Note == nil || *first.Entry.Note != "[RECURRING:Internet]" {
			t.Errorf("unexpected note %v", first.Entry.Note)
		}

		second, err := svc.PostInstance(owner.ID, h.ID, def.ID, PostInput{OccursAt: strPtr("2024-04-30T08:00:00Z")})
		testutil.AssertNoError(t, err)
		if !second.Already || second.Entry.ID != first.Entry.ID {
			t.Errorf("expected the existing entry back, got %+v", second)
		}

		var count int64
		db.Model(&models.LedgerEntry{}).Where("household_id = ?", h.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 entry, got %d", count)
		}
	})

	t.Run("explicit_date_moves_to_noon", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)
		h := testutil.CreateTestHousehold(t, db, owner.ID)
		def := testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Luz", 5)

		res, err := svc.PostInstance(owner.ID, h.ID, def.ID, PostInput{OccursAt: strPtr("2024-07-09")})
		testutil.AssertNoError(t, err)
		if !res.OccursAt.Equal(time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected occurrence %v", res.OccursAt)
		}
	})

	t.Run("inactive_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)
		h := testutil.CreateTestHousehold(t, db, owner.ID)
		def := testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Old", 5)
		db.Model(def).Update("active", false)

		_, err := svc.PostInstance(owner.ID, h.ID, def.ID, PostInput{})
		testutil.AssertAppError(t, err, "RECURRING_INACTIVE")
	})

	t.Run("bad_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringService(db, NewMembershipService(db))
		owner := testutil.CreateTestUser(t, db)
		h := testutil.CreateTestHousehold(t, db, owner.ID)
		def := testutil.CreateTestRecurring(t, db, h.ID, owner.ID, "Gas", 5)

		_, err := svc.PostInstance(owner.ID, h.ID, def.ID, PostInput{Month: strPtr("2024-00")})
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})
}
