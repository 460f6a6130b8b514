package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hogar/internal/models"
	"hogar/internal/testutil"
)

func decPtr(s string) *decimal.Decimal {
	d := testutil.Dec(s)
	return &d
}

func assertDec(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(testutil.Dec(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

func TestAddEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewLedgerService(db, NewMembershipService(db))
	user := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, user.ID)

	t.Run("case_folds_type", func(t *testing.T) {
		entry, err := svc.AddEntry(user.ID, h.ID, EntryInput{
			Type:     "expense",
			Amount:   testutil.Dec("42.50"),
			Category: strPtr(" Food "),
			OccursAt: strPtr("2024-03-15"),
		})
		testutil.AssertNoError(t, err)
		if entry.Type != models.EntryTypeExpense {
			t.Errorf("expected EXPENSE, got %s", entry.Type)
		}
		if entry.Category == nil || *entry.Category != "Food" {
			t.Errorf("expected trimmed category, got %v", entry.Category)
		}
		if !entry.OccursAt.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected occurs_at %v", entry.OccursAt)
		}
	})

	t.Run("defaults_occurs_at", func(t *testing.T) {
		entry, err := svc.AddEntry(user.ID, h.ID, EntryInput{Type: "INCOME", Amount: testutil.Dec("10")})
		testutil.AssertNoError(t, err)
		if time.Since(entry.OccursAt) > time.Minute {
			t.Errorf("expected occurs_at near now, got %v", entry.OccursAt)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.AddEntry(user.ID, h.ID, EntryInput{Type: "GIFT", Amount: testutil.Dec("1")})
		testutil.AssertAppError(t, err, "INVALID_ENTRY_TYPE")

		_, err = svc.AddEntry(user.ID, h.ID, EntryInput{Type: "INCOME", Amount: testutil.Dec("0")})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		_, err = svc.AddEntry(user.ID, h.ID, EntryInput{Type: "INCOME", Amount: testutil.Dec("-5")})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		for _, amount := range []string{"0.004", "0.015", "1000000000000"} {
			_, err = svc.AddEntry(user.ID, h.ID, EntryInput{Type: "EXPENSE", Amount: testutil.Dec(amount)})
			testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		}

		entry, err := svc.AddEntry(user.ID, h.ID, EntryInput{Type: "EXPENSE", Amount: testutil.Dec("999999999999.99")})
		testutil.AssertNoError(t, err)
		if !entry.Amount.Equal(testutil.Dec("999999999999.99")) {
			t.Errorf("unexpected amount %s", entry.Amount)
		}

		_, err = svc.AddEntry(user.ID, h.ID, EntryInput{Type: "INCOME", Amount: testutil.Dec("5"), OccursAt: strPtr("yesterday")})
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})

	t.Run("non_member", func(t *testing.T) {
		_, err := svc.AddEntry(stranger.ID, h.ID, EntryInput{Type: "INCOME", Amount: testutil.Dec("5")})
		testutil.AssertAppError(t, err, "NOT_MEMBER")
	})
}

func TestListEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewLedgerService(db, NewMembershipService(db))
	user := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, user.ID)
	other := testutil.CreateTestHousehold(t, db, user.ID)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testutil.CreateTestEntry(t, db, h.ID, user.ID, models.EntryTypeExpense, "1", base.AddDate(0, 0, i))
	}
	testutil.CreateTestEntry(t, db, other.ID, user.ID, models.EntryTypeExpense, "1", base)

	t.Run("newest_first", func(t *testing.T) {
		list, err := svc.ListEntries(user.ID, h.ID, EntryFilter{})
		testutil.AssertNoError(t, err)
		if len(list) != 5 {
			t.Fatalf("expected 5 entries, got %d", len(list))
		}
		if !list[0].OccursAt.After(list[4].OccursAt) {
			t.Error("expected descending order")
		}
	})

	t.Run("inclusive_window", func(t *testing.T) {
		from := base.AddDate(0, 0, 1)
		to := base.AddDate(0, 0, 3)
		list, err := svc.ListEntries(user.ID, h.ID, EntryFilter{From: &from, To: &to})
		testutil.AssertNoError(t, err)
		if len(list) != 3 {
			t.Errorf("expected 3 entries in window, got %d", len(list))
		}
	})

	t.Run("limit", func(t *testing.T) {
		limit := 2
		list, err := svc.ListEntries(user.ID, h.ID, EntryFilter{Limit: &limit})
		testutil.AssertNoError(t, err)
		if len(list) != 2 {
			t.Errorf("expected 2 entries, got %d", len(list))
		}
	})

	t.Run("non_positive_limit_clamps_to_one", func(t *testing.T) {
		for _, limit := range []int{0, -3} {
			list, err := svc.ListEntries(user.ID, h.ID, EntryFilter{Limit: &limit})
			testutil.AssertNoError(t, err)
			if len(list) != 1 {
				t.Errorf("limit %d: expected 1 entry, got %d", limit, len(list))
			}
		}
	})
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewLedgerService(db, NewMembershipService(db))
	owner := testutil.CreateTestUser(t, db)
	author := testutil.CreateTestUser(t, db)
	bystander := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)
	other := testutil.CreateTestHousehold(t, db, owner.ID)
	testutil.AddTestMember(t, db, h.ID, author.ID, models.RoleMember)
	testutil.AddTestMember(t, db, h.ID, bystander.ID, models.RoleMember)

	entry := testutil.CreateTestEntry(t, db, h.ID, author.ID, models.EntryTypeExpense, "20", time.Now())

	t.Run("author_updates_partially", func(t *testing.T) {
		updated, err := svc.UpdateEntry(author.ID, h.ID, entry.ID, EntryUpdate{Amount: decPtr("25"), Note: strPtr("lunch")})
		testutil.AssertNoError(t, err)
		assertDec(t, "amount", updated.Amount, "25")
		if updated.Type != models.EntryTypeExpense || updated.Note == nil || *updated.Note != "lunch" {
			t.Errorf("unexpected entry %+v", updated)
		}
	})

	t.Run("empty_note_clears", func(t *testing.T) {
		updated, err := svc.UpdateEntry(author.ID, h.ID, entry.ID, EntryUpdate{Note: strPtr("")})
		testutil.AssertNoError(t, err)
		if updated.Note != nil {
			t.Errorf("expected note cleared, got %q", *updated.Note)
		}
	})

	t.Run("bad_occurs_at", func(t *testing.T) {
		_, err := svc.UpdateEntry(author.ID, h.ID, entry.ID, EntryUpdate{OccursAt: strPtr("not-a-date")})
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})

	t.Run("bystander_forbidden", func(t *testing.T) {
		_, err := svc.UpdateEntry(bystander.ID, h.ID, entry.ID, EntryUpdate{Amount: decPtr("1")})
		testutil.AssertAppError(t, err, "NOT_RESOURCE_OWNER")

		err = svc.DeleteEntry(bystander.ID, h.ID, entry.ID)
		testutil.AssertAppError(t, err, "NOT_RESOURCE_OWNER")
	})

	t.Run("cross_household_probe", func(t *testing.T) {
		_, err := svc.UpdateEntry(owner.ID, other.ID, entry.ID, EntryUpdate{Amount: decPtr("1")})
		testutil.AssertAppError(t, err, "ENTRY_NOT_FOUND")
	})

	t.Run("admin_deletes", func(t *testing.T) {
		testutil.AssertNoError(t, svc.DeleteEntry(owner.ID, h.ID, entry.ID))

		err := svc.DeleteEntry(owner.ID, h.ID, entry.ID)
		testutil.AssertAppError(t, err, "ENTRY_NOT_FOUND")
	})
}

func TestMonthlySummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewLedgerService(db, NewMembershipService(db))
	user := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, user.ID)

	t.Run("empty_month_is_zero", func(t *testing.T) {
		sum, err := svc.MonthlySummary(user.ID, h.ID, "2024-03")
		testutil.AssertNoError(t, err)
		assertDec(t, "income", sum.Income, "0")
		assertDec(t, "closing", sum.ClosingBalance, "0")
	})

	testutil.CreateTestEntry(t, db, h.ID, user.ID, models.EntryTypeExpense, "42.50", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	t.Run("single_expense", func(t *testing.T) {
		sum, err := svc.MonthlySummary(user.ID, h.ID, "2024-03")
		testutil.AssertNoError(t, err)
		assertDec(t, "income", sum.Income, "0")
		assertDec(t, "expense", sum.Expense, "42.50")
		assertDec(t, "net", sum.Net, "-42.50")
		assertDec(t, "opening", sum.OpeningBalance, "0")
		assertDec(t, "closing", sum.ClosingBalance, "-42.50")
	})

	testutil.CreateTestEntry(t, db, h.ID, user.ID, models.EntryTypeIncome, "100", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestEntry(t, db, h.ID, user.ID, models.EntryTypeExpense, "10", time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC))
	testutil.CreateTestEntry(t, db, h.ID, user.ID, models.EntryTypeIncome, "999", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	t.Run("boundaries_and_carry", func(t *testing.T) {
		march, err := svc.MonthlySummary(user.ID, h.ID, "2024-03")
		testutil.AssertNoError(t, err)
		april, err := svc.MonthlySummary(user.ID, h.ID, "2024-04")
		testutil.AssertNoError(t, err)

		assertDec(t, "april income", april.Income, "100")
		assertDec(t, "april expense", april.Expense, "10")
		if !april.OpeningBalance.Equal(march.ClosingBalance) {
			t.Errorf("opening %s should equal prior closing %s", april.OpeningBalance, march.ClosingBalance)
		}
		assertDec(t, "april closing", april.ClosingBalance, "47.50")
	})

	t.Run("invalid_month", func(t *testing.T) {
		for _, m := range []string{"2024-13", "2024-3", "march", ""} {
			_, err := svc.MonthlySummary(user.ID, h.ID, m)
			testutil.AssertAppError(t, err, "INVALID_MONTH")
		}
	})
}
