package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hogar/internal/errors"
	"hogar/internal/models"
	"hogar/internal/services"
)

const testGoalID = "0190a8a2-0000-7000-8000-0000000000b1"

type mockSavingsService struct {
	createGoalFn  func(userID, householdID string, in services.GoalInput) (*models.SavingsGoal, error)
	listGoalsFn   func(userID, householdID string) ([]services.GoalWithProgress, error)
	updateGoalFn  func(userID, householdID, goalID string, in services.GoalUpdate) (*models.SavingsGoal, error)
	deleteGoalFn  func(userID, householdID, goalID string) error
	addTxnFn      func(userID, householdID, goalID string, in services.SavingsTxnInput) (*models.SavingsTxn, error)
	listTxnsFn    func(userID, householdID, goalID string) ([]models.SavingsTxn, error)
	goalSummaryFn func(userID, householdID, goalID string) (*services.GoalSummary, error)
}

var _ services.SavingsServicer = (*mockSavingsService)(nil)

func (m *mockSavingsService) CreateGoal(userID, householdID string, in services.GoalInput) (*models.SavingsGoal, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, householdID, in)
	}
	return &models.SavingsGoal{}, nil
}

func (m *mockSavingsService) ListGoals(userID, householdID string) ([]services.GoalWithProgress, error) {
	if m.listGoalsFn != nil {
		return m.listGoalsFn(userID, householdID)
	}
	return []services.GoalWithProgress{}, nil
}

func (m *mockSavingsService) UpdateGoal(userID, householdID, goalID string, in services.GoalUpdate) (*models.SavingsGoal, error) {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(userID, householdID, goalID, in)
	}
	return &models.SavingsGoal{}, nil
}

func (m *mockSavingsService) DeleteGoal(userID, householdID, goalID string) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, householdID, goalID)
	}
	return nil
}

func (m *mockSavingsService) AddTxn(userID, householdID, goalID string, in services.SavingsTxnInput) (*models.SavingsTxn, error) {
	if m.addTxnFn != nil {
		return m.addTxnFn(userID, householdID, goalID, in)
	}
	return &models.SavingsTxn{}, nil
}

func (m *mockSavingsService) ListTxns(userID, householdID, goalID string) ([]models.SavingsTxn, error) {
	if m.listTxnsFn != nil {
		return m.listTxnsFn(userID, householdID, goalID)
	}
	return []models.SavingsTxn{}, nil
}

func (m *mockSavingsService) GoalSummary(userID, householdID, goalID string) (*services.GoalSummary, error) {
	if m.goalSummaryFn != nil {
		return m.goalSummaryFn(userID, householdID, goalID)
	}
	return &services.GoalSummary{GoalID: goalID}, nil
}

func setupSavingsRouter(handler *SavingsHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/households/:id", injectUserID(testUserID))
	g.GET("/savings-goals", handler.ListGoals)
	g.POST("/savings-goals", handler.CreateGoal)
	g.PATCH("/savings-goals/:goalId", handler.UpdateGoal)
	g.DELETE("/savings-goals/:goalId", handler.DeleteGoal)
	g.GET("/savings-goals/:goalId/txns", handler.ListTxns)
	g.POST("/savings-goals/:goalId/txns", handler.AddTxn)
	g.GET("/savings-goals/:goalId/summary", handler.GoalSummary)
	return r
}

func TestSavingsHandler_CreateGoal(t *testing.T) {
	t.Run("creates and audits", func(t *testing.T) {
		var got services.GoalInput
		svc := &mockSavingsService{
			createGoalFn: func(_, _ string, in services.GoalInput) (*models.SavingsGoal, error) {
				got = in
				return &models.SavingsGoal{Base: models.Base{ID: testGoalID}, Name: in.Name, Target: in.Target}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSavingsRouter(NewSavingsHandler(svc, audit))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals",
			`{"name":"Vacaciones","target":"1000","deadline":"2025-12-31T00:00:00Z"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name != "Vacaciones" || !got.Target.Equal(decimal.NewFromInt(1000)) || got.Deadline == nil {
			t.Errorf("unexpected input %+v", got)
		}
		goal, ok := parseJSON(t, rec)["goal"].(map[string]interface{})
		if !ok || goal["target"] != "1000" {
			t.Errorf("expected target \"1000\", got %v", goal)
		}
		if acts := audit.actions(); len(acts) != 1 || acts[0] != "CREATE_SAVINGS_GOAL" {
			t.Errorf("unexpected audit actions %v", acts)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals", `{"name":"Coche"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("members cannot create goals", func(t *testing.T) {
		svc := &mockSavingsService{
			createGoalFn: func(_, _ string, _ services.GoalInput) (*models.SavingsGoal, error) {
				return nil, apperrors.ErrAdminRequired
			},
		}
		audit := &mockAuditService{}
		r := setupSavingsRouter(NewSavingsHandler(svc, audit))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals", `{"name":"Coche","target":5000}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ADMIN_REQUIRED")
		if len(audit.actions()) != 0 {
			t.Error("failed create should not be audited")
		}
	})
}

func TestSavingsHandler_UpdateGoal(t *testing.T) {
	t.Run("null deadline clears it", func(t *testing.T) {
		var got services.GoalUpdate
		svc := &mockSavingsService{
			updateGoalFn: func(_, _, goalID string, in services.GoalUpdate) (*models.SavingsGoal, error) {
				got = in
				return &models.SavingsGoal{Base: models.Base{ID: goalID}}, nil
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID, `{"deadline":null}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Deadline.Set || got.Deadline.Value != nil {
			t.Errorf("expected an explicit clear, got %+v", got.Deadline)
		}
	})

	t.Run("omitted deadline is untouched", func(t *testing.T) {
		var got services.GoalUpdate
		svc := &mockSavingsService{
			updateGoalFn: func(_, _, goalID string, in services.GoalUpdate) (*models.SavingsGoal, error) {
				got = in
				return &models.SavingsGoal{Base: models.Base{ID: goalID}}, nil
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID, `{"name":"Coche nuevo"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.Deadline.Set || got.Name == nil || *got.Name != "Coche nuevo" {
			t.Errorf("unexpected update %+v", got)
		}
	})

	t.Run("bad goal id", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/households/"+testHouseholdID+"/savings-goals/not-a-uuid", `{"name":"x"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("unknown goal", func(t *testing.T) {
		svc := &mockSavingsService{
			updateGoalFn: func(_, _, _ string, _ services.GoalUpdate) (*models.SavingsGoal, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID, `{"name":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestSavingsHandler_AddTxn(t *testing.T) {
	t.Run("deposit", func(t *testing.T) {
		var got services.SavingsTxnInput
		var gotGoal string
		svc := &mockSavingsService{
			addTxnFn: func(_, _, goalID string, in services.SavingsTxnInput) (*models.SavingsTxn, error) {
				got, gotGoal = in, goalID
				return &models.SavingsTxn{Base: models.Base{ID: "txn-1"}, GoalID: goalID, Type: models.SavingsDeposit, Amount: in.Amount}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSavingsRouter(NewSavingsHandler(svc, audit))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/txns",
			`{"type":"deposit","amount":"30","occurs_at":"2024-05-10"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotGoal != testGoalID || got.Type != "deposit" || !got.Amount.Equal(decimal.NewFromInt(30)) {
			t.Errorf("unexpected input %+v for goal %s", got, gotGoal)
		}
		if got.OccursAt == nil || *got.OccursAt != "2024-05-10" {
			t.Errorf("expected occurs_at to pass through, got %v", got.OccursAt)
		}
		if _, ok := parseJSON(t, rec)["txn"]; !ok {
			t.Error("expected txn key in response")
		}
		if acts := audit.actions(); len(acts) != 1 || acts[0] != "CREATE_SAVINGS_TXN" {
			t.Errorf("unexpected audit actions %v", acts)
		}
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/txns", `{"type":"steal","amount":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("service amount errors map to 400", func(t *testing.T) {
		svc := &mockSavingsService{
			addTxnFn: func(_, _, _ string, _ services.SavingsTxnInput) (*models.SavingsTxn, error) {
				return nil, apperrors.ErrInvalidAmount
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/txns", `{"type":"deposit","amount":"0.004"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})

	t.Run("non members are forbidden", func(t *testing.T) {
		svc := &mockSavingsService{
			addTxnFn: func(_, _, _ string, _ services.SavingsTxnInput) (*models.SavingsTxn, error) {
				return nil, apperrors.ErrNotMember
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/txns", `{"type":"deposit","amount":5}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_MEMBER")
	})
}

func TestSavingsHandler_ReadEndpoints(t *testing.T) {
	svc := &mockSavingsService{
		listGoalsFn: func(_, _ string) ([]services.GoalWithProgress, error) {
			return []services.GoalWithProgress{{
				SavingsGoal: models.SavingsGoal{Base: models.Base{ID: testGoalID}, Name: "Vacaciones", Target: decimal.NewFromInt(200)},
				Saved:       decimal.NewFromInt(30),
				Progress:    15,
			}}, nil
		},
		listTxnsFn: func(_, _, _ string) ([]models.SavingsTxn, error) {
			return []models.SavingsTxn{{Base: models.Base{ID: "txn-1"}, OccursAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}}, nil
		},
		goalSummaryFn: func(_, _, goalID string) (*services.GoalSummary, error) {
			return &services.GoalSummary{
				GoalID:    goalID,
				Target:    decimal.NewFromInt(200),
				Saved:     decimal.NewFromInt(30),
				Progress:  15,
				Remaining: decimal.NewFromInt(170),
			}, nil
		},
	}
	r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

	t.Run("list goals", func(t *testing.T) {
		rec := doRequest(r, "GET", "/households/"+testHouseholdID+"/savings-goals", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		goals, ok := parseJSON(t, rec)["goals"].([]interface{})
		if !ok || len(goals) != 1 {
			t.Fatalf("expected one goal, got %v", goals)
		}
		goal := goals[0].(map[string]interface{})
		if goal["saved"] != "30" || goal["progress"] != float64(15) {
			t.Errorf("unexpected progress fields %v", goal)
		}
	})

	t.Run("list txns", func(t *testing.T) {
		rec := doRequest(r, "GET", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/txns", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if txns, ok := parseJSON(t, rec)["txns"].([]interface{}); !ok || len(txns) != 1 {
			t.Errorf("expected one txn, got %v", txns)
		}
	})

	t.Run("summary", func(t *testing.T) {
		rec := doRequest(r, "GET", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		if body["goal_id"] != testGoalID || body["remaining"] != "170" {
			t.Errorf("unexpected summary %v", body)
		}
	})

	t.Run("summary of an unknown goal", func(t *testing.T) {
		missing := &mockSavingsService{
			goalSummaryFn: func(_, _, _ string) (*services.GoalSummary, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(missing, &mockAuditService{}))

		rec := doRequest(r, "GET", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID+"/summary", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestSavingsHandler_DeleteGoal(t *testing.T) {
	var deleted string
	svc := &mockSavingsService{
		deleteGoalFn: func(_, _, goalID string) error {
			deleted = goalID
			return nil
		},
	}
	audit := &mockAuditService{}
	r := setupSavingsRouter(NewSavingsHandler(svc, audit))

	rec := doRequest(r, "DELETE", "/households/"+testHouseholdID+"/savings-goals/"+testGoalID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != testGoalID {
		t.Errorf("expected %s deleted, got %q", testGoalID, deleted)
	}
	if parseJSON(t, rec)["ok"] != true {
		t.Error("expected ok: true")
	}
	if acts := audit.actions(); len(acts) != 1 || acts[0] != "DELETE_SAVINGS_GOAL" {
		t.Errorf("unexpected audit actions %v", acts)
	}
}
