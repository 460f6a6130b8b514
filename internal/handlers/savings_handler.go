package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hogar/internal/services"
)

// SavingsHandler handles savings goals and their transactions.
type SavingsHandler struct {
	savingsService services.SavingsServicer
	auditService   services.AuditServicer
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(savingsService services.SavingsServicer, auditService services.AuditServicer) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for a savings goal.
type CreateGoalRequest struct {
	Name     string           `json:"name" binding:"required,max=64"`
	Target   *decimal.Decimal `json:"target" binding:"required"`
	Deadline *time.Time       `json:"deadline"`
}

// UpdateGoalRequest represents the request payload for editing a goal. A
// null deadline clears it.
type UpdateGoalRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=64"`
	Target   *decimal.Decimal `json:"target"`
	Deadline NullableTime     `json:"deadline" swaggertype:"string" format:"date-time"`
}

// CreateSavingsTxnRequest represents a deposit or withdrawal.
type CreateSavingsTxnRequest struct {
	Type     string           `json:"type" binding:"required,savings_txn_type"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Note     *string          `json:"note" binding:"omitempty,max=500"`
	OccursAt *string          `json:"occurs_at"`
}

// CreateGoal creates a savings goal.
// @Summary     Create a savings goal
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Household ID"
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.SavingsGoal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Router      /households/{id}/savings-goals [post]
func (h *SavingsHandler) CreateGoal(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.savingsService.CreateGoal(userID, householdID, services.GoalInput{
		Name:     req.Name,
		Target:   *req.Target,
		Deadline: req.Deadline,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "CREATE_SAVINGS_GOAL", "savings_goal", goal.ID, c.ClientIP(),
		map[string]any{"name": goal.Name, "target": goal.Target.String()})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// ListGoals lists goals with their saved balance and progress.
// @Summary     List savings goals
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {array} services.GoalWithProgress "Goals"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/savings-goals [get]
func (h *SavingsHandler) ListGoals(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.savingsService.ListGoals(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// UpdateGoal edits a savings goal.
// @Summary     Update a savings goal
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Household ID"
// @Param       goalId  path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to change"
// @Success     200 {object} models.SavingsGoal "Goal updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /households/{id}/savings-goals/{goalId} [patch]
func (h *SavingsHandler) UpdateGoal(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathUUID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.savingsService.UpdateGoal(userID, householdID, goalID, services.GoalUpdate{
		Name:     req.Name,
		Target:   req.Target,
		Deadline: req.Deadline.optional(),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "UPDATE_SAVINGS_GOAL", "savings_goal", goalID, c.ClientIP(),
		map[string]any{"name": goal.Name, "target": goal.Target.String()})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal deletes a goal, its transactions and its mirrored entries.
// @Summary     Delete a savings goal
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Household ID"
// @Param       goalId path string true "Goal ID"
// @Success     200 {object} StatusResponse "Goal deleted"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /households/{id}/savings-goals/{goalId} [delete]
func (h *SavingsHandler) DeleteGoal(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathUUID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.savingsService.DeleteGoal(userID, householdID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "DELETE_SAVINGS_GOAL", "savings_goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, StatusResponse{OK: true})
}

// AddTxn deposits into or withdraws from a goal. Deposits are mirrored as
// ledger expenses.
// @Summary     Add a savings transaction
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Household ID"
// @Param       goalId  path string                  true "Goal ID"
// @Param       request body CreateSavingsTxnRequest true "DEPOSIT or WITHDRAW"
// @Success     201 {object} models.SavingsTxn "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /households/{id}/savings-goals/{goalId}/txns [post]
func (h *SavingsHandler) AddTxn(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathUUID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingsTxnRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.savingsService.AddTxn(userID, householdID, goalID, services.SavingsTxnInput{
		Type:     req.Type,
		Amount:   *req.Amount,
		Note:     req.Note,
		OccursAt: req.OccursAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "CREATE_SAVINGS_TXN", "savings_txn", txn.ID, c.ClientIP(),
		map[string]any{"goal_id": goalID, "type": txn.Type, "amount": txn.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"txn": txn})
}

// ListTxns lists a goal's transactions newest first.
// @Summary     List savings transactions
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Household ID"
// @Param       goalId path string true "Goal ID"
// @Success     200 {array} models.SavingsTxn "Transactions"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /households/{id}/savings-goals/{goalId}/txns [get]
func (h *SavingsHandler) ListTxns(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathUUID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txns, err := h.savingsService.ListTxns(userID, householdID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"txns": txns})
}

// GoalSummary reports saved, remaining and progress for a goal.
// @Summary     Savings goal summary
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Household ID"
// @Param       goalId path string true "Goal ID"
// @Success     200 {object} services.GoalSummary "Summary"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /households/{id}/savings-goals/{goalId}/summary [get]
func (h *SavingsHandler) GoalSummary(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathUUID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.savingsService.GoalSummary(userID, householdID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
