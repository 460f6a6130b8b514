package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hogar/internal/services"
)

// PlannedHandler handles planned entries.
type PlannedHandler struct {
	plannedService services.PlannedServicer
	auditService   services.AuditServicer
}

// NewPlannedHandler creates a new PlannedHandler.
func NewPlannedHandler(plannedService services.PlannedServicer, auditService services.AuditServicer) *PlannedHandler {
	return &PlannedHandler{plannedService: plannedService, auditService: auditService}
}

// CreatePlannedRequest represents the request payload for a planned entry.
type CreatePlannedRequest struct {
	Concept  string           `json:"concept" binding:"required,max=120"`
	Type     string           `json:"type" binding:"required,entry_type"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	DueDate  string           `json:"due_date" binding:"required"`
	Month    *string          `json:"month"`
	Notes    *string          `json:"notes" binding:"omitempty,max=500"`
	Category *string          `json:"category" binding:"omitempty,max=64"`
}

// UpdatePlannedRequest represents the request payload for editing a planned entry.
type UpdatePlannedRequest struct {
	Concept  *string          `json:"concept" binding:"omitempty,max=120"`
	Type     *string          `json:"type" binding:"omitempty,entry_type"`
	Amount   *decimal.Decimal `json:"amount"`
	DueDate  *string          `json:"due_date"`
	Month    *string          `json:"month"`
	Notes    *string          `json:"notes" binding:"omitempty,max=500"`
	Category *string          `json:"category" binding:"omitempty,max=64"`
}

// MonthQuery is an optional YYYY-MM filter.
type MonthQuery struct {
	Month string `form:"month" binding:"omitempty,year_month"`
}

func (q MonthQuery) ptr() *string {
	if q.Month == "" {
		return nil
	}
	return &q.Month
}

// CreatePlanned creates a planned entry.
// @Summary     Create a planned entry
// @Tags        planned
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Household ID"
// @Param       request body CreatePlannedRequest true "Planned entry details"
// @Success     201 {object} models.PlannedEntry "Planned entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/planned [post]
func (h *PlannedHandler) CreatePlanned(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlannedRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	planned, err := h.plannedService.CreatePlanned(userID, householdID, services.PlannedInput{
		Concept:  req.Concept,
		Type:     req.Type,
		Amount:   *req.Amount,
		DueDate:  req.DueDate,
		Month:    req.Month,
		Notes:    req.Notes,
		Category: req.Category,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "CREATE_PLANNED", "planned_entry", planned.ID, c.ClientIP(),
		map[string]any{"concept": planned.Concept, "amount": planned.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"planned": planned})
}

// ListPlanned lists unsettled planned entries by due date.
// @Summary     List planned entries
// @Tags        planned
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Household ID"
// @Param       month query string false "Restrict to a YYYY-MM due month"
// @Success     200 {array} models.PlannedEntry "Planned entries"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /households/{id}/planned [get]
func (h *PlannedHandler) ListPlanned(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	planned, err := h.plannedService.ListPlanned(userID, householdID, q.ptr())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"planned": planned})
}

// UpdatePlanned edits a planned entry.
// @Summary     Update a planned entry
// @Tags        planned
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string               true "Household ID"
// @Param       plannedId path string               true "Planned entry ID"
// @Param       request   body UpdatePlannedRequest true "Fields to change"
// @Success     200 {object} models.PlannedEntry "Planned entry updated"
// @Failure     403 {object} ErrorResponse "Not the author"
// @Failure     404 {object} ErrorResponse "Planned entry not found"
// @Router      /households/{id}/planned/{plannedId} [patch]
func (h *PlannedHandler) UpdatePlanned(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	plannedID, err := pathUUID(c, "plannedId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlannedRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	planned, err := h.plannedService.UpdatePlanned(userID, householdID, plannedID, services.PlannedUpdate{
		Concept:  req.Concept,
		Type:     req.Type,
		Amount:   req.Amount,
		DueDate:  req.DueDate,
		Month:    req.Month,
		Notes:    req.Notes,
		Category: req.Category,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "UPDATE_PLANNED", "planned_entry", plannedID, c.ClientIP(),
		map[string]any{"concept": planned.Concept, "amount": planned.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"planned": planned})
}

// DeletePlanned removes a planned entry.
// @Summary     Delete a planned entry
// @Tags        planned
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string true "Household ID"
// @Param       plannedId path string true "Planned entry ID"
// @Success     200 {object} StatusResponse "Planned entry deleted"
// @Failure     404 {object} ErrorResponse "Planned entry not found"
// @Router      /households/{id}/planned/{plannedId} [delete]
func (h *PlannedHandler) DeletePlanned(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	plannedID, err := pathUUID(c, "plannedId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.plannedService.DeletePlanned(userID, householdID, plannedID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "DELETE_PLANNED", "planned_entry", plannedID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, StatusResponse{OK: true})
}

// SettlePlanned posts the planned entry to the ledger. Settling twice is a no-op.
// @Summary     Settle a planned entry
// @Tags        planned
// @Produce     json
// @Security    BearerAuth
// @Param       id        path string true "Household ID"
// @Param       plannedId path string true "Planned entry ID"
// @Success     200 {object} services.SettleResult "Settlement"
// @Failure     404 {object} ErrorResponse "Planned entry not found"
// @Router      /households/{id}/planned/{plannedId}/settle [post]
func (h *PlannedHandler) SettlePlanned(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	plannedID, err := pathUUID(c, "plannedId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.plannedService.SettlePlanned(userID, householdID, plannedID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !result.AlreadySettled {
		h.auditService.Log(userID, householdID, "SETTLE_PLANNED", "planned_entry", plannedID, c.ClientIP(),
			map[string]any{"entry_id": result.Entry.ID})
	}

	c.JSON(http.StatusOK, result)
}
