package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hogar/internal/services"
)

// RecurringHandler handles recurring definitions.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// CreateRecurringRequest represents the request payload for a recurring
// definition. day_of_month and rrule are mutually exclusive.
type CreateRecurringRequest struct {
	Concept    string           `json:"concept" binding:"required,max=120"`
	Type       string           `json:"type" binding:"required,entry_type"`
	Amount     *decimal.Decimal `json:"amount" binding:"required"`
	DayOfMonth *int             `json:"day_of_month"`
	RRule      *string          `json:"rrule" binding:"omitempty,max=255"`
	Notes      *string          `json:"notes" binding:"omitempty,max=500"`
	Category   *string          `json:"category" binding:"omitempty,max=64"`
}

// UpdateRecurringRequest represents the request payload for editing a definition.
type UpdateRecurringRequest struct {
	Concept    *string          `json:"concept" binding:"omitempty,max=120"`
	Type       *string          `json:"type" binding:"omitempty,entry_type"`
	Amount     *decimal.Decimal `json:"amount"`
	DayOfMonth NullableInt      `json:"day_of_month" swaggertype:"integer"`
	RRule      *string          `json:"rrule" binding:"omitempty,max=255"`
	Notes      *string          `json:"notes" binding:"omitempty,max=500"`
	Category   *string          `json:"category" binding:"omitempty,max=64"`
	Active     *bool            `json:"active"`
}

// PostRecurringRequest pins a posting to a date or a month.
type PostRecurringRequest struct {
	Month    *string `json:"month" binding:"omitempty,year_month"`
	OccursAt *string `json:"occurs_at"`
}

// CreateRecurring creates a recurring definition.
// @Summary     Create a recurring definition
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Household ID"
// @Param       request body CreateRecurringRequest true "Definition details"
// @Success     201 {object} models.RecurringDefinition "Definition created"
// @Failure     400 {object} ErrorResponse "Invalid input or schedule conflict"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Router      /households/{id}/recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	def, err := h.recurringService.CreateRecurring(userID, householdID, services.RecurringInput{
		Concept:    req.Concept,
		Type:       req.Type,
		Amount:     *req.Amount,
		DayOfMonth: req.DayOfMonth,
		RRule:      req.RRule,
		Notes:      req.Notes,
		Category:   req.Category,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "CREATE_RECURRING", "recurring_definition", def.ID, c.ClientIP(),
		map[string]any{"concept": def.Concept, "amount": def.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"recurring": def})
}

// ListRecurring lists active definitions. With a month, each carries its
// computed occurrence.
// @Summary     List recurring definitions
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Household ID"
// @Param       month query string false "Compute occurrences for YYYY-MM"
// @Success     200 {array} models.RecurringDefinition "Definitions"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /households/{id}/recurring [get]
func (h *RecurringHandler) ListRecurring(c *gin.Context) {
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

	defs, err := h.recurringService.ListRecurring(userID, householdID, q.ptr())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring": defs})
}

// UpdateRecurring edits a recurring definition.
// @Summary     Update a recurring definition
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string                 true "Household ID"
// @Param       recurringId path string                 true "Definition ID"
// @Param       request     body UpdateRecurringRequest true "Fields to change"
// @Success     200 {object} models.RecurringDefinition "Definition updated"
// @Failure     400 {object} ErrorResponse "Invalid input or schedule conflict"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Router      /households/{id}/recurring/{recurringId} [patch]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recurringID, err := pathUUID(c, "recurringId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	def, err := h.recurringService.UpdateRecurring(userID, householdID, recurringID, services.RecurringUpdate{
		Concept:    req.Concept,
		Type:       req.Type,
		Amount:     req.Amount,
		DayOfMonth: req.DayOfMonth.optional(),
		RRule:      req.RRule,
		Notes:      req.Notes,
		Category:   req.Category,
		Active:     req.Active,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "UPDATE_RECURRING", "recurring_definition", recurringID, c.ClientIP(),
		map[string]any{"concept": def.Concept, "active": def.Active})

	c.JSON(http.StatusOK, gin.H{"recurring": def})
}

// DeleteRecurring removes a recurring definition. Posted entries stay.
// @Summary     Delete a recurring definition
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string true "Household ID"
// @Param       recurringId path string true "Definition ID"
// @Success     200 {object} StatusResponse "Definition deleted"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Router      /households/{id}/recurring/{recurringId} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recurringID, err := pathUUID(c, "recurringId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurring(userID, householdID, recurringID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "DELETE_RECURRING", "recurring_definition", recurringID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, StatusResponse{OK: true})
}

// PostInstance posts one occurrence to the ledger. Posting the same day
// twice returns the existing entry.
// @Summary     Post a recurring instance
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string               true  "Household ID"
// @Param       recurringId path string               true  "Definition ID"
// @Param       request     body PostRecurringRequest false "Target month or date"
// @Success     200 {object} services.PostResult "Posting"
// @Failure     400 {object} ErrorResponse "Inactive definition or invalid month"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Router      /households/{id}/recurring/{recurringId}/post [post]
func (h *RecurringHandler) PostInstance(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recurringID, err := pathUUID(c, "recurringId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PostRecurringRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondWithError(c, err)
			return
		}
	}

	result, err := h.recurringService.PostInstance(userID, householdID, recurringID, services.PostInput{
		Month:    req.Month,
		OccursAt: req.OccursAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !result.Already {
		h.auditService.Log(userID, householdID, "POST_RECURRING", "recurring_definition", recurringID, c.ClientIP(),
			map[string]any{"entry_id": result.Entry.ID, "occurs_at": result.OccursAt})
	}

	c.JSON(http.StatusOK, result)
}
