package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hogar/internal/errors"
	"hogar/internal/pagination"
	"hogar/internal/services"
)

// EntryHandler handles ledger entry requests.
type EntryHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *EntryHandler {
	return &EntryHandler{ledgerService: ledgerService, auditService: auditService}
}

// CreateEntryRequest represents the request payload for a ledger entry.
type CreateEntryRequest struct {
	Type     string           `json:"type" binding:"required,entry_type"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Category *string          `json:"category" binding:"omitempty,max=64"`
	Note     *string          `json:"note" binding:"omitempty,max=500"`
	OccursAt *string          `json:"occurs_at"`
}

// UpdateEntryRequest represents the request payload for editing an entry.
type UpdateEntryRequest struct {
	Type     *string          `json:"type" binding:"omitempty,entry_type"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category" binding:"omitempty,max=64"`
	Note     *string          `json:"note" binding:"omitempty,max=500"`
	OccursAt *string          `json:"occurs_at"`
}

// SummaryQuery selects the month to summarize.
type SummaryQuery struct {
	Month string `form:"month" binding:"required,year_month"`
}

// CreateEntry records an income or expense.
// @Summary     Create a ledger entry
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Household ID"
// @Param       request body CreateEntryRequest true "Entry details"
// @Success     201 {object} models.LedgerEntry "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/entries [post]
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntryRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.AddEntry(userID, householdID, services.EntryInput{
		Type:     req.Type,
		Amount:   *req.Amount,
		Category: req.Category,
		Note:     req.Note,
		OccursAt: req.OccursAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "CREATE_ENTRY", "ledger_entry", entry.ID, c.ClientIP(),
		map[string]any{"type": entry.Type, "amount": entry.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListEntries lists entries newest first, optionally within a date window.
// @Summary     List ledger entries
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Household ID"
// @Param       from  query string false "Lower bound (RFC3339 or YYYY-MM-DD), inclusive"
// @Param       to    query string false "Upper bound (RFC3339 or YYYY-MM-DD), inclusive"
// @Param       limit query int    false "Maximum rows (default 50, max 200)"
// @Success     200 {array} models.LedgerEntry "Entries"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/entries [get]
func (h *EntryHandler) ListEntries(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.LimitRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	filter := services.EntryFilter{Limit: page.Limit}
	if v := c.Query("from"); v != "" {
		t, err := services.ParseInstant(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := services.ParseInstant(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		filter.To = &t
	}

	entries, err := h.ledgerService.ListEntries(userID, householdID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// UpdateEntry edits an entry. Only its author or an admin may do so.
// @Summary     Update a ledger entry
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Household ID"
// @Param       entryId path string             true "Entry ID"
// @Param       request body UpdateEntryRequest true "Fields to change"
// @Success     200 {object} models.LedgerEntry "Entry updated"
// @Failure     403 {object} ErrorResponse "Not the author"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /households/{id}/entries/{entryId} [patch]
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	entryID, err := pathUUID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEntryRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.UpdateEntry(userID, householdID, entryID, services.EntryUpdate{
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
		Note:     req.Note,
		OccursAt: req.OccursAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "UPDATE_ENTRY", "ledger_entry", entryID, c.ClientIP(),
		map[string]any{"type": entry.Type, "amount": entry.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry removes an entry.
// @Summary     Delete a ledger entry
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string true "Household ID"
// @Param       entryId path string true "Entry ID"
// @Success     200 {object} StatusResponse "Entry deleted"
// @Failure     403 {object} ErrorResponse "Not the author"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /households/{id}/entries/{entryId} [delete]
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	entryID, err := pathUUID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteEntry(userID, householdID, entryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "DELETE_ENTRY", "ledger_entry", entryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, StatusResponse{OK: true})
}

// MonthlySummary reports a month's income, expense and running balance.
// @Summary     Monthly summary
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true "Household ID"
// @Param       month query string true "Month as YYYY-MM"
// @Success     200 {object} services.MonthlySummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/summary [get]
func (h *EntryHandler) MonthlySummary(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.ErrInvalidMonth)
		return
	}

	summary, err := h.ledgerService.MonthlySummary(userID, householdID, q.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
