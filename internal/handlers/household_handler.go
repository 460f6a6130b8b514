package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hogar/internal/services"
)

// HouseholdHandler handles household and membership requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
	auditService     services.AuditServicer
}

// NewHouseholdHandler creates a new HouseholdHandler.
func NewHouseholdHandler(householdService services.HouseholdServicer, auditService services.AuditServicer) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService, auditService: auditService}
}

// CreateHouseholdRequest represents the request payload for creating a household.
type CreateHouseholdRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Currency string `json:"currency" binding:"omitempty,iso4217"`
}

// UpdateHouseholdRequest represents the request payload for updating a household.
type UpdateHouseholdRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=64"`
	Currency *string `json:"currency" binding:"omitempty,iso4217"`
}

// CreateHousehold creates a household owned by the caller.
// @Summary     Create a household
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHouseholdRequest true "Household details"
// @Success     201 {object} models.Household "Household created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHouseholdRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	household, err := h.householdService.CreateHousehold(userID, req.Name, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, household.ID, "CREATE_HOUSEHOLD", "household", household.ID, c.ClientIP(),
		map[string]any{"name": household.Name, "currency": household.Currency})

	c.JSON(http.StatusCreated, gin.H{"household": household})
}

// MyHouseholds lists the caller's households.
// @Summary     List my households
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.HouseholdWithRole "Households with the caller's role"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /households [get]
func (h *HouseholdHandler) MyHouseholds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	households, err := h.householdService.MyHouseholds(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"households": households})
}

// UpdateHousehold renames a household or changes its currency.
// @Summary     Update a household
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Household ID"
// @Param       request body UpdateHouseholdRequest true "Fields to change"
// @Success     200 {object} models.Household "Household updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Router      /households/{id} [patch]
func (h *HouseholdHandler) UpdateHousehold(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHouseholdRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	household, err := h.householdService.UpdateHousehold(userID, householdID, req.Name, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "UPDATE_HOUSEHOLD", "household", householdID, c.ClientIP(),
		map[string]any{"name": household.Name, "currency": household.Currency})

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// DeleteHousehold deletes a household and everything in it.
// @Summary     Delete a household
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {object} StatusResponse "Household deleted"
// @Failure     403 {object} ErrorResponse "Owner required"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /households/{id} [delete]
func (h *HouseholdHandler) DeleteHousehold(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.householdService.DeleteHousehold(userID, householdID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "DELETE_HOUSEHOLD", "household", householdID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, StatusResponse{OK: true})
}

// ListMembers lists the members of a household.
// @Summary     List household members
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {array} models.HouseholdMember "Members"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/members [get]
func (h *HouseholdHandler) ListMembers(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	members, err := h.householdService.ListMembers(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}
