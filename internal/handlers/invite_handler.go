package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hogar/internal/models"
	"hogar/internal/services"
)

// InviteHandler handles invite codes and join requests.
type InviteHandler struct {
	inviteService services.InviteServicer
	auditService  services.AuditServicer
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService services.InviteServicer, auditService services.AuditServicer) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, auditService: auditService}
}

// CreateInviteRequest represents the request payload for issuing an invite.
// Omitted fields take the defaults (48 hours, 10 uses, approval required).
type CreateInviteRequest struct {
	ExpiresInHours  *int  `json:"expires_in_hours" binding:"omitempty,min=1,max=720"`
	MaxUses         *int  `json:"max_uses" binding:"omitempty,min=1,max=999"`
	RequireApproval *bool `json:"require_approval"`
}

// JoinRequest represents the request payload for redeeming a code.
type JoinRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

// DecisionRequest represents an admin's verdict on a join request.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,join_decision"`
}

// JoinRequestQuery filters join requests by status.
type JoinRequestQuery struct {
	Status string `form:"status" binding:"omitempty,join_status"`
}

// CreateInvite issues a new invite code. The code is only returned here.
// @Summary     Create an invite
// @Tags        invites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Household ID"
// @Param       request body CreateInviteRequest false "Invite options"
// @Success     201 {object} services.CreatedInvite "Invite with plaintext code"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Router      /households/{id}/invites [post]
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInviteRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondWithError(c, err)
			return
		}
	}

	created, err := h.inviteService.CreateInvite(userID, householdID, services.InviteInput{
		ExpiresInHours:  req.ExpiresInHours,
		MaxUses:         req.MaxUses,
		RequireApproval: req.RequireApproval,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "CREATE_INVITE", "invite", created.Invite.ID, c.ClientIP(),
		map[string]any{"max_uses": created.Invite.MaxUses, "require_approval": created.Invite.RequireApproval})

	c.JSON(http.StatusCreated, created)
}

// ListInvites lists the invites of a household.
// @Summary     List invites
// @Tags        invites
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {array} models.Invite "Invites"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Router      /households/{id}/invites [get]
func (h *InviteHandler) ListInvites(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invites, err := h.inviteService.ListInvites(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

// RevokeInvite stops an invite from being redeemed.
// @Summary     Revoke an invite
// @Tags        invites
// @Produce     json
// @Security    BearerAuth
// @Param       id       path string true "Household ID"
// @Param       inviteId path string true "Invite ID"
// @Success     200 {object} models.Invite "Revoked invite"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Failure     404 {object} ErrorResponse "Invite not found"
// @Router      /households/{id}/invites/{inviteId}/revoke [post]
func (h *InviteHandler) RevokeInvite(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	inviteID, err := pathUUID(c, "inviteId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invite, err := h.inviteService.RevokeInvite(userID, householdID, inviteID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "REVOKE_INVITE", "invite", inviteID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"invite": invite})
}

// JoinByCode redeems an invite code.
// @Summary     Join a household by code
// @Tags        invites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body JoinRequest true "Invite code"
// @Success     200 {object} services.JoinResult "APPROVED or PENDING"
// @Failure     400 {object} ErrorResponse "Invalid, expired or exhausted code"
// @Router      /households/join [post]
func (h *InviteHandler) JoinByCode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req JoinRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.inviteService.JoinByCode(userID, req.Code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !result.AlreadyMember {
		h.auditService.Log(userID, result.HouseholdID, "JOIN_HOUSEHOLD", "household", result.HouseholdID, c.ClientIP(),
			map[string]any{"status": result.Status})
	}

	c.JSON(http.StatusOK, result)
}

// ListJoinRequests lists join requests in a status, PENDING by default.
// @Summary     List join requests
// @Tags        invites
// @Produce     json
// @Security    BearerAuth
// @Param       id     path  string true  "Household ID"
// @Param       status query string false "PENDING, APPROVED or REJECTED"
// @Success     200 {array} models.JoinRequest "Join requests"
// @Failure     403 {object} ErrorResponse "Admin required"
// @Router      /households/{id}/join-requests [get]
func (h *InviteHandler) ListJoinRequests(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q JoinRequestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	requests, err := h.inviteService.ListJoinRequests(userID, householdID, models.JoinRequestStatus(strings.ToUpper(q.Status)))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"join_requests": requests})
}

// DecideJoinRequest approves or rejects a pending join request.
// @Summary     Decide a join request
// @Tags        invites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Household ID"
// @Param       reqId   path string          true "Join request ID"
// @Param       request body DecisionRequest true "APPROVED or REJECTED"
// @Success     200 {object} models.JoinRequest "Decided request"
// @Failure     400 {object} ErrorResponse "Already decided"
// @Failure     404 {object} ErrorResponse "Join request not found"
// @Router      /households/{id}/join-requests/{reqId}/decision [post]
func (h *InviteHandler) DecideJoinRequest(c *gin.Context) {
	userID, householdID, err := callerAndHousehold(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	requestID, err := pathUUID(c, "reqId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DecisionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	decided, err := h.inviteService.DecideJoinRequest(userID, householdID, requestID, models.JoinRequestStatus(strings.ToUpper(req.Decision)))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, householdID, "DECIDE_JOIN_REQUEST", "join_request", requestID, c.ClientIP(),
		map[string]any{"decision": decided.Status, "user_id": decided.UserID})

	c.JSON(http.StatusOK, gin.H{"join_request": decided})
}
