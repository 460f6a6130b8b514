package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionServer upgrades an authenticated request into a realtime
// connection for the given user.
type ConnectionServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

// RealtimeHandler exposes the per-user event stream.
type RealtimeHandler struct {
	hub ConnectionServer
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(hub ConnectionServer) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect opens a websocket that receives join_request_new and
// join_request_decision events for the caller.
// @Summary     Realtime events
// @Tags        realtime
// @Security    BearerAuth
// @Param       access_token query string false "JWT for clients that cannot set headers"
// @Success     101 "Switching protocols"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /realtime [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.hub.Serve(c.Writer, c.Request, userID)
}
