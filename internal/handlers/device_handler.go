package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hogar/internal/services"
)

// DeviceHandler registers Web Push subscriptions.
type DeviceHandler struct {
	deviceService  services.DeviceServicer
	vapidPublicKey string
}

// NewDeviceHandler creates a new DeviceHandler. vapidPublicKey is handed to
// browsers so they can subscribe; empty means push is disabled.
func NewDeviceHandler(deviceService services.DeviceServicer, vapidPublicKey string) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService, vapidPublicKey: vapidPublicKey}
}

// PushKeys holds the subscription's encryption keys.
type PushKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// PushSubscriptionRequest mirrors the browser's PushSubscription JSON.
type PushSubscriptionRequest struct {
	Endpoint string   `json:"endpoint" binding:"required,url"`
	Keys     PushKeys `json:"keys" binding:"required"`
}

// DeletePushSubscriptionRequest identifies a subscription by endpoint.
type DeletePushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// VAPIDKeyResponse carries the application server key.
type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
	Enabled   bool   `json:"enabled"`
}

// GetVAPIDKey returns the public key browsers subscribe with.
// @Summary     Get the push public key
// @Tags        devices
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} VAPIDKeyResponse "VAPID public key"
// @Router      /devices/push-key [get]
func (h *DeviceHandler) GetVAPIDKey(c *gin.Context) {
	c.JSON(http.StatusOK, VAPIDKeyResponse{PublicKey: h.vapidPublicKey, Enabled: h.vapidPublicKey != ""})
}

// RegisterPushSubscription stores or refreshes a push subscription.
// @Summary     Register a push subscription
// @Tags        devices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PushSubscriptionRequest true "Browser push subscription"
// @Success     201 {object} models.PushSubscription "Subscription stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /devices/push-subscriptions [post]
func (h *DeviceHandler) RegisterPushSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PushSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	sub, err := h.deviceService.RegisterPushSubscription(userID, services.PushSubscriptionInput{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscription": sub})
}

// DeletePushSubscription forgets a push subscription.
// @Summary     Delete a push subscription
// @Tags        devices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DeletePushSubscriptionRequest true "Subscription endpoint"
// @Success     200 {object} StatusResponse "Subscription removed"
// @Router      /devices/push-subscriptions [delete]
func (h *DeviceHandler) DeletePushSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeletePushSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.deviceService.DeletePushSubscription(userID, req.Endpoint); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{OK: true})
}
