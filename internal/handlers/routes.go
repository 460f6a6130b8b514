package handlers

import "github.com/gin-gonic/gin"

// Handlers groups every request handler mounted under /api/v1.
type Handlers struct {
	Auth      *AuthHandler
	Household *HouseholdHandler
	Invite    *InviteHandler
	Entry     *EntryHandler
	Savings   *SavingsHandler
	Planned   *PlannedHandler
	Recurring *RecurringHandler
	Device    *DeviceHandler
	Realtime  *RealtimeHandler
}

// RegisterRoutes mounts the API on v1. Everything except /auth runs behind
// auth.
func RegisterRoutes(v1 *gin.RouterGroup, h Handlers, auth gin.HandlerFunc) {
	public := v1.Group("/auth")
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	protected := v1.Group("/")
	protected.Use(auth)

	protected.GET("/profile", h.Auth.GetProfile)

	households := protected.Group("/households")
	households.POST("", h.Household.CreateHousehold)
	households.GET("", h.Household.MyHouseholds)
	households.POST("/join", h.Invite.JoinByCode)
	households.POST("/join-by-code", h.Invite.JoinByCode)
	households.PATCH("/:id", h.Household.UpdateHousehold)
	households.DELETE("/:id", h.Household.DeleteHousehold)
	households.GET("/:id/members", h.Household.ListMembers)

	households.POST("/:id/invites", h.Invite.CreateInvite)
	households.GET("/:id/invites", h.Invite.ListInvites)
	households.POST("/:id/invites/:inviteId/revoke", h.Invite.RevokeInvite)
	households.GET("/:id/join-requests", h.Invite.ListJoinRequests)
	households.POST("/:id/join-requests/:reqId/decision", h.Invite.DecideJoinRequest)

	households.GET("/:id/entries", h.Entry.ListEntries)
	households.POST("/:id/entries", h.Entry.CreateEntry)
	households.PATCH("/:id/entries/:entryId", h.Entry.UpdateEntry)
	households.DELETE("/:id/entries/:entryId", h.Entry.DeleteEntry)
	households.GET("/:id/summary", h.Entry.MonthlySummary)

	households.GET("/:id/savings-goals", h.Savings.ListGoals)
	households.POST("/:id/savings-goals", h.Savings.CreateGoal)
	households.PATCH("/:id/savings-goals/:goalId", h.Savings.UpdateGoal)
	households.DELETE("/:id/savings-goals/:goalId", h.Savings.DeleteGoal)
	households.GET("/:id/savings-goals/:goalId/txns", h.Savings.ListTxns)
	households.POST("/:id/savings-goals/:goalId/txns", h.Savings.AddTxn)
	households.GET("/:id/savings-goals/:goalId/summary", h.Savings.GoalSummary)

	households.GET("/:id/planned", h.Planned.ListPlanned)
	households.POST("/:id/planned", h.Planned.CreatePlanned)
	households.PATCH("/:id/planned/:plannedId", h.Planned.UpdatePlanned)
	households.DELETE("/:id/planned/:plannedId", h.Planned.DeletePlanned)
	households.POST("/:id/planned/:plannedId/settle", h.Planned.SettlePlanned)

	households.GET("/:id/recurring", h.Recurring.ListRecurring)
	households.POST("/:id/recurring", h.Recurring.CreateRecurring)
	households.PATCH("/:id/recurring/:recurringId", h.Recurring.UpdateRecurring)
	households.DELETE("/:id/recurring/:recurringId", h.Recurring.DeleteRecurring)
	households.POST("/:id/recurring/:recurringId/post", h.Recurring.PostInstance)

	devices := protected.Group("/devices")
	devices.GET("/push-key", h.Device.GetVAPIDKey)
	devices.POST("/push-subscriptions", h.Device.RegisterPushSubscription)
	devices.DELETE("/push-subscriptions", h.Device.DeletePushSubscription)

	protected.GET("/realtime", h.Realtime.Connect)
}
