package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hogar/internal/models"
	"hogar/internal/push"
	"hogar/internal/realtime"
)

const pushTimeout = 10 * time.Second

// EventPublisher pushes realtime events to a user's open connections.
type EventPublisher interface {
	SendToUser(userID string, ev realtime.Event) (int, error)
}

// PushSender delivers Web Push messages.
type PushSender interface {
	Enabled() bool
	Send(ctx context.Context, sub push.Subscription, payload push.Payload) error
}

// notificationService fans join-request events out over websockets and
// Web Push.
type notificationService struct {
	db     *gorm.DB
	events EventPublisher
	push   PushSender
	now    func() time.Time
}

// NewNotificationService creates the Notifier used by the invite workflow.
func NewNotificationService(db *gorm.DB, events EventPublisher, sender PushSender) Notifier {
	return &notificationService{
		db:     db,
		events: events,
		push:   sender,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NotifyNewJoinRequest alerts every OWNER and ADMIN of the household.
func (s *notificationService) NotifyNewJoinRequest(householdID, requesterID string) error {
	var adminIDs []string
	if err := s.db.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND role IN ?", householdID, []models.Role{models.RoleOwner, models.RoleAdmin}).
		Pluck("user_id", &adminIDs).Error; err != nil {
		return err
	}
	if len(adminIDs) == 0 {
		return nil
	}

	var requesterEmail string
	var requester models.User
	if err := s.db.Select("email").Where("id = ?", requesterID).First(&requester).Error; err == nil {
		requesterEmail = requester.Email
	}

	payload := map[string]any{
		"household_id":    householdID,
		"requester_id":    requesterID,
		"requester_email": requesterEmail,
		"at":              s.now().Format(time.RFC3339),
	}
	who := requesterEmail
	if who == "" {
		who = "Someone"
	}

	var errs []error
	for _, id := range adminIDs {
		if _, err := s.events.SendToUser(id, realtime.Event{Type: realtime.EventJoinRequestNew, Payload: payload}); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.pushTo(adminIDs, push.Payload{
		Title: "Join request",
		Body:  who + " wants to join your household",
		Tag:   realtime.EventJoinRequestNew,
		Data:  payload,
	}))
	return errors.Join(errs...)
}

// NotifyJoinRequestDecision tells the requester how their request ended.
func (s *notificationService) NotifyJoinRequestDecision(householdID, requesterID string, decision models.JoinRequestStatus) error {
	payload := map[string]any{
		"household_id": householdID,
		"status":       string(decision),
		"at":           s.now().Format(time.RFC3339),
	}

	title, body := "Request rejected", "An administrator rejected your request"
	if decision == models.JoinRequestApproved {
		title, body = "Request approved", "You are now a member of the household"
	}

	var errs []error
	if _, err := s.events.SendToUser(requesterID, realtime.Event{Type: realtime.EventJoinRequestDecision, Payload: payload}); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, s.pushTo([]string{requesterID}, push.Payload{
		Title: title,
		Body:  body,
		Tag:   realtime.EventJoinRequestDecision,
		Data:  payload,
	}))
	return errors.Join(errs...)
}

// pushTo sends payload to every subscription of userIDs. Subscriptions the
// push service reports as gone are deleted.
func (s *notificationService) pushTo(userIDs []string, payload push.Payload) error {
	if s.push == nil || !s.push.Enabled() {
		return nil
	}

	var subs []models.PushSubscription
	if err := s.db.Where("user_id IN ?", userIDs).Find(&subs).Error; err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	var errs []error
	for _, sub := range subs {
		err := s.push.Send(ctx, push.Subscription{Endpoint: sub.Endpoint, P256dh: sub.P256dh, Auth: sub.Auth}, payload)
		switch {
		case errors.Is(err, push.ErrExpired):
			if err := s.db.Delete(&models.PushSubscription{}, "id = ?", sub.ID).Error; err != nil {
				errs = append(errs, err)
			}
		case err != nil:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
