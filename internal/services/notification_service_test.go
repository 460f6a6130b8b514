package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hogar/internal/models"
	"hogar/internal/push"
	"hogar/internal/realtime"
	"hogar/internal/testutil"
)

type sentEvent struct {
	UserID string
	Event  realtime.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakePublisher) SendToUser(userID string, ev realtime.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{UserID: userID, Event: ev})
	return 1, nil
}

type fakePush struct {
	mu      sync.Mutex
	sent    []string
	expired map[string]bool
	fail    error
}

func (f *fakePush) Enabled() bool { return true }

func (f *fakePush) Send(_ context.Context, sub push.Subscription, _ push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.Endpoint)
	if f.expired[sub.Endpoint] {
		return push.ErrExpired
	}
	return f.fail
}

func createSubscription(t *testing.T, svc DeviceServicer, userID, endpoint string) {
	t.Helper()
	_, err := svc.RegisterPushSubscription(userID, PushSubscriptionInput{Endpoint: endpoint, P256dh: "key", Auth: "auth"})
	testutil.AssertNoError(t, err)
}

func TestNotifyNewJoinRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	devices := NewDeviceService(db)
	owner := testutil.CreateTestUser(t, db)
	admin := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	requester := testutil.CreateTestUser(t, db)
	h := testutil.CreateTestHousehold(t, db, owner.ID)
	testutil.AddTestMember(t, db, h.ID, admin.ID, models.RoleAdmin)
	testutil.AddTestMember(t, db, h.ID, member.ID, models.RoleMember)

	createSubscription(t, devices, owner.ID, "https://push.example/owner")
	createSubscription(t, devices, admin.ID, "https://push.example/admin-gone")
	createSubscription(t, devices, member.ID, "https://push.example/member")

	events := &fakePublisher{}
	sender := &fakePush{expired: map[string]bool{"https://push.example/admin-gone": true}}
	svc := NewNotificationService(db, events, sender)

	testutil.AssertNoError(t, svc.NotifyNewJoinRequest(h.ID, requester.ID))

	if len(events.events) != 2 {
		t.Fatalf("expected events for 2 admins, got %d", len(events.events))
	}
	for _, ev := range events.events {
		if ev.UserID == member.ID {
			t.Error("plain members must not be notified")
		}
		if ev.Event.Type != realtime.EventJoinRequestNew || ev.Event.Payload["requester_email"] != requester.Email {
			t.Errorf("unexpected event %+v", ev.Event)
		}
	}
	if len(sender.sent) != 2 {
		t.Errorf("expected 2 pushes, got %v", sender.sent)
	}

	var count int64
	db.Model(&models.PushSubscription{}).Where("endpoint = ?", "https://push.example/admin-gone").Count(&count)
	if count != 0 {
		t.Error("expired subscription should be deleted")
	}
}

func TestNotifyJoinRequestDecision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	requester := testutil.CreateTestUser(t, db)
	createSubscription(t, NewDeviceService(db), requester.ID, "https://push.example/requester")

	events := &fakePublisher{}
	sender := &fakePush{fail: errors.New("push service unavailable")}
	svc := NewNotificationService(db, events, sender)

	err := svc.NotifyJoinRequestDecision("household-1", requester.ID, models.JoinRequestApproved)
	if err == nil {
		t.Fatal("expected push failure to be reported")
	}
	if len(events.events) != 1 || events.events[0].Event.Payload["status"] != "APPROVED" {
		t.Errorf("realtime event should still be sent, got %+v", events.events)
	}
}

func TestRegisterPushSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewDeviceService(db)
	first := testutil.CreateTestUser(t, db)
	second := testutil.CreateTestUser(t, db)

	a, err := svc.RegisterPushSubscription(first.ID, PushSubscriptionInput{Endpoint: "https://push.example/x", P256dh: "k1", Auth: "a1"})
	testutil.AssertNoError(t, err)

	b, err := svc.RegisterPushSubscription(second.ID, PushSubscriptionInput{Endpoint: "https://push.example/x", P256dh: "k2", Auth: "a2"})
	testutil.AssertNoError(t, err)
	if b.ID != a.ID || b.UserID != second.ID || b.P256dh != "k2" {
		t.Errorf("expected upsert onto the same row, got %+v", b)
	}

	_, err = svc.RegisterPushSubscription(first.ID, PushSubscriptionInput{Endpoint: " "})
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	testutil.AssertNoError(t, svc.DeletePushSubscription(second.ID, "https://push.example/x"))
	var count int64
	db.Model(&models.PushSubscription{}).Count(&count)
	if count != 0 {
		t.Errorf("expected subscription deleted, got %d", count)
	}
}
