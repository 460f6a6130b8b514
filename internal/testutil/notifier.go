package testutil

import (
	"sync"

	"hogar/internal/models"
)

// NotifyCall is one recorded notification.
type NotifyCall struct {
	HouseholdID string
	RequesterID string
	Decision    models.JoinRequestStatus
}

// RecordingNotifier captures join-request notifications. When Err is set
// every call records and then fails with it.
type RecordingNotifier struct {
	mu          sync.Mutex
	NewRequests []NotifyCall
	Decisions   []NotifyCall
	Err         error
}

// NotifyNewJoinRequest records a new-request notification.
func (n *RecordingNotifier) NotifyNewJoinRequest(householdID, requesterID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.NewRequests = append(n.NewRequests, NotifyCall{HouseholdID: householdID, RequesterID: requesterID})
	return n.Err
}

// NotifyJoinRequestDecision records a decision notification.
func (n *RecordingNotifier) NotifyJoinRequestDecision(householdID, requesterID string, decision models.JoinRequestStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Decisions = append(n.Decisions, NotifyCall{HouseholdID: householdID, RequesterID: requesterID, Decision: decision})
	return n.Err
}
