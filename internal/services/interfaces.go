package services

import (
	"time"

	"github.com/shopspring/decimal"

	"hogar/internal/models"
)

// Notifier delivers join-request events to household members. Services call
// it after their transaction commits and only log its errors.
type Notifier interface {
	NotifyNewJoinRequest(householdID, requesterID string) error
	NotifyJoinRequestDecision(householdID, requesterID string, decision models.JoinRequestStatus) error
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
}

// MembershipServicer is the single authorization layer. Every household
// operation calls one of its assertions first.
type MembershipServicer interface {
	GetMembership(userID, householdID string) (*models.HouseholdMember, error)
	AssertMember(userID, householdID string) (*models.HouseholdMember, error)
	AssertAdmin(userID, householdID string) (*models.HouseholdMember, error)
}

// HouseholdWithRole is a household as seen by one of its members.
type HouseholdWithRole struct {
	models.Household
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// HouseholdServicer defines the contract for household management.
type HouseholdServicer interface {
	CreateHousehold(userID, name, currency string) (*models.Household, error)
	MyHouseholds(userID string) ([]HouseholdWithRole, error)
	UpdateHousehold(userID, householdID string, name, currency *string) (*models.Household, error)
	DeleteHousehold(userID, householdID string) error
	ListMembers(userID, householdID string) ([]models.HouseholdMember, error)
}

// InviteInput holds invite options. Zero values take the defaults.
type InviteInput struct {
	ExpiresInHours  *int
	MaxUses         *int
	RequireApproval *bool
}

// CreatedInvite carries the plaintext code, which is never stored.
type CreatedInvite struct {
	Invite *models.Invite `json:"invite"`
	Code   string         `json:"code"`
}

// JoinResult is the outcome of redeeming a code.
type JoinResult struct {
	Status        models.JoinRequestStatus `json:"status"`
	HouseholdID   string                   `json:"household_id"`
	JoinRequestID string                   `json:"join_request_id,omitempty"`
	AlreadyMember bool                     `json:"already_member,omitempty"`
}

// InviteServicer defines the invite and join-request workflow.
type InviteServicer interface {
	CreateInvite(userID, householdID string, in InviteInput) (*CreatedInvite, error)
	ListInvites(userID, householdID string) ([]models.Invite, error)
	RevokeInvite(userID, householdID, inviteID string) (*models.Invite, error)
	JoinByCode(userID, code string) (*JoinResult, error)
	ListJoinRequests(userID, householdID string, status models.JoinRequestStatus) ([]models.JoinRequest, error)
	DecideJoinRequest(userID, householdID, requestID string, decision models.JoinRequestStatus) (*models.JoinRequest, error)
}

// EntryInput is the payload for a new ledger entry. Type is case-folded;
// OccursAt defaults to now.
type EntryInput struct {
	Type     string
	Amount   decimal.Decimal
	Category *string
	Note     *string
	OccursAt *string
}

// EntryUpdate holds the fields to change. Nil fields are left untouched;
// an empty Category or Note clears it.
type EntryUpdate struct {
	Type     *string
	Amount   *decimal.Decimal
	Category *string
	Note     *string
	OccursAt *string
}

// EntryFilter narrows ListEntries to an inclusive occurs_at window.
type EntryFilter struct {
	From  *time.Time
	To    *time.Time
	Limit *int
}

// MonthlySummary reports a month's totals and running balance.
type MonthlySummary struct {
	Month          string          `json:"month"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	Net            decimal.Decimal `json:"net"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// LedgerServicer defines the ledger entry store.
type LedgerServicer interface {
	AddEntry(userID, householdID string, in EntryInput) (*models.LedgerEntry, error)
	ListEntries(userID, householdID string, filter EntryFilter) ([]models.LedgerEntry, error)
	UpdateEntry(userID, householdID, entryID string, in EntryUpdate) (*models.LedgerEntry, error)
	DeleteEntry(userID, householdID, entryID string) error
	MonthlySummary(userID, householdID, month string) (*MonthlySummary, error)
}

// OptionalTime distinguishes "leave as is" (Set false) from "clear"
// (Set true, Value nil).
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// OptionalInt is the integer counterpart of OptionalTime.
type OptionalInt struct {
	Set   bool
	Value *int
}

// GoalInput is the payload for a new savings goal.
type GoalInput struct {
	Name     string
	Target   decimal.Decimal
	Deadline *time.Time
}

// GoalUpdate holds the savings goal fields to change.
type GoalUpdate struct {
	Name     *string
	Target   *decimal.Decimal
	Deadline OptionalTime
}

// GoalWithProgress is a goal with its aggregated balance.
type GoalWithProgress struct {
	models.SavingsGoal
	Saved    decimal.Decimal `json:"saved"`
	Progress float64         `json:"progress"`
}

// GoalSummary is the detailed progress of one goal.
type GoalSummary struct {
	GoalID    string          `json:"goal_id"`
	Target    decimal.Decimal `json:"target"`
	Saved     decimal.Decimal `json:"saved"`
	Progress  float64         `json:"progress"`
	Remaining decimal.Decimal `json:"remaining"`
}

// SavingsTxnInput is the payload for a deposit or withdrawal.
type SavingsTxnInput struct {
	Type     string
	Amount   decimal.Decimal
	Note     *string
	OccursAt *string
}

// SavingsServicer defines savings goals and their transactions.
type SavingsServicer interface {
	CreateGoal(userID, householdID string, in GoalInput) (*models.SavingsGoal, error)
	ListGoals(userID, householdID string) ([]GoalWithProgress, error)
	UpdateGoal(userID, householdID, goalID string, in GoalUpdate) (*models.SavingsGoal, error)
	DeleteGoal(userID, householdID, goalID string) error
	AddTxn(userID, householdID, goalID string, in SavingsTxnInput) (*models.SavingsTxn, error)
	ListTxns(userID, householdID, goalID string) ([]models.SavingsTxn, error)
	GoalSummary(userID, householdID, goalID string) (*GoalSummary, error)
}

// PlannedInput is the payload for a new planned entry.
type PlannedInput struct {
	Concept  string
	Type     string
	Amount   decimal.Decimal
	DueDate  string
	Month    *string
	Notes    *string
	Category *string
}

// PlannedUpdate holds the planned entry fields to change. An empty Month,
// Notes or Category clears it.
type PlannedUpdate struct {
	Concept  *string
	Type     *string
	Amount   *decimal.Decimal
	DueDate  *string
	Month    *string
	Notes    *string
	Category *string
}

// SettleResult reports a settlement. AlreadySettled marks the no-op path.
type SettleResult struct {
	Planned        *models.PlannedEntry `json:"planned"`
	Entry          *models.LedgerEntry  `json:"entry,omitempty"`
	AlreadySettled bool                 `json:"already_settled"`
}

// PlannedServicer defines planned (forecast) entries.
type PlannedServicer interface {
	CreatePlanned(userID, householdID string, in PlannedInput) (*models.PlannedEntry, error)
	ListPlanned(userID, householdID string, month *string) ([]models.PlannedEntry, error)
	UpdatePlanned(userID, householdID, plannedID string, in PlannedUpdate) (*models.PlannedEntry, error)
	DeletePlanned(userID, householdID, plannedID string) error
	SettlePlanned(userID, householdID, plannedID string) (*SettleResult, error)
}

// RecurringInput is the payload for a new recurring definition. DayOfMonth
// and RRule are mutually exclusive.
type RecurringInput struct {
	Concept    string
	Type       string
	Amount     decimal.Decimal
	DayOfMonth *int
	RRule      *string
	Notes      *string
	Category   *string
}

// RecurringUpdate holds the definition fields to change. Setting DayOfMonth
// clears RRule and the other way round. An explicit null DayOfMonth clears
// both, leaving the definition on day 1.
type RecurringUpdate struct {
	Concept    *string
	Type       *string
	Amount     *decimal.Decimal
	DayOfMonth OptionalInt
	RRule      *string
	Notes      *string
	Category   *string
	Active     *bool
}

// PostInput pins a posting to a date or a month. Both empty means the
// current month.
type PostInput struct {
	Month    *string
	OccursAt *string
}

// PostResult reports a posting. Already marks the no-op path.
type PostResult struct {
	Entry    *models.LedgerEntry `json:"entry"`
	OccursAt time.Time           `json:"occurs_at"`
	Already  bool                `json:"already"`
}

// RecurringServicer defines recurring definitions and their posting.
type RecurringServicer interface {
	CreateRecurring(userID, householdID string, in RecurringInput) (*models.RecurringDefinition, error)
	ListRecurring(userID, householdID string, month *string) ([]models.RecurringDefinition, error)
	UpdateRecurring(userID, householdID, recurringID string, in RecurringUpdate) (*models.RecurringDefinition, error)
	DeleteRecurring(userID, householdID, recurringID string) error
	PostInstance(userID, householdID, recurringID string, in PostInput) (*PostResult, error)
}

// PushSubscriptionInput is a browser subscription to register.
type PushSubscriptionInput struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// DeviceServicer manages push subscriptions.
type DeviceServicer interface {
	RegisterPushSubscription(userID string, in PushSubscriptionInput) (*models.PushSubscription, error)
	DeletePushSubscription(userID, endpoint string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, householdID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
