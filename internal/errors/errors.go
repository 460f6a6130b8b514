// Package errors provides custom error types for the hogar API.
// All service-layer errors should use AppError so handlers can render a
// consistent envelope and callers can tell "fix your input" apart from
// "you may not do this" without parsing messages.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Kind groups error codes into the categories callers branch on.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

// KindOf classifies err. Anything that is not an AppError is internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return KindInternal
	}
	switch appErr.StatusCode {
	case http.StatusBadRequest, http.StatusConflict:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	}
	return KindInternal
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrNotMember          = &AppError{Code: "NOT_MEMBER", Message: "You are not a member of this household", StatusCode: http.StatusForbidden}
	ErrAdminRequired      = &AppError{Code: "ADMIN_REQUIRED", Message: "This action requires the OWNER or ADMIN role", StatusCode: http.StatusForbidden}
	ErrOwnerRequired      = &AppError{Code: "OWNER_REQUIRED", Message: "Only the owner can perform this action", StatusCode: http.StatusForbidden}
	ErrNotResourceOwner   = &AppError{Code: "NOT_RESOURCE_OWNER", Message: "Only the author or an admin can modify this record", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Too many failed attempts, try again later", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Household errors.
var (
	ErrHouseholdNotFound = &AppError{Code: "HOUSEHOLD_NOT_FOUND", Message: "Household not found", StatusCode: http.StatusNotFound}
	ErrNothingToUpdate   = &AppError{Code: "NOTHING_TO_UPDATE", Message: "Nothing to update", StatusCode: http.StatusBadRequest}
)

// Invite and join request errors.
var (
	ErrInviteNotFound      = &AppError{Code: "INVITE_NOT_FOUND", Message: "Invite not found", StatusCode: http.StatusNotFound}
	ErrInviteInvalid       = &AppError{Code: "INVITE_INVALID", Message: "Invalid or expired code", StatusCode: http.StatusBadRequest}
	ErrInviteLimitReached  = &AppError{Code: "INVITE_LIMIT_REACHED", Message: "This code has reached its usage limit", StatusCode: http.StatusBadRequest}
	ErrJoinRequestNotFound = &AppError{Code: "JOIN_REQUEST_NOT_FOUND", Message: "Join request not found", StatusCode: http.StatusNotFound}
	ErrJoinRequestDecided  = &AppError{Code: "JOIN_REQUEST_DECIDED", Message: "This join request has already been decided", StatusCode: http.StatusBadRequest}
	ErrInvalidJoinDecision = &AppError{Code: "INVALID_JOIN_DECISION", Message: "Decision must be APPROVED or REJECTED", StatusCode: http.StatusBadRequest}
)

// Ledger errors.
var (
	ErrEntryNotFound    = &AppError{Code: "ENTRY_NOT_FOUND", Message: "Ledger entry not found", StatusCode: http.StatusNotFound}
	ErrInvalidEntryType = &AppError{Code: "INVALID_ENTRY_TYPE", Message: "type must be INCOME or EXPENSE", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount    = &AppError{Code: "INVALID_AMOUNT", Message: "amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrInvalidMonth     = &AppError{Code: "INVALID_MONTH", Message: "month must be YYYY-MM", StatusCode: http.StatusBadRequest}
	ErrInvalidDate      = &AppError{Code: "INVALID_DATE", Message: "Invalid date", StatusCode: http.StatusBadRequest}
)

// Savings errors.
var (
	ErrGoalNotFound       = &AppError{Code: "GOAL_NOT_FOUND", Message: "Savings goal not found", StatusCode: http.StatusNotFound}
	ErrInvalidSavingsType = &AppError{Code: "INVALID_SAVINGS_TYPE", Message: "type must be DEPOSIT or WITHDRAW", StatusCode: http.StatusBadRequest}
)

// Planned and recurring errors.
var (
	ErrPlannedNotFound   = &AppError{Code: "PLANNED_NOT_FOUND", Message: "Planned entry not found", StatusCode: http.StatusNotFound}
	ErrRecurringNotFound = &AppError{Code: "RECURRING_NOT_FOUND", Message: "Recurring definition not found", StatusCode: http.StatusNotFound}
	ErrRecurringInactive = &AppError{Code: "RECURRING_INACTIVE", Message: "This recurring definition is not active", StatusCode: http.StatusBadRequest}
	ErrScheduleConflict  = &AppError{Code: "SCHEDULE_CONFLICT", Message: "dayOfMonth and rrule are mutually exclusive", StatusCode: http.StatusBadRequest}
	ErrInvalidRecurrence = &AppError{Code: "INVALID_RECURRENCE", Message: "rrule must contain BYMONTHDAY=N", StatusCode: http.StatusBadRequest}
)
