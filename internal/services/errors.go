package services

import (
	"errors"
	"time"
)

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorUnauthorized    ErrorCode = "unauthorized"
	ErrorPaymentRequired ErrorCode = "payment_required"
	ErrorForbidden       ErrorCode = "forbidden"
	ErrorLocked          ErrorCode = "locked"
	ErrorConflict        ErrorCode = "conflict"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorUnavailable     ErrorCode = "unavailable"
)

// ServiceError is the structured outcome the engine surfaces to callers.
// NextEligibleAt is set only for locked outcomes, so collaborators can tell
// the caller when a retake unlocks.
type ServiceError struct {
	Code           ErrorCode
	Message        string
	NextEligibleAt *time.Time
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error { return &ServiceError{Code: ErrorInvalid, Message: msg} }

func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }

func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewPaymentRequiredError(msg string) error {
	return &ServiceError{Code: ErrorPaymentRequired, Message: msg}
}

func NewLockedError(msg string, next time.Time) error {
	return &ServiceError{Code: ErrorLocked, Message: msg, NextEligibleAt: &next}
}

func NewUnavailableError(msg string) error {
	return &ServiceError{Code: ErrorUnavailable, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ErrDuplicate is returned by stores when an insert hits a uniqueness
// constraint (one baseline per org, one pulse per org+month, one report per
// survey). Services translate it into a conflict outcome.
var ErrDuplicate = errors.New("duplicate record")
