package entities

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrEventInactive = errors.New("Event is no longer active")
	ErrEventPassed   = errors.New("Event has already passed")
)

type CapacityExceededError struct {
	Requested int
	Available int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("Not enough tickets available. Requested: %d, Available: %d", e.Requested, e.Available)
}

// TransientStoreError wraps failures that may succeed when the whole
// booking is retried: lock timeouts, deadlocks, serialization failures.
type TransientStoreError struct {
	Err error
}

func (e TransientStoreError) Error() string {
	return fmt.Sprintf("transient store failure: %v", e.Err)
}

func (e TransientStoreError) Unwrap() error {
	return e.Err
}

type InvariantViolationError struct {
	EventID int64
	Detail  string
}

func (e InvariantViolationError) Error() string {
	return fmt.Sprintf("inventory invariant violated for event %d: %s", e.EventID, e.Detail)
}

type ValidationError struct {
	Err error
}

func (e ValidationError) Error() string {
	return e.Err.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) error {
	return ValidationError{Err: fmt.Errorf(format, args...)}
}

// PermanentError marks a message handler failure that retrying can't fix.
// Such messages go straight to the poison queue.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error {
	return e.Err
}

func (e PermanentError) IsPermanent() bool {
	return true
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrBookingNotFound)
}

func IsInvalidState(err error) bool {
	return errors.Is(err, ErrEventInactive) || errors.Is(err, ErrEventPassed)
}

func IsTransient(err error) bool {
	var transient TransientStoreError
	return errors.As(err, &transient)
}
