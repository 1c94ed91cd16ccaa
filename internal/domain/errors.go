package domain

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	ErrMissingField  = errors.New("required field is empty")
	ErrInvalidFormat = errors.New("field has an invalid format")

	// ErrDispatchInFlight is returned while a dispatch for the same attempt is still running
	ErrDispatchInFlight  = errors.New("a submission is already in progress")
	ErrInvalidTransition = errors.New("operation not allowed in the current submission state")

	ErrDispatchUnconfigured    = errors.New("email dispatch is not configured")
	ErrVerificationUnavailable = errors.New("verification service unavailable")
	ErrVerificationRejected    = errors.New("verification was rejected")
)

// DispatchError carries the provider's reason for a failed email dispatch
type DispatchError struct {
	Reason string
	Err    error
}

func (e *DispatchError) Error() string {
	if e.Reason == "" {
		return "email dispatch failed"
	}
	return "email dispatch failed: " + e.Reason
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
