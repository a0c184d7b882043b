package transfer

import (
	"errors"
)

var (
	// ErrWrongState is returned when an action doesn't apply to the current state,
	// eg. confirming a PIN with no challenge open.
	ErrWrongState = errors.New("action not valid in current state")

	// ErrPINNotConfigured means the account has no PIN and no fallback is configured.
	ErrPINNotConfigured = errors.New("no PIN configured for this account")
)

// ValidationError is a problem with user input, caught before anything is sent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
