package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the backend answers 404.
	ErrNotFound = errors.New("not found")
)

// APIError is a non 2xx reply from the backend.
type APIError struct {
	Status     int
	StatusText string

	// Message is the backend provided explanation, if any.
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    parseErrorMessage(body),
	}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("got status code: %d (%s)", e.Status, e.Message)
	}
	return fmt.Sprintf("got status code: %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
