package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownUser is returned when no state is stored for a user and the event is not a reset.
var ErrUnknownUser = errors.New("unknown user")

// ErrInvalidState is returned for state tags outside the state table.
var ErrInvalidState = errors.New("invalid conversation state")

// ErrUnexpectedEvent is returned when an event has no case in the current state.
var ErrUnexpectedEvent = errors.New("unexpected event for state")

// ErrMalformedPayload is returned when callback data cannot be decoded into a Selection.
var ErrMalformedPayload = errors.New("malformed selection payload")

// ErrPayloadTooLarge is returned when an encoded Selection does not fit in MaxPayloadSize.
var ErrPayloadTooLarge = errors.New("selection payload too large")

// BackendError is a non-2xx response from the commerce backend.
type BackendError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// AuthError wraps a failure to obtain a credential.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// StoreError wraps a state store failure.
type StoreError struct {
	Op     string
	UserID int64
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("state store %s for user %d: %v", e.Op, e.UserID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies err into a short label for logs and metrics.
func ErrorKind(err error) string {
	var (
		authErr    *AuthError
		backendErr *BackendError
		storeErr   *StoreError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &backendErr):
		return "backend"
	case errors.As(err, &storeErr):
		return "store"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrUnexpectedEvent):
		return "unexpected_event"
	case errors.Is(err, ErrMalformedPayload), errors.Is(err, ErrPayloadTooLarge):
		return "payload"
	}
	return "other"
}
