package domain

import "fmt"

// State is the conversation step a user is currently on.
// Values are persisted verbatim in the state store, so they must never be renamed.
type State string

const (
	StateInitial        State = "START"              // No screen yet, or reset via /start
	StateBrowsingMenu   State = "HANDLE_MENU"        // Product list with cart shortcut
	StateViewingProduct State = "HANDLE_DESCRIPTION" // Product card with quantity buttons
	StateViewingCart    State = "HANDLE_CART"        // Cart lines with delete/pay buttons
	StateAwaitingEmail  State = "WAITING_EMAIL"      // Next free-text message is the email
)

// States returns every known conversation state in flow order.
func States() []State {
	return []State{
		StateInitial,
		StateBrowsingMenu,
		StateViewingProduct,
		StateViewingCart,
		StateAwaitingEmail,
	}
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateInitial, StateBrowsingMenu, StateViewingProduct, StateViewingCart, StateAwaitingEmail:
		return true
	}
	return false
}

// Label is a human readable name used in logs and graphs.
func (s State) Label() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateBrowsingMenu:
		return "BrowsingMenu"
	case StateViewingProduct:
		return "ViewingProduct"
	case StateViewingCart:
		return "ViewingCart"
	case StateAwaitingEmail:
		return "AwaitingEmail"
	}
	return "Unknown(" + string(s) + ")"
}

// ParseState converts a persisted tag back into a State.
func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, raw)
	}
	return s, nil
}
