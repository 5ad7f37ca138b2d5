package domain

import "strings"

// EventKind tells free text apart from button selections.
type EventKind string

const (
	EventText      EventKind = "text"
	EventSelection EventKind = "selection"
)

// Event is a single inbound update from the transport.
type Event struct {
	// ID correlates logs and metrics for one update. Assigned by the host.
	ID string

	// UserID identifies the conversation. It doubles as the chat id and the cart id.
	UserID int64

	// MessageID is the transport message that carried the event (deleted after a screen change).
	MessageID int

	// CallbackID is set for selections so the host can acknowledge the button press.
	CallbackID string

	Kind      EventKind
	Text      string
	Selection Selection
}

// TextEvent builds a free-text event.
func TextEvent(userID int64, messageID int, text string) Event {
	return Event{
		UserID:    userID,
		MessageID: messageID,
		Kind:      EventText,
		Text:      text,
	}
}

// SelectionEvent builds a button selection event.
func SelectionEvent(userID int64, messageID int, callbackID string, sel Selection) Event {
	return Event{
		UserID:     userID,
		MessageID:  messageID,
		CallbackID: callbackID,
		Kind:       EventSelection,
		Selection:  sel,
	}
}

// IsReset reports whether the event is the reset command.
// "/start" may carry a deep-link argument ("/start promo"), which is ignored.
func (e Event) IsReset() bool {
	if e.Kind != EventText {
		return false
	}
	fields := strings.Fields(e.Text)
	return len(fields) > 0 && fields[0] == ResetCommand
}

// Trigger describes the event for logs and transition bookkeeping.
func (e Event) Trigger() Trigger {
	if e.Kind == EventSelection {
		return Trigger(e.Selection.Action)
	}
	if e.IsReset() {
		return TriggerReset
	}
	return TriggerText
}
