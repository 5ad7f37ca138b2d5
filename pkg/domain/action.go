package domain

import "fmt"

// ActionRequest is an outbound side-effect the engine asks the transport to perform.
// Handlers collect them; the engine delivers them only after the next state is persisted.
type ActionRequest struct {
	Type   ActionType
	ChatID int64

	// Text is the message body, the photo caption or the notice text.
	Text string

	// Photo holds image bytes for ActionSendPhoto.
	Photo []byte

	// Keyboard is rendered as inline buttons under the message. May be nil.
	Keyboard Keyboard

	// MessageID is the message to remove for ActionDeleteMessage.
	MessageID int

	// CallbackID is the button press to acknowledge for ActionNotice.
	CallbackID string
}

// ActionType enumerates transport side-effects.
type ActionType string

const (
	// ActionSendText sends a text message, optionally with a keyboard.
	ActionSendText ActionType = "SEND_TEXT"

	// ActionSendPhoto sends a photo with a caption, optionally with a keyboard.
	ActionSendPhoto ActionType = "SEND_PHOTO"

	// ActionDeleteMessage removes a previously sent message.
	ActionDeleteMessage ActionType = "DELETE_MESSAGE"

	// ActionNotice answers a button press with a short toast.
	ActionNotice ActionType = "NOTICE"
)

// Button is one selectable option.
type Button struct {
	Text      string
	Selection Selection
}

// Keyboard is a grid of buttons, row by row.
type Keyboard [][]Button

// Selections flattens the keyboard in row order.
func (k Keyboard) Selections() []Selection {
	var out []Selection
	for _, row := range k {
		for _, b := range row {
			out = append(out, b.Selection)
		}
	}
	return out
}

// Validate encodes every button so a keyboard that cannot be delivered is caught
// before the transition that shows it is committed.
func (k Keyboard) Validate() error {
	for _, row := range k {
		for _, b := range row {
			if _, err := b.Selection.Encode(); err != nil {
				return fmt.Errorf("button %q: %w", b.Text, err)
			}
		}
	}
	return nil
}

func SendText(chatID int64, text string, kb Keyboard) ActionRequest {
	return ActionRequest{Type: ActionSendText, ChatID: chatID, Text: text, Keyboard: kb}
}

func SendPhoto(chatID int64, photo []byte, caption string, kb Keyboard) ActionRequest {
	return ActionRequest{Type: ActionSendPhoto, ChatID: chatID, Photo: photo, Text: caption, Keyboard: kb}
}

func DeleteMessage(chatID int64, messageID int) ActionRequest {
	return ActionRequest{Type: ActionDeleteMessage, ChatID: chatID, MessageID: messageID}
}

func Notice(callbackID, text string) ActionRequest {
	return ActionRequest{Type: ActionNotice, CallbackID: callbackID, Text: text}
}
