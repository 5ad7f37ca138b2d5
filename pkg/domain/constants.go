package domain

const (
	// ResetCommand restarts the conversation from StateInitial regardless of the stored state.
	ResetCommand = "/start"

	// MaxPayloadSize is the Telegram limit for inline button callback data, in bytes.
	MaxPayloadSize = 64

	// MaxCaptionLength is the Telegram limit for photo captions, in characters.
	MaxCaptionLength = 1024
)

// QuantityChoices are the quantities offered on a product card.
var QuantityChoices = []int{1, 5, 10}
