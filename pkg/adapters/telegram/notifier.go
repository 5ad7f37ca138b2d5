package telegram

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// maxMessageLen is the Bot API limit for a text message.
const maxMessageLen = 4096

// Notifier sends operator alerts to a fixed chat. It implements logging.Notifier.
type Notifier struct {
	api    API
	chatID int64
}

// NewNotifier creates a Notifier for the admin chat.
func NewNotifier(api API, chatID int64) *Notifier {
	return &Notifier{api: api, chatID: chatID}
}

// Notify sends text, truncated to the message limit.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen-1]) + "…"
	}
	_, err := n.api.Send(tele.ChatID(n.chatID), text)
	return wrap("send alert", err)
}
