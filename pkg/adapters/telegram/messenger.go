package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/aretw0/shopbot/internal/logging"
	"github.com/aretw0/shopbot/pkg/domain"
)

// API is the subset of *tele.Bot used to deliver actions.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
}

// Messenger implements ports.ActionDispatcher on top of the Bot API.
type Messenger struct {
	api    API
	logger *slog.Logger
}

// MessengerOption configures the Messenger.
type MessengerOption func(*Messenger)

// WithMessengerLogger sets the structured logger.
func WithMessengerLogger(logger *slog.Logger) MessengerOption {
	return func(m *Messenger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMessenger creates a Messenger. api is usually a *tele.Bot.
func NewMessenger(api API, opts ...MessengerOption) *Messenger {
	m := &Messenger{
		api:    api,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dispatch performs one outbound action.
func (m *Messenger) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch req.Type {
	case domain.ActionSendText:
		opts, err := sendOptions(req.Keyboard)
		if err != nil {
			return err
		}
		_, err = m.api.Send(tele.ChatID(req.ChatID), req.Text, opts...)
		return wrap("send message", err)

	case domain.ActionSendPhoto:
		opts, err := sendOptions(req.Keyboard)
		if err != nil {
			return err
		}
		photo := &tele.Photo{
			File:    tele.FromReader(bytes.NewReader(req.Photo)),
			Caption: req.Text,
		}
		_, err = m.api.Send(tele.ChatID(req.ChatID), photo, opts...)
		return wrap("send photo", err)

	case domain.ActionDeleteMessage:
		msg := tele.StoredMessage{
			MessageID: strconv.Itoa(req.MessageID),
			ChatID:    req.ChatID,
		}
		return wrap("delete message", m.api.Delete(msg))

	case domain.ActionNotice:
		cb := &tele.Callback{ID: req.CallbackID}
		return wrap("answer callback", m.api.Respond(cb, &tele.CallbackResponse{Text: req.Text}))
	}

	return fmt.Errorf("unsupported action type %q", req.Type)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("telegram %s: %w", op, err)
}

func sendOptions(kb domain.Keyboard) ([]interface{}, error) {
	if len(kb) == 0 {
		return nil, nil
	}
	markup, err := Markup(kb)
	if err != nil {
		return nil, err
	}
	return []interface{}{markup}, nil
}

// Markup converts a keyboard into inline buttons whose callback data is the encoded selection.
func Markup(kb domain.Keyboard) (*tele.ReplyMarkup, error) {
	rows := make([][]tele.InlineButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			data, err := b.Selection.Encode()
			if err != nil {
				return nil, fmt.Errorf("button %q: %w", b.Text, err)
			}
			buttons = append(buttons, tele.InlineButton{Text: b.Text, Data: data})
		}
		rows = append(rows, buttons)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}, nil
}
