package telegram

import (
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/aretw0/shopbot/internal/logging"
	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

// ErrNoChat is returned for updates that do not belong to a chat.
var ErrNoChat = errors.New("update has no chat")

// Router is the subset of *tele.Bot used to register handlers.
type Router interface {
	Handle(endpoint interface{}, h tele.HandlerFunc, m ...tele.MiddlewareFunc)
}

// Listener turns telebot updates into domain events for an EventHandler.
type Listener struct {
	ctx     context.Context
	handler ports.EventHandler
	api     API
	logger  *slog.Logger
}

// NewListener creates a Listener. ctx is the parent of every dispatched event.
func NewListener(ctx context.Context, handler ports.EventHandler, api API, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Listener{ctx: ctx, handler: handler, api: api, logger: logger}
}

// Register installs the listener's handlers.
func (l *Listener) Register(r Router) {
	r.Handle(domain.ResetCommand, l.OnText)
	r.Handle(tele.OnText, l.OnText)
	r.Handle(tele.OnCallback, l.OnCallback)
}

// OnText handles free-text messages and the reset command.
func (l *Listener) OnText(c tele.Context) error {
	ev, err := EventFromMessage(c.Message())
	if err != nil {
		l.logger.Warn("ignoring message", "err", err)
		return nil
	}
	l.handler.Dispatch(l.ctx, ev)
	return nil
}

// OnCallback handles inline button presses.
// Undecodable payloads are acknowledged and dropped.
func (l *Listener) OnCallback(c tele.Context) error {
	cb := c.Callback()
	ev, err := EventFromCallback(cb)
	if err != nil {
		l.logger.Warn("ignoring callback", "err", err)
		if cb != nil && l.api != nil {
			if rerr := l.api.Respond(cb, &tele.CallbackResponse{}); rerr != nil {
				l.logger.Warn("failed to answer callback", "err", rerr)
			}
		}
		return nil
	}
	l.handler.Dispatch(l.ctx, ev)
	return nil
}

// EventFromMessage converts a text message. The chat id is the user id.
func EventFromMessage(m *tele.Message) (domain.Event, error) {
	if m == nil || m.Chat == nil {
		return domain.Event{}, ErrNoChat
	}
	return domain.TextEvent(m.Chat.ID, m.ID, m.Text), nil
}

// EventFromCallback converts a button press, decoding its selection payload.
func EventFromCallback(cb *tele.Callback) (domain.Event, error) {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return domain.Event{}, ErrNoChat
	}
	sel, err := domain.DecodeSelection(cb.Data)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.SelectionEvent(cb.Message.Chat.ID, cb.Message.ID, cb.ID, sel), nil
}
