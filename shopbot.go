package shopbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/shopbot/internal/runtime"
	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
	"github.com/aretw0/shopbot/pkg/session"
)

// Bot is the high-level entry point for the storefront conversation.
// It wraps the internal runtime, serializes events per user and applies the host policy
// for users without a stored state.
type Bot struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	store    ports.StateStore

	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
	maxInputSize int
	strict       bool
	newID        func() string
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithSessionManager replaces the default in-process session manager,
// typically with one backed by a distributed locker.
func WithSessionManager(m *session.Manager) Option {
	return func(b *Bot) {
		b.sessions = m
	}
}

// WithStrictUnknownUsers rejects events from users without a stored state
// instead of restarting their conversation.
func WithStrictUnknownUsers(strict bool) Option {
	return func(b *Bot) {
		b.strict = strict
	}
}

// WithMaxInputSize limits the size of free-text input in bytes.
func WithMaxInputSize(size int) Option {
	return func(b *Bot) {
		b.maxInputSize = size
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithIDGenerator overrides how event ids are assigned.
func WithIDGenerator(gen func() string) Option {
	return func(b *Bot) {
		b.newID = gen
	}
}

// New initializes a Bot over its four collaborators.
func New(store ports.StateStore, commerce ports.Commerce, tokens ports.TokenSource, transport ports.ActionDispatcher, opts ...Option) (*Bot, error) {
	switch {
	case store == nil:
		return nil, errors.New("shopbot: state store is required")
	case commerce == nil:
		return nil, errors.New("shopbot: commerce client is required")
	case tokens == nil:
		return nil, errors.New("shopbot: token source is required")
	case transport == nil:
		return nil, errors.New("shopbot: transport is required")
	}

	b := &Bot{
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if b.logger == nil {
		b.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if b.sessions == nil {
		b.sessions = session.NewManager(session.WithLogger(b.logger))
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(b.hooks),
		runtime.WithLogger(b.logger),
		runtime.WithMaxInputSize(b.maxInputSize),
	}
	if b.now != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(b.now))
	}

	b.runtime = runtime.NewEngine(store, commerce, tokens, transport, runtimeOpts...)
	return b, nil
}

// Handle processes one inbound event under the user's session lock.
// Events without an ID get one assigned so logs and hooks can be correlated.
func (b *Bot) Handle(ctx context.Context, ev domain.Event) error {
	if ev.ID == "" {
		ev.ID = b.newID()
	}

	return b.sessions.WithLock(ctx, ev.UserID, func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("panic while handling event",
					"event_id", ev.ID,
					"user_id", ev.UserID,
					"panic", r,
				)
				err = fmt.Errorf("shopbot: panic handling event %s: %v", ev.ID, r)
			}
		}()

		err = b.runtime.Handle(ctx, ev)
		if errors.Is(err, domain.ErrUnknownUser) && !b.strict {
			b.logger.Info("restarting conversation for unknown user",
				"event_id", ev.ID,
				"user_id", ev.UserID,
			)
			return b.runtime.Restart(ctx, ev)
		}
		return err
	})
}

// Dispatch implements ports.EventHandler.
// Errors were already reported through the hooks; here they are only logged.
func (b *Bot) Dispatch(ctx context.Context, ev domain.Event) {
	if err := b.Handle(ctx, ev); err != nil {
		b.logger.Warn("event not handled",
			"event_id", ev.ID,
			"user_id", ev.UserID,
			"trigger", ev.Trigger(),
			"kind", domain.ErrorKind(err),
			"err", err,
		)
	}
}

// State returns the stored conversation state for the user.
func (b *Bot) State(ctx context.Context, userID int64) (domain.State, error) {
	return b.store.Get(ctx, userID)
}

var _ ports.EventHandler = (*Bot)(nil)
