package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

// Engine is the conversation state machine.
// It resolves a user's state, runs the matching handler, persists the next state and only
// then delivers the handler's outbound actions.
type Engine struct {
	store     ports.StateStore
	commerce  ports.Commerce
	tokens    ports.TokenSource
	transport ports.ActionDispatcher

	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
	maxInputSize int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMaxInputSize limits the size of free-text input in bytes.
func WithMaxInputSize(size int) EngineOption {
	return func(e *Engine) {
		if size > 0 {
			e.maxInputSize = size
		}
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(store ports.StateStore, commerce ports.Commerce, tokens ports.TokenSource, transport ports.ActionDispatcher, opts ...EngineOption) *Engine {
	e := &Engine{
		store:        store,
		commerce:     commerce,
		tokens:       tokens,
		transport:    transport,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		maxInputSize: DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one event for the user that sent it.
// The reset command starts over from StateInitial; any other event requires a stored state,
// otherwise domain.ErrUnknownUser is returned and nothing is changed.
// On any error the stored state is left untouched and no action is delivered.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) error {
	current, err := e.resolveState(ctx, ev)
	if err != nil {
		// Unknown users are a host policy decision, not a failure yet.
		if !errors.Is(err, domain.ErrUnknownUser) {
			e.emitError(ctx, ev, "", err)
		}
		return err
	}
	return e.run(ctx, ev, current)
}

// Restart processes the event as if the user were in StateInitial.
// Hosts use it to recover users without a stored state.
func (e *Engine) Restart(ctx context.Context, ev domain.Event) error {
	return e.run(ctx, ev, domain.StateInitial)
}

func (e *Engine) resolveState(ctx context.Context, ev domain.Event) (domain.State, error) {
	if ev.IsReset() {
		return domain.StateInitial, nil
	}

	state, err := e.store.Get(ctx, ev.UserID)
	switch {
	case err == nil:
		return state, nil
	case errors.Is(err, domain.ErrUnknownUser), errors.Is(err, domain.ErrInvalidState):
		return "", fmt.Errorf("user %d: %w", ev.UserID, err)
	default:
		return "", &domain.StoreError{Op: "get", UserID: ev.UserID, Err: err}
	}
}

func (e *Engine) run(ctx context.Context, ev domain.Event, current domain.State) error {
	start := e.now()
	trigger := ev.Trigger()

	next, actions, err := e.step(ctx, ev, current)
	if err != nil {
		e.emitError(ctx, ev, current, err)
		return err
	}

	if !domain.Allowed(current, trigger, next) {
		err := fmt.Errorf("%w: %s --%s--> %s is not in the state table",
			domain.ErrInvalidState, current.Label(), trigger, next.Label())
		e.emitError(ctx, ev, current, err)
		return err
	}

	// 5. Commit Phase (Persistence). Nothing reaches the user before this succeeds.
	if err := e.store.Set(ctx, ev.UserID, next); err != nil {
		serr := &domain.StoreError{Op: "set", UserID: ev.UserID, Err: err}
		e.emitError(ctx, ev, current, serr)
		return serr
	}

	e.logger.Debug("state transition",
		"event_id", ev.ID,
		"user_id", ev.UserID,
		"from", current.Label(),
		"to", next.Label(),
		"trigger", trigger,
	)

	e.deliver(ctx, ev, actions)

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp: e.now(),
			EventID:   ev.ID,
			UserID:    ev.UserID,
			From:      current,
			To:        next,
			Trigger:   trigger,
			Duration:  e.now().Sub(start),
		})
	}
	return nil
}

// step dispatches to exactly one handler.
func (e *Engine) step(ctx context.Context, ev domain.Event, current domain.State) (domain.State, []domain.ActionRequest, error) {
	if !current.Valid() {
		return "", nil, fmt.Errorf("%w: %q", domain.ErrInvalidState, current)
	}

	cred, err := e.tokens.Token(ctx)
	if err != nil {
		var authErr *domain.AuthError
		if !errors.As(err, &authErr) {
			err = &domain.AuthError{Err: err}
		}
		return "", nil, err
	}

	t := &turn{
		ev:           ev,
		cred:         cred,
		commerce:     e.commerce,
		maxInputSize: e.maxInputSize,
	}

	var next domain.State
	switch current {
	case domain.StateInitial:
		next, err = t.start(ctx)
	case domain.StateBrowsingMenu:
		next, err = t.menu(ctx)
	case domain.StateViewingProduct:
		next, err = t.description(ctx)
	case domain.StateViewingCart:
		next, err = t.cart(ctx)
	case domain.StateAwaitingEmail:
		next, err = t.waitingEmail(ctx)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrInvalidState, current)
	}
	if err != nil {
		return "", nil, err
	}

	// Keyboards are encoded here so an undeliverable screen fails before the commit.
	for _, act := range t.actions {
		if err := act.Keyboard.Validate(); err != nil {
			return "", nil, fmt.Errorf("render %s: %w", act.Type, err)
		}
	}
	t.acknowledge()
	return next, t.actions, nil
}

// deliver executes the outbound actions in order.
// The transition is already committed, so failures are reported but do not stop the rest.
// Once a screen fails to send, later deletions are skipped so the user keeps the previous screen.
func (e *Engine) deliver(ctx context.Context, ev domain.Event, actions []domain.ActionRequest) {
	screenFailed := false
	for _, act := range actions {
		if screenFailed && act.Type == domain.ActionDeleteMessage {
			e.logger.Debug("skipping delete after failed send",
				"event_id", ev.ID,
				"user_id", ev.UserID,
				"message_id", act.MessageID,
			)
			continue
		}

		err := e.transport.Dispatch(ctx, act)
		if err == nil {
			continue
		}
		if act.Type == domain.ActionSendText || act.Type == domain.ActionSendPhoto {
			screenFailed = true
		}

		e.logger.Warn("failed to deliver action",
			"event_id", ev.ID,
			"user_id", ev.UserID,
			"action", act.Type,
			"err", err,
		)
		if e.hooks.OnDeliveryFailure != nil {
			e.hooks.OnDeliveryFailure(ctx, &domain.DeliveryEvent{
				Timestamp: e.now(),
				EventID:   ev.ID,
				UserID:    ev.UserID,
				Action:    act.Type,
				Err:       err,
			})
		}
	}
}

func (e *Engine) emitError(ctx context.Context, ev domain.Event, state domain.State, err error) {
	if e.hooks.OnError == nil {
		return
	}
	e.hooks.OnError(ctx, &domain.ErrorEvent{
		Timestamp: e.now(),
		EventID:   ev.ID,
		UserID:    ev.UserID,
		State:     state,
		Trigger:   ev.Trigger(),
		Err:       err,
	})
}
