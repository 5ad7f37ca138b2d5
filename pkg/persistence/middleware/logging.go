package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.StateStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at warn.
// A missing state is an expected outcome and is not reported as a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Get(ctx context.Context, userID int64) (domain.State, error) {
	state, err := m.next.Get(ctx, userID)
	switch {
	case err == nil:
		m.logger.Debug("state loaded", "user_id", userID, "state", state.Label())
	case errors.Is(err, domain.ErrUnknownUser):
		m.logger.Debug("state not found", "user_id", userID)
	default:
		m.logger.Warn("state load failed", "user_id", userID, "err", err)
	}
	return state, err
}

func (m *loggingMiddleware) Set(ctx context.Context, userID int64, state domain.State) error {
	err := m.next.Set(ctx, userID, state)
	if err != nil {
		m.logger.Warn("state save failed", "user_id", userID, "state", state.Label(), "err", err)
		return err
	}
	m.logger.Debug("state saved", "user_id", userID, "state", state.Label())
	return nil
}
