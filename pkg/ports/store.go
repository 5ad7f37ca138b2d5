package ports

import (
	"context"

	"github.com/aretw0/shopbot/pkg/domain"
)

// StateStore persists one conversation state per user.
type StateStore interface {
	// Get returns the stored state for the user.
	// Returns domain.ErrUnknownUser if nothing was ever stored.
	Get(ctx context.Context, userID int64) (domain.State, error)

	// Set overwrites the stored state for the user.
	Set(ctx context.Context, userID int64, state domain.State) error
}
