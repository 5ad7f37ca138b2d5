package ports

import (
	"context"

	"github.com/aretw0/shopbot/pkg/domain"
)

// EventHandler consumes inbound events. Transports feed every update into it.
type EventHandler interface {
	Dispatch(ctx context.Context, ev domain.Event)
}
