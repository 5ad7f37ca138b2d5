package ports

import (
	"context"

	"github.com/aretw0/shopbot/pkg/domain"
)

// ActionDispatcher defines how side-effects are executed.
// The engine emits requests, and the transport implements this interface to deliver them.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req domain.ActionRequest) error
}
