package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/shopbot/pkg/domain"
)

func TestErrorKind(t *testing.T) {
	tests := map[string]error{
		"none":             nil,
		"auth":             &domain.AuthError{Err: errors.New("401")},
		"backend":          fmt.Errorf("get cart: %w", &domain.BackendError{Op: "get cart", StatusCode: 500}),
		"store":            &domain.StoreError{Op: "set", UserID: 1, Err: errors.New("down")},
		"unknown_user":     fmt.Errorf("user 1: %w", domain.ErrUnknownUser),
		"invalid_state":    domain.ErrInvalidState,
		"unexpected_event": domain.ErrUnexpectedEvent,
		"payload":          domain.ErrMalformedPayload,
		"other":            errors.New("boom"),
	}
	for want, err := range tests {
		assert.Equal(t, want, domain.ErrorKind(err), "%v", err)
	}
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "b") },
		OnError:      func(context.Context, *domain.ErrorEvent) { calls = append(calls, "b-err") },
	}

	merged := domain.MergeHooks(a, domain.LifecycleHooks{}, b)
	merged.OnTransition(context.Background(), &domain.TransitionEvent{})
	merged.OnError(context.Background(), &domain.ErrorEvent{})

	assert.Equal(t, []string{"a", "b", "b-err"}, calls)
	assert.Nil(t, merged.OnDeliveryFailure)
}
