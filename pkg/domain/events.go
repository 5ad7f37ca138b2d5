package domain

import (
	"context"
	"time"
)

// TransitionEvent is emitted after a next state has been persisted.
type TransitionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	EventID   string        `json:"event_id"`
	UserID    int64         `json:"user_id"`
	From      State         `json:"from"`
	To        State         `json:"to"`
	Trigger   Trigger       `json:"trigger"`
	Duration  time.Duration `json:"duration"`
}

// ErrorEvent is emitted when handling an event fails and the state is left untouched.
type ErrorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	State     State     `json:"state"`
	Trigger   Trigger   `json:"trigger"`
	Err       error     `json:"-"`
}

// DeliveryEvent is emitted when the transport rejects an action after the state was committed.
type DeliveryEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	EventID   string     `json:"event_id"`
	UserID    int64      `json:"user_id"`
	Action    ActionType `json:"action"`
	Err       error      `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnTransition      func(context.Context, *TransitionEvent)
	OnError           func(context.Context, *ErrorEvent)
	OnDeliveryFailure func(context.Context, *DeliveryEvent)
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hs {
		if h.OnTransition != nil {
			prev := merged.OnTransition
			merged.OnTransition = func(ctx context.Context, e *TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTransition(ctx, e)
			}
		}
		if h.OnError != nil {
			prev := merged.OnError
			merged.OnError = func(ctx context.Context, e *ErrorEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnError(ctx, e)
			}
		}
		if h.OnDeliveryFailure != nil {
			prev := merged.OnDeliveryFailure
			merged.OnDeliveryFailure = func(ctx context.Context, e *DeliveryEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnDeliveryFailure(ctx, e)
			}
		}
	}
	return merged
}
