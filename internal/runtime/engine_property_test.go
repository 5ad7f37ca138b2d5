package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/aretw0/shopbot/internal/runtime"
	"github.com/aretw0/shopbot/pkg/adapters/memory"
	"github.com/aretw0/shopbot/pkg/domain"
)

var (
	eventPool = []domain.Event{
		domain.TextEvent(user, 1, "/start"),
		domain.TextEvent(user, 1, "a@b.com"),
		selection(1, domain.SelectCart()),
		selection(1, domain.SelectProduct("P1")),
		selection(1, domain.SelectProduct("P2")),
		selection(1, domain.SelectAddToCart("apple", 1)),
		selection(1, domain.SelectDeleteCartItem("L-apple")),
		selection(1, domain.SelectPay()),
		selection(1, domain.SelectGoBack()),
	}
	failurePool = []string{
		"",
		"ListProducts",
		"GetProduct",
		"GetCart",
		"AddCartItem",
		"RemoveCartItem",
		"CreateCustomerOrder",
		"ResolveImage",
		"token",
		"set",
	}
)

func TestEngine_Property_FailureLeavesStateUnchanged(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	states := domain.States()

	properties.Property("errors never change the stored state or reach the user", prop.ForAll(
		func(si, ei, fi int) bool {
			store := &flakyStore{Store: memory.NewStore()}
			commerce := newFakeCommerce()
			tokens := &fakeTokens{}
			transport := &fakeTransport{}
			engine := runtime.NewEngine(store, commerce, tokens, transport)

			ctx := context.Background()
			before := states[si]
			if err := store.Set(ctx, user, before); err != nil {
				return false
			}

			switch failure := failurePool[fi]; failure {
			case "":
			case "token":
				tokens.err = errBoom
			case "set":
				store.setErr = errBoom
			default:
				commerce.fail[failure] = errBoom
			}

			err := engine.Handle(ctx, eventPool[ei])
			after, getErr := store.Store.Get(ctx, user)
			if getErr != nil {
				return false
			}

			if err != nil {
				return after == before && len(transport.actions()) == 0
			}
			// Success must follow the state table.
			return domain.Allowed(before, eventPool[ei].Trigger(), after) ||
				(eventPool[ei].IsReset() && after == domain.StateBrowsingMenu)
		},
		gen.IntRange(0, len(states)-1),
		gen.IntRange(0, len(eventPool)-1),
		gen.IntRange(0, len(failurePool)-1),
	))

	properties.TestingRun(t)
}

func TestEngine_Property_ErrorsAreTyped(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("token failures surface as AuthError", prop.ForAll(
		func(ei int) bool {
			store := memory.NewStore()
			ctx := context.Background()
			_ = store.Set(ctx, user, domain.StateBrowsingMenu)

			engine := runtime.NewEngine(store, newFakeCommerce(), &fakeTokens{err: errBoom}, &fakeTransport{})
			err := engine.Handle(ctx, eventPool[ei])

			var authErr *domain.AuthError
			return errors.As(err, &authErr)
		},
		gen.IntRange(0, len(eventPool)-1),
	))

	properties.TestingRun(t)
}
