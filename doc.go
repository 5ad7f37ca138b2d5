/*
Package shopbot is a Telegram storefront bot built around a small deterministic state machine.

A customer browses the catalog, opens a product, adds it to the cart, reviews the cart and
checks out by leaving an email. Every inbound update is one event; the engine resolves the
user's stored state, runs exactly one handler, persists the next state and only then delivers
the outbound messages.

# Architecture

The core is hexagonal. The engine talks to four ports:

  - ports.StateStore persists one state tag per user (memory or Redis).
  - ports.Commerce wraps the commerce backend (products, carts, customers, files).
  - ports.TokenSource hands out bearer tokens that are refreshed after 59 minutes.
  - ports.ActionDispatcher delivers the outbound actions (Telegram).

Bot adds the host policy on top: per-user serialization through session.Manager, event ids,
panic recovery and restarting users without a stored state.

# Usage

	store := memory.NewStore()
	tokens := moltin.NewTokenProvider(clientID, clientSecret)
	client := moltin.NewClient(moltin.WithImageCache(file.New("pictures")))

	bot, err := shopbot.New(store, client, tokens, telegram.NewMessenger(tg))
	if err != nil {
		log.Fatal(err)
	}

	listener := telegram.NewListener(ctx, bot, tg, logger)
	listener.Register(tg)
	tg.Start()

# Failure semantics

A failing handler (token, backend, store) leaves the stored state unchanged and delivers
nothing. Once the state is persisted, delivery failures are logged and reported through
domain.LifecycleHooks but never roll the transition back.
*/
package shopbot
