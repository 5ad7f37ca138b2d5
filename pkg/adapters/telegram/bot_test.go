package telegram_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/aretw0/shopbot"
	"github.com/aretw0/shopbot/pkg/adapters/memory"
	"github.com/aretw0/shopbot/pkg/adapters/telegram"
	"github.com/aretw0/shopbot/pkg/domain"
)

func TestBot_ProductScreenWithLongSKU(t *testing.T) {
	catalog := memory.NewCatalog([]domain.Product{{
		ID:          "salmon",
		SKU:         "atlantic-salmon-fillet",
		Name:        "Salmon",
		Description: "Chilled.",
		Price:       domain.Price{Amount: decimal.RequireFromString("24.90"), Currency: "USD"},
	}})
	api := &fakeAPI{}
	store := memory.NewStore()

	bot, err := shopbot.New(store, catalog, memory.StaticToken("t"), telegram.NewMessenger(api))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, bot.Handle(ctx, domain.TextEvent(42, 1, "/start")))
	require.NoError(t, bot.Handle(ctx, domain.SelectionEvent(42, 2, "cb", domain.SelectProduct("salmon"))))

	state, err := bot.State(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StateViewingProduct, state)

	require.Len(t, api.sends, 2, "menu and product card")
	require.Len(t, api.sends[1].opts, 1)
	markup, ok := api.sends[1].opts[0].(*tele.ReplyMarkup)
	require.True(t, ok)
	require.NotEmpty(t, markup.InlineKeyboard)

	sel, err := domain.DecodeSelection(markup.InlineKeyboard[0][0].Data)
	require.NoError(t, err)
	assert.Equal(t, domain.SelectAddToCart("atlantic-salmon-fillet", 1), sel)

	assert.Len(t, api.deleted, 1, "menu message retired after the card was sent")
	require.Len(t, api.callbacks, 1)
	assert.Equal(t, "cb", api.callbacks[0].ID)

	require.NoError(t, bot.Handle(ctx, domain.SelectionEvent(42, 3, "cb2", sel)))
	cart, err := catalog.GetCart(ctx, domain.Credential{}, 42)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "atlantic-salmon-fillet", cart.Lines[0].SKU)
}
