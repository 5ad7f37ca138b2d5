package telegram_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/aretw0/shopbot/pkg/adapters/telegram"
	"github.com/aretw0/shopbot/pkg/domain"
)

type sent struct {
	to   tele.Recipient
	what interface{}
	opts []interface{}
}

// fakeAPI records Bot API calls.
type fakeAPI struct {
	mu        sync.Mutex
	sends     []sent
	deleted   []tele.Editable
	responded []*tele.CallbackResponse
	callbacks []*tele.Callback
	err       error
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sent{to: to, what: what, opts: opts})
	return &tele.Message{}, f.err
}

func (f *fakeAPI) Delete(msg tele.Editable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, msg)
	return f.err
}

func (f *fakeAPI) Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, c)
	f.responded = append(f.responded, resp...)
	return f.err
}

func TestMessenger_SendTextWithKeyboard(t *testing.T) {
	api := &fakeAPI{}
	m := telegram.NewMessenger(api)

	kb := domain.Keyboard{
		{{Text: "Apple", Selection: domain.SelectProduct("P1")}},
		{{Text: "Back", Selection: domain.SelectGoBack()}},
	}
	require.NoError(t, m.Dispatch(context.Background(), domain.SendText(42, "hello", kb)))

	require.Len(t, api.sends, 1)
	assert.Equal(t, "42", api.sends[0].to.Recipient())
	assert.Equal(t, "hello", api.sends[0].what)
	require.Len(t, api.sends[0].opts, 1)

	markup, ok := api.sends[0].opts[0].(*tele.ReplyMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "Apple", markup.InlineKeyboard[0][0].Text)

	sel, err := domain.DecodeSelection(markup.InlineKeyboard[0][0].Data)
	require.NoError(t, err)
	assert.Equal(t, domain.SelectProduct("P1"), sel)
}

func TestMessenger_SendTextWithoutKeyboard(t *testing.T) {
	api := &fakeAPI{}
	m := telegram.NewMessenger(api)

	require.NoError(t, m.Dispatch(context.Background(), domain.SendText(42, "plain", nil)))
	assert.Empty(t, api.sends[0].opts)
}

func TestMessenger_SendPhoto(t *testing.T) {
	api := &fakeAPI{}
	m := telegram.NewMessenger(api)

	req := domain.SendPhoto(7, []byte("jpeg"), "caption", domain.Keyboard{{{Text: "Back", Selection: domain.SelectGoBack()}}})
	require.NoError(t, m.Dispatch(context.Background(), req))

	photo, ok := api.sends[0].what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "caption", photo.Caption)

	data, err := io.ReadAll(photo.File.FileReader)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestMessenger_DeleteAndNotice(t *testing.T) {
	api := &fakeAPI{}
	m := telegram.NewMessenger(api)
	ctx := context.Background()

	require.NoError(t, m.Dispatch(ctx, domain.DeleteMessage(7, 99)))
	require.Len(t, api.deleted, 1)
	msgID, chatID := api.deleted[0].MessageSig()
	assert.Equal(t, "99", msgID)
	assert.Equal(t, int64(7), chatID)

	require.NoError(t, m.Dispatch(ctx, domain.Notice("cb-1", "Added 5kg to cart")))
	require.Len(t, api.callbacks, 1)
	assert.Equal(t, "cb-1", api.callbacks[0].ID)
	assert.Equal(t, "Added 5kg to cart", api.responded[0].Text)
}

func TestMessenger_Errors(t *testing.T) {
	api := &fakeAPI{err: errors.New("forbidden: bot was blocked by the user")}
	m := telegram.NewMessenger(api)

	err := m.Dispatch(context.Background(), domain.SendText(1, "x", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")

	err = m.Dispatch(context.Background(), domain.ActionRequest{Type: "TELEPORT"})
	assert.Error(t, err)

	long := domain.Keyboard{{{Text: "Delete", Selection: domain.SelectDeleteCartItem(strings.Repeat("x", 80))}}}
	err = telegram.NewMessenger(&fakeAPI{}).Dispatch(context.Background(), domain.SendText(1, "cart", long))
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestEventFromMessage(t *testing.T) {
	ev, err := telegram.EventFromMessage(&tele.Message{ID: 5, Chat: &tele.Chat{ID: 42}, Text: "/start"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.UserID)
	assert.Equal(t, 5, ev.MessageID)
	assert.True(t, ev.IsReset())

	_, err = telegram.EventFromMessage(&tele.Message{Text: "orphan"})
	assert.ErrorIs(t, err, telegram.ErrNoChat)
}

func TestEventFromCallback(t *testing.T) {
	data, err := domain.SelectAddToCart("apple", 5).Encode()
	require.NoError(t, err)

	ev, err := telegram.EventFromCallback(&tele.Callback{
		ID:      "cb-9",
		Data:    data,
		Message: &tele.Message{ID: 3, Chat: &tele.Chat{ID: 42}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EventSelection, ev.Kind)
	assert.Equal(t, "cb-9", ev.CallbackID)
	assert.Equal(t, domain.SelectAddToCart("apple", 5), ev.Selection)

	_, err = telegram.EventFromCallback(&tele.Callback{
		Data:    "P1",
		Message: &tele.Message{ID: 3, Chat: &tele.Chat{ID: 42}},
	})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

type recordingHandler struct {
	events []domain.Event
}

func (h *recordingHandler) Dispatch(ctx context.Context, ev domain.Event) {
	h.events = append(h.events, ev)
}

type fakeRouter struct {
	endpoints []interface{}
}

func (r *fakeRouter) Handle(endpoint interface{}, h tele.HandlerFunc, m ...tele.MiddlewareFunc) {
	r.endpoints = append(r.endpoints, endpoint)
}

func TestListener_Register(t *testing.T) {
	router := &fakeRouter{}
	telegram.NewListener(context.Background(), &recordingHandler{}, &fakeAPI{}, nil).Register(router)

	assert.ElementsMatch(t, []interface{}{"/start", tele.OnText, tele.OnCallback}, router.endpoints)
}

func TestNotifier_Truncates(t *testing.T) {
	api := &fakeAPI{}
	n := telegram.NewNotifier(api, -100)

	require.NoError(t, n.Notify(context.Background(), strings.Repeat("a", 5000)))
	text := api.sends[0].what.(string)
	assert.Equal(t, 4096, len([]rune(text)))
	assert.Equal(t, "-100", api.sends[0].to.Recipient())
}

// fakeContext implements only what the listener reads.
type fakeContext struct {
	tele.Context
	msg *tele.Message
	cb  *tele.Callback
}

func (c fakeContext) Message() *tele.Message   { return c.msg }
func (c fakeContext) Callback() *tele.Callback { return c.cb }

func TestListener_Dispatches(t *testing.T) {
	handler := &recordingHandler{}
	api := &fakeAPI{}
	l := telegram.NewListener(context.Background(), handler, api, nil)

	require.NoError(t, l.OnText(fakeContext{msg: &tele.Message{ID: 1, Chat: &tele.Chat{ID: 42}, Text: "a@b.com"}}))

	data, err := domain.SelectCart().Encode()
	require.NoError(t, err)
	cb := &tele.Callback{ID: "cb", Data: data, Message: &tele.Message{ID: 2, Chat: &tele.Chat{ID: 42}}}
	require.NoError(t, l.OnCallback(fakeContext{cb: cb}))

	require.Len(t, handler.events, 2)
	assert.Equal(t, domain.EventText, handler.events[0].Kind)
	assert.Equal(t, domain.KindOpenCart, handler.events[1].Selection.Action)
	assert.Empty(t, api.callbacks)
}

func TestListener_MalformedCallbackIsAcknowledged(t *testing.T) {
	handler := &recordingHandler{}
	api := &fakeAPI{}
	l := telegram.NewListener(context.Background(), handler, api, nil)

	cb := &tele.Callback{ID: "cb", Data: "{not json", Message: &tele.Message{ID: 2, Chat: &tele.Chat{ID: 42}}}
	require.NoError(t, l.OnCallback(fakeContext{cb: cb}))

	assert.Empty(t, handler.events)
	require.Len(t, api.callbacks, 1)
	assert.Equal(t, "cb", api.callbacks[0].ID)
}
