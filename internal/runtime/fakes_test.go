package runtime_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aretw0/shopbot/pkg/adapters/memory"
	"github.com/aretw0/shopbot/pkg/domain"
)

var errBoom = errors.New("boom")

func catalog() []domain.Product {
	return []domain.Product{
		{
			ID:          "P1",
			SKU:         "apple",
			Name:        "Apple",
			Description: "Crunchy",
			Price:       domain.Price{Amount: decimal.RequireFromString("2.50"), Currency: "USD", Display: "$2.50"},
			ImageID:     "IMG1",
		},
		{
			ID:          "P2",
			SKU:         "pear",
			Name:        "Pear",
			Description: "Juicy",
			Price:       domain.Price{Amount: decimal.RequireFromString("3.00"), Currency: "USD", Display: "$3.00"},
		},
	}
}

// fakeCommerce records calls and fails the operations named in fail.
type fakeCommerce struct {
	mu       sync.Mutex
	products []domain.Product
	carts    map[int64]domain.Cart
	images   map[string][]byte
	fail     map[string]error

	calls  []string
	orders map[int64]string
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		products: catalog(),
		carts:    make(map[int64]domain.Cart),
		images:   map[string][]byte{"IMG1": []byte("jpeg")},
		fail:     make(map[string]error),
		orders:   make(map[int64]string),
	}
}

func (f *fakeCommerce) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeCommerce) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeCommerce) ListProducts(ctx context.Context, cred domain.Credential) ([]domain.Product, error) {
	if err := f.record("ListProducts"); err != nil {
		return nil, err
	}
	return f.products, nil
}

func (f *fakeCommerce) GetProduct(ctx context.Context, cred domain.Credential, productID string) (domain.Product, error) {
	if err := f.record("GetProduct"); err != nil {
		return domain.Product{}, err
	}
	for _, p := range f.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, &domain.BackendError{Op: "get product", StatusCode: 404, Body: "not found"}
}

func (f *fakeCommerce) GetCart(ctx context.Context, cred domain.Credential, userID int64) (domain.Cart, error) {
	if err := f.record("GetCart"); err != nil {
		return domain.Cart{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.carts[userID], nil
}

func (f *fakeCommerce) AddCartItem(ctx context.Context, cred domain.Credential, userID int64, sku string, quantity int) (domain.Cart, error) {
	if err := f.record("AddCartItem"); err != nil {
		return domain.Cart{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[userID]
	c.Lines = append(c.Lines, domain.CartLine{ID: "L-" + sku, SKU: sku, Name: sku, Quantity: quantity})
	f.carts[userID] = c
	return c, nil
}

func (f *fakeCommerce) RemoveCartItem(ctx context.Context, cred domain.Credential, userID int64, lineID string) error {
	if err := f.record("RemoveCartItem"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[userID]
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	f.carts[userID] = c
	return nil
}

func (f *fakeCommerce) CreateCustomerOrder(ctx context.Context, cred domain.Credential, userID int64, email string) error {
	if err := f.record("CreateCustomerOrder"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[userID] = email
	return nil
}

func (f *fakeCommerce) ResolveImage(ctx context.Context, cred domain.Credential, imageID string) ([]byte, error) {
	if err := f.record("ResolveImage"); err != nil {
		return nil, err
	}
	return f.images[imageID], nil
}

type fakeTokens struct {
	err error
}

func (f fakeTokens) Token(ctx context.Context) (domain.Credential, error) {
	if f.err != nil {
		return domain.Credential{}, f.err
	}
	return domain.Credential{Token: "t0k3n"}, nil
}

// fakeTransport records delivered actions and optionally rejects them:
// every action when err is set, or only actions of type failOn.
type fakeTransport struct {
	mu     sync.Mutex
	sent   []domain.ActionRequest
	err    error
	failOn domain.ActionType
}

func (f *fakeTransport) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.failOn != "" && req.Type == f.failOn {
		return errors.New("rejected " + string(req.Type))
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeTransport) actions() []domain.ActionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ActionRequest(nil), f.sent...)
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// flakyStore wraps the memory store with injectable failures.
type flakyStore struct {
	*memory.Store
	getErr error
	setErr error
}

func (s *flakyStore) Get(ctx context.Context, userID int64) (domain.State, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.Store.Get(ctx, userID)
}

func (s *flakyStore) Set(ctx context.Context, userID int64, state domain.State) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.Set(ctx, userID, state)
}
