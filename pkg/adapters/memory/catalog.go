package memory

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aretw0/shopbot/pkg/domain"
)

// Catalog implements ports.Commerce in memory.
// It backs the offline console and tests; carts and customers live as long as the process.
// Safe for concurrent use.
type Catalog struct {
	mu        sync.Mutex
	products  []domain.Product
	images    map[string][]byte
	carts     map[int64][]domain.CartLine
	customers map[int64]string
	seq       int
}

// CatalogOption configures the Catalog.
type CatalogOption func(*Catalog)

// WithImage registers image bytes for a product ImageID.
func WithImage(imageID string, data []byte) CatalogOption {
	return func(c *Catalog) {
		c.images[imageID] = data
	}
}

// NewCatalog creates a catalog serving products in the given order.
func NewCatalog(products []domain.Product, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		products:  append([]domain.Product(nil), products...),
		images:    make(map[string][]byte),
		carts:     make(map[int64][]domain.CartLine),
		customers: make(map[int64]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DemoProducts is a small fish counter used by the console.
func DemoProducts() []domain.Product {
	price := func(amount string) domain.Price {
		d := decimal.RequireFromString(amount)
		return domain.Price{Amount: d, Currency: "USD", Display: "$" + d.StringFixed(2)}
	}
	return []domain.Product{
		{ID: "salmon", SKU: "salmon-1kg", Name: "Salmon", Description: "Atlantic salmon fillet, chilled.", Price: price("24.90")},
		{ID: "tuna", SKU: "tuna-1kg", Name: "Tuna", Description: "Yellowfin tuna loin.", Price: price("31.50")},
		{ID: "cod", SKU: "cod-1kg", Name: "Cod", Description: "North sea cod, skin on.", Price: price("15.20")},
	}
}

func notFound(op, what string) error {
	return &domain.BackendError{Op: op, StatusCode: http.StatusNotFound, Body: what + " not found"}
}

// ListProducts returns every product.
func (c *Catalog) ListProducts(ctx context.Context, cred domain.Credential) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Product(nil), c.products...), nil
}

// GetProduct returns one product or a 404 BackendError.
func (c *Catalog) GetProduct(ctx context.Context, cred domain.Credential, productID string) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, notFound("get product", "product "+productID)
}

// GetCart returns the user's cart. A user without items has an empty cart.
func (c *Catalog) GetCart(ctx context.Context, cred domain.Credential, userID int64) (domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart(userID), nil
}

// AddCartItem adds quantity of the product with sku, merging with an existing line.
func (c *Catalog) AddCartItem(ctx context.Context, cred domain.Credential, userID int64, sku string, quantity int) (domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var product *domain.Product
	for i := range c.products {
		if c.products[i].SKU == sku {
			product = &c.products[i]
			break
		}
	}
	if product == nil {
		return domain.Cart{}, notFound("add cart item", "sku "+sku)
	}
	if quantity <= 0 {
		return domain.Cart{}, &domain.BackendError{
			Op:         "add cart item",
			StatusCode: http.StatusUnprocessableEntity,
			Body:       fmt.Sprintf("quantity %d must be positive", quantity),
		}
	}

	lines := c.carts[userID]
	merged := false
	for i := range lines {
		if lines[i].SKU == sku {
			lines[i].Quantity += quantity
			lines[i].Total = lineTotal(product.Price, lines[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		c.seq++
		lines = append(lines, domain.CartLine{
			ID:          "line-" + strconv.Itoa(c.seq),
			ProductID:   product.ID,
			SKU:         product.SKU,
			Name:        product.Name,
			Description: product.Description,
			Quantity:    quantity,
			Total:       lineTotal(product.Price, quantity),
		})
	}
	c.carts[userID] = lines
	return c.cart(userID), nil
}

// RemoveCartItem deletes one line or returns a 404 BackendError.
func (c *Catalog) RemoveCartItem(ctx context.Context, cred domain.Credential, userID int64, lineID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.carts[userID]
	for i, l := range lines {
		if l.ID == lineID {
			c.carts[userID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return notFound("remove cart item", "line "+lineID)
}

// CreateCustomerOrder records the checkout email for the user.
func (c *Catalog) CreateCustomerOrder(ctx context.Context, cred domain.Credential, userID int64, email string) error {
	if email == "" {
		return &domain.BackendError{Op: "create customer", StatusCode: http.StatusUnprocessableEntity, Body: "email is required"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[userID] = email
	return nil
}

// ResolveImage returns registered image bytes or a 404 BackendError.
func (c *Catalog) ResolveImage(ctx context.Context, cred domain.Credential, imageID string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.images[imageID]
	if !ok {
		return nil, notFound("get file", "file "+imageID)
	}
	return data, nil
}

// Customer returns the email recorded for the user, if any.
func (c *Catalog) Customer(userID int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	email, ok := c.customers[userID]
	return email, ok
}

// cart builds a snapshot; callers hold c.mu.
func (c *Catalog) cart(userID int64) domain.Cart {
	lines := append([]domain.CartLine(nil), c.carts[userID]...)
	total := decimal.Zero
	currency := ""
	for _, l := range lines {
		total = total.Add(l.Total.Amount)
		if currency == "" {
			currency = l.Total.Currency
		}
	}
	return domain.Cart{
		ID:    strconv.FormatInt(userID, 10),
		Lines: lines,
		Total: domain.Price{Amount: total, Currency: currency},
	}
}

func lineTotal(unit domain.Price, quantity int) domain.Price {
	return domain.Price{
		Amount:   unit.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: unit.Currency,
	}
}

// StaticToken is a TokenSource whose credential never goes stale.
type StaticToken string

// Token returns the fixed credential.
func (t StaticToken) Token(ctx context.Context) (domain.Credential, error) {
	return domain.Credential{Token: string(t), IssuedAt: time.Now()}, nil
}
