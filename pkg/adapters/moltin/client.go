package moltin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/aretw0/shopbot/internal/logging"
	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

const (
	// DefaultBaseURL is the public API host.
	DefaultBaseURL = "https://api.moltin.com"

	// DefaultTimeout bounds every HTTP call.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of a failed response is kept in a BackendError.
	maxErrorBody = 4 << 10
)

// Client implements ports.Commerce against the REST API.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	limiter          *rate.Limiter
	cache            ports.BlobCache
	customerPassword string
	logger           *slog.Logger

	images singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, sandboxes).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit spaces outgoing requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r > 0 {
			c.limiter = rate.NewLimiter(r, max(burst, 1))
		}
	}
}

// WithImageCache enables local caching of product images.
func WithImageCache(cache ports.BlobCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithCustomerPassword sets the password given to customers created at checkout.
func WithCustomerPassword(password string) Option {
	return func(c *Client) {
		c.customerPassword = password
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cartID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// ListProducts returns the whole catalog.
func (c *Client) ListProducts(ctx context.Context, cred domain.Credential) ([]domain.Product, error) {
	var resp productListResponse
	if err := c.do(ctx, cred, "list products", http.MethodGet, "/v2/products", nil, &resp); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(resp.Data))
	for _, p := range resp.Data {
		products = append(products, p.product())
	}
	return products, nil
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, cred domain.Credential, productID string) (domain.Product, error) {
	var resp productResponse
	path := "/v2/products/" + url.PathEscape(productID)
	if err := c.do(ctx, cred, "get product", http.MethodGet, path, nil, &resp); err != nil {
		return domain.Product{}, err
	}
	return resp.Data.product(), nil
}

// GetCart returns the user's cart. The cart id is the user id.
func (c *Client) GetCart(ctx context.Context, cred domain.Credential, userID int64) (domain.Cart, error) {
	var resp cartResponse
	id := cartID(userID)
	if err := c.do(ctx, cred, "get cart", http.MethodGet, "/v2/carts/"+id+"/items", nil, &resp); err != nil {
		return domain.Cart{}, err
	}
	return resp.cart(id), nil
}

// AddCartItem adds quantity units of sku and returns the updated cart.
func (c *Client) AddCartItem(ctx context.Context, cred domain.Credential, userID int64, sku string, quantity int) (domain.Cart, error) {
	var body cartItemRequest
	body.Data.Type = "cart_item"
	body.Data.SKU = sku
	body.Data.Quantity = quantity

	var resp cartResponse
	id := cartID(userID)
	if err := c.do(ctx, cred, "add cart item", http.MethodPost, "/v2/carts/"+id+"/items", body, &resp); err != nil {
		return domain.Cart{}, err
	}
	return resp.cart(id), nil
}

// RemoveCartItem deletes one cart line.
func (c *Client) RemoveCartItem(ctx context.Context, cred domain.Credential, userID int64, lineID string) error {
	path := "/v2/carts/" + cartID(userID) + "/items/" + url.PathEscape(lineID)
	return c.do(ctx, cred, "remove cart item", http.MethodDelete, path, nil, nil)
}

// CreateCustomerOrder registers a customer named after the user with the given email.
func (c *Client) CreateCustomerOrder(ctx context.Context, cred domain.Credential, userID int64, email string) error {
	var body customerRequest
	body.Data.Type = "customer"
	body.Data.Name = cartID(userID)
	body.Data.Email = email
	body.Data.Password = c.customerPassword

	return c.do(ctx, cred, "create customer", http.MethodPost, "/v2/customers", body, nil)
}

// ResolveImage returns the image bytes, downloading them at most once per cache.
// Concurrent calls for the same id share a single download.
func (c *Client) ResolveImage(ctx context.Context, cred domain.Credential, imageID string) ([]byte, error) {
	if data, ok := c.cached(ctx, imageID); ok {
		return data, nil
	}

	ch := c.images.DoChan(imageID, func() (any, error) {
		// Metadata lookup and download are two requests.
		fetchCtx, cancel := detach(ctx, 2*c.httpClient.Timeout)
		defer cancel()
		// Another caller may have filled the cache while we waited.
		if data, ok := c.cached(fetchCtx, imageID); ok {
			return data, nil
		}
		data, err := c.fetchImage(fetchCtx, cred, imageID)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.Put(fetchCtx, imageID, data); err != nil {
				c.logger.Warn("failed to cache image", "image_id", imageID, "err", err)
			}
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// detach keeps the values of ctx but not its cancellation, so work shared through
// singleflight survives the caller that started it. d bounds the work instead.
func detach(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), d)
}

func (c *Client) cached(ctx context.Context, imageID string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, ok, err := c.cache.Get(ctx, imageID)
	if err != nil {
		c.logger.Warn("image cache read failed", "image_id", imageID, "err", err)
		return nil, false
	}
	return data, ok
}

func (c *Client) fetchImage(ctx context.Context, cred domain.Credential, imageID string) ([]byte, error) {
	var file fileResponse
	if err := c.do(ctx, cred, "get file", http.MethodGet, "/v2/files/"+url.PathEscape(imageID), nil, &file); err != nil {
		return nil, err
	}
	href := file.Data.Link.Href
	if href == "" {
		return nil, fmt.Errorf("file %s has no download link", imageID)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image %s: %w", imageID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus("download image", resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download image %s: %w", imageID, err)
	}
	return data, nil
}

// do performs one authenticated JSON call. A nil out discards the response body.
func (c *Client) do(ctx context.Context, cred domain.Credential, op, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Authorization", cred.Authorization())
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("commerce call",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if err := checkStatus(op, resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.BackendError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
}
