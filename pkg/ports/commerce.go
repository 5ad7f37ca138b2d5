package ports

import (
	"context"

	"github.com/aretw0/shopbot/pkg/domain"
)

// Commerce is the narrow view of the commerce backend the conversation needs.
// Every call takes the credential obtained for the current event; implementations never
// fetch tokens on their own. Non-2xx responses surface as *domain.BackendError.
type Commerce interface {
	ListProducts(ctx context.Context, cred domain.Credential) ([]domain.Product, error)
	GetProduct(ctx context.Context, cred domain.Credential, productID string) (domain.Product, error)

	GetCart(ctx context.Context, cred domain.Credential, userID int64) (domain.Cart, error)
	AddCartItem(ctx context.Context, cred domain.Credential, userID int64, sku string, quantity int) (domain.Cart, error)
	RemoveCartItem(ctx context.Context, cred domain.Credential, userID int64, lineID string) error

	// CreateCustomerOrder records the checkout email for the user's cart.
	CreateCustomerOrder(ctx context.Context, cred domain.Credential, userID int64, email string) error

	// ResolveImage returns the image bytes, serving repeated calls from a local cache.
	ResolveImage(ctx context.Context, cred domain.Credential, imageID string) ([]byte, error)
}

// TokenSource hands out currently-valid credentials.
// Failures are reported as *domain.AuthError.
type TokenSource interface {
	Token(ctx context.Context) (domain.Credential, error)
}
