package domain

import "github.com/shopspring/decimal"

// Price is a monetary value as reported by the commerce backend.
type Price struct {
	// Amount is the numeric value in major units (e.g. 12.50).
	Amount decimal.Decimal `json:"amount"`

	// Currency is the ISO code (e.g. "USD").
	Currency string `json:"currency"`

	// Display is the backend-formatted string (e.g. "$12.50"). Preferred for rendering.
	Display string `json:"display"`
}

// String returns the display form, falling back to "<amount> <currency>".
func (p Price) String() string {
	if p.Display != "" {
		return p.Display
	}
	if p.Currency == "" {
		return p.Amount.StringFixed(2)
	}
	return p.Amount.StringFixed(2) + " " + p.Currency
}

// Product is a catalog entry.
type Product struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`

	// ImageID references the main image in the backend file service. May be empty.
	ImageID string `json:"image_id,omitempty"`
}

// CartLine is one product and quantity inside a cart.
type CartLine struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Total       Price  `json:"total"`
}

// Cart belongs to exactly one user; its ID is the user id.
type Cart struct {
	ID    string     `json:"id"`
	Lines []CartLine `json:"lines"`
	Total Price      `json:"total"`
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// LineIDs returns the ids of all lines in cart order.
func (c Cart) LineIDs() []string {
	ids := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ID)
	}
	return ids
}
