package moltin

import (
	"github.com/shopspring/decimal"

	"github.com/aretw0/shopbot/pkg/domain"
)

// ---- API request/response structs ----

type money struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Formatted string          `json:"formatted"`
}

// price converts minor units (cents) to a domain.Price.
func (m money) price() domain.Price {
	return domain.Price{
		Amount:   m.Amount.Shift(-2),
		Currency: m.Currency,
		Display:  m.Formatted,
	}
}

type productData struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Meta        struct {
		DisplayPrice struct {
			WithTax money `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
	Relationships struct {
		MainImage struct {
			Data *struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

func (p productData) product() domain.Product {
	out := domain.Product{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Meta.DisplayPrice.WithTax.price(),
	}
	if img := p.Relationships.MainImage.Data; img != nil {
		out.ImageID = img.ID
	}
	return out
}

type productListResponse struct {
	Data []productData `json:"data"`
}

type productResponse struct {
	Data productData `json:"data"`
}

type cartItemData struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Meta        struct {
		DisplayPrice struct {
			WithTax struct {
				Unit  money `json:"unit"`
				Value money `json:"value"`
			} `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
}

type cartResponse struct {
	Data []cartItemData `json:"data"`
	Meta struct {
		DisplayPrice struct {
			WithTax money `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
}

func (r cartResponse) cart(id string) domain.Cart {
	c := domain.Cart{
		ID:    id,
		Lines: make([]domain.CartLine, 0, len(r.Data)),
		Total: r.Meta.DisplayPrice.WithTax.price(),
	}
	for _, item := range r.Data {
		c.Lines = append(c.Lines, domain.CartLine{
			ID:          item.ID,
			ProductID:   item.ProductID,
			SKU:         item.SKU,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Total:       item.Meta.DisplayPrice.WithTax.Value.price(),
		})
	}
	return c
}

type cartItemRequest struct {
	Data struct {
		Type     string `json:"type"`
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
	} `json:"data"`
}

type customerRequest struct {
	Data struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password,omitempty"`
	} `json:"data"`
}

type fileResponse struct {
	Data struct {
		Link struct {
			Href string `json:"href"`
		} `json:"link"`
	} `json:"data"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Expires     int64  `json:"expires"`
	ExpiresIn   int64  `json:"expires_in"`
}
