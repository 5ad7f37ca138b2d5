// Package markup renders catalog and cart data into chat text and inline keyboards.
// Every function is pure: same input, same output, no I/O.
package markup

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/shopbot/pkg/domain"
)

const (
	MenuPrompt  = "Please choose product:"
	EmailPrompt = "Please send your email:"
	EmptyCart   = "Your cart is empty."

	cartButton = "CART 🛒"
	backButton = "Back"
	payButton  = "Pay"
)

// Menu lists every product as its own row, followed by the cart shortcut.
func Menu(products []domain.Product) domain.Keyboard {
	kb := make(domain.Keyboard, 0, len(products)+1)
	for _, p := range products {
		kb = append(kb, []domain.Button{{Text: p.Name, Selection: domain.SelectProduct(p.ID)}})
	}
	kb = append(kb, []domain.Button{{Text: cartButton, Selection: domain.SelectCart()}})
	return kb
}

// Product renders the product card caption and its quantity and back buttons.
// The description is shortened so the caption stays within domain.MaxCaptionLength.
func Product(p domain.Product) (string, domain.Keyboard) {
	head := fmt.Sprintf("Product info:\n\n%s\n\n", p.Name)
	tail := fmt.Sprintf("\n\n%s per kg", p.Price)
	budget := domain.MaxCaptionLength - utf8.RuneCountInString(head) - utf8.RuneCountInString(tail)
	caption := truncate(head+truncate(p.Description, budget)+tail, domain.MaxCaptionLength)

	quantities := make([]domain.Button, 0, len(domain.QuantityChoices))
	for _, q := range domain.QuantityChoices {
		quantities = append(quantities, domain.Button{
			Text:      fmt.Sprintf("%dkg", q),
			Selection: domain.SelectAddToCart(p.SKU, q),
		})
	}

	kb := domain.Keyboard{
		quantities,
		{{Text: backButton, Selection: domain.SelectGoBack()}},
	}
	return caption, kb
}

// Cart renders the cart lines, the total and a delete button per line.
// The pay button is only offered for a non-empty cart.
func Cart(c domain.Cart) (string, domain.Keyboard) {
	kb := make(domain.Keyboard, 0, len(c.Lines)+2)
	if c.Empty() {
		kb = append(kb, []domain.Button{{Text: backButton, Selection: domain.SelectGoBack()}})
		return EmptyCart, kb
	}

	var sb strings.Builder
	for _, l := range c.Lines {
		fmt.Fprintf(&sb, "%s\n%s\n%dkg for %s\n\n", l.Name, l.Description, l.Quantity, l.Total)
		kb = append(kb, []domain.Button{{
			Text:      "Delete " + l.Name,
			Selection: domain.SelectDeleteCartItem(l.ID),
		}})
	}
	fmt.Fprintf(&sb, "Total price: %s", c.Total)

	kb = append(kb,
		[]domain.Button{{Text: backButton, Selection: domain.SelectGoBack()}},
		[]domain.Button{{Text: payButton, Selection: domain.SelectPay()}},
	)
	return sb.String(), kb
}

// CartLineIDs recovers the line ids referenced by the delete buttons of a cart keyboard.
func CartLineIDs(kb domain.Keyboard) []string {
	var ids []string
	for _, sel := range kb.Selections() {
		if sel.Action == domain.KindDeleteCartItem {
			ids = append(ids, sel.ID)
		}
	}
	return ids
}

// truncate cuts s to at most limit runes, ending with an ellipsis when shortened.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// Added is the toast shown after a successful add-to-cart.
func Added(quantity int) string {
	return fmt.Sprintf("Added %dkg to cart", quantity)
}

// Confirmation acknowledges the checkout email.
func Confirmation(email string) string {
	return fmt.Sprintf("You have sent the email: %s\n\nFor new order click %s", email, domain.ResetCommand)
}
