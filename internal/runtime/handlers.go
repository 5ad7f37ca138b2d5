package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/shopbot/internal/presentation/markup"
	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

// turn holds everything a handler needs for one event and collects its outbound actions.
type turn struct {
	ev           domain.Event
	cred         domain.Credential
	commerce     ports.Commerce
	maxInputSize int

	actions []domain.ActionRequest
}

func (t *turn) emit(reqs ...domain.ActionRequest) {
	t.actions = append(t.actions, reqs...)
}

// retire deletes the message that carried the event once the new screen has been queued.
func (t *turn) retire() {
	if t.ev.MessageID != 0 {
		t.emit(domain.DeleteMessage(t.ev.UserID, t.ev.MessageID))
	}
}

// acknowledge answers the button press unless a handler already did.
func (t *turn) acknowledge() {
	if t.ev.Kind != domain.EventSelection || t.ev.CallbackID == "" {
		return
	}
	for _, act := range t.actions {
		if act.Type == domain.ActionNotice {
			return
		}
	}
	t.emit(domain.Notice(t.ev.CallbackID, ""))
}

func (t *turn) unexpected(state domain.State) error {
	return fmt.Errorf("%w: %s in %s", domain.ErrUnexpectedEvent, t.ev.Trigger(), state.Label())
}

// start renders the product menu for any event.
func (t *turn) start(ctx context.Context) (domain.State, error) {
	if err := t.showMenu(ctx); err != nil {
		return "", err
	}
	if t.ev.Kind == domain.EventSelection {
		t.retire()
	}
	return domain.StateBrowsingMenu, nil
}

func (t *turn) menu(ctx context.Context) (domain.State, error) {
	if t.ev.Kind != domain.EventSelection {
		return "", t.unexpected(domain.StateBrowsingMenu)
	}

	switch sel := t.ev.Selection; sel.Action {
	case domain.KindOpenCart:
		if err := t.showCart(ctx); err != nil {
			return "", err
		}
		t.retire()
		return domain.StateViewingCart, nil

	case domain.KindOpenProduct:
		if err := t.showProduct(ctx, sel.ID); err != nil {
			return "", err
		}
		t.retire()
		return domain.StateViewingProduct, nil
	}
	return "", t.unexpected(domain.StateBrowsingMenu)
}

func (t *turn) description(ctx context.Context) (domain.State, error) {
	if t.ev.Kind != domain.EventSelection {
		return "", t.unexpected(domain.StateViewingProduct)
	}

	switch sel := t.ev.Selection; sel.Action {
	case domain.KindGoBack:
		if err := t.showMenu(ctx); err != nil {
			return "", err
		}
		t.retire()
		return domain.StateBrowsingMenu, nil

	case domain.KindAddToCart:
		if _, err := t.commerce.AddCartItem(ctx, t.cred, t.ev.UserID, sel.SKU, sel.Quantity); err != nil {
			return "", fmt.Errorf("add to cart: %w", err)
		}
		if t.ev.CallbackID != "" {
			t.emit(domain.Notice(t.ev.CallbackID, markup.Added(sel.Quantity)))
		}
		return domain.StateViewingProduct, nil
	}
	return "", t.unexpected(domain.StateViewingProduct)
}

func (t *turn) cart(ctx context.Context) (domain.State, error) {
	if t.ev.Kind != domain.EventSelection {
		return "", t.unexpected(domain.StateViewingCart)
	}

	switch sel := t.ev.Selection; sel.Action {
	case domain.KindGoBack:
		if err := t.showMenu(ctx); err != nil {
			return "", err
		}
		t.retire()
		return domain.StateBrowsingMenu, nil

	case domain.KindPay:
		t.emit(domain.SendText(t.ev.UserID, markup.EmailPrompt, nil))
		t.retire()
		return domain.StateAwaitingEmail, nil

	case domain.KindDeleteCartItem:
		if err := t.commerce.RemoveCartItem(ctx, t.cred, t.ev.UserID, sel.ID); err != nil {
			return "", fmt.Errorf("remove cart item: %w", err)
		}
		if err := t.showCart(ctx); err != nil {
			return "", err
		}
		t.retire()
		return domain.StateViewingCart, nil
	}
	return "", t.unexpected(domain.StateViewingCart)
}

// waitingEmail treats the next free-text message as the checkout email.
func (t *turn) waitingEmail(ctx context.Context) (domain.State, error) {
	if t.ev.Kind != domain.EventText {
		return "", t.unexpected(domain.StateAwaitingEmail)
	}

	email, err := sanitizeEmail(t.ev.Text, t.maxInputSize)
	if err != nil {
		return "", err
	}

	if err := t.commerce.CreateCustomerOrder(ctx, t.cred, t.ev.UserID, email); err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	t.emit(domain.SendText(t.ev.UserID, markup.Confirmation(email), nil))
	t.retire()
	return domain.StateInitial, nil
}

func (t *turn) showMenu(ctx context.Context) error {
	products, err := t.commerce.ListProducts(ctx, t.cred)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	t.emit(domain.SendText(t.ev.UserID, markup.MenuPrompt, markup.Menu(products)))
	return nil
}

func (t *turn) showCart(ctx context.Context) error {
	cart, err := t.commerce.GetCart(ctx, t.cred, t.ev.UserID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	text, kb := markup.Cart(cart)
	t.emit(domain.SendText(t.ev.UserID, text, kb))
	return nil
}

func (t *turn) showProduct(ctx context.Context, productID string) error {
	product, err := t.commerce.GetProduct(ctx, t.cred, productID)
	if err != nil {
		return fmt.Errorf("get product %s: %w", productID, err)
	}

	caption, kb := markup.Product(product)
	if product.ImageID == "" {
		t.emit(domain.SendText(t.ev.UserID, caption, kb))
		return nil
	}

	photo, err := t.commerce.ResolveImage(ctx, t.cred, product.ImageID)
	if err != nil {
		return fmt.Errorf("resolve image %s: %w", product.ImageID, err)
	}
	t.emit(domain.SendPhoto(t.ev.UserID, photo, caption, kb))
	return nil
}
