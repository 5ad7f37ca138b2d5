package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionKind discriminates selection payloads.
// Some wire values are abbreviated so the encoded payload fits in MaxPayloadSize.
type ActionKind string

const (
	KindGoBack         ActionKind = "go_back"
	KindAddToCart      ActionKind = "add_to_cart"
	KindDeleteCartItem ActionKind = "del"
	KindPay            ActionKind = "pay"
	KindOpenProduct    ActionKind = "open"
	KindOpenCart       ActionKind = "cart"
)

// Selection is the structured payload behind an inline button.
// JSON keys are single letters: a (action), s (sku), q (quantity), i (id).
// That leaves room for SKUs and ids of up to 31 bytes in every payload.
type Selection struct {
	Action   ActionKind `json:"a"`
	SKU      string     `json:"s,omitempty"`
	Quantity int        `json:"q,omitempty"`
	ID       string     `json:"i,omitempty"`
}

func SelectGoBack() Selection { return Selection{Action: KindGoBack} }

func SelectAddToCart(sku string, quantity int) Selection {
	return Selection{Action: KindAddToCart, SKU: sku, Quantity: quantity}
}

func SelectDeleteCartItem(lineID string) Selection {
	return Selection{Action: KindDeleteCartItem, ID: lineID}
}

func SelectPay() Selection { return Selection{Action: KindPay} }

func SelectProduct(productID string) Selection {
	return Selection{Action: KindOpenProduct, ID: productID}
}

func SelectCart() Selection { return Selection{Action: KindOpenCart} }

// Validate checks that the fields required by the action are present.
func (s Selection) Validate() error {
	switch s.Action {
	case KindGoBack, KindPay, KindOpenCart:
		return nil
	case KindAddToCart:
		if s.SKU == "" {
			return fmt.Errorf("%w: add_to_cart without sku", ErrMalformedPayload)
		}
		if s.Quantity <= 0 {
			return fmt.Errorf("%w: add_to_cart with quantity %d", ErrMalformedPayload, s.Quantity)
		}
		return nil
	case KindDeleteCartItem, KindOpenProduct:
		if s.ID == "" {
			return fmt.Errorf("%w: %s without id", ErrMalformedPayload, s.Action)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing action", ErrMalformedPayload)
	}
	return fmt.Errorf("%w: unknown action %q", ErrMalformedPayload, s.Action)
}

// Encode serializes the selection into callback data.
func (s Selection) Encode() (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal selection: %w", err)
	}
	if len(data) > MaxPayloadSize {
		return "", fmt.Errorf("%w: %d bytes for %s", ErrPayloadTooLarge, len(data), s.Action)
	}
	return string(data), nil
}

// DecodeSelection parses and validates callback data produced by Encode.
func DecodeSelection(data string) (Selection, error) {
	var s Selection
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if dec.More() {
		return Selection{}, fmt.Errorf("%w: trailing data", ErrMalformedPayload)
	}
	if err := s.Validate(); err != nil {
		return Selection{}, err
	}
	return s, nil
}
