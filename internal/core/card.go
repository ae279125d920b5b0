package core

import (
	"errors"
	"strconv"
)

// ToggleMode is the cart affordance shown on a card. It mirrors the remote
// cart membership flag and is only refreshed from confirmed responses.
type ToggleMode int

const (
	// ModeAddable means the product is not in the cart; the control adds it.
	ModeAddable ToggleMode = iota
	// ModeRemovable means the product is in the cart; the control removes it.
	ModeRemovable
)

func (m ToggleMode) String() string {
	switch m {
	case ModeAddable:
		return "addable"
	case ModeRemovable:
		return "removable"
	default:
		return "unknown"
	}
}

// Sign returns the glyph shown on the cart control.
func (m ToggleMode) Sign() string {
	if m == ModeRemovable {
		return "-"
	}
	return "+"
}

// Label returns the control's tooltip text.
func (m ToggleMode) Label() string {
	if m == ModeRemovable {
		return "Remove from Cart"
	}
	return "Add to Cart"
}

// Card is the presentational record of one visible product.
type Card struct {
	ID       ProductID
	Title    string
	Price    float64
	Vendor   string
	ImageURL string

	// Section is the container the card is rendered in.
	Section string

	Mode     ToggleMode
	Compared bool
	Fading   bool
	Liked    bool
}

// Validate checks that the card can be displayed.
func (c Card) Validate() error {
	if c.ID.IsZero() {
		return errors.New("card id cannot be empty")
	}
	if c.Price < 0 {
		return errors.New("card price cannot be negative")
	}
	return nil
}

// PriceText returns the price formatted for display.
func (c Card) PriceText() string {
	return "₹" + strconv.FormatFloat(c.Price, 'f', 2, 64)
}
