package authority

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/shelf/internal/core"
)

// Common errors.
var (
	ErrStoreClosed = errors.New("authority store is closed")
)

// Interaction is one recorded feedback event.
type Interaction struct {
	ID        string
	ProductID core.ProductID
	Action    core.FeedbackAction
	CreatedAt time.Time
}

// Store defines cart membership and interaction persistence.
type Store interface {
	// AddToCart inserts id. added is false when it was already present.
	AddToCart(ctx context.Context, id core.ProductID) (added bool, count int, err error)

	// RemoveFromCart deletes id if present and returns the new count.
	RemoveFromCart(ctx context.Context, id core.ProductID) (count int, err error)

	// CartItems returns the cart in insertion order.
	CartItems(ctx context.Context) ([]core.ProductID, error)

	// RecordInteraction appends a feedback event.
	RecordInteraction(ctx context.Context, in Interaction) error

	// Interactions returns the most recent events first, at most limit.
	Interactions(ctx context.Context, limit int) ([]Interaction, error)

	// Close closes the store.
	Close() error
}
