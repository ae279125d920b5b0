// Package cart keeps each card's cart toggle and the page-wide cart counter
// in step with the remote authority. Nothing changes locally until the
// authority confirms it.
package cart

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/logging"
	"github.com/artpar/shelf/internal/notify"
	"github.com/artpar/shelf/internal/registry"
	"github.com/artpar/shelf/internal/remote"
)

// Notice texts.
const (
	MsgFailed    = "Something went wrong."
	MsgAdded     = "Added to Cart"
	MsgRemoved   = "Removed from Cart"
	MsgUnchanged = "Cart unchanged."
)

// Authority is the subset of the remote client the controller needs.
type Authority interface {
	AddToCart(ctx context.Context, id core.ProductID) (remote.CartResult, error)
	RemoveFromCart(ctx context.Context, id core.ProductID) (remote.CartResult, error)
}

// AddResultMsg carries the answer to a plain add request.
type AddResultMsg struct {
	ID     core.ProductID
	Result remote.CartResult
	Err    error
}

// ToggleResultMsg carries the answer to a toggle request.
type ToggleResultMsg struct {
	ID       core.ProductID
	Removing bool
	Result   remote.CartResult
	Err      error
}

// Controller is the single writer of the cart counter.
type Controller struct {
	authority Authority
	cards     *registry.Registry
	notices   *notify.Channel
	logger    *slog.Logger

	count    int
	hasCount bool
}

// New creates a controller.
func New(authority Authority, cards *registry.Registry, notices *notify.Channel, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		authority: authority,
		cards:     cards,
		notices:   notices,
		logger:    logger,
	}
}

// Count returns the last count reported by the authority. ok is false until
// one has been seen.
func (c *Controller) Count() (n int, ok bool) {
	return c.count, c.hasCount
}

// SetCount seeds the counter from a freshly loaded page.
func (c *Controller) SetCount(n int) {
	c.count = n
	c.hasCount = true
}

// AddToCart asks the authority to add id regardless of the card's mode.
func (c *Controller) AddToCart(id core.ProductID) tea.Cmd {
	return func() tea.Msg {
		result, err := c.authority.AddToCart(context.Background(), id)
		return AddResultMsg{ID: id, Result: result, Err: err}
	}
}

// Toggle flips the cart membership of id, choosing add or remove from the
// card's current mode. A missing card is a no-op.
func (c *Controller) Toggle(id core.ProductID) tea.Cmd {
	card, ok := c.cards.Find(id)
	if !ok {
		return nil
	}

	removing := card.Mode == core.ModeRemovable
	return func() tea.Msg {
		var (
			result remote.CartResult
			err    error
		)
		if removing {
			result, err = c.authority.RemoveFromCart(context.Background(), id)
		} else {
			result, err = c.authority.AddToCart(context.Background(), id)
		}
		return ToggleResultMsg{ID: id, Removing: removing, Result: result, Err: err}
	}
}

// Update applies a cart answer. handled is false for foreign messages.
func (c *Controller) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case AddResultMsg:
		return c.handleAdd(msg), true
	case ToggleResultMsg:
		return c.handleToggle(msg), true
	}
	return nil, false
}

func (c *Controller) handleAdd(msg AddResultMsg) tea.Cmd {
	if msg.Err != nil {
		c.logger.Error("add to cart failed", slog.String("product_id", msg.ID.String()), slog.String("error", msg.Err.Error()))
		return c.notices.Error(MsgFailed)
	}
	if !msg.Result.OK() {
		return c.notices.Info(rejection(msg.Result))
	}

	c.SetCount(msg.Result.CartCount)
	c.setMode(msg.ID, core.ModeRemovable)

	text := msg.Result.Message
	if text == "" {
		text = MsgAdded
	}
	return c.notices.Success(text)
}

func (c *Controller) handleToggle(msg ToggleResultMsg) tea.Cmd {
	if msg.Err != nil {
		c.logger.Error("cart toggle failed",
			slog.String("product_id", msg.ID.String()),
			slog.Bool("removing", msg.Removing),
			slog.String("error", msg.Err.Error()),
		)
		return c.notices.Error(MsgFailed)
	}
	if !msg.Result.OK() {
		return c.notices.Info(rejection(msg.Result))
	}

	c.SetCount(msg.Result.CartCount)
	if msg.Removing {
		c.setMode(msg.ID, core.ModeAddable)
		return c.notices.Info(MsgRemoved)
	}
	c.setMode(msg.ID, core.ModeRemovable)
	return c.notices.Success(MsgAdded)
}

// setMode reflects a confirmed membership on the card if it is still shown.
func (c *Controller) setMode(id core.ProductID, mode core.ToggleMode) {
	c.cards.Update(id, func(card *core.Card) {
		card.Mode = mode
	})
}

func rejection(r remote.CartResult) string {
	if r.Message == "" {
		return MsgUnchanged
	}
	return r.Message
}
