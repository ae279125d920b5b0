// Package app is the catalog session: it owns the card registry, the
// notification channel and the three controllers, turns user gestures into
// commands and routes every result message back to its owner.
package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/shelf/internal/cart"
	"github.com/artpar/shelf/internal/compare"
	"github.com/artpar/shelf/internal/config"
	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/logging"
	"github.com/artpar/shelf/internal/notify"
	"github.com/artpar/shelf/internal/registry"
	"github.com/artpar/shelf/internal/replace"
	"github.com/artpar/shelf/internal/timer"
)

// Notice texts owned by the session.
const (
	MsgLiked      = "Thanks! We'll show more items like this."
	MsgLoadFailed = "Could not load the catalog."
)

// Authority is everything the session asks of the remote authority.
type Authority interface {
	cart.Authority
	replace.Authority
	LoadPage(ctx context.Context) (string, error)
}

// PageLoadedMsg carries a freshly fetched catalog page.
type PageLoadedMsg struct {
	Page registry.Page
	Err  error
}

// LikedMsg reports the outcome of a like.
type LikedMsg struct {
	ID  core.ProductID
	Err error
}

// Session is the state of one catalog page.
type Session struct {
	authority Authority
	sched     timer.Scheduler
	logger    *slog.Logger

	noticeTTL    time.Duration
	noticeFade   time.Duration
	dislikeDelay time.Duration

	cards   *registry.Registry
	notices *notify.Channel
	cart    *cart.Controller
	compare *compare.Manager
	replace *replace.Orchestrator

	loaded bool
}

// Option is a function that configures the Session.
type Option func(*Session)

// WithScheduler sets the scheduler used for every delayed effect.
func WithScheduler(s timer.Scheduler) Option {
	return func(a *Session) {
		if s != nil {
			a.sched = s
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Session) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConfig applies the timing settings of cfg.
func WithConfig(cfg config.Config) Option {
	return func(a *Session) {
		a.noticeTTL = cfg.NoticeTTL
		a.noticeFade = cfg.NoticeFade
		a.dislikeDelay = cfg.DislikeDelay
	}
}

// New creates a session bound to authority.
func New(authority Authority, opts ...Option) *Session {
	a := &Session{
		authority:    authority,
		logger:       logging.Discard(),
		noticeTTL:    notify.DefaultTTL,
		noticeFade:   notify.DefaultFade,
		dislikeDelay: replace.DefaultDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sched == nil {
		a.sched = timer.New(nil)
	}

	a.cards = registry.New()
	a.notices = notify.New(a.sched, notify.WithTTL(a.noticeTTL), notify.WithFade(a.noticeFade))
	a.cart = cart.New(authority, a.cards, a.notices, a.logger.With(slog.String("controller", "cart")))
	a.compare = compare.NewManager(a.cards, a.notices)
	a.replace = replace.New(authority, a.cards, a.notices, a.sched,
		replace.WithDelay(a.dislikeDelay),
		replace.WithLogger(a.logger.With(slog.String("controller", "replace"))),
		replace.WithOnRemove(a.compare.Forget),
		replace.WithSelection(a.compare.Contains),
	)
	return a
}

// Cards returns the card registry.
func (a *Session) Cards() *registry.Registry { return a.cards }

// Notices returns the notification channel.
func (a *Session) Notices() *notify.Channel { return a.notices }

// Loaded reports whether a page has been loaded.
func (a *Session) Loaded() bool { return a.loaded }

// CartCount returns the badge value; ok is false before the authority
// reported one.
func (a *Session) CartCount() (n int, ok bool) {
	return a.cart.Count()
}

// CompareCount returns the number of selected products.
func (a *Session) CompareCount() int {
	return a.compare.Count()
}

// ComparisonOpen reports whether the comparison view is shown.
func (a *Session) ComparisonOpen() bool {
	return a.compare.IsOpen()
}

// DislikePending reports whether id is fading out.
func (a *Session) DislikePending(id core.ProductID) bool {
	return a.replace.Pending(id)
}

// Load fetches the catalog page.
func (a *Session) Load() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.authority.LoadPage(context.Background())
		if err != nil {
			return PageLoadedMsg{Err: err}
		}
		page, err := registry.ParsePage(doc)
		return PageLoadedMsg{Page: page, Err: err}
	}
}

// AddToCart adds id without looking at its toggle mode.
func (a *Session) AddToCart(id core.ProductID) tea.Cmd {
	return a.cart.AddToCart(id)
}

// ToggleCart flips the cart membership of id.
func (a *Session) ToggleCart(id core.ProductID) tea.Cmd {
	return a.cart.Toggle(id)
}

// ToggleCompare selects or deselects id for comparison.
func (a *Session) ToggleCompare(id core.ProductID) tea.Cmd {
	return a.compare.Toggle(id)
}

// OpenComparison renders the comparison. ok is false when nothing is selected.
func (a *Session) OpenComparison() (compare.Table, bool) {
	return a.compare.Render()
}

// CloseComparison hides the comparison view.
func (a *Session) CloseComparison() {
	a.compare.Close()
}

// ClearComparison empties the selection.
func (a *Session) ClearComparison() tea.Cmd {
	return a.compare.Clear()
}

// Dislike removes id and asks for a replacement.
func (a *Session) Dislike(id core.ProductID) tea.Cmd {
	return a.replace.Dislike(id)
}

// Like highlights id and records positive feedback.
func (a *Session) Like(id core.ProductID) tea.Cmd {
	if !a.cards.Update(id, func(c *core.Card) { c.Liked = true }) {
		return nil
	}
	return func() tea.Msg {
		err := a.authority.SendFeedback(context.Background(), id, core.FeedbackPurchase)
		return LikedMsg{ID: id, Err: err}
	}
}

// Update routes msg to its owner. handled is false for messages the
// session does not know.
func (a *Session) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	if cmd, ok := a.notices.Update(msg); ok {
		return cmd, true
	}
	if cmd, ok := a.cart.Update(msg); ok {
		return cmd, true
	}
	if cmd, ok := a.replace.Update(msg); ok {
		return cmd, true
	}

	switch msg := msg.(type) {
	case PageLoadedMsg:
		return a.pageLoaded(msg), true
	case LikedMsg:
		if msg.Err != nil {
			a.logger.Error("like feedback failed", slog.String("product_id", msg.ID.String()), slog.String("error", msg.Err.Error()))
			return a.notices.Error(cart.MsgFailed), true
		}
		return a.notices.Success(MsgLiked), true
	}
	return nil, false
}

func (a *Session) pageLoaded(msg PageLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		a.logger.Error("catalog load failed", slog.String("error", msg.Err.Error()))
		return a.notices.Error(MsgLoadFailed)
	}

	a.cards.Load(msg.Page)
	if msg.Page.HasCartCount {
		a.cart.SetCount(msg.Page.CartCount)
	}

	// Keep the selection across reloads for products still on the page.
	for _, id := range a.compare.IDs() {
		if !a.cards.Has(id) {
			a.compare.Forget(id)
		}
	}
	for _, id := range a.cards.VisibleIDs() {
		compared := a.compare.Contains(id)
		a.cards.Update(id, func(c *core.Card) { c.Compared = compared })
	}

	a.loaded = true
	a.logger.Info("catalog loaded",
		slog.Int("cards", a.cards.Len()),
		slog.Int("sections", len(a.cards.Sections())),
	)
	return nil
}
