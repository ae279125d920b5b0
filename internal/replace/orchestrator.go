// Package replace drives the dislike flow: fade the card, remove it after a
// short delay, and fill its slot with a recommendation the authority picks
// away from everything that was visible when the gesture happened.
package replace

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/logging"
	"github.com/artpar/shelf/internal/notify"
	"github.com/artpar/shelf/internal/registry"
	"github.com/artpar/shelf/internal/remote"
	"github.com/artpar/shelf/internal/timer"
)

// DefaultDelay separates the fade from the removal.
const DefaultDelay = 500 * time.Millisecond

// Notice texts.
const (
	MsgRemoving     = "Product removed. Fetching new recommendation..."
	MsgReplaced     = "New suggestion added!"
	MsgFetchFailed  = "Could not fetch a replacement."
	MsgNoAlternates = "No more items"
	MsgBadMarkup    = "Received an unreadable suggestion."
	MsgDuplicate    = "Suggested product is already on the page."
)

// Authority is the subset of the remote client the orchestrator needs.
type Authority interface {
	SendFeedback(ctx context.Context, id core.ProductID, action core.FeedbackAction) error
	FetchReplacement(ctx context.Context, exclude []core.ProductID) (remote.ReplacementResult, error)
}

// RemoveDueMsg fires when the fade of a disliked card has finished.
type RemoveDueMsg struct {
	ID core.ProductID
}

// ReplacementMsg carries the authority's suggestion for a vacated slot.
type ReplacementMsg struct {
	RemovedID core.ProductID
	Section   string
	Result    remote.ReplacementResult
	Err       error
}

// FeedbackSentMsg reports the outcome of a dislike signal. It never
// affects the page.
type FeedbackSentMsg struct {
	ID  core.ProductID
	Err error
}

type pendingDislike struct {
	section string
	exclude []core.ProductID
}

// Orchestrator owns in-flight dislikes.
type Orchestrator struct {
	authority Authority
	cards     *registry.Registry
	notices   *notify.Channel
	sched     timer.Scheduler
	delay     time.Duration
	logger    *slog.Logger
	onRemove  func(core.ProductID)
	selected  func(core.ProductID) bool

	pending map[core.ProductID]pendingDislike
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDelay sets the fade duration before removal.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOnRemove registers a hook called with each id whose card was removed.
func WithOnRemove(fn func(core.ProductID)) Option {
	return func(o *Orchestrator) {
		o.onRemove = fn
	}
}

// WithSelection sets the comparison membership test applied to inserted
// cards. Without it inserted cards are never marked as compared.
func WithSelection(fn func(core.ProductID) bool) Option {
	return func(o *Orchestrator) {
		o.selected = fn
	}
}

// New creates an orchestrator.
func New(authority Authority, cards *registry.Registry, notices *notify.Channel, sched timer.Scheduler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		authority: authority,
		cards:     cards,
		notices:   notices,
		sched:     sched,
		delay:     DefaultDelay,
		logger:    logging.Discard(),
		pending:   make(map[core.ProductID]pendingDislike),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Pending reports whether a dislike of id is waiting for removal.
func (o *Orchestrator) Pending(id core.ProductID) bool {
	_, ok := o.pending[id]
	return ok
}

// Dislike starts the flow for id. A repeated gesture while the first is
// still pending only resends the feedback signal. Unknown cards are ignored.
func (o *Orchestrator) Dislike(id core.ProductID) tea.Cmd {
	if o.Pending(id) {
		return o.sendFeedback(id)
	}

	card, ok := o.cards.Find(id)
	if !ok {
		return nil
	}

	o.pending[id] = pendingDislike{
		section: card.Section,
		exclude: o.cards.VisibleIDs(),
	}
	o.cards.Update(id, func(c *core.Card) {
		c.Fading = true
	})

	return tea.Batch(
		o.notices.Info(MsgRemoving),
		o.sched.After(o.delay, RemoveDueMsg{ID: id}),
		o.sendFeedback(id),
	)
}

// Update handles orchestrator messages. handled is false for foreign ones.
func (o *Orchestrator) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case RemoveDueMsg:
		return o.removeDue(msg.ID), true
	case ReplacementMsg:
		return o.insert(msg), true
	case FeedbackSentMsg:
		if msg.Err != nil {
			o.logger.Warn("dislike feedback failed",
				slog.String("product_id", msg.ID.String()),
				slog.String("error", msg.Err.Error()),
			)
		}
		return nil, true
	}
	return nil, false
}

func (o *Orchestrator) removeDue(id core.ProductID) tea.Cmd {
	p, ok := o.pending[id]
	if !ok {
		return nil
	}
	delete(o.pending, id)

	if !o.cards.Remove(id) {
		return nil
	}
	if o.onRemove != nil {
		o.onRemove(id)
	}

	return func() tea.Msg {
		result, err := o.authority.FetchReplacement(context.Background(), p.exclude)
		return ReplacementMsg{RemovedID: id, Section: p.section, Result: result, Err: err}
	}
}

func (o *Orchestrator) insert(msg ReplacementMsg) tea.Cmd {
	if msg.Err != nil {
		o.logger.Error("replacement fetch failed",
			slog.String("removed_id", msg.RemovedID.String()),
			slog.String("error", msg.Err.Error()),
		)
		return o.notices.Error(MsgFetchFailed)
	}
	if !msg.Result.OK() {
		text := msg.Result.Message
		if text == "" {
			text = MsgNoAlternates
		}
		return o.notices.Error(text)
	}

	card, err := o.cards.Insert(msg.Result.HTML, msg.Section)
	switch {
	case errors.Is(err, registry.ErrDuplicate):
		o.logger.Info("replacement already visible", slog.String("product_id", card.ID.String()))
		return o.notices.Info(MsgDuplicate)
	case err != nil:
		o.logger.Error("replacement markup rejected",
			slog.String("removed_id", msg.RemovedID.String()),
			slog.String("error", err.Error()),
		)
		return o.notices.Error(MsgBadMarkup)
	}

	// The markup's compare state is not trusted; the selection is.
	compared := o.selected != nil && o.selected(card.ID)
	o.cards.Update(card.ID, func(c *core.Card) { c.Compared = compared })
	return o.notices.Success(MsgReplaced)
}

func (o *Orchestrator) sendFeedback(id core.ProductID) tea.Cmd {
	return func() tea.Msg {
		err := o.authority.SendFeedback(context.Background(), id, core.FeedbackDislike)
		return FeedbackSentMsg{ID: id, Err: err}
	}
}
