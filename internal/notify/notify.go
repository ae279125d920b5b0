// Package notify is the transient status channel shared by every catalog
// component. Notices stack, fade out after a fixed delay and are then removed.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/artpar/shelf/internal/timer"
)

// Kind is the severity of a notice.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Icon returns the glyph shown in front of the message.
func (k Kind) Icon() string {
	switch k {
	case KindSuccess:
		return "✅"
	case KindError:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

const (
	DefaultTTL  = 3 * time.Second
	DefaultFade = 300 * time.Millisecond
)

// Notice is one visible status message.
type Notice struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	Fading    bool
}

// FadeMsg starts the fade-out of a notice.
type FadeMsg struct {
	ID string
}

// ExpireMsg removes a notice once its fade-out has completed.
type ExpireMsg struct {
	ID string
}

// Channel holds the visible notices.
type Channel struct {
	notices []Notice
	sched   timer.Scheduler
	ttl     time.Duration
	fade    time.Duration
}

// Option configures a Channel.
type Option func(*Channel)

// WithTTL sets how long a notice stays before fading.
func WithTTL(d time.Duration) Option {
	return func(c *Channel) {
		c.ttl = d
	}
}

// WithFade sets the length of the fade-out phase.
func WithFade(d time.Duration) Option {
	return func(c *Channel) {
		c.fade = d
	}
}

// New creates a channel scheduling its timers on sched.
func New(sched timer.Scheduler, opts ...Option) *Channel {
	c := &Channel{
		sched: sched,
		ttl:   DefaultTTL,
		fade:  DefaultFade,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify shows a notice and returns the command that will fade it out.
// It never fails; a nil channel drops the message.
func (c *Channel) Notify(message string, kind Kind) tea.Cmd {
	if c == nil {
		return nil
	}

	n := Notice{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	c.notices = append(c.notices, n)

	if c.sched == nil {
		return nil
	}
	return c.sched.After(c.ttl, FadeMsg{ID: n.ID})
}

// Info is shorthand for Notify(message, KindInfo).
func (c *Channel) Info(message string) tea.Cmd {
	return c.Notify(message, KindInfo)
}

// Success is shorthand for Notify(message, KindSuccess).
func (c *Channel) Success(message string) tea.Cmd {
	return c.Notify(message, KindSuccess)
}

// Error is shorthand for Notify(message, KindError).
func (c *Channel) Error(message string) tea.Cmd {
	return c.Notify(message, KindError)
}

// Update handles the channel's own timer messages. The boolean reports
// whether msg belonged to the channel.
func (c *Channel) Update(msg tea.Msg) (tea.Cmd, bool) {
	if c == nil {
		return nil, false
	}

	switch msg := msg.(type) {
	case FadeMsg:
		i := c.index(msg.ID)
		if i < 0 {
			return nil, true
		}
		c.notices[i].Fading = true
		if c.sched == nil {
			c.remove(i)
			return nil, true
		}
		return c.sched.After(c.fade, ExpireMsg(msg)), true

	case ExpireMsg:
		if i := c.index(msg.ID); i >= 0 {
			c.remove(i)
		}
		return nil, true
	}

	return nil, false
}

// Notices returns the visible notices, oldest first.
func (c *Channel) Notices() []Notice {
	if c == nil {
		return nil
	}
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Latest returns the most recent notice.
func (c *Channel) Latest() (Notice, bool) {
	if c == nil || len(c.notices) == 0 {
		return Notice{}, false
	}
	return c.notices[len(c.notices)-1], true
}

// Dismiss removes the most recent notice at once. Its pending fade and
// expiry messages become no-ops. It reports whether a notice was removed.
func (c *Channel) Dismiss() bool {
	if c == nil || len(c.notices) == 0 {
		return false
	}
	c.remove(len(c.notices) - 1)
	return true
}

// Len returns the number of visible notices.
func (c *Channel) Len() int {
	if c == nil {
		return 0
	}
	return len(c.notices)
}

func (c *Channel) index(id string) int {
	for i, n := range c.notices {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (c *Channel) remove(i int) {
	c.notices = append(c.notices[:i], c.notices[i+1:]...)
}
