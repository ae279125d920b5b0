// Package timer schedules delayed bubbletea messages. The delay runs inside a
// command, off the update loop, so the UI never blocks while waiting.
package timer

import (
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

// Scheduler turns a delay and a message into a command.
type Scheduler interface {
	// After returns a command that yields msg once d has elapsed.
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

// Clock schedules against a clockwork clock.
type Clock struct {
	clock clockwork.Clock
}

// New creates a scheduler on the given clock; nil means the real clock.
func New(clock clockwork.Clock) *Clock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Clock{clock: clock}
}

// After implements Scheduler.
func (c *Clock) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if d > 0 {
			<-c.clock.After(d)
		}
		return msg
	}
}

// Now returns the scheduler's current time.
func (c *Clock) Now() time.Time {
	return c.clock.Now()
}

// Pending is a message waiting in a Manual scheduler.
type Pending struct {
	Delay time.Duration
	Msg   tea.Msg
}

// Manual is a Scheduler for tests. It returns no commands; scheduled messages
// are held until the test releases them with Fire or FireAll.
type Manual struct {
	mu      sync.Mutex
	pending []Pending
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, msg tea.Msg) tea.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, Pending{Delay: d, Msg: msg})
	return nil
}

// Pending returns the held messages in scheduling order.
func (m *Manual) Pending() []Pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Pending, len(m.pending))
	copy(out, m.pending)
	return out
}

// Fire releases every held message scheduled with exactly delay d.
func (m *Manual) Fire(d time.Duration) []tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fired []tea.Msg
	kept := m.pending[:0]
	for _, p := range m.pending {
		if p.Delay == d {
			fired = append(fired, p.Msg)
			continue
		}
		kept = append(kept, p)
	}
	m.pending = kept
	return fired
}

// FireAll releases every held message, shortest delay first.
func (m *Manual) FireAll() []tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].Delay < m.pending[j].Delay
	})
	fired := make([]tea.Msg, 0, len(m.pending))
	for _, p := range m.pending {
		fired = append(fired, p.Msg)
	}
	m.pending = nil
	return fired
}
