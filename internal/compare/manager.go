package compare

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/notify"
	"github.com/artpar/shelf/internal/registry"
)

// Notice texts.
const (
	MsgLimit   = "You can only compare up to 3 products."
	MsgAdded   = "Added to compare."
	MsgCleared = "Comparison cleared."
)

// Manager owns the session's comparison set and the open state of the
// comparison view. It never talks to the authority.
type Manager struct {
	set     Set
	cards   *registry.Registry
	notices *notify.Channel
	open    bool
}

// NewManager creates a manager with an empty set.
func NewManager(cards *registry.Registry, notices *notify.Channel) *Manager {
	return &Manager{cards: cards, notices: notices}
}

// Toggle selects or deselects id. Selecting fails with an error notice
// when the set is full. Unknown cards that are not selected are ignored.
func (m *Manager) Toggle(id core.ProductID) tea.Cmd {
	if m.set.Contains(id) {
		m.set.Remove(id)
		m.mark(id, false)
		return nil
	}

	if !m.cards.Has(id) {
		return nil
	}
	if err := m.set.Add(id); err != nil {
		return m.notices.Error(MsgLimit)
	}
	m.mark(id, true)
	return m.notices.Success(MsgAdded)
}

// Render resolves every member against the visible cards and opens the
// view. Members whose card is gone are left out. ok is false, and the view
// stays closed, when the set is empty.
func (m *Manager) Render() (t Table, ok bool) {
	if m.set.Len() == 0 {
		return Table{}, false
	}

	for _, id := range m.set.IDs() {
		card, found := m.cards.Find(id)
		if !found {
			continue
		}
		t.Columns = append(t.Columns, columnFor(card))
	}
	m.open = true
	return t, true
}

// Close hides the view and keeps the selection.
func (m *Manager) Close() {
	m.open = false
}

// IsOpen reports whether the comparison view is shown.
func (m *Manager) IsOpen() bool {
	return m.open
}

// Clear deselects every member, empties the set and closes the view.
func (m *Manager) Clear() tea.Cmd {
	for _, id := range m.set.IDs() {
		m.mark(id, false)
	}
	m.set.Clear()
	m.open = false
	return m.notices.Info(MsgCleared)
}

// Forget drops id without notice; used when its card leaves the page.
func (m *Manager) Forget(id core.ProductID) {
	m.set.Remove(id)
}

// Contains reports whether id is selected.
func (m *Manager) Contains(id core.ProductID) bool {
	return m.set.Contains(id)
}

// IDs returns the selection in order.
func (m *Manager) IDs() []core.ProductID {
	return m.set.IDs()
}

// Count returns the selection size shown on the float counter.
func (m *Manager) Count() int {
	return m.set.Len()
}

func (m *Manager) mark(id core.ProductID, selected bool) {
	m.cards.Update(id, func(c *core.Card) {
		c.Compared = selected
	})
}
