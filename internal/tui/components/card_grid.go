package components

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/registry"
	"github.com/artpar/shelf/internal/tui"
)

// CardWidth is the rendered width of one card including its border.
const CardWidth = 30

// CardGrid lays the registry's cards out in rows per section and tracks
// the card under the cursor.
type CardGrid struct {
	*tui.BaseComponent
	cards *registry.Registry

	selected  core.ProductID
	lastIndex int
}

// NewCardGrid creates a grid over cards.
func NewCardGrid(cards *registry.Registry) *CardGrid {
	g := &CardGrid{BaseComponent: tui.NewBaseComponent("Catalog"), cards: cards}
	g.Focus()
	return g
}

// Update moves the cursor on navigation keys.
func (g *CardGrid) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if dir, ok := tui.NavKey(msg); ok {
			g.Move(dir)
		}
	}
	return g, nil
}

// Selected returns the card under the cursor.
func (g *CardGrid) Selected() (core.ProductID, bool) {
	id := g.resolve()
	return id, !id.IsZero()
}

// Select puts the cursor on id if it is visible.
func (g *CardGrid) Select(id core.ProductID) bool {
	ids := g.cards.VisibleIDs()
	i := slices.Index(ids, id)
	if i < 0 {
		return false
	}
	g.selected = id
	g.lastIndex = i
	return true
}

// Move shifts the cursor one step in dir, staying inside the grid.
func (g *CardGrid) Move(dir tui.NavDirection) {
	current := g.resolve()
	if current.IsZero() {
		return
	}

	rows := g.rows()
	r, c := locate(rows, current)
	switch dir {
	case tui.NavLeft:
		if c > 0 {
			c--
		} else if r > 0 {
			r--
			c = len(rows[r]) - 1
		}
	case tui.NavRight:
		if c < len(rows[r])-1 {
			c++
		} else if r < len(rows)-1 {
			r++
			c = 0
		}
	case tui.NavUp:
		if r > 0 {
			r--
			c = min(c, len(rows[r])-1)
		}
	case tui.NavDown:
		if r < len(rows)-1 {
			r++
			c = min(c, len(rows[r])-1)
		}
	}
	g.Select(rows[r][c])
}

// Columns returns how many cards fit side by side.
func (g *CardGrid) Columns() int {
	return max(1, g.Width()/CardWidth)
}

// resolve returns the selected id, falling back to the card now occupying
// the last cursor position when the selected card left the page.
func (g *CardGrid) resolve() core.ProductID {
	ids := g.cards.VisibleIDs()
	if len(ids) == 0 {
		g.selected = ""
		g.lastIndex = 0
		return ""
	}
	if i := slices.Index(ids, g.selected); i >= 0 {
		g.lastIndex = i
		return g.selected
	}
	g.lastIndex = min(max(g.lastIndex, 0), len(ids)-1)
	g.selected = ids[g.lastIndex]
	return g.selected
}

type gridRow struct {
	section string
	first   bool
	ids     []core.ProductID
}

func (g *CardGrid) layout() []gridRow {
	cols := g.Columns()
	var out []gridRow
	for _, name := range g.cards.Sections() {
		cards := g.cards.Cards(name)
		for i := 0; i < len(cards); i += cols {
			row := gridRow{section: name, first: i == 0}
			for _, c := range cards[i:min(i+cols, len(cards))] {
				row.ids = append(row.ids, c.ID)
			}
			out = append(out, row)
		}
	}
	return out
}

func (g *CardGrid) rows() [][]core.ProductID {
	layout := g.layout()
	rows := make([][]core.ProductID, len(layout))
	for i, r := range layout {
		rows[i] = r.ids
	}
	return rows
}

func locate(rows [][]core.ProductID, id core.ProductID) (int, int) {
	for r, row := range rows {
		if c := slices.Index(row, id); c >= 0 {
			return r, c
		}
	}
	return 0, 0
}

// View renders the grid, scrolled so the cursor row is visible.
func (g *CardGrid) View() string {
	selected := g.resolve()
	if selected.IsZero() {
		return lipgloss.NewStyle().
			Width(g.Width()).
			Height(g.Height()).
			Foreground(tui.ColorMuted).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No products to show")
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(tui.ColorTitle).Padding(0, 1)

	var lines []string
	cursorTop, cursorBottom := 0, 0
	for _, row := range g.layout() {
		if row.first {
			lines = append(lines, headerStyle.Render(sectionTitle(row.section)))
		}
		rendered := make([]string, 0, len(row.ids))
		for _, id := range row.ids {
			card, _ := g.cards.Find(id)
			rendered = append(rendered, RenderCard(card, id == selected && g.Focused()))
		}
		block := strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), "\n")
		if slices.Contains(row.ids, selected) {
			cursorTop = len(lines)
			cursorBottom = len(lines) + len(block)
		}
		lines = append(lines, block...)
	}

	if g.Height() > 0 && len(lines) > g.Height() {
		start := 0
		if cursorBottom > g.Height() {
			start = cursorBottom - g.Height()
		}
		start = min(start, cursorTop)
		lines = lines[start:min(start+g.Height(), len(lines))]
	}
	return strings.Join(lines, "\n")
}

// RenderCard draws one card.
func RenderCard(card core.Card, cursor bool) string {
	inner := CardWidth - 4

	title := lipgloss.NewStyle().Bold(true).Render(tui.Truncate(card.Title, inner))
	price := lipgloss.NewStyle().Foreground(tui.ColorSuccess).Render(card.PriceText())
	vendor := lipgloss.NewStyle().Foreground(tui.ColorMuted).Render(tui.Truncate(card.Vendor, inner-lipgloss.Width(card.PriceText())-1))

	toggle := lipgloss.NewStyle().Foreground(tui.ColorKey).Render("[" + card.Mode.Sign() + "] " + card.Mode.Label())

	var marks []string
	if card.Compared {
		marks = append(marks, lipgloss.NewStyle().Foreground(tui.ColorInfo).Render("⇄ comparing"))
	}
	if card.Liked {
		marks = append(marks, lipgloss.NewStyle().Foreground(tui.ColorHeart).Render("♥ liked"))
	}
	if card.Fading {
		marks = []string{"removing..."}
	}

	body := strings.Join([]string{
		title,
		price + " " + vendor,
		toggle,
		strings.Join(marks, " "),
	}, "\n")

	style := lipgloss.NewStyle().
		Width(CardWidth-2).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(tui.ColorMuted)
	if cursor {
		style = style.BorderForeground(tui.ColorAccent)
	}
	if card.Fading {
		style = style.Faint(true).BorderForeground(tui.ColorFaded)
	}
	return style.Render(body)
}

func sectionTitle(name string) string {
	switch name {
	case "content":
		return "Because you viewed similar items"
	case "collab":
		return "Customers like you also bought"
	case "hybrid":
		return "Recommended for you"
	}
	return name
}

