package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/artpar/shelf/internal/compare"
	"github.com/artpar/shelf/internal/tui"
)

// CloseCompareMsg asks the owner to close the comparison view.
type CloseCompareMsg struct{}

// ClearCompareMsg asks the owner to clear the comparison.
type ClearCompareMsg struct{}

// CopyMsg carries text to put on the clipboard.
type CopyMsg struct {
	Content string
}

// ComparePanel is the modal showing a comparison table.
type ComparePanel struct {
	*tui.BaseComponent
	table compare.Table
}

// NewComparePanel creates an empty panel.
func NewComparePanel() *ComparePanel {
	return &ComparePanel{BaseComponent: tui.NewBaseComponent("Compare")}
}

// SetTable replaces the table shown.
func (p *ComparePanel) SetTable(t compare.Table) {
	p.table = t
}

// Table returns the table shown.
func (p *ComparePanel) Table() compare.Table {
	return p.table
}

// Update turns panel keys into requests for the owner.
func (p *ComparePanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return p, emit(CloseCompareMsg{})
		}
		switch string(msg.Runes) {
		case "v", "q":
			return p, emit(CloseCompareMsg{})
		case "x":
			return p, emit(ClearCompareMsg{})
		case "y":
			return p, emit(CopyMsg{Content: p.table.Text()})
		}
	}
	return p, nil
}

// View renders the modal.
func (p *ComparePanel) View() string {
	title := tui.RenderTitle("Compare Products", max(p.Width()-4, 20), true)

	var body string
	if p.table.Empty() {
		body = lipgloss.NewStyle().
			Foreground(tui.ColorMuted).
			Padding(1, 2).
			Render("The compared products are no longer on the page.")
	} else {
		headerStyle := lipgloss.NewStyle().Bold(true).Foreground(tui.ColorTitle).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Foreground(tui.ColorText).Padding(0, 1)
		featureStyle := cellStyle.Foreground(tui.ColorKey)

		body = table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(tui.ColorAccent)).
			Headers(p.table.Headers()...).
			Rows(p.table.Rows()...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case col == 0:
					return featureStyle
				}
				return cellStyle
			}).
			String()
	}

	hints := lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("esc close │ x clear │ y copy")
	content := strings.Join([]string{title, body, hints}, "\n")

	return lipgloss.Place(p.Width(), p.Height(), lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(tui.ColorAccent).
			Padding(0, 1).
			Render(content))
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
