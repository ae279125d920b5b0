package views

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/shelf/internal/app"
	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/tui"
	"github.com/artpar/shelf/internal/tui/components"
)

// Notice texts owned by the view.
const (
	MsgNothingToCompare = "Select products to compare first."
	MsgCopied           = "Comparison copied."
	MsgCopyFailed       = "Copy failed."
)

// CatalogView is the single-screen catalog: header, card grid, toasts and
// the comparison modal.
type CatalogView struct {
	session  *app.Session
	grid     *components.CardGrid
	toasts   *components.ToastStack
	panel    *components.ComparePanel
	width    int
	height   int
	showHelp bool
	baseURL  string

	// writeClipboard is swapped in tests.
	writeClipboard func(string) error
}

// NewCatalogView creates a view over session.
func NewCatalogView(session *app.Session, baseURL string) *CatalogView {
	return &CatalogView{
		session:        session,
		grid:           components.NewCardGrid(session.Cards()),
		toasts:         components.NewToastStack(session.Notices()),
		panel:          components.NewComparePanel(),
		baseURL:        baseURL,
		writeClipboard: clipboard.WriteAll,
	}
}

// Init loads the catalog.
func (v *CatalogView) Init() tea.Cmd {
	return v.session.Load()
}

// Update handles messages.
func (v *CatalogView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	if cmd, handled := v.session.Update(msg); handled {
		return v, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case components.CloseCompareMsg:
		v.session.CloseComparison()
		return v, nil

	case components.ClearCompareMsg:
		return v, v.session.ClearComparison()

	case components.CopyMsg:
		if err := v.writeClipboard(msg.Content); err != nil {
			return v, v.session.Notices().Error(MsgCopyFailed)
		}
		return v, v.session.Notices().Success(MsgCopied)
	}
	return v, nil
}

func (v *CatalogView) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return v, tea.Quit
	}

	if v.showHelp {
		if msg.Type == tea.KeyEsc || string(msg.Runes) == "?" {
			v.showHelp = false
		}
		return v, nil
	}

	if v.session.ComparisonOpen() {
		_, cmd := v.panel.Update(msg)
		return v, cmd
	}

	if msg.Type == tea.KeyRunes {
		switch string(msg.Runes) {
		case "q":
			return v, tea.Quit
		case "?":
			v.showHelp = true
			return v, nil
		case "r":
			return v, v.session.Load()
		case "v":
			return v, v.openComparison()
		case "x":
			return v, v.session.ClearComparison()
		case "n":
			v.session.Notices().Dismiss()
			return v, nil
		}
	}

	if id, ok := v.grid.Selected(); ok {
		if cmd, ok := v.cardAction(msg, id); ok {
			return v, cmd
		}
	}

	_, cmd := v.grid.Update(msg)
	return v, cmd
}

// cardAction runs the gesture bound to msg on the card under the cursor.
func (v *CatalogView) cardAction(msg tea.KeyMsg, id core.ProductID) (tea.Cmd, bool) {
	if msg.Type == tea.KeyEnter {
		return v.session.ToggleCart(id), true
	}
	switch string(msg.Runes) {
	case "a":
		return v.session.AddToCart(id), true
	case "t", "+", "-":
		return v.session.ToggleCart(id), true
	case "c":
		return v.session.ToggleCompare(id), true
	case "d":
		return v.session.Dislike(id), true
	case "u":
		return v.session.Like(id), true
	}
	return nil, false
}

func (v *CatalogView) openComparison() tea.Cmd {
	table, ok := v.session.OpenComparison()
	if !ok {
		return v.session.Notices().Info(MsgNothingToCompare)
	}
	v.panel.SetTable(table)
	return nil
}

func (v *CatalogView) updateSizes() {
	if v.width == 0 || v.height == 0 {
		return
	}
	// header + help bar + status bar + toasts
	reserved := 3 + components.MaxToasts
	v.grid.SetSize(v.width, max(v.height-reserved, 1))
	v.toasts.SetWidth(min(v.width, 60))
	v.panel.SetSize(v.width, v.height)
}

// View renders the view.
func (v *CatalogView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}
	if v.showHelp {
		return v.renderHelp()
	}
	if v.session.ComparisonOpen() {
		return v.panel.View()
	}

	parts := []string{v.renderHeader(), v.grid.View()}
	if toasts := v.toasts.View(); toasts != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(v.width, lipgloss.Right, toasts))
	}
	parts = append(parts, v.renderHelpBar(), v.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *CatalogView) renderHeader() string {
	brand := lipgloss.NewStyle().Bold(true).Foreground(tui.ColorTitle).Padding(0, 1).Render("shelf")

	badge := "–"
	if n, ok := v.session.CartCount(); ok {
		badge = fmt.Sprintf("%d", n)
	}
	cart := lipgloss.NewStyle().
		Background(tui.ColorAccent).
		Foreground(tui.ColorTitle).
		Padding(0, 1).
		Render("Cart " + badge)

	var right []string
	if n := v.session.CompareCount(); n > 0 {
		right = append(right, lipgloss.NewStyle().
			Background(tui.ColorInfo).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Render(fmt.Sprintf("Compare (%d)", n)))
	}
	right = append(right, cart)

	rightContent := strings.Join(right, " ")
	spacer := max(v.width-lipgloss.Width(brand)-lipgloss.Width(rightContent), 0)
	return lipgloss.NewStyle().
		Width(v.width).
		Background(tui.ColorBarLight).
		Render(brand + strings.Repeat(" ", spacer) + rightContent)
}

// renderHelpBar renders the keyboard shortcuts.
func (v *CatalogView) renderHelpBar() string {
	keyStyle := lipgloss.NewStyle().Foreground(tui.ColorKey).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(tui.ColorText)
	sep := lipgloss.NewStyle().Foreground(tui.ColorMuted).Render(" │ ")

	hints := []string{
		keyStyle.Render("hjkl") + descStyle.Render(" Move"),
		keyStyle.Render("t") + descStyle.Render(" Cart"),
		keyStyle.Render("c") + descStyle.Render(" Compare"),
		keyStyle.Render("v") + descStyle.Render(" View compare"),
		keyStyle.Render("d") + descStyle.Render(" Dislike"),
		keyStyle.Render("u") + descStyle.Render(" Like"),
		keyStyle.Render("?") + descStyle.Render(" Help"),
	}
	return lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Render(strings.Join(hints, sep))
}

func (v *CatalogView) renderStatusBar() string {
	style := lipgloss.NewStyle().Foreground(tui.ColorMuted).Padding(0, 1)

	items := []string{style.Render(v.baseURL)}
	if v.session.Loaded() {
		items = append(items, style.Render(fmt.Sprintf("%d products", v.session.Cards().Len())))
	} else {
		items = append(items, style.Render("loading..."))
	}
	if id, ok := v.grid.Selected(); ok {
		items = append(items, style.Render("#"+id.String()))
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Background(tui.ColorBarLight).
		Render(strings.Join(items, " "))
}

func (v *CatalogView) renderHelp() string {
	helpContent := []string{
		"╭──────────────────── Shelf Help ────────────────────╮",
		"│                                                     │",
		"│  Navigation                                         │",
		"│    ←↓↑→ / h j k l     Move between cards           │",
		"│                                                     │",
		"│  Cart                                               │",
		"│    a                  Add to cart                  │",
		"│    t / + / - / Enter  Toggle cart                  │",
		"│                                                     │",
		"│  Compare                                            │",
		"│    c                  Select / deselect            │",
		"│    v                  Open comparison              │",
		"│    x                  Clear comparison             │",
		"│    y                  Copy table (when open)       │",
		"│    Esc                Close comparison             │",
		"│                                                     │",
		"│  Feedback                                           │",
		"│    d                  Not interested (replace)     │",
		"│    u                  Like                         │",
		"│                                                     │",
		"│  General                                            │",
		"│    r                  Reload catalog               │",
		"│    n                  Dismiss latest notice        │",
		"│    ?                  Toggle this help             │",
		"│    q / Ctrl+C         Quit                         │",
		"│                                                     │",
		"│           Press ? or Esc to close                  │",
		"╰─────────────────────────────────────────────────────╯",
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(helpContent, "\n"))
}

// Title returns the view title.
func (v *CatalogView) Title() string { return "Shelf" }

// Focused returns true if focused.
func (v *CatalogView) Focused() bool { return true }

// Focus sets focus.
func (v *CatalogView) Focus() {}

// Blur removes focus.
func (v *CatalogView) Blur() {}

// SetSize sets dimensions.
func (v *CatalogView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updateSizes()
}

// Width returns the width.
func (v *CatalogView) Width() int { return v.width }

// Height returns the height.
func (v *CatalogView) Height() int { return v.height }

// Grid returns the card grid.
func (v *CatalogView) Grid() *components.CardGrid { return v.grid }

// Session returns the catalog session.
func (v *CatalogView) Session() *app.Session { return v.session }

// ShowingHelp returns true if help is showing.
func (v *CatalogView) ShowingHelp() bool { return v.showHelp }
