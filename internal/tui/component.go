package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/shelf/internal/notify"
)

// Component is the interface for all TUI components.
type Component interface {
	// Init initializes the component.
	Init() tea.Cmd

	// Update handles messages and returns the updated component.
	Update(msg tea.Msg) (Component, tea.Cmd)

	// View renders the component.
	View() string

	// Title returns the component title.
	Title() string

	// Focused returns true if the component is focused.
	Focused() bool

	// Focus sets the component as focused.
	Focus()

	// Blur removes focus from the component.
	Blur()

	// SetSize sets the component dimensions.
	SetSize(width, height int)

	// Width returns the component width.
	Width() int

	// Height returns the component height.
	Height() int
}

// NavDirection represents a navigation direction.
type NavDirection int

const (
	NavUp NavDirection = iota
	NavDown
	NavLeft
	NavRight
)

// NavKey maps arrow and hjkl keys to a direction.
func NavKey(msg tea.KeyMsg) (NavDirection, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return NavUp, true
	case tea.KeyDown:
		return NavDown, true
	case tea.KeyLeft:
		return NavLeft, true
	case tea.KeyRight:
		return NavRight, true
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "k":
			return NavUp, true
		case "j":
			return NavDown, true
		case "h":
			return NavLeft, true
		case "l":
			return NavRight, true
		}
	}
	return 0, false
}

// BaseComponent holds the title, focus and size shared by components.
// Embedders supply Update and View.
type BaseComponent struct {
	title   string
	focused bool
	width   int
	height  int
}

// NewBaseComponent creates a new base component.
func NewBaseComponent(title string) *BaseComponent {
	return &BaseComponent{title: title}
}

// Init initializes the component.
func (c *BaseComponent) Init() tea.Cmd {
	return nil
}

// Title returns the component title.
func (c *BaseComponent) Title() string { return c.title }

// Focused returns true if focused.
func (c *BaseComponent) Focused() bool { return c.focused }

// Focus sets the component as focused.
func (c *BaseComponent) Focus() { c.focused = true }

// Blur removes focus.
func (c *BaseComponent) Blur() { c.focused = false }

// SetSize sets dimensions.
func (c *BaseComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the width.
func (c *BaseComponent) Width() int { return c.width }

// Height returns the height.
func (c *BaseComponent) Height() int { return c.height }

// Palette
var (
	ColorAccent   = lipgloss.Color("62")
	ColorMuted    = lipgloss.Color("240")
	ColorText     = lipgloss.Color("252")
	ColorTitle    = lipgloss.Color("229")
	ColorKey      = lipgloss.Color("214")
	ColorSuccess  = lipgloss.Color("34")
	ColorError    = lipgloss.Color("160")
	ColorInfo     = lipgloss.Color("39")
	ColorFaded    = lipgloss.Color("238")
	ColorHeart    = lipgloss.Color("205")
	ColorBarLight = lipgloss.Color("236")
)

// KindColor returns the color for a notice kind.
func KindColor(k notify.Kind) lipgloss.Color {
	switch k {
	case notify.KindSuccess:
		return ColorSuccess
	case notify.KindError:
		return ColorError
	default:
		return ColorInfo
	}
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(ColorTitle).Background(ColorAccent)
	} else {
		style = style.Foreground(ColorText).Background(ColorFaded)
	}
	return style.Render(title)
}

// Truncate shortens s to width cells, ending with "..." when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
