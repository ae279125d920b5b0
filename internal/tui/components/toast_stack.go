package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/shelf/internal/notify"
	"github.com/artpar/shelf/internal/tui"
)

// MaxToasts is how many notices are drawn at once; older ones stay queued
// in the channel until they expire.
const MaxToasts = 4

// ToastStack renders the live notices, newest at the bottom.
type ToastStack struct {
	notices *notify.Channel
	width   int
}

// NewToastStack creates a stack over a notification channel.
func NewToastStack(notices *notify.Channel) *ToastStack {
	return &ToastStack{notices: notices, width: 40}
}

// SetWidth sets the toast width.
func (s *ToastStack) SetWidth(width int) {
	if width > 0 {
		s.width = width
	}
}

// Height returns the number of lines the stack occupies.
func (s *ToastStack) Height() int {
	return len(s.visible())
}

// View renders the stack; empty when there is nothing to show.
func (s *ToastStack) View() string {
	notices := s.visible()
	if len(notices) == 0 {
		return ""
	}

	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, RenderToast(n, s.width))
	}
	return strings.Join(lines, "\n")
}

func (s *ToastStack) visible() []notify.Notice {
	notices := s.notices.Notices()
	if len(notices) > MaxToasts {
		notices = notices[len(notices)-MaxToasts:]
	}
	return notices
}

// RenderToast draws one notice.
func RenderToast(n notify.Notice, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Foreground(lipgloss.Color("255")).
		Background(tui.KindColor(n.Kind))
	if n.Fading {
		style = style.Faint(true).Background(tui.ColorFaded)
	}
	return style.Render(tui.Truncate(n.Kind.Icon()+"  "+n.Message, width-2))
}
