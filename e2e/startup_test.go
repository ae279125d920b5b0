package e2e

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/shelf/e2e/harness"
)

func TestActualStartup(t *testing.T) {
	h := harness.New(t, harness.Config{})

	// Start loads the catalog the way tea.Program runs Init.
	s := h.TUI().StartWithSize(t, 120, 40)
	output := s.Output()
	t.Logf("Rendered %d bytes", len(output))

	a := harness.NewAssertions(t)
	a.OutputContains(output, "shelf", "Cart 0", "12 products")

	// a resize must not lose the selection
	before := s.Selected()
	s.Send(tea.WindowSizeMsg{Width: 80, Height: 24})
	if s.Selected() != before {
		t.Errorf("selection changed on resize: %s -> %s", before, s.Selected())
	}
	if s.Output() == "" {
		t.Error("empty render after resize")
	}
}
