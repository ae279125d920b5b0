package harness

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/shelf/internal/app"
	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/remote"
	"github.com/artpar/shelf/internal/replace"
	"github.com/artpar/shelf/internal/timer"
	"github.com/artpar/shelf/internal/tui/views"
)

// TUIRunner provides TUI testing capabilities.
type TUIRunner struct {
	harness *E2EHarness
}

// TUISession drives a CatalogView in-process. Network commands run for
// real against the harness authority; timers wait on a manual scheduler.
type TUISession struct {
	runner *TUIRunner
	model  *views.CatalogView
	sched  *timer.Manual
	t      *testing.T
	quit   bool
}

// Start starts a new TUI session and loads the catalog.
func (r *TUIRunner) Start(t *testing.T) *TUISession {
	return r.StartWithSize(t, 140, 50)
}

// StartWithSize starts a TUI session with custom dimensions.
func (r *TUIRunner) StartWithSize(t *testing.T, width, height int) *TUISession {
	t.Helper()

	client, err := remote.NewClient(r.harness.ServerURL(), remote.WithTimeout(r.harness.timeout))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	sched := timer.NewManual()
	session := app.New(client, app.WithScheduler(sched))
	model := views.NewCatalogView(session, client.BaseURL())
	model.SetSize(width, height)

	s := &TUISession{
		runner: r,
		model:  model,
		sched:  sched,
		t:      t,
	}
	s.executeCmd(model.Init())
	return s
}

// SendKey sends a key press.
func (s *TUISession) SendKey(key string) *TUISession {
	s.dispatch(parseKeyMsg(key))
	return s
}

// SendKeys sends multiple key presses.
func (s *TUISession) SendKeys(keys ...string) *TUISession {
	for _, key := range keys {
		s.SendKey(key)
	}
	return s
}

// Send feeds an arbitrary message to the view.
func (s *TUISession) Send(msg tea.Msg) *TUISession {
	s.dispatch(msg)
	return s
}

// AdvanceDislike releases pending card removals.
func (s *TUISession) AdvanceDislike() *TUISession {
	return s.Advance(replace.DefaultDelay)
}

// Advance releases every timer scheduled with exactly d.
func (s *TUISession) Advance(d time.Duration) *TUISession {
	for _, msg := range s.sched.Fire(d) {
		s.dispatch(msg)
	}
	return s
}

// ExpireNotices releases every pending timer, letting toasts fade and expire.
func (s *TUISession) ExpireNotices() *TUISession {
	for len(s.sched.Pending()) > 0 {
		for _, msg := range s.sched.FireAll() {
			s.dispatch(msg)
		}
	}
	return s
}

func (s *TUISession) dispatch(msg tea.Msg) {
	updated, cmd := s.model.Update(msg)
	s.model = updated.(*views.CatalogView)
	s.executeCmd(cmd)
}

// executeCmd executes a tea.Cmd and feeds the resulting messages back in.
func (s *TUISession) executeCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}

	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			s.executeCmd(c)
		}
	case tea.QuitMsg:
		s.quit = true
	default:
		s.dispatch(msg)
	}
}

// Output returns the current TUI output.
func (s *TUISession) Output() string {
	return s.model.View()
}

// WaitForOutput reports whether text is in the output. Commands run
// synchronously, so there is nothing to poll.
func (s *TUISession) WaitForOutput(text string) error {
	if strings.Contains(s.Output(), text) {
		return nil
	}
	return &TimeoutError{text: text, timeout: s.runner.harness.timeout}
}

// Quitting reports whether the view asked to quit.
func (s *TUISession) Quitting() bool {
	return s.quit
}

// Model returns the underlying CatalogView for direct assertions.
func (s *TUISession) Model() *views.CatalogView {
	return s.model
}

// Session returns the catalog session.
func (s *TUISession) Session() *app.Session {
	return s.model.Session()
}

// Selected returns the card under the cursor.
func (s *TUISession) Selected() core.ProductID {
	id, _ := s.model.Grid().Selected()
	return id
}

// SelectCard moves the cursor to id.
func (s *TUISession) SelectCard(id core.ProductID) *TUISession {
	if !s.model.Grid().Select(id) {
		s.t.Fatalf("card %s is not visible", id)
	}
	return s
}

// ShowingHelp returns true if help overlay is visible.
func (s *TUISession) ShowingHelp() bool {
	return s.model.ShowingHelp()
}

// Notices returns the texts of the visible notices, oldest first.
func (s *TUISession) Notices() []string {
	var out []string
	for _, n := range s.Session().Notices().Notices() {
		out = append(out, n.Message)
	}
	return out
}

// TimeoutError represents a timeout waiting for output.
type TimeoutError struct {
	text    string
	timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "timeout after " + e.timeout.String() + " waiting for: " + e.text
}

// parseKeyMsg converts key string to tea.KeyMsg.
func parseKeyMsg(key string) tea.KeyMsg {
	switch strings.ToLower(key) {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc", "escape":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}
