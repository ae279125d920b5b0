package views

import (
	"errors"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/shelf/internal/app"
	"github.com/artpar/shelf/internal/authority/authoritytest"
	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/remote"
	"github.com/artpar/shelf/internal/replace"
	"github.com/artpar/shelf/internal/timer"
	"github.com/artpar/shelf/internal/tui/components"
)

var h authoritytest.Handlers

type viewFixture struct {
	srv   *authoritytest.Server
	view  *CatalogView
	sched *timer.Manual
}

func newViewFixture(t *testing.T, routes map[string]http.HandlerFunc) *viewFixture {
	t.Helper()
	all := map[string]http.HandlerFunc{
		remote.PathDashboard: h.HTML(http.StatusOK, authoritytest.Page(1, []string{"content"}, map[string][]string{
			"content": {
				authoritytest.Card("1", "Mug", 250),
				authoritytest.Card("2", "Lamp", 1200),
				authoritytest.Card("3", "Rug", 3400),
			},
		})),
		remote.PathFeedback: h.JSON(http.StatusOK, map[string]string{"status": "success"}),
	}
	for path, handler := range routes {
		all[path] = handler
	}
	srv := authoritytest.New(all)
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL)
	require.NoError(t, err)

	sched := timer.NewManual()
	f := &viewFixture{
		srv:   srv,
		sched: sched,
		view:  NewCatalogView(app.New(client, app.WithScheduler(sched)), srv.URL),
	}
	f.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	f.run(t, f.view.Init())
	require.True(t, f.view.Session().Loaded())
	return f
}

func (f *viewFixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := f.view.Update(msg)
	f.run(t, cmd)
}

func (f *viewFixture) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			f.run(t, c)
		}
	default:
		if _, ok := msg.(tea.QuitMsg); ok {
			return
		}
		f.send(t, msg)
	}
}

func (f *viewFixture) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		f.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (f *viewFixture) latestNotice(t *testing.T) string {
	t.Helper()
	n, ok := f.view.Session().Notices().Latest()
	require.True(t, ok)
	return n.Message
}

func TestCatalogView_Load(t *testing.T) {
	f := newViewFixture(t, nil)

	view := f.view.View()
	assert.Contains(t, view, "Mug")
	assert.Contains(t, view, "Cart 1")
	assert.Contains(t, view, "3 products")
}

func TestCatalogView_CartKeys(t *testing.T) {
	f := newViewFixture(t, map[string]http.HandlerFunc{
		remote.PathAddToCart: h.Cart("success", 2, "Added"),
	})

	f.press(t, "l", "t")

	card, _ := f.view.Session().Cards().Find("2")
	assert.Equal(t, core.ModeRemovable, card.Mode)
	assert.Contains(t, f.view.View(), "Cart 2")

	var body remote.CartRequest
	require.NoError(t, f.srv.LastRequest().Decode(&body))
	assert.Equal(t, core.ProductID("2"), body.ProductID)
}

func TestCatalogView_DismissNotice(t *testing.T) {
	f := newViewFixture(t, nil)

	f.press(t, "c")
	require.Equal(t, 1, f.view.Session().Notices().Len())

	f.press(t, "n")
	assert.Zero(t, f.view.Session().Notices().Len())
	assert.Equal(t, 1, f.view.Session().CompareCount())
}

func TestCatalogView_Compare(t *testing.T) {
	t.Run("open without selection informs", func(t *testing.T) {
		f := newViewFixture(t, nil)
		f.press(t, "v")
		assert.False(t, f.view.Session().ComparisonOpen())
		assert.Equal(t, MsgNothingToCompare, f.latestNotice(t))
	})

	t.Run("select, open and close", func(t *testing.T) {
		f := newViewFixture(t, nil)
		f.press(t, "c", "l", "c", "v")

		require.True(t, f.view.Session().ComparisonOpen())
		view := f.view.View()
		assert.Contains(t, view, "Compare Products")
		assert.Contains(t, view, "Lamp")

		f.send(t, tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, f.view.Session().ComparisonOpen())
		assert.Equal(t, 2, f.view.Session().CompareCount())
		assert.Contains(t, f.view.View(), "Compare (2)")
	})

	t.Run("clear from the modal", func(t *testing.T) {
		f := newViewFixture(t, nil)
		f.press(t, "c", "v", "x")

		assert.False(t, f.view.Session().ComparisonOpen())
		assert.Zero(t, f.view.Session().CompareCount())
	})

	t.Run("copy", func(t *testing.T) {
		f := newViewFixture(t, nil)
		var copied string
		f.view.writeClipboard = func(s string) error {
			copied = s
			return nil
		}

		f.press(t, "c", "v", "y")

		assert.Contains(t, copied, "Mug")
		assert.Equal(t, MsgCopied, f.latestNotice(t))
	})

	t.Run("copy failure", func(t *testing.T) {
		f := newViewFixture(t, nil)
		f.view.writeClipboard = func(string) error { return errors.New("no clipboard") }

		f.press(t, "c", "v", "y")

		assert.Equal(t, MsgCopyFailed, f.latestNotice(t))
	})
}

func TestCatalogView_Dislike(t *testing.T) {
	f := newViewFixture(t, map[string]http.HandlerFunc{
		remote.PathReplacement: h.Replacement(authoritytest.Card("8", "Clock", 700)),
	})

	f.press(t, "d")
	assert.Contains(t, f.view.View(), "removing...")

	for _, msg := range f.sched.Fire(replace.DefaultDelay) {
		f.send(t, msg)
	}

	assert.Equal(t, []core.ProductID{"2", "3", "8"}, f.view.Session().Cards().VisibleIDs())
	id, _ := f.view.Grid().Selected()
	assert.Equal(t, core.ProductID("2"), id)
	assert.Contains(t, f.view.View(), "Clock")
}

func TestCatalogView_Like(t *testing.T) {
	f := newViewFixture(t, nil)
	f.press(t, "u")

	card, _ := f.view.Session().Cards().Find("1")
	assert.True(t, card.Liked)
	assert.Equal(t, app.MsgLiked, f.latestNotice(t))
}

func TestCatalogView_Help(t *testing.T) {
	f := newViewFixture(t, nil)

	f.press(t, "?")
	assert.True(t, f.view.ShowingHelp())
	assert.Contains(t, f.view.View(), "Shelf Help")

	f.press(t, "d")
	assert.Equal(t, 3, f.view.Session().Cards().Len())

	f.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.view.ShowingHelp())
}

func TestCatalogView_Quit(t *testing.T) {
	f := newViewFixture(t, nil)
	_, cmd := f.view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestCatalogView_CompareMessages(t *testing.T) {
	f := newViewFixture(t, nil)
	f.press(t, "c", "v")

	f.send(t, components.CloseCompareMsg{})
	assert.False(t, f.view.Session().ComparisonOpen())

	f.send(t, components.ClearCompareMsg{})
	assert.Zero(t, f.view.Session().CompareCount())
}
