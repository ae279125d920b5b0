package compare

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/notify"
	"github.com/artpar/shelf/internal/registry"
	"github.com/artpar/shelf/internal/timer"
)

func newManager(t *testing.T, n int) (*Manager, *registry.Registry, *notify.Channel) {
	t.Helper()
	reg := registry.New()
	for i := 1; i <= n; i++ {
		id := core.ProductID(string(rune('0' + i)))
		reg.Add(core.Card{
			ID:       id,
			Title:    "Item " + id.String(),
			Price:    float64(i) * 100,
			Vendor:   "Meevyy",
			ImageURL: "/static/" + id.String() + ".png",
		}, "content")
	}
	notices := notify.New(timer.NewManual())
	return NewManager(reg, notices), reg, notices
}

func TestManager_Toggle(t *testing.T) {
	t.Run("select marks card and notifies", func(t *testing.T) {
		m, reg, notices := newManager(t, 3)

		m.Toggle("2")

		assert.True(t, m.Contains("2"))
		card, _ := reg.Find("2")
		assert.True(t, card.Compared)
		n, _ := notices.Latest()
		assert.Equal(t, MsgAdded, n.Message)
		assert.Equal(t, notify.KindSuccess, n.Kind)
	})

	t.Run("deselect unmarks card", func(t *testing.T) {
		m, reg, notices := newManager(t, 3)
		m.Toggle("2")
		before := notices.Len()

		m.Toggle("2")

		assert.False(t, m.Contains("2"))
		card, _ := reg.Find("2")
		assert.False(t, card.Compared)
		assert.Equal(t, before, notices.Len())
	})

	t.Run("fourth selection is rejected", func(t *testing.T) {
		m, reg, notices := newManager(t, 4)
		m.Toggle("1")
		m.Toggle("2")
		m.Toggle("3")

		m.Toggle("4")

		assert.Equal(t, []core.ProductID{"1", "2", "3"}, m.IDs())
		card, _ := reg.Find("4")
		assert.False(t, card.Compared)
		n, _ := notices.Latest()
		assert.Equal(t, MsgLimit, n.Message)
		assert.Equal(t, notify.KindError, n.Kind)
	})

	t.Run("unknown card is ignored", func(t *testing.T) {
		m, _, notices := newManager(t, 1)
		assert.Nil(t, m.Toggle("9"))
		assert.Zero(t, m.Count())
		assert.Zero(t, notices.Len())
	})

	t.Run("random gestures keep the set bounded", func(t *testing.T) {
		m, _, _ := newManager(t, 6)
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 500; i++ {
			m.Toggle(core.ProductID(string(rune('1' + rng.Intn(6)))))
			require.LessOrEqual(t, m.Count(), Limit)
		}
	})
}

func TestManager_Render(t *testing.T) {
	t.Run("empty set is a no-op", func(t *testing.T) {
		m, _, _ := newManager(t, 2)
		_, ok := m.Render()
		assert.False(t, ok)
		assert.False(t, m.IsOpen())
	})

	t.Run("columns follow selection order", func(t *testing.T) {
		m, _, _ := newManager(t, 3)
		m.Toggle("3")
		m.Toggle("1")

		tbl, ok := m.Render()
		require.True(t, ok)
		assert.True(t, m.IsOpen())
		require.Len(t, tbl.Columns, 2)
		assert.Equal(t, core.ProductID("3"), tbl.Columns[0].ID)
		assert.Equal(t, "₹300.00", tbl.Columns[0].Price)
		assert.Equal(t, []string{"Feature", "Item 3", "Item 1"}, tbl.Headers())
	})

	t.Run("resolves attributes live", func(t *testing.T) {
		m, reg, _ := newManager(t, 2)
		m.Toggle("1")
		reg.Update("1", func(c *core.Card) { c.Title = "Renamed" })

		tbl, _ := m.Render()
		assert.Equal(t, "Renamed", tbl.Columns[0].Title)
	})

	t.Run("missing card is omitted", func(t *testing.T) {
		m, reg, _ := newManager(t, 2)
		m.Toggle("1")
		m.Toggle("2")
		reg.Remove("1")

		tbl, ok := m.Render()
		require.True(t, ok)
		require.Len(t, tbl.Columns, 1)
		assert.Equal(t, core.ProductID("2"), tbl.Columns[0].ID)
		assert.Equal(t, 2, m.Count())
	})

	t.Run("close keeps the selection", func(t *testing.T) {
		m, _, _ := newManager(t, 1)
		m.Toggle("1")
		m.Render()
		m.Close()
		assert.False(t, m.IsOpen())
		assert.Equal(t, 1, m.Count())
	})
}

func TestManager_Clear(t *testing.T) {
	m, reg, notices := newManager(t, 3)
	m.Toggle("1")
	m.Toggle("2")
	m.Toggle("3")
	reg.Remove("3")
	m.Render()

	m.Clear()

	for _, id := range []core.ProductID{"1", "2"} {
		card, _ := reg.Find(id)
		assert.False(t, card.Compared, id)
	}
	assert.Zero(t, m.Count())
	assert.False(t, m.IsOpen())
	n, _ := notices.Latest()
	assert.Equal(t, MsgCleared, n.Message)
	assert.Equal(t, notify.KindInfo, n.Kind)

	_, ok := m.Render()
	assert.False(t, ok)
	assert.False(t, m.IsOpen())
}

func TestManager_Forget(t *testing.T) {
	m, _, notices := newManager(t, 2)
	m.Toggle("1")
	m.Toggle("2")
	before := notices.Len()

	m.Forget("1")

	assert.Equal(t, []core.ProductID{"2"}, m.IDs())
	assert.Equal(t, before, notices.Len())
}

func TestTable_Text(t *testing.T) {
	tbl := Table{Columns: []Column{
		{ID: "1", Title: "Mug", ImageURL: "/m.png", Price: "₹10.00", Vendor: "Meevyy"},
		{ID: "2", Title: "Lamp", ImageURL: "/l.png", Price: "₹20.00", Vendor: "Meevyy"},
	}}

	text := tbl.Text()
	for _, want := range []string{"Feature", "Mug", "Lamp", "Price", "₹20.00", "Vendor", "Image"} {
		assert.True(t, strings.Contains(text, want), want)
	}
	assert.False(t, tbl.Empty())
	assert.True(t, Table{}.Empty())
}
