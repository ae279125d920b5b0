package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/shelf/internal/core"
)

const cardFragment = `
<div class="card" id="card-12" data-id="12" data-title="Brass Lamp" data-price="1299.5"
     data-vendor="Meevyy" data-img="https://img.test/12.jpg">
  <h3>Brass Lamp</h3>
  <button class="icon-btn cart-toggle remove-mode" title="Remove from Cart"><span class="sign">-</span></button>
  <button class="icon-btn compare-btn"><span class="sign">+</span></button>
</div>`

func TestParseCard(t *testing.T) {
	t.Run("reads attributes", func(t *testing.T) {
		card, err := ParseCard(cardFragment)
		require.NoError(t, err)

		assert.Equal(t, core.ProductID("12"), card.ID)
		assert.Equal(t, "Brass Lamp", card.Title)
		assert.Equal(t, 1299.5, card.Price)
		assert.Equal(t, "Meevyy", card.Vendor)
		assert.Equal(t, "https://img.test/12.jpg", card.ImageURL)
		assert.Equal(t, core.ModeRemovable, card.Mode)
		assert.False(t, card.Compared)
	})

	t.Run("addable without remove-mode", func(t *testing.T) {
		card, err := ParseCard(`<div class="card" data-id="1"><button class="cart-toggle"></button></div>`)
		require.NoError(t, err)
		assert.Equal(t, core.ModeAddable, card.Mode)
	})

	t.Run("active compare control", func(t *testing.T) {
		card, err := ParseCard(`<div class="card" data-id="1"><button class="compare-btn active"></button></div>`)
		require.NoError(t, err)
		assert.True(t, card.Compared)
	})

	t.Run("finds nested card", func(t *testing.T) {
		card, err := ParseCard(`<div class="col"><article class="card wide" data-id="5"></article></div>`)
		require.NoError(t, err)
		assert.Equal(t, core.ProductID("5"), card.ID)
	})

	t.Run("no card", func(t *testing.T) {
		_, err := ParseCard(`<div class="cardigan" data-id="1"></div>`)
		assert.ErrorIs(t, err, ErrNoCard)
	})

	t.Run("empty id is invalid", func(t *testing.T) {
		_, err := ParseCard(`<div class="card" data-id=""></div>`)
		assert.Error(t, err)
	})

	t.Run("bad price", func(t *testing.T) {
		_, err := ParseCard(`<div class="card" data-id="1" data-price="cheap"></div>`)
		assert.ErrorContains(t, err, "invalid price")
	})
}

func TestParsePage(t *testing.T) {
	page := `<!DOCTYPE html>
<html><body>
<nav><a href="/cart">Cart <span id="nav-cart-count"> 2 </span></a></nav>
<section data-section="content">
  <div class="card" data-id="1" data-title="Mug" data-price="299"></div>
  <div class="card" data-id="2" data-title="Lamp" data-price="899"><button class="cart-toggle remove-mode"></button></div>
</section>
<section data-section="hybrid">
  <div class="card" data-id="3" data-title="Scarf" data-price="499"></div>
</section>
<section data-section="empty"></section>
</body></html>`

	t.Run("reads sections and badge", func(t *testing.T) {
		p, err := ParsePage(page)
		require.NoError(t, err)

		assert.True(t, p.HasCartCount)
		assert.Equal(t, 2, p.CartCount)
		require.Len(t, p.Sections, 3)
		assert.Equal(t, "content", p.Sections[0].Name)
		assert.Len(t, p.Sections[0].Cards, 2)
		assert.Equal(t, core.ModeRemovable, p.Sections[0].Cards[1].Mode)
		assert.Empty(t, p.Sections[2].Cards)
	})

	t.Run("loads into registry", func(t *testing.T) {
		p, err := ParsePage(page)
		require.NoError(t, err)

		r := New()
		r.Load(p)
		assert.Equal(t, []core.ProductID{"1", "2", "3"}, r.VisibleIDs())
	})

	t.Run("missing badge", func(t *testing.T) {
		p, err := ParsePage(`<section data-section="a"></section>`)
		require.NoError(t, err)
		assert.False(t, p.HasCartCount)
	})

	t.Run("invalid card fails the page", func(t *testing.T) {
		_, err := ParsePage(`<section data-section="a"><div class="card" data-id="1" data-price="x"></div></section>`)
		assert.ErrorContains(t, err, `section "a"`)
	})
}
