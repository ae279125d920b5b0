// Package registry is the indexed store of the cards currently on the page.
// Cards are kept in an arena keyed by product id, with an ordered slot list
// per section so rendering and exclude sets follow page order.
package registry

import (
	"errors"
	"fmt"

	"github.com/artpar/shelf/internal/core"
)

// Common errors.
var (
	ErrNoCard    = errors.New("no card found in markup")
	ErrNotFound  = errors.New("card not found")
	ErrDuplicate = errors.New("card already visible")
)

// Section is one container of cards, in display order.
type Section struct {
	Name  string
	Cards []core.Card
}

// Page is a snapshot of a rendered catalog page.
type Page struct {
	Sections     []Section
	CartCount    int
	HasCartCount bool
}

// Registry stores the visible cards, one per product id.
type Registry struct {
	cards    map[core.ProductID]*core.Card
	slots    map[string][]core.ProductID
	sections []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		cards: make(map[core.ProductID]*core.Card),
		slots: make(map[string][]core.ProductID),
	}
}

// Load replaces the registry content with the page's cards.
func (r *Registry) Load(page Page) {
	r.cards = make(map[core.ProductID]*core.Card)
	r.slots = make(map[string][]core.ProductID)
	r.sections = nil

	for _, s := range page.Sections {
		r.ensureSection(s.Name)
		for _, c := range s.Cards {
			r.Add(c, s.Name)
		}
	}
}

// Find returns a copy of the card for id.
func (r *Registry) Find(id core.ProductID) (core.Card, bool) {
	c, ok := r.cards[id]
	if !ok {
		return core.Card{}, false
	}
	return *c, true
}

// Has reports whether a card for id is visible.
func (r *Registry) Has(id core.ProductID) bool {
	_, ok := r.cards[id]
	return ok
}

// VisibleIDs returns the ids of every visible card in page order.
func (r *Registry) VisibleIDs() []core.ProductID {
	ids := make([]core.ProductID, 0, len(r.cards))
	for _, name := range r.sections {
		ids = append(ids, r.slots[name]...)
	}
	return ids
}

// Add places a card at the end of section. A card already present under the
// same id is replaced in the arena but keeps a single slot.
func (r *Registry) Add(card core.Card, section string) {
	r.ensureSection(section)
	card.Section = section

	if old, ok := r.cards[card.ID]; ok {
		r.detach(card.ID, old.Section)
	}
	r.cards[card.ID] = &card
	r.slots[section] = append(r.slots[section], card.ID)
}

// Insert parses a card fragment and appends it to section. A fragment for a
// product that is already visible is rejected with ErrDuplicate and the
// returned card carries the parsed id.
func (r *Registry) Insert(markup, section string) (core.Card, error) {
	card, err := ParseCard(markup)
	if err != nil {
		return core.Card{}, err
	}
	if r.Has(card.ID) {
		return card, ErrDuplicate
	}
	r.Add(card, section)
	return *r.cards[card.ID], nil
}

// Remove detaches the card for id. It reports whether a card was removed.
func (r *Registry) Remove(id core.ProductID) bool {
	c, ok := r.cards[id]
	if !ok {
		return false
	}
	r.detach(id, c.Section)
	delete(r.cards, id)
	return true
}

// Update applies fn to the stored card for id. It reports whether the card
// existed; a missing card is left alone.
func (r *Registry) Update(id core.ProductID, fn func(*core.Card)) bool {
	c, ok := r.cards[id]
	if !ok {
		return false
	}
	section := c.Section
	fn(c)
	c.ID = id
	c.Section = section
	return true
}

// Sections returns the section names in page order.
func (r *Registry) Sections() []string {
	out := make([]string, len(r.sections))
	copy(out, r.sections)
	return out
}

// Cards returns copies of the cards in section, in display order.
func (r *Registry) Cards(section string) []core.Card {
	ids := r.slots[section]
	out := make([]core.Card, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.cards[id])
	}
	return out
}

// Len returns the number of visible cards.
func (r *Registry) Len() int {
	return len(r.cards)
}

// String describes the registry for debugging.
func (r *Registry) String() string {
	return fmt.Sprintf("registry{cards: %d, sections: %d}", len(r.cards), len(r.sections))
}

func (r *Registry) ensureSection(name string) {
	if _, ok := r.slots[name]; ok {
		return
	}
	r.slots[name] = nil
	r.sections = append(r.sections, name)
}

func (r *Registry) detach(id core.ProductID, section string) {
	ids := r.slots[section]
	for i, cur := range ids {
		if cur == id {
			r.slots[section] = append(ids[:i:i], ids[i+1:]...)
			return
		}
	}
}
