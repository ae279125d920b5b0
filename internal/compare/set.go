// Package compare manages the bounded selection of products shown side by
// side in the comparison view.
package compare

import (
	"errors"
	"slices"

	"github.com/artpar/shelf/internal/core"
)

// Limit is the maximum number of products in a comparison.
const Limit = 3

// Common errors.
var (
	ErrLimitReached = errors.New("comparison limit reached")
	ErrDuplicate    = errors.New("product already in comparison")
)

// Set is an ordered, duplicate-free selection of at most Limit products.
// The zero value is an empty set.
type Set struct {
	ids []core.ProductID
}

// Add appends id. It fails without mutating when id is present or the set
// is full.
func (s *Set) Add(id core.ProductID) error {
	if s.Contains(id) {
		return ErrDuplicate
	}
	if len(s.ids) >= Limit {
		return ErrLimitReached
	}
	s.ids = append(s.ids, id)
	return nil
}

// Remove drops id, keeping the order of the remaining members.
func (s *Set) Remove(id core.ProductID) bool {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true
}

// Contains reports whether id is selected.
func (s *Set) Contains(id core.ProductID) bool {
	return slices.Contains(s.ids, id)
}

// IDs returns the members in insertion order.
func (s *Set) IDs() []core.ProductID {
	return slices.Clone(s.ids)
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.ids)
}

// Full reports whether another member would exceed Limit.
func (s *Set) Full() bool {
	return len(s.ids) >= Limit
}

// Clear empties the set.
func (s *Set) Clear() {
	s.ids = nil
}
