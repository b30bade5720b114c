// Package deck derives the browsable view of a card list and tracks the
// position within it. Everything here is pure or value-typed; callers own
// synchronization.
package deck

import (
	"slices"

	"github.com/starford/kartica/internal/checksum"
	"github.com/starford/kartica/internal/models"
)

// Membership answers whether a card ID is a favorite.
type Membership interface {
	Has(id string) bool
}

// Filters select the subset of cards being browsed.
type Filters struct {
	FavoritesOnly bool   `json:"favorites_only"`
	Category      string `json:"category"`
}

// DefaultFilters shows every card.
func DefaultFilters() Filters {
	return Filters{Category: models.CategoryAll}
}

// Build returns the cards of all that pass filters, in their original
// relative order. A nil favorites is treated as empty.
func Build(all []models.Card, favorites Membership, f Filters) []models.Card {
	out := make([]models.Card, 0, len(all))
	for _, c := range all {
		if f.FavoritesOnly && (favorites == nil || !favorites.Has(c.ID)) {
			continue
		}
		if f.Category != "" && f.Category != models.CategoryAll && c.Category != f.Category {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Identity is the ordered sequence of card IDs.
func Identity(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// SameIdentity reports whether a and b hold the same IDs in the same order.
func SameIdentity(a, b []models.Card) bool {
	return slices.EqualFunc(a, b, func(x, y models.Card) bool { return x.ID == y.ID })
}

// Fingerprint digests the deck identity into a stable version token.
func Fingerprint(cards []models.Card) string {
	return checksum.SumStrings(Identity(cards))
}

// Derive rebuilds the deck and reports whether its identity differs from prev.
func Derive(prev, all []models.Card, favorites Membership, f Filters) ([]models.Card, bool) {
	next := Build(all, favorites, f)
	return next, !SameIdentity(prev, next)
}

// Reorder installs perm, a permutation of a subset of all, into the slots
// those cards occupy in all. Cards outside perm keep their positions.
func Reorder(all, perm []models.Card) []models.Card {
	inPerm := make(map[string]struct{}, len(perm))
	for _, c := range perm {
		inPerm[c.ID] = struct{}{}
	}
	out := make([]models.Card, len(all))
	next := 0
	for i, c := range all {
		if _, ok := inPerm[c.ID]; ok && next < len(perm) {
			out[i] = perm[next]
			next++
			continue
		}
		out[i] = c
	}
	return out
}
