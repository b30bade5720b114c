// Package catalog merges the built-in starter pack with external custom
// cards into the session's canonical card list.
package catalog

import (
	"slices"

	"github.com/starford/kartica/internal/models"
)

// Catalog is an immutable, ordered set of cards with unique IDs.
type Catalog struct {
	cards      []models.Card
	byID       map[string]int
	categories []string
}

// New builds a catalog from cards. Later duplicates of an ID are ignored.
func New(cards []models.Card) *Catalog {
	c := &Catalog{
		cards: make([]models.Card, 0, len(cards)),
		byID:  make(map[string]int, len(cards)),
	}
	seen := make(map[string]struct{})
	for _, card := range cards {
		if _, dup := c.byID[card.ID]; dup {
			continue
		}
		c.byID[card.ID] = len(c.cards)
		c.cards = append(c.cards, card)
		seen[card.Category] = struct{}{}
	}

	cats := make([]string, 0, len(seen))
	for name := range seen {
		if name != models.CategoryAll {
			cats = append(cats, name)
		}
	}
	slices.Sort(cats)
	c.categories = append([]string{models.CategoryAll}, cats...)
	return c
}

// Cards returns the cards in catalog order. The slice is a copy.
func (c *Catalog) Cards() []models.Card {
	return slices.Clone(c.cards)
}

// Len returns the number of cards.
func (c *Catalog) Len() int { return len(c.cards) }

// Lookup returns the card with the given ID.
func (c *Catalog) Lookup(id string) (models.Card, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Card{}, false
	}
	return c.cards[i], true
}

// Categories returns the distinct categories sorted, with "All" first.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// HasCategory reports whether name is selectable, including "All".
func (c *Catalog) HasCategory(name string) bool {
	return slices.Contains(c.categories, name)
}
