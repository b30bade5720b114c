// Package starter provides the built-in card set shipped with the binary.
package starter

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/kartica/internal/models"
)

//go:embed starter.yaml
var starterYAML []byte

var (
	once   sync.Once
	pack   []models.Card
	decErr error
)

// Cards returns a copy of the built-in cards in authored order.
func Cards() ([]models.Card, error) {
	once.Do(func() {
		pack, decErr = Decode(starterYAML)
	})
	if decErr != nil {
		return nil, decErr
	}
	out := make([]models.Card, len(pack))
	copy(out, pack)
	return out, nil
}

// Decode parses a YAML list of cards and validates each one.
func Decode(data []byte) ([]models.Card, error) {
	var cards []models.Card
	if err := yaml.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("starter: decode: %w", err)
	}
	for i, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("starter: card %d (%s): %w", i, c.ID, err)
		}
	}
	return cards, nil
}
