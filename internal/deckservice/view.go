package deckservice

import (
	"github.com/starford/kartica/internal/deck"
	"github.com/starford/kartica/internal/models"
)

// Status describes whether a card can be shown.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
)

// CardView is a card annotated with its favorite flag.
type CardView struct {
	models.Card
	Favorite bool `json:"favorite"`
}

// View is a point-in-time snapshot of the session.
type View struct {
	Session       string       `json:"session"`
	Status        Status       `json:"status"`
	Card          *CardView    `json:"card,omitempty"`
	Position      int          `json:"position"`
	Total         int          `json:"total"`
	Flipped       bool         `json:"flipped"`
	Filters       deck.Filters `json:"filters"`
	Categories    []string     `json:"categories"`
	Fingerprint   string       `json:"fingerprint"`
	FavoriteCount int          `json:"favorite_count"`
}
