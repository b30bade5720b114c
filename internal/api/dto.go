package api

import (
	"github.com/starford/kartica/internal/deckservice"
)

// View is the deck snapshot response type (aliased from the domain layer).
type View = deckservice.View

// CardView is a card with its favorite flag (aliased from the domain layer).
type CardView = deckservice.CardView

// SetCategoryRequest is the request body for PUT /deck/category.
type SetCategoryRequest struct {
	Category string `json:"category" example:"Food & Drink" validate:"required"`
}

// SpeakRequest is the request body for POST /speak. Empty text speaks the
// current card.
type SpeakRequest struct {
	Text string `json:"text" example:"Dobro jutro"`
}

// SpeakResponse points at the cached audio file.
type SpeakResponse struct {
	Filename string `json:"filename" example:"tts_hr_0123456789abcdef.mp3" validate:"required"`
	URL      string `json:"url" example:"/api/audio/tts_hr_0123456789abcdef.mp3" validate:"required"`
}

// CardsResponse lists every loaded card in browse order.
type CardsResponse struct {
	Cards []CardView `json:"cards" validate:"required"`
	Total int        `json:"total" example:"51" validate:"required"`
}

// CategoriesResponse lists selectable categories, "All" first.
type CategoriesResponse struct {
	Categories []string `json:"categories" validate:"required"`
}

// FavoritesResponse lists favorite card IDs.
type FavoritesResponse struct {
	IDs []string `json:"ids" validate:"required"`
}
