package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kartica/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// audioDir, if non-empty, is served at GET /audio/{filename}.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler, audioDir string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Deck state and navigation.
	r.Get("/deck", h.GetDeck)
	r.Post("/deck/next", h.Next)
	r.Post("/deck/previous", h.Previous)
	r.Post("/deck/shuffle", h.Shuffle)
	r.Post("/deck/flip", h.Flip)
	r.Post("/deck/favorites-only", h.ToggleFavoritesOnly)
	r.Put("/deck/category", h.SetCategory)

	// Catalog.
	r.Get("/cards", h.ListCards)
	r.Get("/categories", h.ListCategories)
	r.Post("/reload", h.Reload)

	// Favorites.
	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites/{id}", h.ToggleFavorite)

	// Speech.
	r.Post("/speak", h.Speak)
	if audioDir != "" {
		r.Get("/audio/{filename}", NewAudioHandler(audioDir).ServeFile)
	}

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
