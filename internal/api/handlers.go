package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kartica/internal/apperr"
	"github.com/starford/kartica/internal/deckservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetDeck handles GET /api/deck.
//
//	@Summary		Current deck snapshot
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	View
//	@Security		BearerAuth
//	@Router			/deck [get]
func (h *Handler) GetDeck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}

// Next handles POST /api/deck/next.
//
//	@Summary		Move to the next card, wrapping at the end
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	View
//	@Failure		409	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck/next [post]
func (h *Handler) Next(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, "next", h.svc.Next)
}

// Previous handles POST /api/deck/previous.
//
//	@Summary		Move to the previous card, wrapping at the start
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	View
//	@Failure		409	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck/previous [post]
func (h *Handler) Previous(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, "previous", h.svc.Previous)
}

// Shuffle handles POST /api/deck/shuffle.
//
//	@Summary		Shuffle the cards in the current view
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	View
//	@Failure		409	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck/shuffle [post]
func (h *Handler) Shuffle(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, "shuffle", h.svc.Shuffle)
}

// Flip handles POST /api/deck/flip.
//
//	@Summary		Flip the current card
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	View
//	@Failure		409	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck/flip [post]
func (h *Handler) Flip(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, "flip", h.svc.Flip)
}

// ToggleFavoritesOnly handles POST /api/deck/favorites-only.
//
//	@Summary		Switch between all cards and favorites only
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	View
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck/favorites-only [post]
func (h *Handler) ToggleFavoritesOnly(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, "toggle favorites only", h.svc.ToggleFavoritesOnly)
}

// SetCategory handles PUT /api/deck/category.
//
//	@Summary		Restrict the deck to one category
//	@Tags			deck
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetCategoryRequest	true	"Category name or All"
//	@Success		200		{object}	View
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck/category [put]
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SetCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("category is required"))
		return
	}
	view, err := h.svc.SetCategory(req.Category)
	if err != nil {
		writeServiceError(w, "set category", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListCards handles GET /api/cards.
//
//	@Summary		All loaded cards in browse order
//	@Tags			cards
//	@Produce		json
//	@Success		200	{object}	CardsResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, _ *http.Request) {
	cards, err := h.svc.Cards()
	if err != nil {
		writeServiceError(w, "list cards", err)
		return
	}
	writeJSON(w, http.StatusOK, CardsResponse{Cards: cards, Total: len(cards)})
}

// ListCategories handles GET /api/categories.
//
//	@Summary		Selectable categories
//	@Tags			cards
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	cats, err := h.svc.Categories()
	if err != nil {
		writeServiceError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// Reload handles POST /api/reload.
//
//	@Summary		Fetch the external cards again
//	@Tags			cards
//	@Produce		json
//	@Success		200	{object}	View
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Reload(r.Context())
	if err != nil {
		writeServiceError(w, "reload", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListFavorites handles GET /api/favorites.
//
//	@Summary		Favorite card IDs
//	@Tags			favorites
//	@Produce		json
//	@Success		200	{object}	FavoritesResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, _ *http.Request) {
	ids, err := h.svc.Favorites()
	if err != nil {
		writeServiceError(w, "list favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{IDs: ids})
}

// ToggleFavorite handles POST /api/favorites/{id}.
//
//	@Summary		Add or remove a favorite
//	@Tags			favorites
//	@Produce		json
//	@Param			id	path		string	true	"Card ID"
//	@Success		200	{object}	View
//	@Failure		404	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/favorites/{id} [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	view, err := h.svc.ToggleFavorite(id)
	if err != nil {
		writeServiceError(w, "toggle favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Speak handles POST /api/speak.
//
//	@Summary		Render text as audio
//	@Tags			speech
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SpeakRequest	false	"Text to speak; empty speaks the current card"
//	@Success		200		{object}	SpeakResponse
//	@Failure		501		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/speak [post]
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	name, err := h.svc.Speak(r.Context(), req.Text)
	if err != nil {
		if isServiceError(err) {
			writeServiceError(w, "speak", err)
			return
		}
		slog.Warn("speech failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("speech unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, SpeakResponse{Filename: name, URL: "/api/audio/" + name})
}

func (h *Handler) respond(w http.ResponseWriter, op string, fn func() (deckservice.View, error)) {
	view, err := fn()
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func isServiceError(err error) bool {
	return errors.Is(err, apperr.ErrLoading) ||
		errors.Is(err, apperr.ErrEmptyDeck) ||
		errors.Is(err, apperr.ErrSpeechDisabled)
}
