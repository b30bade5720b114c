// Package deckservice owns one study session: the loaded catalog, the
// favorites, the active filters, the derived deck, the cursor and the flip
// state. Every user intent goes through Service.
package deckservice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/kartica/internal/apperr"
	"github.com/starford/kartica/internal/catalog"
	"github.com/starford/kartica/internal/deck"
	"github.com/starford/kartica/internal/favorites"
	"github.com/starford/kartica/internal/models"
	"github.com/starford/kartica/internal/shuffle"
	"github.com/starford/kartica/internal/speech"
)

// Event kinds passed to EventFunc.
const (
	EventDeckChanged      = "deck.changed"
	EventCursorMoved      = "cursor.moved"
	EventCardFlipped      = "card.flipped"
	EventFavoritesChanged = "favorites.changed"
	EventCatalogReloaded  = "catalog.reloaded"
)

// EventFunc receives every state transition. It is called without the
// service lock held.
type EventFunc func(kind string, view View)

// CatalogLoader produces the card catalog. *catalog.Loader satisfies it.
type CatalogLoader interface {
	Load(ctx context.Context) *catalog.Catalog
}

// Service is safe for concurrent use.
type Service struct {
	loader  CatalogLoader
	favs    *favorites.Store
	speaker speech.Speaker
	rnd     shuffle.Rand
	onEvent EventFunc
	logger  *slog.Logger
	session string

	mu      sync.Mutex
	ready   bool
	cat     *catalog.Catalog
	order   []models.Card // browse order of all cards
	filters deck.Filters
	current []models.Card
	cursor  deck.Cursor
	flipped bool
}

// Option configures a Service.
type Option func(*Service)

// WithSpeaker sets the text-to-speech collaborator.
func WithSpeaker(sp speech.Speaker) Option {
	return func(s *Service) { s.speaker = sp }
}

// WithRand sets the random source used by Shuffle.
func WithRand(r shuffle.Rand) Option {
	return func(s *Service) { s.rnd = r }
}

// WithEvents registers the change listener.
func WithEvents(fn EventFunc) Option {
	return func(s *Service) { s.onEvent = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a service in the loading state. Call Load before use.
func New(loader CatalogLoader, favs *favorites.Store, opts ...Option) *Service {
	s := &Service{
		loader:  loader,
		favs:    favs,
		speaker: speech.Nop{},
		logger:  slog.Default(),
		session: uuid.NewString(),
		filters: deck.DefaultFilters(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = shuffle.NewRand()
	}
	return s
}

// Session returns the session ID.
func (s *Service) Session() string { return s.session }

// Load fetches the catalog, hydrates favorites and builds the first deck.
// The catalog fetch runs without the lock so readers see the loading state.
func (s *Service) Load(ctx context.Context) {
	cat := s.loader.Load(ctx)

	s.mu.Lock()
	s.favs.Hydrate()
	s.install(cat)
	s.ready = true
	s.cursor.Reset()
	s.flipped = false
	v := s.viewLocked()
	s.mu.Unlock()

	s.logger.Info("deck: ready",
		slog.Int("cards", cat.Len()),
		slog.Int("favorites", v.FavoriteCount),
		slog.Int("deck", v.Total))
	s.emit(EventDeckChanged, v)
}

// Reload fetches the catalog again. Favorites and filters are kept; a
// category that no longer exists falls back to All.
func (s *Service) Reload(ctx context.Context) (View, error) {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if !ready {
		return View{}, apperr.ErrLoading
	}

	cat := s.loader.Load(ctx)

	s.mu.Lock()
	prev := s.current
	s.install(cat)
	if !deck.SameIdentity(prev, s.current) {
		s.cursor.Reset()
		s.flipped = false
	}
	v := s.viewLocked()
	s.mu.Unlock()

	s.emit(EventCatalogReloaded, v)
	return v, nil
}

// install replaces the catalog and browse order and rederives the deck.
func (s *Service) install(cat *catalog.Catalog) {
	s.cat = cat
	s.order = cat.Cards()
	if !cat.HasCategory(s.filters.Category) {
		s.filters.Category = models.CategoryAll
	}
	s.current = deck.Build(s.order, s.favs.Current(), s.filters)
	s.cursor.Clamp(len(s.current))
}

// rederive rebuilds the deck and resets the cursor if identity changed.
func (s *Service) rederive() bool {
	next, changed := deck.Derive(s.current, s.order, s.favs.Current(), s.filters)
	s.current = next
	if changed {
		s.cursor.Reset()
		s.flipped = false
	}
	return changed
}

// Snapshot returns the current view.
func (s *Service) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Flip toggles which side of the current card is shown.
func (s *Service) Flip() (View, error) {
	return s.navigate(EventCardFlipped, func() { s.flipped = !s.flipped })
}

// Next moves to the following card, wrapping at the end.
func (s *Service) Next() (View, error) {
	return s.navigate(EventCursorMoved, func() {
		s.cursor.Next(len(s.current))
		s.flipped = false
	})
}

// Previous moves to the preceding card, wrapping at the start.
func (s *Service) Previous() (View, error) {
	return s.navigate(EventCursorMoved, func() {
		s.cursor.Previous(len(s.current))
		s.flipped = false
	})
}

// Shuffle permutes the current deck and installs it as the browse order.
func (s *Service) Shuffle() (View, error) {
	return s.navigate(EventDeckChanged, func() {
		perm := shuffle.Shuffle(s.rnd, s.current)
		s.order = deck.Reorder(s.order, perm)
		s.current = perm
		s.cursor.Reset()
		s.flipped = false
	})
}

func (s *Service) navigate(kind string, fn func()) (View, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return View{}, apperr.ErrLoading
	}
	if len(s.current) == 0 {
		s.mu.Unlock()
		return View{}, apperr.ErrEmptyDeck
	}
	fn()
	v := s.viewLocked()
	s.mu.Unlock()

	s.emit(kind, v)
	return v, nil
}

// ToggleFavorite flips favorite membership of id. An empty id targets the
// current card. An id outside the catalog is accepted only for removal. A persistence failure is logged; the in-memory toggle stands.
func (s *Service) ToggleFavorite(id string) (View, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return View{}, apperr.ErrLoading
	}
	if id == "" {
		if len(s.current) == 0 {
			s.mu.Unlock()
			return View{}, apperr.ErrEmptyDeck
		}
		id = s.current[s.cursor.Pos()].ID
	}
	// Stale favorites no longer in the catalog can still be removed.
	if _, ok := s.cat.Lookup(id); !ok && !s.favs.Current().Has(id) {
		s.mu.Unlock()
		return View{}, apperr.ErrNotFound
	}

	if _, err := s.favs.Toggle(id); err != nil {
		s.logger.Error("deck: favorites not persisted",
			slog.String("id", id), slog.String("error", err.Error()))
	}
	s.rederive()
	v := s.viewLocked()
	s.mu.Unlock()

	s.emit(EventFavoritesChanged, v)
	return v, nil
}

// SetCategory restricts the deck to one category, or "All".
func (s *Service) SetCategory(category string) (View, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return View{}, apperr.ErrLoading
	}
	if !s.cat.HasCategory(category) {
		s.mu.Unlock()
		return View{}, apperr.ErrUnknownCategory
	}
	s.filters.Category = category
	s.rederive()
	s.cursor.Reset()
	s.flipped = false
	v := s.viewLocked()
	s.mu.Unlock()

	s.emit(EventDeckChanged, v)
	return v, nil
}

// ToggleFavoritesOnly switches between all cards and favorites only.
func (s *Service) ToggleFavoritesOnly() (View, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return View{}, apperr.ErrLoading
	}
	s.filters.FavoritesOnly = !s.filters.FavoritesOnly
	s.rederive()
	s.cursor.Reset()
	s.flipped = false
	v := s.viewLocked()
	s.mu.Unlock()

	s.emit(EventDeckChanged, v)
	return v, nil
}

// Speak renders text as audio. Empty text speaks the current card's target
// term. The deck state is not touched.
func (s *Service) Speak(ctx context.Context, text string) (string, error) {
	if text == "" {
		s.mu.Lock()
		switch {
		case !s.ready:
			s.mu.Unlock()
			return "", apperr.ErrLoading
		case len(s.current) == 0:
			s.mu.Unlock()
			return "", apperr.ErrEmptyDeck
		}
		text = s.current[s.cursor.Pos()].Target
		s.mu.Unlock()
	}
	return s.speaker.Speak(ctx, text)
}

// Cards returns all cards in browse order.
func (s *Service) Cards() ([]CardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, apperr.ErrLoading
	}
	fav := s.favs.Current()
	out := make([]CardView, len(s.order))
	for i, c := range s.order {
		out[i] = CardView{Card: c, Favorite: fav.Has(c.ID)}
	}
	return out, nil
}

// Categories returns the selectable categories with "All" first.
func (s *Service) Categories() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, apperr.ErrLoading
	}
	return s.cat.Categories(), nil
}

// Favorites returns the favorite IDs sorted.
func (s *Service) Favorites() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, apperr.ErrLoading
	}
	return s.favs.Current().IDs(), nil
}

func (s *Service) emit(kind string, v View) {
	if s.onEvent != nil {
		s.onEvent(kind, v)
	}
}

func (s *Service) viewLocked() View {
	v := View{
		Session: s.session,
		Status:  StatusLoading,
		Filters: s.filters,
	}
	if !s.ready {
		return v
	}

	fav := s.favs.Current()
	v.Categories = s.cat.Categories()
	v.Total = len(s.current)
	v.Fingerprint = deck.Fingerprint(s.current)
	v.FavoriteCount = fav.Len()
	if len(s.current) == 0 {
		v.Status = StatusEmpty
		return v
	}

	card := s.current[s.cursor.Pos()]
	v.Status = StatusReady
	v.Card = &CardView{Card: card, Favorite: fav.Has(card.ID)}
	v.Position = s.cursor.Pos()
	v.Flipped = s.flipped
	return v
}
