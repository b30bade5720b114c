package deckservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/starford/kartica/internal/apperr"
	"github.com/starford/kartica/internal/catalog"
	"github.com/starford/kartica/internal/deck"
	"github.com/starford/kartica/internal/favorites"
	"github.com/starford/kartica/internal/models"
	"github.com/starford/kartica/internal/shuffle"
	"github.com/starford/kartica/internal/source"
	"github.com/starford/kartica/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubLoader hands out catalogs in sequence, repeating the last one.
type stubLoader struct {
	cats []*catalog.Catalog
	n    int
}

func (l *stubLoader) Load(context.Context) *catalog.Catalog {
	c := l.cats[min(l.n, len(l.cats)-1)]
	l.n++
	return c
}

type stubSpeaker struct{ got string }

func (s *stubSpeaker) Speak(_ context.Context, text string) (string, error) {
	s.got = text
	return "tts_hr_test.mp3", nil
}

func cardsABC() []models.Card {
	return []models.Card{
		{ID: "A", Source: "Hello", Target: "Bok", Category: "Greetings"},
		{ID: "B", Source: "Bread", Target: "Kruh", Category: "Food"},
		{ID: "C", Source: "Wine", Target: "Vino", Category: "Food"},
	}
}

func fiveCards() []models.Card {
	return []models.Card{
		{ID: "g1", Source: "Hello", Target: "Bok", Category: "Greetings"},
		{ID: "f1", Source: "Bread", Target: "Kruh", Category: "Food"},
		{ID: "f2", Source: "Wine", Target: "Vino", Category: "Food"},
		{ID: "t1", Source: "Today", Target: "Danas", Category: "Time"},
		{ID: "f3", Source: "Water", Target: "Voda", Category: "Food"},
	}
}

type recorder struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recorder) record(kind string, _ View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func newStore(t *testing.T, dir string) *favorites.Store {
	t.Helper()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return favorites.NewStore(fs, "", quietLogger())
}

func newService(t *testing.T, cards []models.Card, opts ...Option) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	loader := &stubLoader{cats: []*catalog.Catalog{catalog.New(cards)}}
	opts = append([]Option{WithLogger(quietLogger()), WithRand(shuffle.NewSeeded(7))}, opts...)
	svc := New(loader, newStore(t, dir), opts...)
	svc.Load(context.Background())
	return svc, dir
}

func deckIDs(s *Service) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deck.Identity(s.current)
}

func TestLoadingStateBeforeLoad(t *testing.T) {
	svc := New(&stubLoader{cats: []*catalog.Catalog{catalog.New(cardsABC())}},
		newStore(t, t.TempDir()), WithLogger(quietLogger()))

	v := svc.Snapshot()
	if v.Status != StatusLoading || v.Card != nil {
		t.Fatalf("view = %+v, want loading without card", v)
	}
	if v.Session == "" {
		t.Error("session id should be set")
	}
	if _, err := svc.Next(); !errors.Is(err, apperr.ErrLoading) {
		t.Errorf("Next err = %v", err)
	}
	if _, err := svc.ToggleFavorite("A"); !errors.Is(err, apperr.ErrLoading) {
		t.Errorf("ToggleFavorite err = %v", err)
	}
	if _, err := svc.Reload(context.Background()); !errors.Is(err, apperr.ErrLoading) {
		t.Errorf("Reload err = %v", err)
	}
	if _, err := svc.Cards(); !errors.Is(err, apperr.ErrLoading) {
		t.Errorf("Cards err = %v", err)
	}
}

func TestGreetingFirstThenCategoryFilter(t *testing.T) {
	loader := catalog.NewLoader(cardsABC(), source.None{},
		catalog.WithRand(shuffle.NewSeeded(3)), catalog.WithLogger(quietLogger()))
	svc := New(loader, newStore(t, t.TempDir()), WithLogger(quietLogger()))
	svc.Load(context.Background())

	v := svc.Snapshot()
	if v.Status != StatusReady || v.Card.ID != "A" || v.Total != 3 {
		t.Fatalf("initial view = %+v", v)
	}
	before := deckIDs(svc)

	v, err := svc.ToggleFavorite("B")
	if err != nil {
		t.Fatal(err)
	}
	if favs, _ := svc.Favorites(); !slices.Equal(favs, []string{"B"}) {
		t.Errorf("favorites = %v", favs)
	}
	if v.FavoriteCount != 1 {
		t.Errorf("favorite count = %d", v.FavoriteCount)
	}

	if _, err := svc.Next(); err != nil {
		t.Fatal(err)
	}
	v, err = svc.SetCategory("Food")
	if err != nil {
		t.Fatal(err)
	}
	var wantFood []string
	for _, id := range before {
		if id != "A" {
			wantFood = append(wantFood, id)
		}
	}
	if got := deckIDs(svc); !slices.Equal(got, wantFood) {
		t.Errorf("food deck = %v, want %v", got, wantFood)
	}
	if v.Position != 0 {
		t.Errorf("position = %d, want 0", v.Position)
	}
}

func TestUnrelatedFavoriteKeepsCursor(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	svc.Next()
	v, _ := svc.Next()
	if v.Position != 2 {
		t.Fatalf("position = %d", v.Position)
	}
	fp := v.Fingerprint

	v, err := svc.ToggleFavorite("t1")
	if err != nil {
		t.Fatal(err)
	}
	if v.Position != 2 || v.Fingerprint != fp {
		t.Errorf("position = %d fingerprint changed = %v", v.Position, v.Fingerprint != fp)
	}
	if v.Card.Favorite != (v.Card.ID == "t1") {
		t.Errorf("favorite flag wrong for %s", v.Card.ID)
	}
}

func TestCurrentCardFavoriteTargetsCursor(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	svc.Next()
	v, err := svc.ToggleFavorite("")
	if err != nil {
		t.Fatal(err)
	}
	if v.Card.ID != "f1" || !v.Card.Favorite {
		t.Errorf("card = %+v", v.Card)
	}
}

func TestWraparound(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	v, _ := svc.Previous()
	if v.Position != 4 || v.Card.ID != "f3" {
		t.Errorf("previous from start = %d %s", v.Position, v.Card.ID)
	}
	v, _ = svc.Next()
	if v.Position != 0 {
		t.Errorf("next from end = %d", v.Position)
	}
}

func TestFavoritesOnlyEmptyDeck(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	v, err := svc.ToggleFavoritesOnly()
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusEmpty || v.Card != nil || v.Total != 0 {
		t.Fatalf("view = %+v", v)
	}
	for name, fn := range map[string]func() (View, error){
		"next": svc.Next, "previous": svc.Previous, "flip": svc.Flip, "shuffle": svc.Shuffle,
	} {
		if _, err := fn(); !errors.Is(err, apperr.ErrEmptyDeck) {
			t.Errorf("%s err = %v", name, err)
		}
	}
	if _, err := svc.ToggleFavorite(""); !errors.Is(err, apperr.ErrEmptyDeck) {
		t.Errorf("toggle current err = %v", err)
	}
	if _, err := svc.Speak(context.Background(), ""); !errors.Is(err, apperr.ErrEmptyDeck) {
		t.Errorf("speak err = %v", err)
	}
}

func TestFavoritesOnlyRemovalResetsCursor(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	svc.ToggleFavorite("f1")
	svc.ToggleFavorite("f2")
	svc.ToggleFavorite("f3")
	svc.ToggleFavoritesOnly()
	svc.Next()
	v, _ := svc.Next()
	if v.Card.ID != "f3" {
		t.Fatalf("card = %s", v.Card.ID)
	}

	v, err := svc.ToggleFavorite("f3")
	if err != nil {
		t.Fatal(err)
	}
	if v.Total != 2 || v.Position != 0 || v.Card.ID != "f1" {
		t.Errorf("view = total %d pos %d card %s", v.Total, v.Position, v.Card.ID)
	}
}

func TestFlipClearedOnMove(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	v, _ := svc.Flip()
	if !v.Flipped {
		t.Fatal("expected flipped")
	}
	v, _ = svc.Flip()
	if v.Flipped {
		t.Fatal("second flip should show the front")
	}
	svc.Flip()
	v, _ = svc.Next()
	if v.Flipped {
		t.Error("next should clear flip")
	}
}

func TestShufflePermutesViewInPlace(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	svc.SetCategory("Food")
	svc.Next()

	v, err := svc.Shuffle()
	if err != nil {
		t.Fatal(err)
	}
	if v.Position != 0 {
		t.Errorf("position = %d", v.Position)
	}
	shuffled := deckIDs(svc)
	sorted := slices.Sorted(slices.Values(shuffled))
	if !slices.Equal(sorted, []string{"f1", "f2", "f3"}) {
		t.Fatalf("shuffled = %v", shuffled)
	}

	svc.SetCategory(models.CategoryAll)
	all := deckIDs(svc)
	if all[0] != "g1" || all[3] != "t1" {
		t.Errorf("non-food cards moved: %v", all)
	}
	got := []string{all[1], all[2], all[4]}
	if !slices.Equal(got, shuffled) {
		t.Errorf("food slots = %v, want %v", got, shuffled)
	}
}

func TestShuffleUsesAllCardsWhenUnfiltered(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	before := svc.Snapshot().Fingerprint
	seen := false
	for range 10 {
		v, _ := svc.Shuffle()
		if v.Total != 5 {
			t.Fatalf("total = %d", v.Total)
		}
		if v.Fingerprint != before {
			seen = true
		}
	}
	if !seen {
		t.Error("ten shuffles never changed the order")
	}
}

func TestInvalidInputs(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	if _, err := svc.SetCategory("Sports"); !errors.Is(err, apperr.ErrUnknownCategory) {
		t.Errorf("SetCategory err = %v", err)
	}
	if _, err := svc.ToggleFavorite("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ToggleFavorite err = %v", err)
	}
}

func TestStaleFavoriteCanBeRemoved(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Put(favorites.DefaultKey, []byte(`["custom-9"]`)); err != nil {
		t.Fatal(err)
	}
	loader := &stubLoader{cats: []*catalog.Catalog{catalog.New(cardsABC())}}
	svc := New(loader, favorites.NewStore(fs, "", quietLogger()), WithLogger(quietLogger()))
	svc.Load(context.Background())

	if _, err := svc.ToggleFavorite("custom-9"); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if favs, _ := svc.Favorites(); len(favs) != 0 {
		t.Errorf("favorites = %v, want empty", favs)
	}
	if _, err := svc.ToggleFavorite("custom-9"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("re-adding stale id err = %v, want ErrNotFound", err)
	}
}

func TestFavoritesPersistAcrossSessions(t *testing.T) {
	svc, dir := newService(t, fiveCards())
	svc.ToggleFavorite("f2")
	svc.ToggleFavorite("t1")
	svc.ToggleFavorite("f2")

	loader := &stubLoader{cats: []*catalog.Catalog{catalog.New(fiveCards())}}
	again := New(loader, newStore(t, dir), WithLogger(quietLogger()))
	again.Load(context.Background())
	if favs, _ := again.Favorites(); !slices.Equal(favs, []string{"t1"}) {
		t.Errorf("favorites = %v", favs)
	}
	if again.Session() == svc.Session() {
		t.Error("sessions should differ")
	}
}

func TestReloadKeepsFavoritesAndFallsBackCategory(t *testing.T) {
	first := catalog.New(fiveCards())
	second := catalog.New(cardsABC())
	loader := &stubLoader{cats: []*catalog.Catalog{first, second}}
	rec := &recorder{}
	svc := New(loader, newStore(t, t.TempDir()),
		WithLogger(quietLogger()), WithEvents(rec.record))
	svc.Load(context.Background())

	svc.ToggleFavorite("t1")
	svc.SetCategory("Time")

	v, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Filters.Category != models.CategoryAll {
		t.Errorf("category = %q", v.Filters.Category)
	}
	if v.Total != 3 || v.Position != 0 {
		t.Errorf("total = %d position = %d", v.Total, v.Position)
	}
	if favs, _ := svc.Favorites(); !slices.Equal(favs, []string{"t1"}) {
		t.Errorf("favorites = %v", favs)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{EventDeckChanged, EventFavoritesChanged, EventDeckChanged, EventCatalogReloaded}
	if !slices.Equal(rec.kinds, want) {
		t.Errorf("events = %v, want %v", rec.kinds, want)
	}
}

func TestReloadSameCatalogKeepsCursor(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	svc.Next()
	svc.Next()
	v, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Position != 2 {
		t.Errorf("position = %d, want 2", v.Position)
	}
}

func TestSpeakDelegates(t *testing.T) {
	sp := &stubSpeaker{}
	svc, _ := newService(t, fiveCards(), WithSpeaker(sp))
	before := svc.Snapshot()

	name, err := svc.Speak(context.Background(), "")
	if err != nil || name != "tts_hr_test.mp3" {
		t.Fatalf("Speak = %q, %v", name, err)
	}
	if sp.got != "Bok" {
		t.Errorf("spoken = %q", sp.got)
	}
	svc.Speak(context.Background(), "Laku noć")
	if sp.got != "Laku noć" {
		t.Errorf("spoken = %q", sp.got)
	}
	after := svc.Snapshot()
	if after.Position != before.Position || after.Fingerprint != before.Fingerprint {
		t.Error("speak changed deck state")
	}
}

func TestSpeakDisabledByDefault(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	if _, err := svc.Speak(context.Background(), "Bok"); !errors.Is(err, apperr.ErrSpeechDisabled) {
		t.Errorf("err = %v", err)
	}
}

func TestCardsCarryFavoriteFlag(t *testing.T) {
	svc, _ := newService(t, fiveCards())
	svc.ToggleFavorite("f2")
	cards, err := svc.Cards()
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 5 {
		t.Fatalf("len = %d", len(cards))
	}
	for _, c := range cards {
		if c.Favorite != (c.ID == "f2") {
			t.Errorf("%s favorite = %v", c.ID, c.Favorite)
		}
	}
	cats, _ := svc.Categories()
	if !slices.Equal(cats, []string{"All", "Food", "Greetings", "Time"}) {
		t.Errorf("categories = %v", cats)
	}
}
