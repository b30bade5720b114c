// Package testutil provides shared test helpers for building ready deck
// sessions over temporary storage.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/kartica/internal/catalog"
	"github.com/starford/kartica/internal/deckservice"
	"github.com/starford/kartica/internal/favorites"
	"github.com/starford/kartica/internal/models"
	"github.com/starford/kartica/internal/shuffle"
	"github.com/starford/kartica/internal/source"
	"github.com/starford/kartica/internal/storage"
)

// QuietLogger only reports errors.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Cards is a small fixed card set spanning three categories. The greeting
// comes first.
func Cards() []models.Card {
	return []models.Card{
		{ID: "greet-hello", Source: "Hello", Target: "Bok", Category: "Greetings"},
		{ID: "food-bread", Source: "Bread", Target: "Kruh", Category: "Food & Drink"},
		{ID: "food-wine", Source: "Wine", Target: "Vino", Category: "Food & Drink"},
		{ID: "time-today", Source: "Today", Target: "Danas", Category: "Time"},
	}
}

// TestFS creates a temporary file-backed storage provider.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestSQLite creates a temporary SQLite storage provider that is closed on cleanup.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "kartica-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewService returns a loaded deck service over cards in authored order,
// with favorites kept in a temporary directory.
func NewService(t *testing.T, cards []models.Card, opts ...deckservice.Option) *deckservice.Service {
	t.Helper()
	_, store := TestFS(t)
	loader := catalog.NewLoader(cards, source.None{},
		catalog.WithHook(false), catalog.WithLogger(QuietLogger()))
	opts = append([]deckservice.Option{
		deckservice.WithLogger(QuietLogger()),
		deckservice.WithRand(shuffle.NewSeeded(1)),
	}, opts...)
	svc := deckservice.New(loader, favorites.NewStore(store, "", QuietLogger()), opts...)
	svc.Load(context.Background())
	return svc
}
