package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/kartica/internal/models"
	"github.com/starford/kartica/internal/shuffle"
	"github.com/starford/kartica/internal/source"
)

// Loader produces a Catalog from the built-in set and an external source.
type Loader struct {
	builtin []models.Card
	src     source.Source
	rndMu   sync.Mutex // guards rnd; Load may run concurrently
	rnd     shuffle.Rand
	hook    bool
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRand sets the random source used for hook ordering.
func WithRand(r shuffle.Rand) LoaderOption {
	return func(l *Loader) { l.rnd = r }
}

// WithHook enables or disables greeting-first randomized ordering.
func WithHook(enabled bool) LoaderOption {
	return func(l *Loader) { l.hook = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader. Hook ordering is on by default.
func NewLoader(builtin []models.Card, src source.Source, opts ...LoaderOption) *Loader {
	if src == nil {
		src = source.None{}
	}
	l := &Loader{
		builtin: builtin,
		src:     src,
		hook:    true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rnd == nil {
		l.rnd = shuffle.NewRand()
	}
	return l
}

// Load fetches custom cards and merges them after the built-in set.
// Source failures are logged and the built-in set is used alone.
// It is safe to call from several goroutines.
func (l *Loader) Load(ctx context.Context) *Catalog {
	raw, err := l.src.Fetch(ctx)
	if err != nil {
		l.logger.Warn("catalog: external source failed, using built-in cards only",
			slog.String("source", l.src.Name()),
			slog.String("error", err.Error()))
		raw = nil
	}

	merged := Merge(l.builtin, raw, l.logger)
	if l.hook {
		l.rndMu.Lock()
		merged = HookOrder(l.rnd, merged)
		l.rndMu.Unlock()
	}

	cat := New(merged)
	l.logger.Info("catalog: loaded",
		slog.Int("cards", cat.Len()),
		slog.Int("builtin", len(l.builtin)),
		slog.Int("custom", cat.Len()-countBuiltin(cat, l.builtin)),
		slog.String("source", l.src.Name()))
	return cat
}

// Merge appends validated custom records after the built-in cards.
// Custom IDs are custom-<row>. A record whose ID is already taken is
// dropped with a warning; the first occurrence wins.
func Merge(builtin []models.Card, raw []models.RawCard, logger *slog.Logger) []models.Card {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]models.Card, 0, len(builtin)+len(raw))
	ids := make(map[string]struct{}, len(builtin)+len(raw))

	add := func(c models.Card) {
		if _, dup := ids[c.ID]; dup {
			logger.Warn("catalog: duplicate card id dropped", slog.String("id", c.ID))
			return
		}
		ids[c.ID] = struct{}{}
		out = append(out, c)
	}

	for _, c := range builtin {
		add(c)
	}
	for _, r := range raw {
		r = r.Trimmed()
		card := models.Card{
			ID:       fmt.Sprintf("%s%d", models.CustomIDPrefix, r.Row),
			Source:   r.Source,
			Target:   r.Target,
			Category: models.CategoryCustom,
			Custom:   true,
		}
		if err := card.Validate(); err != nil {
			logger.Debug("catalog: invalid custom card dropped",
				slog.Int("row", r.Row), slog.String("error", err.Error()))
			continue
		}
		add(card)
	}
	return out
}

// HookOrder puts one random greeting first and shuffles everything else
// after it. Without greetings the whole list is shuffled.
func HookOrder(r shuffle.Rand, cards []models.Card) []models.Card {
	var greetings, rest []models.Card
	for _, c := range cards {
		if strings.EqualFold(c.Category, models.CategoryGreetings) {
			greetings = append(greetings, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(greetings) == 0 {
		return shuffle.Shuffle(r, cards)
	}

	i := shuffle.Pick(r, len(greetings))
	first := greetings[i]
	remaining := make([]models.Card, 0, len(cards)-1)
	remaining = append(remaining, greetings[:i]...)
	remaining = append(remaining, greetings[i+1:]...)
	remaining = append(remaining, rest...)

	out := make([]models.Card, 0, len(cards))
	out = append(out, first)
	return append(out, shuffle.Shuffle(r, remaining)...)
}

func countBuiltin(cat *Catalog, builtin []models.Card) int {
	n := 0
	for _, c := range builtin {
		if _, ok := cat.Lookup(c.ID); ok {
			n++
		}
	}
	return n
}
