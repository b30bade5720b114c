package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/starford/kartica/internal/catalog"
	"github.com/starford/kartica/internal/deckservice"
	"github.com/starford/kartica/internal/favorites"
	"github.com/starford/kartica/internal/source"
	"github.com/starford/kartica/internal/speech"
	"github.com/starford/kartica/internal/starter"
	"github.com/starford/kartica/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// newLogger builds the process logger. The text format is meant for
// terminals during development.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	if cfg.App.LogFormat == LogFormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      cfg.App.LogLevel,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// session bundles a deck service with the resources it holds open.
type session struct {
	svc       *deckservice.Service
	watchPath string
	audioDir  string
	closers   []func() error
}

func openSession(cfg *Config, logger *slog.Logger, opts ...deckservice.Option) (*session, error) {
	s := &session{}

	backend, err := s.openFavorites(cfg.Favorites)
	if err != nil {
		s.Close()
		return nil, err
	}
	store := favorites.NewStore(backend, cfg.Favorites.Key, logger)

	src := s.openSource(cfg.Source)
	loader := catalog.NewLoader(starter.Cards(), src,
		catalog.WithHook(cfg.Catalog.Hook),
		catalog.WithLogger(logger))

	var speaker speech.Speaker = speech.Nop{}
	if cfg.Speech.Enabled {
		tts, err := speech.NewGoogleTTS(cfg.Speech.CacheDir, cfg.Speech.Endpoint, cfg.Speech.Language)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("init speech: %w", err)
		}
		speaker = tts
		s.audioDir = tts.Dir()
	}

	opts = append([]deckservice.Option{
		deckservice.WithSpeaker(speaker),
		deckservice.WithLogger(logger),
	}, opts...)
	s.svc = deckservice.New(loader, store, opts...)

	logger.Info("Session configured",
		slog.String("session", s.svc.Session()),
		slog.String("source", src.Name()),
		slog.String("favorites_backend", cfg.Favorites.Backend),
		slog.Bool("speech", cfg.Speech.Enabled))
	return s, nil
}

func (s *session) openFavorites(cfg FavoritesConfig) (storage.Provider, error) {
	switch cfg.Backend {
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create favorites dir: %w", err)
		}
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init favorites: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	default:
		fs, err := storage.NewFS(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init favorites: %w", err)
		}
		return fs, nil
	}
}

func (s *session) openSource(cfg SourceConfig) source.Source {
	switch {
	case cfg.Path != "":
		s.watchPath = cfg.Path
		return source.NewFile(cfg.Path, cfg.Columns.Parser())
	case cfg.URL != "":
		return source.NewHTTP(cfg.URL, cfg.Timeout, cfg.Columns.Parser())
	default:
		return source.None{}
	}
}

// Close releases held resources.
func (s *session) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}
