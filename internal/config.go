package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kartica/internal/favorites"
	"github.com/starford/kartica/internal/parser"
	"github.com/starford/kartica/internal/source"
	"github.com/starford/kartica/internal/speech"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Favorites backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Source    SourceConfig      `yaml:"source"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Favorites FavoritesConfig   `yaml:"favorites"`
	Speech    SpeechConfig      `yaml:"speech"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Favorites.Validate(); err != nil {
		return err
	}
	if err := c.Speech.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
	CORS      CORSConfig `yaml:"cors"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

// SourceConfig selects where custom cards come from. A local path wins over
// the URL; with neither set only the built-in cards are used.
type SourceConfig struct {
	URL     string        `yaml:"url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the header cells holding each side of a card.
type ColumnsConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.Columns),
	)
}

// Validate validates the column names.
func (c ColumnsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Target, validation.Required, validation.NotIn(c.Source).Error("must differ from source")),
	)
}

// Parser returns the column names in parser form.
func (c ColumnsConfig) Parser() parser.Columns {
	return parser.Columns{Source: c.Source, Target: c.Target}
}

// CatalogConfig controls how the loaded card list is ordered.
type CatalogConfig struct {
	// Hook puts a random greeting first and shuffles the rest.
	Hook bool `yaml:"hook"`
}

// FavoritesConfig holds favorites persistence configuration.
// Path is a directory for the file backend and a database file for sqlite.
type FavoritesConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

// Validate validates the favorites configuration.
func (c *FavoritesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// SpeechConfig holds text-to-speech configuration.
type SpeechConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	CacheDir string `yaml:"cache_dir"`
	Endpoint string `yaml:"endpoint"`
}

// Validate validates the speech configuration.
func (c *SpeechConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Language, validation.When(c.Enabled, validation.Required, validation.Length(2, 8))),
		validation.Field(&c.CacheDir, validation.When(c.Enabled, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:5173"},
				MaxAge:         600,
			},
		},
		Source: SourceConfig{
			URL:     source.DefaultURL,
			Timeout: 10 * time.Second,
			Columns: ColumnsConfig{
				Source: parser.DefaultColumns.Source,
				Target: parser.DefaultColumns.Target,
			},
		},
		Catalog: CatalogConfig{
			Hook: true,
		},
		Favorites: FavoritesConfig{
			Backend: BackendFile,
			Path:    "./data",
			Key:     favorites.DefaultKey,
		},
		Speech: SpeechConfig{
			Enabled:  false,
			Language: "hr",
			CacheDir: "./data/audio",
			Endpoint: speech.DefaultEndpoint,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
