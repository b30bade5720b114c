// Package speech turns card text into playable audio.
package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/kartica/internal/apperr"
	"github.com/starford/kartica/internal/checksum"
)

// DefaultEndpoint is the Google Translate text-to-speech endpoint.
const DefaultEndpoint = "https://translate.google.com/translate_tts"

const (
	requestTimeout = 10 * time.Second
	maxAudioBytes  = 5 << 20
	maxTextRunes   = 200
)

// Speaker renders text as audio and returns a file name servable from Dir.
type Speaker interface {
	Speak(ctx context.Context, text string) (string, error)
}

// Nop is used when speech is disabled.
type Nop struct{}

// Speak always fails with apperr.ErrSpeechDisabled.
func (Nop) Speak(context.Context, string) (string, error) {
	return "", apperr.ErrSpeechDisabled
}

// GoogleTTS fetches MP3 audio and caches it on disk, one file per
// language and text.
type GoogleTTS struct {
	dir      string
	endpoint string
	lang     string
	client   *http.Client
}

// NewGoogleTTS creates the cache directory if needed.
func NewGoogleTTS(dir, endpoint, lang string) (*GoogleTTS, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if lang == "" {
		lang = "hr"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("speech: create cache dir: %w", err)
	}
	return &GoogleTTS{
		dir:      dir,
		endpoint: endpoint,
		lang:     lang,
		client:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// Dir returns the cache directory.
func (g *GoogleTTS) Dir() string { return g.dir }

// FileName returns the cache file name for text.
func (g *GoogleTTS) FileName(text string) string {
	sum := checksum.Sum([]byte(g.lang + "\x00" + normalize(text)))
	return fmt.Sprintf("tts_%s_%s.mp3", g.lang, sum[:16])
}

// Speak returns the cached file for text, downloading it on first use.
func (g *GoogleTTS) Speak(ctx context.Context, text string) (string, error) {
	text = normalize(text)
	if text == "" {
		return "", fmt.Errorf("speech: empty text")
	}
	if len([]rune(text)) > maxTextRunes {
		return "", fmt.Errorf("speech: text longer than %d characters", maxTextRunes)
	}

	name := g.FileName(text)
	target := filepath.Join(g.dir, name)
	if _, err := os.Stat(target); err == nil {
		return name, nil
	}

	if err := g.download(ctx, text, target); err != nil {
		return "", err
	}
	return name, nil
}

func (g *GoogleTTS) download(ctx context.Context, text, target string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", g.lang)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("speech: build request: %w", err)
	}
	// The endpoint rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("speech: fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech: unexpected status code: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(g.dir, ".tts-*")
	if err != nil {
		return fmt.Errorf("speech: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxAudioBytes)); err != nil {
		tmp.Close()
		return fmt.Errorf("speech: write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("speech: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("speech: rename: %w", err)
	}
	return nil
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
