// Package source retrieves external custom-card documents.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/starford/kartica/internal/apperr"
	"github.com/starford/kartica/internal/models"
	"github.com/starford/kartica/internal/parser"
)

// DefaultURL is the published spreadsheet holding the custom cards.
const DefaultURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQEQDQZaLEUBBKtNMdd-4OeC15FQgaB0Q8g2W2KI9ld3wYmBIVJLWfTbsthTz-NBX3dsHhVp5U7cE54/pub?output=csv"

const maxDocumentBytes = 5 << 20 // 5 MB

// Source fetches candidate card records. Failures wrap apperr.ErrFetch
// or apperr.ErrParse.
type Source interface {
	Fetch(ctx context.Context) ([]models.RawCard, error)
	// Name identifies the source in logs.
	Name() string
}

// HTTP fetches a CSV document over HTTP(S).
type HTTP struct {
	url     string
	client  *http.Client
	columns parser.Columns
}

// NewHTTP creates an HTTP source. A zero timeout means 10 seconds.
func NewHTTP(url string, timeout time.Duration, columns parser.Columns) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		columns: columns,
	}
}

// Name returns the document URL.
func (h *HTTP) Name() string { return h.url }

// Fetch downloads and parses the document.
func (h *HTTP) Fetch(ctx context.Context) ([]models.RawCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperr.ErrFetch, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", apperr.ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperr.ErrFetch, err)
	}
	return parse(data, h.columns)
}

// File reads a CSV document from the local file system.
type File struct {
	path    string
	columns parser.Columns
}

// NewFile creates a file source.
func NewFile(path string, columns parser.Columns) *File {
	return &File{path: path, columns: columns}
}

// Name returns the file path.
func (f *File) Name() string { return f.path }

// Path returns the watched file path.
func (f *File) Path() string { return f.path }

// Fetch reads and parses the file.
func (f *File) Fetch(_ context.Context) ([]models.RawCard, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	return parse(data, f.columns)
}

// None is a source without custom cards.
type None struct{}

// Name implements Source.
func (None) Name() string { return "none" }

// Fetch returns no records.
func (None) Fetch(context.Context) ([]models.RawCard, error) { return nil, nil }

func parse(data []byte, columns parser.Columns) ([]models.RawCard, error) {
	res, err := parser.Parse(data, columns)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}
