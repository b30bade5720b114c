// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrLoading         = errors.New("catalog is still loading")
	ErrEmptyDeck       = errors.New("no cards in this view")
	ErrUnknownCategory = errors.New("unknown category")
	ErrSpeechDisabled  = errors.New("speech is disabled")

	// Card source failures. The catalog loader recovers from both.
	ErrFetch = errors.New("fetch external cards")
	ErrParse = errors.New("parse external cards")
)
