// Package models defines the domain types for Kartica.
package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Well-known categories.
const (
	CategoryAll       = "All"
	CategoryCustom    = "Custom"
	CategoryGreetings = "Greetings"
)

// CustomIDPrefix is reserved for cards synthesized from the external source.
const CustomIDPrefix = "custom-"

// Card is a single translation unit.
type Card struct {
	ID       string `json:"id" yaml:"id"`
	Source   string `json:"source" yaml:"source"` // native language term
	Target   string `json:"target" yaml:"target"` // learner's language term
	Category string `json:"category" yaml:"category"`
	Custom   bool   `json:"custom,omitempty" yaml:"-"`
}

// Validate checks that the card can be presented.
func (c Card) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Source, validation.Required, validation.By(notBlank)),
		validation.Field(&c.Target, validation.Required, validation.By(notBlank)),
		validation.Field(&c.Category, validation.Required),
	)
}

// RawCard is a candidate record produced by the external source parser,
// before an ID and category are assigned.
type RawCard struct {
	Row    int    `json:"row"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Trimmed returns the record with surrounding whitespace removed.
func (r RawCard) Trimmed() RawCard {
	r.Source = strings.TrimSpace(r.Source)
	r.Target = strings.TrimSpace(r.Target)
	return r
}

// Valid reports whether both sides are non-empty after trimming.
func (r RawCard) Valid() bool {
	t := r.Trimmed()
	return t.Source != "" && t.Target != ""
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}
