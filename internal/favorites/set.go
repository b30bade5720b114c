// Package favorites keeps the user's favorite card IDs in sync with
// durable storage.
package favorites

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Set is an immutable-by-convention set of card IDs. Functions in this
// package never mutate a Set they receive.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership. A nil Set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs.
func (s Set) Len() int { return len(s) }

// IDs returns the members sorted ascending.
func (s Set) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same IDs.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Toggle returns a new set with id added if absent or removed if present.
func Toggle(s Set, id string) Set {
	out := make(Set, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	if s.Has(id) {
		delete(out, id)
	} else {
		out[id] = struct{}{}
	}
	return out
}

// Encode serializes the set as a sorted JSON array of strings.
func Encode(s Set) ([]byte, error) {
	data, err := json.Marshal(s.IDs())
	if err != nil {
		return nil, fmt.Errorf("favorites: encode: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of strings.
func Decode(data []byte) (Set, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("favorites: decode: %w", err)
	}
	return NewSet(ids...), nil
}
