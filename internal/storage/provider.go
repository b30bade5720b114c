// Package storage defines the key-value persistence used for favorites.
package storage

import "errors"

// ErrNotExist is returned by Get when the key has never been written.
var ErrNotExist = errors.New("storage: key does not exist")

// Provider is a minimal durable key-value store.
type Provider interface {
	// Get returns the value stored under key, or ErrNotExist.
	Get(key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(key string, value []byte) error
}
