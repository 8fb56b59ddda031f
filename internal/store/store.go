// Package store holds the backing stores a cache can read through to.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Fetch when the store has no value for a key.
	ErrNotFound = errors.New("key not found in store")
	// ErrCorruptValue is wrapped by Fetch when a stored value does not parse.
	ErrCorruptValue = errors.New("stored value is not an integer")
)

// Store is the system of record behind a cache.
type Store interface {
	// Fetch returns the value for key, or ErrNotFound.
	Fetch(ctx context.Context, key string) (int, error)
	Save(ctx context.Context, key string, value int) error
}
