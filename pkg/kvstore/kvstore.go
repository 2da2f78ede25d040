// Package kvstore defines the durable string-keyed store that holds session and collection state.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the device persistence primitive. Values are opaque strings (JSON in practice).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}
