// Package blob keeps past dataset revisions as JSON files.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key or revision does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a flat key/value store for opaque content.
type Store interface {
	// Put writes content under key, replacing what was there.
	Put(ctx context.Context, key string, r io.Reader) error

	// Get opens the content stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns every key starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}
