package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Medium.Get when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// Medium is a key-value persistence medium.
// Set must replace the whole value atomically.
type Medium interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the medium's resources.
	Close() error
}

// escapeGlob escapes Redis MATCH metacharacters in a literal prefix.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
