package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/fetrias/techtrack/internal/store"
)

// ErrInjected is the error FailingMedium returns for failed writes.
var ErrInjected = errors.New("injected storage failure")

// FailingMedium wraps an in-memory medium and fails writes on demand,
// standing in for a full or unavailable storage quota.
//
// Thread-safety: safe for concurrent use.
type FailingMedium struct {
	*store.Memory

	mu     sync.Mutex
	fail   bool
	writes int
}

// NewFailingMedium creates a medium whose writes succeed until FailWrites.
func NewFailingMedium() *FailingMedium {
	return &FailingMedium{Memory: store.NewMemory()}
}

// FailWrites makes subsequent writes fail (true) or succeed (false).
func (m *FailingMedium) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Writes returns the number of Set calls seen, failed ones included.
func (m *FailingMedium) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Set stores value unless writes are failing.
func (m *FailingMedium) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.writes++
	fail := m.fail
	m.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return m.Memory.Set(ctx, key, value)
}
