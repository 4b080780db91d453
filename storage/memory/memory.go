// Package memory implements storage.Backend entirely in process memory.
// It is adapted from backend/memory/memory.go's mutex-guarded map and
// typed-marker-error idiom (doesNotExistError with a DoesNotExist()
// method), repurposed from a poll_id -> voted-users map to a
// contestID -> tabulator.Result map. It exists for tests and small
// one-off runs that don't want a Postgres dependency.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kouellette/rcv/storage"
	"github.com/kouellette/rcv/tabulator"
)

var _ storage.Backend = (*Backend)(nil)

// Backend holds every saved result in a map guarded by a mutex.
type Backend struct {
	mu      sync.Mutex
	results map[string]tabulator.Result
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{results: make(map[string]tabulator.Result)}
}

// SaveResult stores result under contestID, overwriting any prior
// result for the same contest.
func (b *Backend) SaveResult(ctx context.Context, contestID string, result tabulator.Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.results[contestID] = result
	return nil
}

// LoadResult returns the stored result for contestID, or a
// doesNotExistError if none was ever saved.
func (b *Backend) LoadResult(ctx context.Context, contestID string) (tabulator.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result, ok := b.results[contestID]
	if !ok {
		return tabulator.Result{}, doesNotExistError{fmt.Errorf("memory: no result saved for contest %q", contestID)}
	}
	return result, nil
}

// Clear removes the stored result for one contest.
func (b *Backend) Clear(contestID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.results, contestID)
}

type doesNotExistError struct {
	error
}

func (doesNotExistError) DoesNotExist() {}
