// Package storage declares the contract a result backend must satisfy,
// shared by storage/postgres and storage/memory so both can be driven
// by the same conformance suite in storage/storagetest. It generalizes
// the teacher's vote.Backend interface (internal/vote/vote.go) the same
// way: one small, context-scoped interface with multiple concrete
// implementations behind it, and a shared test suite that exercises
// any of them.
package storage

import (
	"context"

	"github.com/kouellette/rcv/tabulator"
)

// Backend persists and reloads a contest's tabulation result.
type Backend interface {
	SaveResult(ctx context.Context, contestID string, result tabulator.Result) error
	LoadResult(ctx context.Context, contestID string) (tabulator.Result, error)
}
