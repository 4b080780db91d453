// Package storagetest is a conformance suite shared by every
// storage.Backend implementation, adapted from
// internal/backends/test/test.go's Backend(t, backend) helper: one
// function that runs the same subtests against whichever concrete
// backend is passed in, so storage/postgres and storage/memory are
// held to identical behavior.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/kouellette/rcv/rational"
	"github.com/kouellette/rcv/storage"
	"github.com/kouellette/rcv/tabulator"
)

// Backend runs the shared storage.Backend contract tests against b.
func Backend(t *testing.T, b storage.Backend) {
	t.Helper()

	t.Run("LoadResult unknown contest returns DoesNotExist", func(t *testing.T) {
		_, err := b.LoadResult(context.Background(), "no-such-contest")
		var errDoesNotExist interface{ DoesNotExist() }
		if !errors.As(err, &errDoesNotExist) {
			t.Fatalf("LoadResult for an unknown contest must return an error with a DoesNotExist() method, got: %v", err)
		}
	})

	t.Run("SaveResult then LoadResult round trips", func(t *testing.T) {
		want := sampleResult()
		if err := b.SaveResult(context.Background(), "contest-a", want); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}

		got, err := b.LoadResult(context.Background(), "contest-a")
		if err != nil {
			t.Fatalf("LoadResult: %v", err)
		}
		if len(got.Rounds) != len(want.Rounds) {
			t.Fatalf("len(Rounds) = %d, want %d", len(got.Rounds), len(want.Rounds))
		}
		if got.Rounds[0].Tally["A"].Cmp(want.Rounds[0].Tally["A"]) != 0 {
			t.Fatalf("Rounds[0].Tally[A] = %s, want %s", got.Rounds[0].Tally["A"], want.Rounds[0].Tally["A"])
		}
		if len(got.ElectedInOrder) != 1 || got.ElectedInOrder[0] != "A" {
			t.Fatalf("ElectedInOrder = %v, want [A]", got.ElectedInOrder)
		}
	})

	t.Run("SaveResult overwrites a prior result for the same contest", func(t *testing.T) {
		first := sampleResult()
		if err := b.SaveResult(context.Background(), "contest-b", first); err != nil {
			t.Fatalf("SaveResult (first): %v", err)
		}

		second := sampleResult()
		second.Rounds = append(second.Rounds, tabulator.RoundOutcome{Round: 2, Eliminated: []string{"B"}})
		if err := b.SaveResult(context.Background(), "contest-b", second); err != nil {
			t.Fatalf("SaveResult (second): %v", err)
		}

		got, err := b.LoadResult(context.Background(), "contest-b")
		if err != nil {
			t.Fatalf("LoadResult: %v", err)
		}
		if len(got.Rounds) != 2 {
			t.Fatalf("len(Rounds) = %d, want 2 (overwrite should replace, not append)", len(got.Rounds))
		}
	})
}

func sampleResult() tabulator.Result {
	return tabulator.Result{
		NumberOfWinners: 1,
		ElectedInOrder:  []string{"A"},
		Rounds: []tabulator.RoundOutcome{
			{
				Round: 1,
				Tally: map[string]rational.Weight{
					"A": rational.FromInt(3),
					"B": rational.FromInt(2),
				},
				Exhausted: rational.Zero,
				Threshold: rational.FromInt(3),
				Elected:   []string{"A"},
			},
		},
	}
}
