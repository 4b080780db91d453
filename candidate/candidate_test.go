package candidate_test

import (
	"testing"

	"github.com/kouellette/rcv/candidate"
)

func roster(t *testing.T) *candidate.Roster {
	t.Helper()
	cands := []candidate.Candidate{{ID: "A", Name: "Alice"}, {ID: "B", Name: "Bob"}, {ID: "C", Name: "Carol"}}
	r, err := candidate.NewRoster(cands, []string{"A", "B", "C"}, nil)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return r
}

func TestNewRosterRejectsDuplicates(t *testing.T) {
	cands := []candidate.Candidate{{ID: "A"}, {ID: "A"}}
	if _, err := candidate.NewRoster(cands, []string{"A"}, nil); err == nil {
		t.Fatal("expected an error for duplicate candidate id")
	}
}

func TestNewRosterRejectsMismatchedOrder(t *testing.T) {
	cands := []candidate.Candidate{{ID: "A"}, {ID: "B"}}
	if _, err := candidate.NewRoster(cands, []string{"A"}, nil); err == nil {
		t.Fatal("expected an error for order/roster size mismatch")
	}
	if _, err := candidate.NewRoster(cands, []string{"A", "Z"}, nil); err == nil {
		t.Fatal("expected an error for order referencing unknown candidate")
	}
}

func TestExcludedCandidatesStartTerminal(t *testing.T) {
	cands := []candidate.Candidate{{ID: "A"}, {ID: "B"}}
	r, err := candidate.NewRoster(cands, []string{"A", "B"}, map[string]bool{"B": true})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}

	if r.Status("B").State != candidate.Excluded {
		t.Fatalf("B status = %s, want excluded", r.Status("B").State)
	}
	if r.Status("A").State != candidate.Continuing {
		t.Fatalf("A status = %s, want continuing", r.Status("A").State)
	}

	continuing := r.Continuing()
	if len(continuing) != 1 || continuing[0] != "A" {
		t.Fatalf("Continuing() = %v, want [A]", continuing)
	}
}

func TestSetStatusTransitionsAndSticks(t *testing.T) {
	r := roster(t)

	r.SetStatus("A", candidate.Status{State: candidate.Elected, Round: 1, Order: 1})
	if r.Status("A").State != candidate.Elected {
		t.Fatalf("A status = %s, want elected", r.Status("A").State)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when mutating a terminal status")
		}
	}()
	r.SetStatus("A", candidate.Status{State: candidate.Eliminated, Round: 2})
}

func TestContinuingPreservesCanonicalOrder(t *testing.T) {
	r := roster(t)
	r.SetStatus("B", candidate.Status{State: candidate.Eliminated, Round: 1})

	got := r.Continuing()
	want := []string{"A", "C"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Continuing() = %v, want %v", got, want)
	}
}
