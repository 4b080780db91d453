package ballot_test

import (
	"testing"

	"github.com/kouellette/rcv/ballot"
	"github.com/kouellette/rcv/rational"
)

func TestSortedRanksHandlesGaps(t *testing.T) {
	b := ballot.Ballot{
		ID: "b1",
		Ranks: map[int][]string{
			5: {"A"},
			1: {"B"},
			3: {"C"},
		},
	}

	got := b.SortedRanks()
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("SortedRanks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedRanks() = %v, want %v", got, want)
		}
	}
}

func TestNewStatesStartAtWeightOne(t *testing.T) {
	ballots := []ballot.Ballot{{ID: "b1"}, {ID: "b2"}}
	states := ballot.NewStates(ballots)

	if len(states) != 2 {
		t.Fatalf("len(states) = %d, want 2", len(states))
	}
	for i, s := range states {
		if s.Weight.Cmp(rational.FromInt(1)) != 0 {
			t.Errorf("state %d weight = %s, want 1", i, s.Weight)
		}
		if s.IsExhausted() {
			t.Errorf("state %d should not start exhausted", i)
		}
	}
}

func TestExhaustionString(t *testing.T) {
	cases := []struct {
		e    ballot.Exhaustion
		want string
	}{
		{ballot.NotExhausted, "not-exhausted"},
		{ballot.ExhaustedOvervote, "exhausted(overvote)"},
		{ballot.ExhaustedDuplicate, "exhausted(duplicate)"},
		{ballot.ExhaustedSkippedRank, "exhausted(skipped)"},
		{ballot.ExhaustedNoMoreRankings, "exhausted(noMoreRankings)"},
	}

	for _, c := range cases {
		if got := c.e.String(); got != c.want {
			t.Errorf("%d.String() = %q, want %q", c.e, got, c.want)
		}
	}
}
