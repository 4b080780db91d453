// Package ballot holds the normalized cast-vote-record shape the
// tabulation engine consumes, and the mutable per-run state attached to
// each ballot as it is walked round by round.
package ballot

import (
	"fmt"
	"sort"

	"github.com/kouellette/rcv/rational"
)

// Ballot is an immutable cast vote record. Ranks is a rank position to
// candidate-ID-set mapping; a set of size > 1 encodes an overvote at
// that rank. Ranks need not be contiguous.
type Ballot struct {
	ID       string
	Precinct string
	Ranks    map[int][]string
}

// SortedRanks returns the rank positions present on the ballot, ascending.
func (b Ballot) SortedRanks() []int {
	out := make([]int, 0, len(b.Ranks))
	for r := range b.Ranks {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// Exhaustion names the reason a ballot carries no further assignment.
type Exhaustion int

const (
	// NotExhausted means the ballot is still assigned to a continuing
	// candidate (or has not been walked yet).
	NotExhausted Exhaustion = iota
	ExhaustedSkippedRank
	ExhaustedOvervote
	ExhaustedDuplicate
	ExhaustedNoMoreRankings
	// ExhaustedMalformed means a rank on the ballot could not be
	// interpreted at all -- it names a candidate not in the contest --
	// as opposed to ExhaustedOvervote/ExhaustedDuplicate, which are
	// ordinary, config-selected outcomes of a well-formed ballot.
	ExhaustedMalformed
)

func (e Exhaustion) String() string {
	switch e {
	case NotExhausted:
		return "not-exhausted"
	case ExhaustedSkippedRank:
		return "exhausted(skipped)"
	case ExhaustedOvervote:
		return "exhausted(overvote)"
	case ExhaustedDuplicate:
		return "exhausted(duplicate)"
	case ExhaustedNoMoreRankings:
		return "exhausted(noMoreRankings)"
	case ExhaustedMalformed:
		return "exhausted(malformed)"
	default:
		return fmt.Sprintf("exhaustion(%d)", int(e))
	}
}

// State is the mutable state carried for one ballot across a
// tabulation run. Weight is monotonically non-increasing (invariant 2).
type State struct {
	Weight            rational.Weight
	CurrentRank       int // 0 when unassigned / exhausted
	AssignedCandidate string
	Exhausted         Exhaustion
}

// NewStates returns one fresh State per ballot, weight 1, unassigned.
func NewStates(ballots []Ballot) []State {
	out := make([]State, len(ballots))
	for i := range ballots {
		out[i] = State{Weight: rational.FromInt(1)}
	}
	return out
}

// IsExhausted reports whether the ballot currently contributes to no
// candidate's tally.
func (s State) IsExhausted() bool {
	return s.Exhausted != NotExhausted
}
