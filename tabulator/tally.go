package tabulator

import (
	"sort"

	"github.com/kouellette/rcv/ballot"
	"github.com/kouellette/rcv/candidate"
	"github.com/kouellette/rcv/rational"
)

// RoundTally is the per-candidate and per-bucket weight distribution at
// one round boundary. Candidates holds every continuing candidate; a
// continuing candidate with zero assigned ballots is present with a
// zero weight so it still appears in elimination/tie bookkeeping.
type RoundTally struct {
	Round      int
	Candidates map[string]rational.Weight
	Exhausted  rational.Weight
	Overvote   rational.Weight
	Skipped    rational.Weight
	// Threshold is filled in by the round driver once the winning
	// threshold has been computed (at round 1). Bottoms-up mode computes
	// no threshold and leaves it zero.
	Threshold rational.Weight
}

// buildRoundTally sums current ballot weights by current assignment.
// It is definitional: invariant 1 (tallies + exhausted + overvote +
// skipped == total active weight) holds by construction, since the
// tally is literally a regrouping of the same per-ballot weights.
func buildRoundTally(round int, roster *candidate.Roster, states []ballot.State) RoundTally {
	t := RoundTally{
		Round:      round,
		Candidates: make(map[string]rational.Weight),
		Exhausted:  rational.Zero,
		Overvote:   rational.Zero,
		Skipped:    rational.Zero,
	}
	for _, id := range roster.Continuing() {
		t.Candidates[id] = rational.Zero
	}
	for _, s := range states {
		switch {
		case s.AssignedCandidate != "":
			t.Candidates[s.AssignedCandidate] = t.Candidates[s.AssignedCandidate].Add(s.Weight)
		case s.Exhausted == ballot.ExhaustedOvervote:
			t.Overvote = t.Overvote.Add(s.Weight)
		case s.Exhausted == ballot.ExhaustedSkippedRank:
			t.Skipped = t.Skipped.Add(s.Weight)
		case s.IsExhausted():
			t.Exhausted = t.Exhausted.Add(s.Weight)
		}
	}
	return t
}

// totalWeight sums every ballot's current weight, used as the
// invariant-1 cross-check.
func totalWeight(states []ballot.State) rational.Weight {
	total := rational.Zero
	for _, s := range states {
		total = total.Add(s.Weight)
	}
	return total
}

func (t RoundTally) sum() rational.Weight {
	sum := t.Exhausted.Add(t.Overvote).Add(t.Skipped)
	for _, w := range t.Candidates {
		sum = sum.Add(w)
	}
	return sum
}

// tallyBucket groups candidates sharing an identical tally value, in
// canonical roster order, for deterministic tie enumeration.
type tallyBucket struct {
	Tally      rational.Weight
	Candidates []string
}

// TallyIndex orders continuing candidates by tally, grouping exact ties
// into buckets so callers never need to inspect map iteration order.
type TallyIndex struct {
	buckets []tallyBucket
}

// NewTallyIndex builds a TallyIndex over the given candidate IDs (which
// must all be keys of tally.Candidates), inserted in canonicalOrder and
// then stable-sorted by tally: descending when descending is true
// (winner search), ascending otherwise (loser search).
func NewTallyIndex(tally RoundTally, candidateIDs []string, canonicalOrder []string, descending bool) *TallyIndex {
	present := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		present[id] = true
	}

	byValue := make(map[string]*tallyBucket)
	var order []string
	for _, id := range canonicalOrder {
		if !present[id] {
			continue
		}
		w := tally.Candidates[id]
		key := w.String()
		b, ok := byValue[key]
		if !ok {
			b = &tallyBucket{Tally: w}
			byValue[key] = b
			order = append(order, key)
		}
		b.Candidates = append(b.Candidates, id)
	}

	buckets := make([]tallyBucket, 0, len(order))
	for _, key := range order {
		buckets = append(buckets, *byValue[key])
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		c := buckets[i].Tally.Cmp(buckets[j].Tally)
		if descending {
			return c > 0
		}
		return c < 0
	})
	return &TallyIndex{buckets: buckets}
}

// Buckets returns the ordered tally buckets.
func (idx *TallyIndex) Buckets() []tallyBucket { return idx.buckets }

// Top returns the leading bucket (highest tally if built descending,
// lowest if built ascending), or false if the index is empty.
func (idx *TallyIndex) Top() (tallyBucket, bool) {
	if len(idx.buckets) == 0 {
		return tallyBucket{}, false
	}
	return idx.buckets[0], true
}
