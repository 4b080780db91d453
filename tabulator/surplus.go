package tabulator

import (
	"github.com/kouellette/rcv/ballot"
	"github.com/kouellette/rcv/rational"
)

// applySurplusTransfers shrinks the weight of every ballot currently
// assigned to a newly-elected candidate by that candidate's surplus
// fraction f = (tally - threshold) / tally. The ballot stays assigned
// to the elected candidate for this round's bookkeeping; the shrunk
// weight is only picked up by a different candidate once the elected
// candidate's status turns the assignment stale, next round.
//
// Each winner's fraction depends only on its own round-r tally, so
// computing every fraction from the same pre-transfer tally and
// applying them to disjoint ballot sets (a ballot has exactly one
// current assignment) is safe to do in any order.
func applySurplusTransfers(winners []string, tally RoundTally, states []ballot.State) {
	fractions := make(map[string]rational.Weight, len(winners))
	for _, w := range winners {
		t := tally.Candidates[w]
		if t.IsZero() {
			continue
		}
		threshold := tally.Threshold
		surplus := t.Sub(threshold)
		if surplus.Cmp(rational.Zero) < 0 {
			surplus = rational.Zero
		}
		fractions[w] = surplus.Quo(t)
	}

	for i := range states {
		f, ok := fractions[states[i].AssignedCandidate]
		if !ok {
			continue
		}
		states[i].Weight = states[i].Weight.Mul(f)
	}
}
