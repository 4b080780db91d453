package tabulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/kouellette/rcv/rational"
	"github.com/shopspring/decimal"
)

// TiePurpose names which side of a tie is being resolved.
type TiePurpose string

const (
	PurposeSelectWinner TiePurpose = "select_winner"
	PurposeSelectLoser  TiePurpose = "select_loser"
)

// TieBreakOracle is the external collaborator consulted whenever an
// Interactive or PreviousRoundCounts-with-interactive-fallback tie
// cannot be resolved by the engine alone. Implementations live in the
// oracle package; ctx lets a human-backed oracle be cancelled.
type TieBreakOracle interface {
	ChooseLoser(ctx context.Context, tied []string, round int, tally decimal.Decimal) (string, error)
	ChooseWinner(ctx context.Context, tied []string, round int, tally decimal.Decimal) (string, error)
}

// TieBreakRecord is the audit entry for one resolved tie.
type TieBreakRecord struct {
	Round       int
	Purpose     TiePurpose
	Tied        []string
	Chosen      string
	Explanation string
}

type tieBreaker struct {
	cfg    Config
	oracle TieBreakOracle
	rng    *rand.Rand
}

func newTieBreaker(cfg Config, oracle TieBreakOracle) *tieBreaker {
	tb := &tieBreaker{cfg: cfg, oracle: oracle}
	if usesRandom(cfg.TieBreakMode) {
		seed := cfg.RandomSeed.ValueOr(1)
		tb.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)|1))
	}
	return tb
}

func usesRandom(mode TieBreakMode) bool {
	return mode == TieRandom || mode == TiePreviousRoundCountsThenRandom
}

// resolve picks one candidate out of tied, for the given purpose, per
// the configured TieBreakMode. history holds every completed round's
// outcome so far, oldest first, used by the PreviousRoundCounts family.
func (tb *tieBreaker) resolve(ctx context.Context, tied []string, round int, tally decimal.Decimal, purpose TiePurpose, history []RoundOutcome) (TieBreakRecord, error) {
	if len(tied) == 1 {
		return TieBreakRecord{Round: round, Purpose: purpose, Tied: tied, Chosen: tied[0], Explanation: "no tie"}, nil
	}

	switch tb.cfg.TieBreakMode {
	case TieInteractive:
		return tb.resolveInteractive(ctx, tied, round, tally, purpose)

	case TieRandom:
		return tb.resolveRandom(tied, round, purpose)

	case TieUsePermutation, TieGeneratePermutation:
		return tb.resolvePermutation(tied, round, purpose)

	case TiePreviousRoundCountsThenRandom:
		if rec, ok := tb.resolvePreviousRounds(tied, round, purpose, history); ok {
			return rec, nil
		}
		return tb.resolveRandom(tied, round, purpose)

	case TiePreviousRoundCountsThenInteractive:
		if rec, ok := tb.resolvePreviousRounds(tied, round, purpose, history); ok {
			return rec, nil
		}
		return tb.resolveInteractive(ctx, tied, round, tally, purpose)

	default:
		return TieBreakRecord{}, newError(ConfigInvalid, "unknown tie-break mode %q", tb.cfg.TieBreakMode)
	}
}

func (tb *tieBreaker) resolveInteractive(ctx context.Context, tied []string, round int, tally decimal.Decimal, purpose TiePurpose) (TieBreakRecord, error) {
	if tb.oracle == nil {
		return TieBreakRecord{}, newError(TieUnresolvable, "interactive tie-break requested but no oracle configured (round %d, purpose %s)", round, purpose)
	}
	var chosen string
	var err error
	if purpose == PurposeSelectWinner {
		chosen, err = tb.oracle.ChooseWinner(ctx, tied, round, tally)
	} else {
		chosen, err = tb.oracle.ChooseLoser(ctx, tied, round, tally)
	}
	if err != nil {
		if ctx.Err() != nil {
			return TieBreakRecord{}, wrapError(OracleCancelled, err)
		}
		return TieBreakRecord{}, wrapError(TieUnresolvable, err)
	}
	if !contains(tied, chosen) {
		return TieBreakRecord{}, newError(TieUnresolvable, "oracle returned %q, not a member of the tied set %v", chosen, tied)
	}
	return TieBreakRecord{Round: round, Purpose: purpose, Tied: tied, Chosen: chosen, Explanation: "interactive oracle decision"}, nil
}

func (tb *tieBreaker) resolveRandom(tied []string, round int, purpose TiePurpose) (TieBreakRecord, error) {
	sorted := append([]string(nil), tied...)
	sort.Strings(sorted)
	pick := sorted[tb.rng.IntN(len(sorted))]
	return TieBreakRecord{Round: round, Purpose: purpose, Tied: tied, Chosen: pick, Explanation: "deterministic seeded random draw"}, nil
}

func (tb *tieBreaker) resolvePermutation(tied []string, round int, purpose TiePurpose) (TieBreakRecord, error) {
	perm := tb.cfg.CandidatePermutation
	if len(perm) == 0 {
		return TieBreakRecord{}, newError(ConfigInvalid, "tie-break mode %q requires a non-empty candidatePermutation", tb.cfg.TieBreakMode)
	}
	index := make(map[string]int, len(perm))
	for i, id := range perm {
		index[id] = i
	}
	// The permutation is a standing priority order: an earlier position
	// means "more preferred to survive". Selecting a winner picks the
	// most-preferred tied candidate; selecting a loser picks the
	// least-preferred one to eliminate.
	if _, ok := index[tied[0]]; !ok {
		return TieBreakRecord{}, newError(ConfigInvalid, "tied candidate %q absent from candidatePermutation", tied[0])
	}
	best := tied[0]
	for _, id := range tied[1:] {
		ci, ok := index[id]
		if !ok {
			return TieBreakRecord{}, newError(ConfigInvalid, "tied candidate %q absent from candidatePermutation", id)
		}
		better := ci < index[best]
		if purpose == PurposeSelectLoser {
			better = ci > index[best]
		}
		if better {
			best = id
		}
	}
	return TieBreakRecord{Round: round, Purpose: purpose, Tied: tied, Chosen: best, Explanation: "candidate permutation order"}, nil
}

// resolvePreviousRounds scans history from the most recent round back
// to round 1, restricted to the tied set, looking for the first round
// where exactly one tied candidate holds the lowest tally (selecting a
// loser) or the highest tally (selecting a winner). ok is false if no
// prior round (including round 1) singles one out, signalling the
// caller to fall through to the configured fallback.
func (tb *tieBreaker) resolvePreviousRounds(tied []string, round int, purpose TiePurpose, history []RoundOutcome) (TieBreakRecord, bool) {
	highest := purpose == PurposeSelectWinner
	for i := len(history) - 1; i >= 0; i-- {
		outcome := history[i]

		var extreme rational.Weight
		found := false
		for _, id := range tied {
			w, ok := outcome.Tally[id]
			if !ok {
				continue
			}
			if !found {
				extreme = w
				found = true
				continue
			}
			c := w.Cmp(extreme)
			if (highest && c > 0) || (!highest && c < 0) {
				extreme = w
			}
		}
		if !found {
			continue
		}

		count := 0
		winnerID := ""
		for _, id := range tied {
			w, ok := outcome.Tally[id]
			if ok && w.Cmp(extreme) == 0 {
				count++
				winnerID = id
			}
		}
		if count == 1 {
			return TieBreakRecord{
				Round:       round,
				Purpose:     purpose,
				Tied:        tied,
				Chosen:      winnerID,
				Explanation: fmt.Sprintf("resolved by round %d tallies", outcome.Round),
			}, true
		}
	}
	return TieBreakRecord{}, false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
