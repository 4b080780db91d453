// Package tabulator is the round-based ranked-choice voting engine.
// Tabulate is a pure function of its inputs modulo the TieBreakOracle:
// called twice with the same ballots, candidates, config and a
// deterministic oracle, it produces a byte-identical Result.
package tabulator

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/kouellette/rcv/ballot"
	"github.com/kouellette/rcv/candidate"
	"github.com/kouellette/rcv/rational"
)

// GeneratePermutation derives a deterministic candidate ordering from a
// seed, for config.tieBreakMode == generate_permutation. Callers
// derive this once, at config-construction time, and store it on
// Config.CandidatePermutation; the engine treats generate_permutation
// and use_permutation identically thereafter.
func GeneratePermutation(seed int64, candidateIDs []string) []string {
	out := append([]string(nil), candidateIDs...)
	sort.Strings(out) // deterministic starting order before shuffling
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)|1))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Tabulate runs a complete contest to completion and returns its
// Result, or a fatal *Error if the contest cannot be completed (an
// unresolvable tie, a malformed ballot when
// config.rejectMalformedBallots is set, a blown invariant, or a round
// count that exceeds len(candidates)+1).
func Tabulate(ctx context.Context, ballots []ballot.Ballot, declared []candidate.Candidate, cfg Config, oracle TieBreakOracle, sink EventSink) (Result, error) {
	sink = sinkOrNoop(sink)

	if cfg.NumberOfWinners <= 0 {
		return Result{}, newError(ConfigInvalid, "numberOfWinners must be >= 1, got %d", cfg.NumberOfWinners)
	}

	order := cfg.CandidatePermutation
	if len(order) == 0 {
		order = declaredOrder(declared)
	}
	excluded := make(map[string]bool, len(cfg.ExcludedCandidates))
	for _, id := range cfg.ExcludedCandidates {
		excluded[id] = true
	}
	roster, err := candidate.NewRoster(declared, order, excluded)
	if err != nil {
		return Result{}, wrapError(ConfigInvalid, err)
	}

	states := ballot.NewStates(ballots)
	tb := newTieBreaker(cfg, oracle)

	var history []RoundOutcome
	var electedOrder []string
	electOrderCounter := 0
	var threshold rational.Weight
	thresholdSet := false
	maxRounds := len(declared) + 1

	prevAssignment := make([]string, len(ballots))

	var malformedCount int
	var malformedSample []MalformedBallot

	for round := 1; ; round++ {
		if round > maxRounds {
			return partialResult(cfg, history, electedOrder, malformedCount, malformedSample), newError(RoundLimitExceeded, "exceeded %d rounds without terminating", maxRounds)
		}
		sink.Emit(Event{Kind: EventRoundStarted, Round: round})

		for i := range ballots {
			if needsReassignment(states[i], roster) {
				cand, rank, exh := assign(ballots[i], roster, cfg)
				if exh == ballot.ExhaustedMalformed {
					if cfg.RejectMalformedBallots {
						return partialResult(cfg, history, electedOrder, malformedCount, malformedSample),
							newError(BallotMalformed, "ballot %q: rank references a candidate not in the contest", ballots[i].ID)
					}
					malformedCount++
					if len(malformedSample) < malformedBallotLogCap {
						malformedSample = append(malformedSample, MalformedBallot{
							BallotID: ballots[i].ID,
							Reason:   "rank references a candidate not in the contest",
						})
					}
				}
				states[i].AssignedCandidate = cand
				states[i].CurrentRank = rank
				states[i].Exhausted = exh
			}
		}

		tally := buildRoundTally(round, roster, states)
		if tally.sum().Cmp(totalWeight(states)) != 0 {
			return partialResult(cfg, history, electedOrder, malformedCount, malformedSample), newError(InvariantViolation, "round %d: tally sum does not equal total active weight", round)
		}

		if thresholdNeeded(cfg) && !thresholdSet {
			threshold = ComputeThreshold(tally, cfg)
			thresholdSet = true
		}
		tally.Threshold = threshold

		transfers := diffTransfers(prevAssignment, states)

		continuing := roster.Continuing()
		var winners []string
		var winTies []TieBreakRecord
		if thresholdNeeded(cfg) {
			winners, winTies, err = selectWinners(ctx, tally, cfg, tb, round, history, continuing, roster.Order(), len(electedOrder))
			if err != nil {
				return partialResult(cfg, history, electedOrder, malformedCount, malformedSample), err
			}
		}
		for _, w := range winners {
			electOrderCounter++
			roster.SetStatus(w, candidate.Status{State: candidate.Elected, Round: round, Order: electOrderCounter})
			electedOrder = append(electedOrder, w)
		}

		outcome := RoundOutcome{
			Round:      round,
			Tally:      tally.Candidates,
			Exhausted:  tally.Exhausted,
			Overvote:   tally.Overvote,
			Skipped:    tally.Skipped,
			Threshold:  threshold,
			Elected:    winners,
			Transfers:  transfers,
			TieBreaks:  winTies,
		}

		if done, finalElected := checkTermination(cfg, roster, electedOrder, round); done {
			electedOrder = finalElected
			history = append(history, outcome)
			sink.Emit(Event{Kind: EventRoundCompleted, Round: round, Outcome: &history[len(history)-1]})
			sink.Emit(Event{Kind: EventContestDone, Round: round})
			return finalize(cfg, history, electedOrder, malformedCount, malformedSample), nil
		}

		var eliminated []string
		if len(winners) == 0 {
			var loseTies []TieBreakRecord
			eliminated, loseTies, err = selectLosers(ctx, tally, cfg, tb, round, history, continuing, roster.Order())
			if err != nil {
				return partialResult(cfg, history, electedOrder, malformedCount, malformedSample), err
			}
			for i, e := range eliminated {
				roster.SetStatus(e, candidate.Status{State: candidate.Eliminated, Round: round, Order: i + 1})
			}
			outcome.Eliminated = eliminated
			outcome.TieBreaks = append(outcome.TieBreaks, loseTies...)
		}

		// SequentialMultiSeat fills each seat in turn without scaling
		// a winner's ballots down to the surplus fraction: next round
		// those ballots move on to their next continuing choice at
		// full weight, unlike MultiSeatSTV where only the surplus
		// above threshold transfers onward.
		if len(winners) > 0 && cfg.TabulationMode != SequentialMultiSeat {
			applySurplusTransfers(winners, tally, states)
		}

		history = append(history, outcome)
		for i := range states {
			prevAssignment[i] = assignmentKey(states[i])
		}

		sink.Emit(Event{Kind: EventRoundCompleted, Round: round, Outcome: &history[len(history)-1]})
		for _, rec := range outcome.TieBreaks {
			r := rec
			sink.Emit(Event{Kind: EventTieBreak, Round: round, TieBreak: &r})
		}
	}
}

func declaredOrder(declared []candidate.Candidate) []string {
	out := make([]string, len(declared))
	for i, c := range declared {
		out[i] = c.ID
	}
	sort.Strings(out)
	return out
}

func thresholdNeeded(cfg Config) bool {
	return cfg.TabulationMode != BottomsUpMultiSeat
}

// checkTermination implements the round-driver's termination rules, in
// the order they must be checked: all seats filled; one continuing
// candidate left (single-winner default); two left under
// continueUntilTwoRemain; bottoms-up mode's remaining-equals-seats
// shortcut.
func checkTermination(cfg Config, roster *candidate.Roster, elected []string, round int) (bool, []string) {
	if len(elected) >= cfg.NumberOfWinners {
		return true, elected
	}

	continuing := roster.Continuing()

	if len(continuing) == 1 {
		id := continuing[0]
		roster.SetStatus(id, candidate.Status{State: candidate.Elected, Round: round, Order: len(elected) + 1})
		elected = append(elected, id)
		return true, elected
	}

	if cfg.ContinueUntilTwoRemain && len(continuing) <= 2 {
		return true, elected
	}

	if cfg.TabulationMode == BottomsUpMultiSeat && len(continuing) == cfg.NumberOfWinners-len(elected) {
		order := 0
		for _, id := range continuing {
			order++
			roster.SetStatus(id, candidate.Status{State: candidate.Elected, Round: round, Order: order})
			elected = append(elected, id)
		}
		return true, elected
	}

	return false, elected
}

func partialResult(cfg Config, history []RoundOutcome, elected []string, malformedCount int, malformedSample []MalformedBallot) Result {
	return finalize(cfg, history, elected, malformedCount, malformedSample)
}

func finalize(cfg Config, history []RoundOutcome, elected []string, malformedCount int, malformedSample []MalformedBallot) Result {
	final := make(map[string]rational.Weight)
	if len(history) > 0 {
		final = history[len(history)-1].Tally
	}
	return Result{
		NumberOfWinners:       cfg.NumberOfWinners,
		Rounds:                history,
		ElectedInOrder:        elected,
		FinalTallies:          final,
		MalformedBallotCount:  malformedCount,
		MalformedBallotSample: malformedSample,
	}
}

// assignmentKey names the bucket a ballot's weight diff should be
// attributed to: the candidate ID, or one of the exhaustion bucket
// names.
func assignmentKey(s ballot.State) string {
	switch {
	case s.AssignedCandidate != "":
		return s.AssignedCandidate
	case s.Exhausted == ballot.ExhaustedOvervote:
		return "overvote"
	case s.Exhausted == ballot.ExhaustedSkippedRank:
		return "skipped"
	case s.Exhausted == ballot.ExhaustedMalformed:
		return "malformed"
	case s.IsExhausted():
		return "exhausted"
	default:
		return ""
	}
}

// diffTransfers compares each ballot's previous assignment bucket to
// its current one and aggregates the weight that moved, keyed by
// (from, to). A ballot with no previous assignment (round 1) never
// contributes a transfer record.
func diffTransfers(prev []string, states []ballot.State) []Transfer {
	type key struct{ from, to string }
	agg := make(map[key]rational.Weight)
	var order []key

	for i := range states {
		if prev[i] == "" {
			continue
		}
		cur := assignmentKey(states[i])
		if cur == prev[i] {
			continue
		}
		k := key{from: prev[i], to: cur}
		if _, ok := agg[k]; !ok {
			order = append(order, k)
			agg[k] = rational.Zero
		}
		agg[k] = agg[k].Add(states[i].Weight)
	}

	out := make([]Transfer, 0, len(order))
	for _, k := range order {
		out = append(out, Transfer{From: k.from, To: k.to, Weight: agg[k]})
	}
	return out
}
