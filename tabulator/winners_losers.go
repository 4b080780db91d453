package tabulator

import (
	"context"

	"github.com/kouellette/rcv/rational"
)

func thresholdFromInt(n int) rational.Weight {
	return rational.FromInt(int64(n))
}

// selectWinners returns every continuing candidate whose tally meets
// the winning threshold this round, in the order they should be
// recorded as elected, plus any tie-break records produced along the
// way. electedSoFar is the number of seats already filled in prior
// rounds; selection stops once all seats are filled, even if more
// candidates meet the threshold (they remain continuing, and since every
// seat is then filled the contest terminates this round).
func selectWinners(ctx context.Context, tally RoundTally, cfg Config, tb *tieBreaker, round int, history []RoundOutcome, continuingIDs, canonicalOrder []string, electedSoFar int) ([]string, []TieBreakRecord, error) {
	idx := NewTallyIndex(tally, continuingIDs, canonicalOrder, true)
	var winners []string
	var records []TieBreakRecord

	for _, b := range idx.Buckets() {
		if !MeetsThreshold(b.Tally, tally.Threshold, cfg) {
			break
		}
		remaining := cfg.NumberOfWinners - electedSoFar - len(winners)
		if remaining <= 0 {
			break
		}

		if len(b.Candidates) <= remaining {
			winners = append(winners, b.Candidates...)
			continue
		}

		// More qualifiers than remaining seats: repeatedly resolve the
		// winner tie-break against the shrinking tied set until the
		// remaining seats are filled.
		tiedPool := append([]string(nil), b.Candidates...)
		for len(tiedPool) > 0 && remaining > 0 {
			rec, err := tb.resolve(ctx, tiedPool, round, b.Tally.Round(cfg.decimalPlaces(), cfg.RoundTalliesHalfToEven), PurposeSelectWinner, history)
			if err != nil {
				return nil, nil, err
			}
			records = append(records, rec)
			winners = append(winners, rec.Chosen)
			remaining--
			tiedPool = removeFrom(tiedPool, rec.Chosen)
		}
		break
	}
	return winners, records, nil
}

// selectLosers returns the candidate(s) to eliminate this round, per
// config.batchElimination and config.minimumVoteThreshold.
func selectLosers(ctx context.Context, tally RoundTally, cfg Config, tb *tieBreaker, round int, history []RoundOutcome, continuingIDs, canonicalOrder []string) ([]string, []TieBreakRecord, error) {
	idx := NewTallyIndex(tally, continuingIDs, canonicalOrder, false)
	buckets := idx.Buckets()
	if len(buckets) == 0 {
		return nil, nil, nil
	}

	if round == 1 && cfg.MinimumVoteThreshold > 0 {
		min := thresholdFromInt(cfg.MinimumVoteThreshold)
		var below []string
		for _, b := range buckets {
			if b.Tally.Cmp(min) < 0 {
				below = append(below, b.Candidates...)
			}
		}
		if len(below) > 0 {
			return below, nil, nil
		}
	}

	if !cfg.BatchElimination {
		return singleLoser(ctx, buckets, cfg, tb, round, history)
	}
	if batch := safeBatch(buckets); len(batch) > 0 {
		return batch, nil, nil
	}
	return singleLoser(ctx, buckets, cfg, tb, round, history)
}

// safeBatch finds the largest ascending-tally prefix whose cumulative
// sum stays strictly below the next candidate's own tally -- those
// candidates collectively cannot catch up to anyone outside the
// prefix even if every one of their ballots transferred to a single
// rival, so eliminating them all at once cannot change the outcome.
// A prefix failing the test does not rule out a longer one passing it
// (e.g. tallies 1,1,1,1,20: prefixes of 1-3 all fail since the next
// candidate is still tied at 1, but the full prefix of 4 succeeds once
// the next tally jumps to 20), so every index is checked and the
// largest passing prefix wins, regardless of earlier failures.
func safeBatch(buckets []tallyBucket) []string {
	type entry struct {
		id string
		w  rational.Weight
	}
	var flat []entry
	for _, b := range buckets {
		for _, c := range b.Candidates {
			flat = append(flat, entry{id: c, w: b.Tally})
		}
	}
	if len(flat) < 2 {
		return nil
	}

	cum := rational.Zero
	batchEnd := 0
	for i := 0; i < len(flat)-1; i++ {
		cum = cum.Add(flat[i].w)
		if cum.Cmp(flat[i+1].w) < 0 {
			batchEnd = i + 1
		}
	}
	if batchEnd == 0 {
		return nil
	}
	out := make([]string, batchEnd)
	for i := 0; i < batchEnd; i++ {
		out[i] = flat[i].id
	}
	return out
}

func singleLoser(ctx context.Context, buckets []tallyBucket, cfg Config, tb *tieBreaker, round int, history []RoundOutcome) ([]string, []TieBreakRecord, error) {
	lowest := buckets[0]
	if len(lowest.Candidates) == 1 {
		return lowest.Candidates, nil, nil
	}
	rec, err := tb.resolve(ctx, lowest.Candidates, round, lowest.Tally.Round(cfg.decimalPlaces(), cfg.RoundTalliesHalfToEven), PurposeSelectLoser, history)
	if err != nil {
		return nil, nil, err
	}
	return []string{rec.Chosen}, []TieBreakRecord{rec}, nil
}

func removeFrom(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
