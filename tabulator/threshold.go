package tabulator

import "github.com/kouellette/rcv/rational"

// ComputeThreshold derives the winning threshold from the first round's
// tally, per config.hareQuota / config.nonIntegerWinningThreshold. The
// engine computes this exactly once, at round 1, and reuses it for the
// remainder of the contest.
//
// Droop quota: V/(seats+1). When nonIntegerWinningThreshold is false
// the Droop quota is floored and incremented by one whole vote, and a
// candidate wins at tally >= threshold (the classic "droop plus one"
// integer quota). When true, the exact fractional Droop quota is kept
// and a candidate must have tally strictly greater than threshold,
// avoiding the "+1" rounding trick while keeping exact rational
// arithmetic throughout.
//
// Hare quota: T = V/seats, always exact, never floored or
// incremented -- the "+1" trick is a Droop-specific device to guarantee
// a quota can't be met by more candidates than there are seats, and
// does not apply to Hare. A candidate wins at tally >= the Hare quota
// regardless of nonIntegerWinningThreshold.
func ComputeThreshold(firstRoundTally RoundTally, cfg Config) rational.Weight {
	v := rational.Zero
	for _, w := range firstRoundTally.Candidates {
		v = v.Add(w)
	}

	seats := rational.FromInt(int64(cfg.NumberOfWinners))
	if cfg.HareQuota {
		return v.Quo(seats)
	}

	quota := v.Quo(rational.FromInt(int64(cfg.NumberOfWinners + 1)))
	if cfg.NonIntegerWinningThreshold {
		return quota
	}
	return quota.Floor().Add(rational.FromInt(1))
}

// MeetsThreshold reports whether tally earns a seat under this config's
// comparison rule. Hare quota always uses >=; Droop quota uses >= for
// integer quotas and > for exact fractional ones.
func MeetsThreshold(tally, threshold rational.Weight, cfg Config) bool {
	if !cfg.HareQuota && cfg.NonIntegerWinningThreshold {
		return tally.GreaterThan(threshold)
	}
	return tally.GreaterThanOrEqual(threshold)
}
