package tabulator

import (
	"github.com/kouellette/rcv/ballot"
	"github.com/kouellette/rcv/candidate"
)

// needsReassignment reports whether a ballot's current assignment is
// stale: unassigned, or pinned to a candidate that is no longer
// continuing. Most ballots keep the same assignment round over round,
// so only walking the ones that changed status is the real saving over
// re-walking every ballot from rank 1 every round.
func needsReassignment(s ballot.State, roster *candidate.Roster) bool {
	if s.IsExhausted() {
		return false
	}
	if s.AssignedCandidate == "" {
		return true
	}
	return roster.Status(s.AssignedCandidate).State != candidate.Continuing
}

// assign walks a ballot's ranks from 1 upward and returns the
// candidate it lands on, or an Exhaustion reason if it finds none.
func assign(b ballot.Ballot, roster *candidate.Roster, cfg Config) (string, int, ballot.Exhaustion) {
	consecutiveSkips := 0
	seen := make(map[string]bool)

	// Every position from 1 up to the last marked rank is visited, so a
	// position absent from b.Ranks counts as a skipped rank.
	last := 0
	if ranks := b.SortedRanks(); len(ranks) > 0 {
		last = ranks[len(ranks)-1]
	}
	if maxRank := cfg.MaxRankingsAllowed; maxRank > 0 && last > maxRank {
		last = maxRank
	}
	for pos := 1; pos <= last; pos++ {
		marks := filterBlankUWI(b.Ranks[pos], cfg)

		if len(marks) == 0 {
			consecutiveSkips++
			switch cfg.SkippedRankRule {
			case SkippedRankExhaustOnSkip:
				return "", 0, ballot.ExhaustedSkippedRank
			case SkippedRankExhaustOnTwoConsec:
				if consecutiveSkips >= 2 {
					return "", 0, ballot.ExhaustedSkippedRank
				}
			}
			continue
		}
		consecutiveSkips = 0

		if len(marks) == 1 {
			cand := marks[0]
			if seen[cand] {
				switch cfg.DuplicateCandidateRule {
				case DuplicateExhaust:
					return "", 0, ballot.ExhaustedDuplicate
				case DuplicateSkipToNext:
					continue
				}
			}
			seen[cand] = true
			if _, declared := roster.Candidate(cand); !declared {
				return "", 0, ballot.ExhaustedMalformed
			}
			if roster.Status(cand).State == candidate.Continuing {
				return cand, pos, ballot.NotExhausted
			}
			continue
		}

		// overvote: more than one mark at this rank.
		for _, c := range marks {
			seen[c] = true
		}
		switch cfg.OvervoteRule {
		case OvervoteExhaustImmediately:
			return "", 0, ballot.ExhaustedOvervote
		case OvervoteAlwaysSkipToNextRank:
			continue
		case OvervoteExhaustIfMultipleCont:
			continuing := continuingMarks(marks, roster)
			switch {
			case len(continuing) >= 2:
				return "", 0, ballot.ExhaustedOvervote
			case len(continuing) == 1:
				return continuing[0], pos, ballot.NotExhausted
			default:
				continue
			}
		}
	}
	return "", 0, ballot.ExhaustedNoMoreRankings
}

func continuingMarks(marks []string, roster *candidate.Roster) []string {
	out := make([]string, 0, len(marks))
	for _, c := range marks {
		if _, declared := roster.Candidate(c); !declared {
			continue
		}
		if roster.Status(c).State == candidate.Continuing {
			out = append(out, c)
		}
	}
	return out
}

// filterBlankUWI drops the undeclared-write-in sentinel from a rank's
// marks when config says blank ranks should not be treated as a real
// candidate selection.
func filterBlankUWI(marks []string, cfg Config) []string {
	if cfg.TreatBlankAsUndeclaredWriteIn || len(marks) != 1 || marks[0] != candidate.UWI {
		return marks
	}
	return nil
}
