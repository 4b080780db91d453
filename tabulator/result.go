package tabulator

import "github.com/kouellette/rcv/rational"

// Transfer is one audit-log entry describing ballot weight that moved
// between a round's assignment and the prior round's. From/To are
// either a candidate ID or one of the bucket names "exhausted",
// "overvote", "skipped", or "malformed". Transfers attached to round r describe
// movement observed while building round r's assignment from round
// r-1's final state; round 1 never has transfers.
type Transfer struct {
	From   string
	To     string
	Weight rational.Weight
}

// RoundOutcome is the complete, auditable record of one tabulation
// round.
type RoundOutcome struct {
	Round      int
	Tally      map[string]rational.Weight
	Exhausted  rational.Weight
	Overvote   rational.Weight
	Skipped    rational.Weight
	Threshold  rational.Weight
	Elected    []string
	Eliminated []string
	Transfers  []Transfer
	TieBreaks  []TieBreakRecord
}

// MalformedBallot names one ballot that could not be interpreted at
// all -- a rank referencing a candidate not in the contest -- as
// opposed to an ordinary overvote/duplicate exhaustion, which is a
// config-selected outcome of a well-formed ballot and never reported
// here.
type MalformedBallot struct {
	BallotID string
	Reason   string
}

// malformedBallotLogCap bounds MalformedBallotSample so a contest with
// many bad ballots still produces a Result of bounded size; the full
// count is always exact, only the per-ballot sample is capped.
const malformedBallotLogCap = 50

// Result is the complete record of a tabulation run. It carries no
// wall-clock timestamp: Tabulate is a pure function of its inputs (and
// the tie-break oracle's decisions), and a generatedAt field would
// break the "identical inputs, byte-identical Result" guarantee. The
// resultio package stamps a generation time when it serializes a
// Result for external consumption.
type Result struct {
	ContestID             string
	NumberOfWinners       int
	Rounds                []RoundOutcome
	ElectedInOrder        []string
	FinalTallies          map[string]rational.Weight
	MalformedBallotCount  int
	MalformedBallotSample []MalformedBallot
}
