package tabulator

import "github.com/kouellette/rcv/optional"

// TabulationMode selects the family of RCV rules the round driver runs.
type TabulationMode string

const (
	SingleWinnerIRV      TabulationMode = "single_winner_irv"
	MultiSeatSTV         TabulationMode = "multi_seat_stv"
	BottomsUpMultiSeat   TabulationMode = "bottoms_up_multi_seat"
	SequentialMultiSeat  TabulationMode = "sequential_multi_seat"
	ContinueUntilTwoMode TabulationMode = "continue_until_two_remain"
)

// OvervoteRule selects how a rank with more than one mark is handled.
type OvervoteRule string

const (
	OvervoteExhaustImmediately      OvervoteRule = "exhaust_immediately"
	OvervoteAlwaysSkipToNextRank    OvervoteRule = "always_skip_to_next_rank"
	OvervoteExhaustIfMultipleCont   OvervoteRule = "exhaust_if_multiple_continuing"
)

// SkippedRankRule selects how an empty rank is handled.
type SkippedRankRule string

const (
	SkippedRankExhaustOnSkip        SkippedRankRule = "exhaust_on_skipped_rank"
	SkippedRankExhaustOnTwoConsec   SkippedRankRule = "exhaust_on_two_consecutive_skipped_ranks"
	SkippedRankIgnore               SkippedRankRule = "ignore"
)

// DuplicateCandidateRule selects how a repeated candidate ID is handled.
type DuplicateCandidateRule string

const (
	DuplicateExhaust   DuplicateCandidateRule = "exhaust"
	DuplicateSkipToNext DuplicateCandidateRule = "skip_to_next"
	DuplicateIgnore    DuplicateCandidateRule = "ignore"
)

// TieBreakMode selects the tie-resolution algorithm family.
type TieBreakMode string

const (
	TieInteractive                      TieBreakMode = "interactive"
	TieRandom                           TieBreakMode = "random"
	TieUsePermutation                   TieBreakMode = "use_permutation"
	TieGeneratePermutation              TieBreakMode = "generate_permutation"
	TiePreviousRoundCountsThenRandom    TieBreakMode = "previous_round_counts_then_random"
	TiePreviousRoundCountsThenInteractive TieBreakMode = "previous_round_counts_then_interactive"
)

// Config is the validated, immutable configuration the engine consumes.
// Constructing and validating a Config is the job of an external loader
// (see cvr and cmd/rcvtab); the engine only ever reads it.
type Config struct {
	NumberOfWinners int
	TabulationMode  TabulationMode

	HareQuota                  bool
	NonIntegerWinningThreshold bool

	// DecimalPlacesForVoteArithmetic is the rounding precision (0-20)
	// applied only when a tally is reported as a decimal (the value
	// passed to a TieBreakOracle, and resultio summaries), never inside
	// the transfer loop; RoundOutcome keeps exact weights. Unset
	// defaults to 4.
	DecimalPlacesForVoteArithmetic optional.Maybe[int32]
	RoundTalliesHalfToEven         bool

	BatchElimination        bool
	ContinueUntilTwoRemain  bool
	MinimumVoteThreshold    int

	OvervoteRule           OvervoteRule
	SkippedRankRule        SkippedRankRule
	DuplicateCandidateRule DuplicateCandidateRule

	TieBreakMode TieBreakMode
	// RandomSeed seeds the deterministic PRNG used by Random and
	// PreviousRoundCounts*ThenRandom modes, and by GeneratePermutation
	// at config-construction time (outside the engine).
	RandomSeed optional.Maybe[int64]
	// CandidatePermutation is the canonical tie-break order for
	// UsePermutation and GeneratePermutation modes. For
	// GeneratePermutation, the caller must derive this slice from
	// RandomSeed before constructing Config (see GeneratePermutation
	// helper) -- the engine treats both modes identically, simply
	// consulting this field.
	CandidatePermutation []string

	MaxRankingsAllowed              int
	TreatBlankAsUndeclaredWriteIn   bool
	ExcludedCandidates              []string

	RejectMalformedBallots bool
}

func (c Config) decimalPlaces() int32 {
	return c.DecimalPlacesForVoteArithmetic.ValueOr(4)
}
