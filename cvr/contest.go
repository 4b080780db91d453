// Package cvr ingests a contest definition and its cast vote records
// into the domain types the tabulator package consumes. Unmarshalling
// and validating an untrusted config before handing it to the engine
// mirrors the teacher's methods.go pattern of unmarshalling a poll's
// raw JSON config and calling method.ValidateConfig before
// method.Result ever runs.
package cvr

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/kouellette/rcv/ballot"
	"github.com/kouellette/rcv/candidate"
	"github.com/kouellette/rcv/optional"
	"github.com/kouellette/rcv/tabulator"
)

// Contest is a fully parsed, not-yet-validated contest definition.
type Contest struct {
	ContestID  string
	Candidates []candidate.Candidate
	Config     tabulator.Config
	Ballots    []ballot.Ballot
}

// configDTO is the JSON wire shape for tabulator.Config. Field names
// are camelCase to match SPEC_FULL.md's option table; ToConfig
// converts to the engine's Config, leaving optional.Maybe zero-valued
// (unset) when the JSON field is absent.
type configDTO struct {
	NumberOfWinners                int      `json:"numberOfWinners"`
	TabulationMode                 string   `json:"tabulationMode"`
	HareQuota                      bool     `json:"hareQuota"`
	NonIntegerWinningThreshold     bool     `json:"nonIntegerWinningThreshold"`
	DecimalPlacesForVoteArithmetic *int32   `json:"decimalPlacesForVoteArithmetic,omitempty"`
	RoundTalliesHalfToEven         bool     `json:"roundTalliesHalfToEven"`
	BatchElimination               bool     `json:"batchElimination"`
	ContinueUntilTwoRemain         bool     `json:"continueUntilTwoRemain"`
	MinimumVoteThreshold           int      `json:"minimumVoteThreshold"`
	OvervoteRule                   string   `json:"overvoteRule"`
	SkippedRankRule                string   `json:"skippedRankRule"`
	DuplicateCandidateRule         string   `json:"duplicateCandidateRule"`
	TieBreakMode                   string   `json:"tieBreakMode"`
	RandomSeed                     *int64   `json:"randomSeed,omitempty"`
	CandidatePermutation           []string `json:"candidatePermutation,omitempty"`
	MaxRankingsAllowed             int      `json:"maxRankingsAllowed"`
	TreatBlankAsUndeclaredWriteIn  bool     `json:"treatBlankAsUndeclaredWriteIn"`
	ExcludedCandidates             []string `json:"excludedCandidates,omitempty"`
	RejectMalformedBallots         bool     `json:"rejectMalformedBallots"`
}

func (d configDTO) toConfig() tabulator.Config {
	cfg := tabulator.Config{
		NumberOfWinners:                d.NumberOfWinners,
		TabulationMode:                 tabulator.TabulationMode(d.TabulationMode),
		HareQuota:                      d.HareQuota,
		NonIntegerWinningThreshold:     d.NonIntegerWinningThreshold,
		RoundTalliesHalfToEven:         d.RoundTalliesHalfToEven,
		BatchElimination:               d.BatchElimination,
		ContinueUntilTwoRemain:         d.ContinueUntilTwoRemain,
		MinimumVoteThreshold:           d.MinimumVoteThreshold,
		OvervoteRule:                   tabulator.OvervoteRule(d.OvervoteRule),
		SkippedRankRule:                tabulator.SkippedRankRule(d.SkippedRankRule),
		DuplicateCandidateRule:         tabulator.DuplicateCandidateRule(d.DuplicateCandidateRule),
		TieBreakMode:                   tabulator.TieBreakMode(d.TieBreakMode),
		CandidatePermutation:           d.CandidatePermutation,
		MaxRankingsAllowed:             d.MaxRankingsAllowed,
		TreatBlankAsUndeclaredWriteIn:  d.TreatBlankAsUndeclaredWriteIn,
		ExcludedCandidates:             d.ExcludedCandidates,
		RejectMalformedBallots:         d.RejectMalformedBallots,
	}
	if d.DecimalPlacesForVoteArithmetic != nil {
		cfg.DecimalPlacesForVoteArithmetic = optional.Of(*d.DecimalPlacesForVoteArithmetic)
	}
	if d.RandomSeed != nil {
		cfg.RandomSeed = optional.Of(*d.RandomSeed)
	}
	return cfg
}

type ballotDTO struct {
	ID       string           `json:"id"`
	Precinct string           `json:"precinct"`
	Ranks    map[string][]string `json:"ranks"`
}

type contestDTO struct {
	ContestID  string                `json:"contestId"`
	Candidates []candidate.Candidate `json:"candidates"`
	Config     configDTO             `json:"config"`
	Ballots    []ballotDTO           `json:"ballots"`
}

// LoadContest parses a JSON contest definition. It does not validate
// the config against the candidate roster; call Validate for that.
func LoadContest(r io.Reader) (Contest, error) {
	var dto contestDTO
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dto); err != nil {
		return Contest{}, fmt.Errorf("cvr: decode contest: %w", err)
	}

	cfg := dto.Config.toConfig()
	if cfg.TieBreakMode == tabulator.TieGeneratePermutation && len(cfg.CandidatePermutation) == 0 {
		ids := make([]string, len(dto.Candidates))
		for i, c := range dto.Candidates {
			ids[i] = c.ID
		}
		sort.Strings(ids)
		cfg.CandidatePermutation = tabulator.GeneratePermutation(cfg.RandomSeed.ValueOr(0), ids)
	}

	ballots := make([]ballot.Ballot, len(dto.Ballots))
	for i, b := range dto.Ballots {
		ranks := make(map[int][]string, len(b.Ranks))
		for k, v := range b.Ranks {
			pos, err := parseRank(k)
			if err != nil {
				return Contest{}, fmt.Errorf("cvr: ballot %q: %w", b.ID, err)
			}
			ranks[pos] = v
		}
		ballots[i] = ballot.Ballot{ID: b.ID, Precinct: b.Precinct, Ranks: ranks}
	}

	return Contest{
		ContestID:  dto.ContestID,
		Candidates: dto.Candidates,
		Config:     cfg,
		Ballots:    ballots,
	}, nil
}

func parseRank(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid rank key %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("rank %q must be positive", s)
	}
	return n, nil
}

// Validate checks the contest's config against its own candidate
// roster, mirroring the teacher's validateConfig (stv_scottish.go):
// reject a seat count that cannot be filled, and reject duplicate
// candidate IDs.
func (c Contest) Validate() error {
	if c.Config.NumberOfWinners <= 0 {
		return fmt.Errorf("cvr: numberOfWinners must be >= 1")
	}
	seen := make(map[string]bool, len(c.Candidates))
	for _, cand := range c.Candidates {
		if seen[cand.ID] {
			return fmt.Errorf("cvr: duplicate candidate id %q", cand.ID)
		}
		seen[cand.ID] = true
	}
	available := len(c.Candidates) - len(c.Config.ExcludedCandidates)
	if c.Config.NumberOfWinners > available {
		return fmt.Errorf("cvr: numberOfWinners (%d) exceeds available candidates (%d)", c.Config.NumberOfWinners, available)
	}
	for _, id := range c.Config.CandidatePermutation {
		if !seen[id] {
			return fmt.Errorf("cvr: candidatePermutation references unknown candidate %q", id)
		}
	}
	for _, id := range c.Config.ExcludedCandidates {
		if !seen[id] {
			return fmt.Errorf("cvr: excludedCandidates references unknown candidate %q", id)
		}
	}
	return nil
}
