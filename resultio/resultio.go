// Package resultio serializes a tabulator.Result for external
// consumption: a JSON audit document and a human-readable text report.
// The JSON shape generalizes the teacher's resultSTVScottish/stage/
// optionResult triple (vote/stv_scottish.go) to the full round-outcome
// record the engine now produces.
package resultio

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kouellette/rcv/rational"
	"github.com/kouellette/rcv/tabulator"
)

// Summary is the JSON wire shape for a completed tabulation. GeneratedAt
// is stamped here, not on tabulator.Result, so that Tabulate itself
// stays a pure function of its inputs (see DESIGN.md).
type Summary struct {
	ContestID      string          `json:"contestId"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	NumberOfWinners int            `json:"numberOfWinners"`
	ElectedInOrder []string        `json:"electedInOrder"`
	Rounds         []roundSummary  `json:"rounds"`
}

type roundSummary struct {
	Round      int                  `json:"round"`
	Tally      map[string]string    `json:"tally"`
	Exhausted  string               `json:"exhausted"`
	Overvote   string               `json:"overvote"`
	Skipped    string               `json:"skipped"`
	Threshold  string               `json:"threshold"`
	Elected    []string             `json:"elected,omitempty"`
	Eliminated []string             `json:"eliminated,omitempty"`
	Transfers  []transferSummary    `json:"transfers,omitempty"`
	TieBreaks  []tieBreakSummary    `json:"tieBreaks,omitempty"`
}

type transferSummary struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight string `json:"weight"`
}

type tieBreakSummary struct {
	Purpose     string   `json:"purpose"`
	Tied        []string `json:"tied"`
	Chosen      string   `json:"chosen"`
	Explanation string   `json:"explanation"`
}

// NewSummary converts a Result into its reportable Summary, rounding
// every exact rational tally to decimalPlaces digits (see
// rational.Weight.Round), the one point in the pipeline where exact
// fractions are allowed to become lossy decimals.
func NewSummary(contestID string, result tabulator.Result, decimalPlaces int32, halfToEven bool, generatedAt time.Time) Summary {
	round := func(w rational.Weight) string {
		return w.Round(decimalPlaces, halfToEven).String()
	}

	rounds := make([]roundSummary, len(result.Rounds))
	for i, r := range result.Rounds {
		tally := make(map[string]string, len(r.Tally))
		for id, w := range r.Tally {
			tally[id] = round(w)
		}
		transfers := make([]transferSummary, len(r.Transfers))
		for j, t := range r.Transfers {
			transfers[j] = transferSummary{From: t.From, To: t.To, Weight: round(t.Weight)}
		}
		tieBreaks := make([]tieBreakSummary, len(r.TieBreaks))
		for j, tb := range r.TieBreaks {
			tieBreaks[j] = tieBreakSummary{
				Purpose:     string(tb.Purpose),
				Tied:        tb.Tied,
				Chosen:      tb.Chosen,
				Explanation: tb.Explanation,
			}
		}
		rounds[i] = roundSummary{
			Round:      r.Round,
			Tally:      tally,
			Exhausted:  round(r.Exhausted),
			Overvote:   round(r.Overvote),
			Skipped:    round(r.Skipped),
			Threshold:  round(r.Threshold),
			Elected:    r.Elected,
			Eliminated: r.Eliminated,
			Transfers:  transfers,
			TieBreaks:  tieBreaks,
		}
	}

	return Summary{
		ContestID:       contestID,
		GeneratedAt:     generatedAt,
		NumberOfWinners: result.NumberOfWinners,
		ElectedInOrder:  result.ElectedInOrder,
		Rounds:          rounds,
	}
}

// WriteJSON writes the Summary as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText writes a terse human-readable round-by-round report.
func WriteText(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "contest %s -- %d seat(s)\n", s.ContestID, s.NumberOfWinners); err != nil {
		return err
	}
	for _, r := range s.Rounds {
		if _, err := fmt.Fprintf(w, "round %d (threshold %s)\n", r.Round, r.Threshold); err != nil {
			return err
		}
		for id, tally := range r.Tally {
			if _, err := fmt.Fprintf(w, "  %-12s %s\n", id, tally); err != nil {
				return err
			}
		}
		for _, id := range r.Elected {
			if _, err := fmt.Fprintf(w, "  elected: %s\n", id); err != nil {
				return err
			}
		}
		for _, id := range r.Eliminated {
			if _, err := fmt.Fprintf(w, "  eliminated: %s\n", id); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "winners: %v\n", s.ElectedInOrder); err != nil {
		return err
	}
	return nil
}
