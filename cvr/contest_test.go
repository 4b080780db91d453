package cvr_test

import (
	"strings"
	"testing"

	"github.com/kouellette/rcv/cvr"
)

const sampleContest = `{
  "contestId": "mayor-2026",
  "candidates": [{"id":"A","name":"Alice"},{"id":"B","name":"Bob"}],
  "config": {
    "numberOfWinners": 1,
    "tabulationMode": "single_winner_irv",
    "batchElimination": true,
    "overvoteRule": "exhaust_immediately",
    "skippedRankRule": "ignore",
    "duplicateCandidateRule": "skip_to_next",
    "tieBreakMode": "random",
    "randomSeed": 7,
    "maxRankingsAllowed": 5
  },
  "ballots": [
    {"id":"1","precinct":"P1","ranks":{"1":["A"],"2":["B"]}},
    {"id":"2","precinct":"P1","ranks":{"1":["B"]}}
  ]
}`

func TestLoadContestParsesConfigAndBallots(t *testing.T) {
	c, err := cvr.LoadContest(strings.NewReader(sampleContest))
	if err != nil {
		t.Fatalf("LoadContest: %v", err)
	}
	if c.ContestID != "mayor-2026" {
		t.Fatalf("ContestID = %q", c.ContestID)
	}
	if len(c.Candidates) != 2 {
		t.Fatalf("len(Candidates) = %d, want 2", len(c.Candidates))
	}
	if len(c.Ballots) != 2 {
		t.Fatalf("len(Ballots) = %d, want 2", len(c.Ballots))
	}
	if got := c.Ballots[0].Ranks[1]; len(got) != 1 || got[0] != "A" {
		t.Fatalf("ballot 1 rank 1 = %v, want [A]", got)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsTooManyWinners(t *testing.T) {
	c, err := cvr.LoadContest(strings.NewReader(sampleContest))
	if err != nil {
		t.Fatalf("LoadContest: %v", err)
	}
	c.Config.NumberOfWinners = 5
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for numberOfWinners exceeding the candidate count")
	}
}

func TestLoadBallotsCSVParsesOvervotesAndSkips(t *testing.T) {
	csvData := "id,precinct,rank1,rank2\n" +
		"1,P1,A,B\n" +
		"2,P1,A|B,\n"
	ballots, err := cvr.LoadBallotsCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("LoadBallotsCSV: %v", err)
	}
	if len(ballots) != 2 {
		t.Fatalf("len(ballots) = %d, want 2", len(ballots))
	}
	if got := ballots[1].Ranks[1]; len(got) != 2 {
		t.Fatalf("ballot 2 rank 1 = %v, want an overvote of 2", got)
	}
	if _, ok := ballots[1].Ranks[2]; ok {
		t.Fatalf("ballot 2 rank 2 should be absent (skipped)")
	}
}
