package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kouellette/rcv/tabulator"
)

const sampleContestJSON = `{
  "contestId": "mayor-2026",
  "candidates": [{"id": "A", "name": "Alice"}, {"id": "B", "name": "Bob"}],
  "config": {
    "numberOfWinners": 1,
    "tabulationMode": "single_winner_irv",
    "overvoteRule": "exhaust_immediately",
    "skippedRankRule": "exhaust_on_skipped_rank",
    "duplicateCandidateRule": "exhaust",
    "tieBreakMode": "previous_round_counts_then_random",
    "maxRankingsAllowed": 2
  },
  "ballots": [
    {"id": "1", "precinct": "P1", "ranks": {"1": ["A"]}},
    {"id": "2", "precinct": "P1", "ranks": {"1": ["B"]}}
  ]
}`

func TestLoadContestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contest.json")
	if err := os.WriteFile(path, []byte(sampleContestJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	contest, err := loadContest(path, "")
	if err != nil {
		t.Fatalf("loadContest: %v", err)
	}
	if contest.ContestID != "mayor-2026" {
		t.Fatalf("ContestID = %q, want mayor-2026", contest.ContestID)
	}
	if len(contest.Ballots) != 2 {
		t.Fatalf("len(Ballots) = %d, want 2", len(contest.Ballots))
	}
}

func TestLoadContestReplacesBallotsWithExternalCSV(t *testing.T) {
	dir := t.TempDir()
	contestPath := filepath.Join(dir, "contest.json")
	if err := os.WriteFile(contestPath, []byte(sampleContestJSON), 0o644); err != nil {
		t.Fatalf("write contest fixture: %v", err)
	}

	csvPath := filepath.Join(dir, "ballots.csv")
	csvBody := "id,precinct,rank1,rank2\n10,P2,A,B\n11,P2,B,\n"
	if err := os.WriteFile(csvPath, []byte(csvBody), 0o644); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}

	contest, err := loadContest(contestPath, csvPath)
	if err != nil {
		t.Fatalf("loadContest: %v", err)
	}
	if len(contest.Ballots) != 2 {
		t.Fatalf("len(Ballots) = %d, want 2 (csv ballots should replace embedded ones)", len(contest.Ballots))
	}
	if contest.Ballots[0].ID != "10" {
		t.Fatalf("Ballots[0].ID = %q, want 10", contest.Ballots[0].ID)
	}
}

func TestWriteResultWritesToFile(t *testing.T) {
	dir := t.TempDir()
	contestPath := filepath.Join(dir, "contest.json")
	if err := os.WriteFile(contestPath, []byte(sampleContestJSON), 0o644); err != nil {
		t.Fatalf("write contest fixture: %v", err)
	}
	contest, err := loadContest(contestPath, "")
	if err != nil {
		t.Fatalf("loadContest: %v", err)
	}

	result := tabulator.Result{
		NumberOfWinners: 1,
		ElectedInOrder:  []string{"A"},
		Rounds: []tabulator.RoundOutcome{
			{Round: 1, Elected: []string{"A"}},
		},
	}

	outPath := filepath.Join(dir, "result.txt")
	if err := writeResult(outPath, "text", contest, result); err != nil {
		t.Fatalf("writeResult: %v", err)
	}

	body, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read result file: %v", err)
	}
	if !strings.Contains(string(body), "elected: A") {
		t.Fatalf("result file missing elected line: %s", body)
	}
}

func TestFanOutEmitsToEverySink(t *testing.T) {
	var a, b bytes.Buffer
	recordA := recordingSink{buf: &a}
	recordB := recordingSink{buf: &b}

	sink := fanOut([]tabulator.EventSink{recordA, recordB})
	sink.Emit(tabulator.Event{Kind: tabulator.EventRoundStarted, Round: 1})

	if a.String() != "1" || b.String() != "1" {
		t.Fatalf("fanOut did not reach every sink: a=%q b=%q", a.String(), b.String())
	}
}

type recordingSink struct {
	buf *bytes.Buffer
}

func (r recordingSink) Emit(e tabulator.Event) {
	r.buf.WriteString("1")
}
