package resultio_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kouellette/rcv/rational"
	"github.com/kouellette/rcv/resultio"
	"github.com/kouellette/rcv/tabulator"
)

func sampleResult() tabulator.Result {
	return tabulator.Result{
		NumberOfWinners: 1,
		ElectedInOrder:  []string{"A"},
		Rounds: []tabulator.RoundOutcome{
			{
				Round: 1,
				Tally: map[string]rational.Weight{
					"A": rational.FromFrac(2, 3),
					"B": rational.FromFrac(1, 3),
				},
				Exhausted: rational.Zero,
				Overvote:  rational.Zero,
				Skipped:   rational.Zero,
				Threshold: rational.FromFrac(1, 2),
				Elected:   []string{"A"},
			},
		},
	}
}

func TestNewSummaryRoundsExactFractions(t *testing.T) {
	s := resultio.NewSummary("c1", sampleResult(), 4, false, time.Unix(0, 0).UTC())
	if s.ContestID != "c1" {
		t.Fatalf("ContestID = %q", s.ContestID)
	}
	if len(s.Rounds) != 1 {
		t.Fatalf("len(Rounds) = %d, want 1", len(s.Rounds))
	}
	if s.Rounds[0].Tally["A"] != "0.6667" {
		t.Fatalf("A tally = %q, want 0.6667", s.Rounds[0].Tally["A"])
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	s := resultio.NewSummary("c1", sampleResult(), 4, false, time.Unix(0, 0).UTC())
	var buf bytes.Buffer
	if err := resultio.WriteJSON(&buf, s); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"contestId": "c1"`) {
		t.Fatalf("missing contestId in output: %s", buf.String())
	}
}

func TestWriteTextIncludesWinner(t *testing.T) {
	s := resultio.NewSummary("c1", sampleResult(), 4, false, time.Unix(0, 0).UTC())
	var buf bytes.Buffer
	if err := resultio.WriteText(&buf, s); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "winners: [A]") {
		t.Fatalf("missing winners line: %s", buf.String())
	}
}
