// Command rcvtab runs a ranked-choice contest end to end: load a
// contest definition and its ballots, run the round-based engine, and
// write the result as an audit JSON document or a text report. Flag
// parsing follows the teacher's own CLI dependency, kong.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/kouellette/rcv/broadcast"
	"github.com/kouellette/rcv/cvr"
	"github.com/kouellette/rcv/oracle"
	"github.com/kouellette/rcv/resultio"
	"github.com/kouellette/rcv/storage/postgres"
	"github.com/kouellette/rcv/tabulator"
	"github.com/kouellette/rcv/telemetry"
)

type cli struct {
	Tabulate TabulateCmd `cmd:"" help:"Run a contest and report the result."`
	Validate ValidateCmd `cmd:"" help:"Parse and validate a contest definition without tabulating it."`
}

// TabulateCmd loads a contest and its ballots, runs the engine, and
// writes the result.
type TabulateCmd struct {
	Contest    string `arg:"" help:"Path to the contest definition JSON file."`
	BallotsCSV string `help:"Path to a CSV cast-vote-record file, when ballots aren't embedded in the contest JSON."`
	Format     string `enum:"json,text" default:"json" help:"Result format."`
	Out        string `short:"o" help:"Write the result here instead of stdout."`

	Interactive bool   `help:"Prompt on stdin/stderr for ties instead of resolving them automatically."`
	Postgres    string `help:"Postgres connection string to persist the result to, in addition to writing it out."`
	Redis       string `help:"Redis address to publish round-by-round events to as the contest is tabulated."`
	Verbose     bool   `short:"v" help:"Log round-by-round progress to stderr."`
}

func (c *TabulateCmd) Run() error {
	background := context.Background()

	contest, err := loadContest(c.Contest, c.BallotsCSV)
	if err != nil {
		return err
	}
	if err := contest.Validate(); err != nil {
		return fmt.Errorf("rcvtab: %w", err)
	}

	level := zerolog.WarnLevel
	if c.Verbose {
		level = zerolog.DebugLevel
	}
	log := telemetry.NewConsole(level).With(contest.ContestID)

	var tieOracle tabulator.TieBreakOracle
	if c.Interactive {
		tieOracle = oracle.NewStdIO(os.Stdin, os.Stderr)
	} else {
		tieOracle = oracle.Deterministic{}
	}

	sinks := []tabulator.EventSink{telemetry.EventSink{Logger: log}}
	if c.Redis != "" {
		rdb := broadcast.NewRedis(c.Redis, contest.ContestID)
		defer rdb.Close()
		sinks = append(sinks, rdb)
	}

	result, err := tabulator.Tabulate(background, contest.Ballots, contest.Candidates, contest.Config, tieOracle, fanOut(sinks))
	if err != nil {
		return fmt.Errorf("rcvtab: tabulate: %w", err)
	}

	if c.Postgres != "" {
		if err := saveToPostgres(background, c.Postgres, contest.ContestID, result); err != nil {
			return err
		}
	}

	return writeResult(c.Out, c.Format, contest, result)
}

// ValidateCmd parses a contest definition and runs its structural
// checks without tabulating it, for pre-flight checks on election-day
// data before the real run.
type ValidateCmd struct {
	Contest    string `arg:"" help:"Path to the contest definition JSON file."`
	BallotsCSV string `help:"Path to a CSV cast-vote-record file, when ballots aren't embedded in the contest JSON."`
}

func (c *ValidateCmd) Run() error {
	contest, err := loadContest(c.Contest, c.BallotsCSV)
	if err != nil {
		return err
	}
	if err := contest.Validate(); err != nil {
		return fmt.Errorf("rcvtab: %w", err)
	}
	fmt.Printf("contest %q: %d candidates, %d ballots, %d seat(s) -- ok\n",
		contest.ContestID, len(contest.Candidates), len(contest.Ballots), contest.Config.NumberOfWinners)
	return nil
}

func loadContest(contestPath, ballotsCSVPath string) (cvr.Contest, error) {
	f, err := os.Open(contestPath)
	if err != nil {
		return cvr.Contest{}, fmt.Errorf("rcvtab: open contest: %w", err)
	}
	defer f.Close()

	contest, err := cvr.LoadContest(f)
	if err != nil {
		return cvr.Contest{}, fmt.Errorf("rcvtab: %w", err)
	}

	if ballotsCSVPath != "" {
		cf, err := os.Open(ballotsCSVPath)
		if err != nil {
			return cvr.Contest{}, fmt.Errorf("rcvtab: open ballots csv: %w", err)
		}
		defer cf.Close()

		ballots, err := cvr.LoadBallotsCSV(cf)
		if err != nil {
			return cvr.Contest{}, fmt.Errorf("rcvtab: %w", err)
		}
		contest.Ballots = ballots
	}

	return contest, nil
}

func saveToPostgres(ctx context.Context, url, contestID string, result tabulator.Result) error {
	backend, err := postgres.New(ctx, url)
	if err != nil {
		return fmt.Errorf("rcvtab: connect postgres: %w", err)
	}
	defer backend.Close()

	if err := backend.Migrate(ctx); err != nil {
		return fmt.Errorf("rcvtab: migrate postgres: %w", err)
	}
	if err := backend.SaveResult(ctx, contestID, result); err != nil {
		return fmt.Errorf("rcvtab: save result: %w", err)
	}
	return nil
}

func writeResult(outPath, format string, contest cvr.Contest, result tabulator.Result) error {
	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("rcvtab: create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	decimalPlaces := int32(4)
	if dp, ok := contest.Config.DecimalPlacesForVoteArithmetic.Value(); ok {
		decimalPlaces = dp
	}
	summary := resultio.NewSummary(contest.ContestID, result, decimalPlaces, contest.Config.RoundTalliesHalfToEven, time.Now())

	switch format {
	case "text":
		return resultio.WriteText(w, summary)
	default:
		return resultio.WriteJSON(w, summary)
	}
}

// fanOut combines multiple event sinks into one, matching the shape
// the engine expects (a single EventSink per run).
type fanOutSink []tabulator.EventSink

func fanOut(sinks []tabulator.EventSink) tabulator.EventSink {
	return fanOutSink(sinks)
}

func (f fanOutSink) Emit(e tabulator.Event) {
	for _, s := range f {
		s.Emit(e)
	}
}

func main() {
	var c cli
	parser := kong.Parse(&c,
		kong.Name("rcvtab"),
		kong.Description("Tabulate a ranked-choice contest round by round."),
		kong.UsageOnError(),
	)
	if err := parser.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
