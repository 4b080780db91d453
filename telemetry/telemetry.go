// Package telemetry wraps github.com/rs/zerolog behind the printf-style
// call shape the teacher's own log.Info/log.Debug call sites use
// throughout internal/vote/run.go and internal/vote/vote.go, while
// backing it with a real structured logger rather than the teacher's
// own (unavailable) logging package.
package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/kouellette/rcv/tabulator"
)

// Logger is a passed-in event sink: every component that needs to log
// takes one explicitly rather than reaching for a process-wide global,
// matching SPEC_FULL.md's ambient-stack expansion of section 9.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing structured JSON lines to w.
func New(w io.Writer, level zerolog.Level) Logger {
	return Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// NewConsole builds a Logger writing human-readable lines to stderr,
// for interactive CLI use.
func NewConsole(level zerolog.Level) Logger {
	return Logger{zl: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()}
}

func (l Logger) Info(format string, args ...any)  { l.zl.Info().Msg(fmt.Sprintf(format, args...)) }
func (l Logger) Debug(format string, args ...any) { l.zl.Debug().Msg(fmt.Sprintf(format, args...)) }
func (l Logger) Error(format string, args ...any) { l.zl.Error().Msg(fmt.Sprintf(format, args...)) }

// With returns a Logger with a contest ID attached to every line.
func (l Logger) With(contestID string) Logger {
	return Logger{zl: l.zl.With().Str("contest_id", contestID).Logger()}
}

// EventSink adapts Logger to tabulator.EventSink, logging one line per
// round boundary and tie-break, grounded on the teacher's habit of
// logging every poll lifecycle transition (start/vote/stop) at Debug.
type EventSink struct {
	Logger Logger
}

func (s EventSink) Emit(e tabulator.Event) {
	switch e.Kind {
	case tabulator.EventRoundStarted:
		s.Logger.Debug("round %d started", e.Round)
	case tabulator.EventRoundCompleted:
		s.Logger.Info("round %d complete: %d elected, %d eliminated", e.Round, len(e.Outcome.Elected), len(e.Outcome.Eliminated))
	case tabulator.EventTieBreak:
		s.Logger.Info("round %d tie-break: %v -> %s (%s)", e.Round, e.TieBreak.Tied, e.TieBreak.Chosen, e.TieBreak.Explanation)
	case tabulator.EventContestDone:
		s.Logger.Info("contest finished after round %d", e.Round)
	}
}
