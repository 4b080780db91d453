package tabulator

import "fmt"

// ErrorKind discriminates the fatal-error taxonomy the engine can raise.
type ErrorKind string

const (
	ConfigInvalid       ErrorKind = "config_invalid"
	BallotMalformed     ErrorKind = "ballot_malformed"
	TieUnresolvable     ErrorKind = "tie_unresolvable"
	InvariantViolation  ErrorKind = "invariant_violation"
	RoundLimitExceeded  ErrorKind = "round_limit_exceeded"
	OracleCancelled     ErrorKind = "oracle_cancelled"
)

// Error is the typed error the engine returns for every fatal condition.
// Callers recover the kind with errors.As, mirroring the teacher's
// statusCodeError/doesNotExistError wrapper idiom.
type Error struct {
	kind    ErrorKind
	message string
	err     error
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error) *Error {
	return &Error{kind: kind, message: err.Error(), err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("tabulator: %s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error taxonomy entry, mirroring the teacher's
// statusCodeError.Type() accessor.
func (e *Error) Kind() ErrorKind { return e.kind }
