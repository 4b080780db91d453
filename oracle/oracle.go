// Package oracle implements tabulator.TieBreakOracle: the external
// collaborator consulted for interactively-resolved ties. It mirrors
// the teacher's context-scoped collaborator-interface idiom (vote.go's
// DBQuerier), swapping a database round-trip for a human decision.
package oracle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StdIO resolves ties by prompting a human over the given reader/writer.
// It is the default oracle for cmd/rcvtab's interactive tie-break mode.
type StdIO struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdIO builds a StdIO oracle over the given streams.
func NewStdIO(in io.Reader, out io.Writer) *StdIO {
	return &StdIO{in: bufio.NewReader(in), out: out}
}

func (o *StdIO) ChooseLoser(ctx context.Context, tied []string, round int, tally decimal.Decimal) (string, error) {
	return o.prompt(ctx, tied, round, tally, "eliminate")
}

func (o *StdIO) ChooseWinner(ctx context.Context, tied []string, round int, tally decimal.Decimal) (string, error) {
	return o.prompt(ctx, tied, round, tally, "elect")
}

func (o *StdIO) prompt(ctx context.Context, tied []string, round int, tally decimal.Decimal, verb string) (string, error) {
	sorted := append([]string(nil), tied...)
	sort.Strings(sorted)

	fmt.Fprintf(o.out, "round %d: tie at %s among %s\n", round, tally.String(), strings.Join(sorted, ", "))
	for i, id := range sorted {
		fmt.Fprintf(o.out, "  [%d] %s\n", i+1, id)
	}
	fmt.Fprintf(o.out, "select which candidate to %s: ", verb)

	type result struct {
		id  string
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		line, err := o.in.ReadString('\n')
		if err != nil {
			resultCh <- result{err: err}
			return
		}
		line = strings.TrimSpace(line)
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(sorted) {
			resultCh <- result{err: fmt.Errorf("oracle: invalid selection %q", line)}
			return
		}
		resultCh <- result{id: sorted[idx-1]}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-resultCh:
		return r.id, r.err
	}
}

// Deterministic resolves every tie by selecting the lexicographically
// first candidate ID. It performs no I/O and is meant for automated
// pipelines that configure interactive tie-break mode but want a fixed,
// auditable fallback rather than a human in the loop.
type Deterministic struct{}

func (Deterministic) ChooseLoser(_ context.Context, tied []string, _ int, _ decimal.Decimal) (string, error) {
	return pickLexFirst(tied), nil
}

func (Deterministic) ChooseWinner(_ context.Context, tied []string, _ int, _ decimal.Decimal) (string, error) {
	return pickLexFirst(tied), nil
}

func pickLexFirst(tied []string) string {
	best := tied[0]
	for _, id := range tied[1:] {
		if id < best {
			best = id
		}
	}
	return best
}
