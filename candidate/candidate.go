// Package candidate holds the immutable candidate roster and the
// per-run status lifecycle (Continuing -> Elected | Eliminated).
package candidate

import "fmt"

// UWI is the sentinel candidate ID for an undeclared write-in.
const UWI = "UWI"

// Candidate is an opaque, immutable contest participant.
type Candidate struct {
	ID   string
	Name string
}

// State is the lifecycle stage of a candidate within one tabulation run.
type State int

const (
	// Continuing candidates are neither elected nor eliminated.
	Continuing State = iota
	// Elected candidates have won a seat.
	Elected
	// Eliminated candidates have been removed from contention.
	Eliminated
	// Excluded candidates were removed by configuration before round 1
	// and never participate.
	Excluded
)

func (s State) String() string {
	switch s {
	case Continuing:
		return "continuing"
	case Elected:
		return "elected"
	case Eliminated:
		return "eliminated"
	case Excluded:
		return "excluded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is the mutable per-candidate record tracked across rounds.
// Round and Order are meaningful only once State is Elected or
// Eliminated. For an Elected candidate, Order is its position in the
// contest-wide sequence of elections; for an Eliminated candidate, it is
// its position among that round's eliminations.
type Status struct {
	State State
	Round int
	Order int
}

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	return s.State == Elected || s.State == Eliminated || s.State == Excluded
}

// Roster tracks candidate status across a tabulation run, keyed by
// candidate ID, plus the canonical ordering used whenever a
// deterministic iteration over candidates is required (tie lists,
// TallyIndex insertion order, PRNG sampling input).
type Roster struct {
	byID  map[string]*Candidate
	order []string // canonical order: config permutation, else lexicographic
	status map[string]Status
}

// NewRoster builds a roster from the declared candidates, in canonical
// order. order must already reflect the desired canonical ordering
// (permutation-derived or lexicographically sorted by the caller).
func NewRoster(candidates []Candidate, order []string, excluded map[string]bool) (*Roster, error) {
	byID := make(map[string]*Candidate, len(candidates))
	for i := range candidates {
		c := candidates[i]
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("candidate: duplicate candidate id %q", c.ID)
		}
		byID[c.ID] = &c
	}

	status := make(map[string]Status, len(candidates))
	for _, id := range order {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("candidate: canonical order references unknown candidate %q", id)
		}
		st := Status{State: Continuing}
		if excluded[id] {
			st.State = Excluded
		}
		status[id] = st
	}

	if len(order) != len(byID) {
		return nil, fmt.Errorf("candidate: canonical order has %d entries, roster has %d candidates", len(order), len(byID))
	}

	return &Roster{byID: byID, order: order, status: status}, nil
}

// Order returns the canonical candidate ordering.
func (r *Roster) Order() []string {
	return r.order
}

// Candidate looks up a declared candidate by ID.
func (r *Roster) Candidate(id string) (Candidate, bool) {
	c, ok := r.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return *c, true
}

// Status returns the current status of a candidate.
func (r *Roster) Status(id string) Status {
	return r.status[id]
}

// SetStatus transitions a candidate's status. It panics if the
// candidate's current status is already terminal, enforcing invariant 3
// ("terminal states are sticky") at the one place status is mutated.
func (r *Roster) SetStatus(id string, next Status) {
	cur := r.status[id]
	if cur.Terminal() {
		panic(fmt.Sprintf("candidate: attempted to change terminal status of %q (was %s)", id, cur.State))
	}
	r.status[id] = next
}

// Continuing returns the IDs of all continuing candidates, in canonical
// order.
func (r *Roster) Continuing() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.status[id].State == Continuing {
			out = append(out, id)
		}
	}
	return out
}
