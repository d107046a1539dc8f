// Package inference defines the results of a proof search: proofs, their
// steps and the typed failures a search can end with. The search itself
// lives in inference/forward.
package inference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
)

// Prover derives a goal from given facts.
// This interface allows swapping search strategies without touching callers.
type Prover interface {
	Prove(problem formal.Problem) (*Proof, error)
}

// Origin tells where a fact came from.
type Origin int

const (
	Given Origin = iota
	Derived
)

func (o Origin) String() string {
	if o == Given {
		return "given"
	}
	return "derived"
}

// Fact is a ground predicate the search knows, with its provenance.
type Fact struct {
	ID     int
	Pred   formal.Predicate
	Origin Origin

	// Set for derived facts only.
	RuleID  string
	Sources []int
	Subst   formal.Substitution
}

// Step is one rule application on the path to the goal.
type Step struct {
	RuleID       string
	RuleName     string
	Premises     []formal.Predicate
	Substitution formal.Substitution
	Derived      formal.Predicate
}

func (s Step) String() string {
	ps := make([]string, len(s.Premises))
	for i, p := range s.Premises {
		ps[i] = p.String()
	}
	return fmt.Sprintf("%s: %s ⊢ %s", s.RuleID, strings.Join(ps, ", "), s.Derived)
}

// Stats describes the work a search did.
type Stats struct {
	Iterations int
	// Facts is the number of distinct facts known when the search stopped.
	Facts int
	// Derived counts facts added by rule applications.
	Derived int
	// Discarded counts instantiations rejected as non-ground, undefined or
	// beyond the depth horizon.
	Discarded int
}

// Proof is a causally ordered derivation of the goal: every premise of a
// step is a given fact or the result of an earlier step.
type Proof struct {
	Goal formal.Predicate
	// Conclusion is the known fact that matched the goal.
	Conclusion formal.Predicate
	// Answer binds the goal's unknowns, e.g. ? → 8 for eq(x, ?).
	Answer formal.Substitution
	Steps  []Step
	Stats  Stats
}

// Trivial reports whether the goal was among the given facts.
func (p *Proof) Trivial() bool { return len(p.Steps) == 0 }

// Sentinel errors for errors.Is against a *SearchFailure.
var (
	ErrFixpointReached     = errors.New("inference: fixpoint reached without the goal")
	ErrSearchBoundExceeded = errors.New("inference: search bound exceeded")
)

// FailureKind says why a search stopped without a proof.
type FailureKind int

const (
	// FixpointReached means no rule can add a new fact. The goal does not
	// follow from the givens under the enabled rules.
	FixpointReached FailureKind = iota + 1
	// SearchBoundExceeded means the step bound or the fact bound ran out
	// first. The goal may or may not be derivable.
	SearchBoundExceeded
)

func (k FailureKind) String() string {
	switch k {
	case FixpointReached:
		return "fixpoint reached"
	case SearchBoundExceeded:
		return "search bound exceeded"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// SearchFailure is the expected, non-defect outcome of an unsuccessful
// search.
type SearchFailure struct {
	Kind       FailureKind
	Goal       formal.Predicate
	Iterations int
	Facts      int
	// FactLimit is the fact bound when it, not the step bound, ended the
	// search. Zero otherwise.
	FactLimit int
}

func (e *SearchFailure) Error() string {
	if e.FactLimit > 0 {
		return fmt.Sprintf("inference: %s proving %s: fact bound %d reached after %d iterations", e.Kind, e.Goal, e.FactLimit, e.Iterations)
	}
	return fmt.Sprintf("inference: %s proving %s after %d iterations (%d facts)", e.Kind, e.Goal, e.Iterations, e.Facts)
}

func (e *SearchFailure) Is(target error) bool {
	switch target {
	case ErrFixpointReached:
		return e.Kind == FixpointReached
	case ErrSearchBoundExceeded:
		return e.Kind == SearchBoundExceeded
	}
	return false
}
