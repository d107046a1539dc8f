package forward

import (
	"errors"
	"fmt"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference"
	"github.com/cognicore/mathgraph/pkg/mathgraph/match"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
)

// ErrUnsound is wrapped by every Verify failure.
var ErrUnsound = errors.New("forward: proof does not check")

// Verify re-checks a proof from scratch without running a search. Each
// step's rule must match exactly its listed premises, in antecedent order,
// and reproduce the step's derived fact; every premise must be a given fact
// or derived by an earlier step; the conclusion must be established and
// match the goal.
func Verify(rb *rules.RuleBase, problem formal.Problem, proof *inference.Proof) error {
	if proof == nil {
		return fmt.Errorf("%w: no proof", ErrUnsound)
	}
	known := make(map[string]bool)
	for _, g := range problem.Given {
		n, err := g.Normalize()
		if err != nil {
			return fmt.Errorf("given %s: %w", g, err)
		}
		known[n.Key()] = true
	}

	for i, step := range proof.Steps {
		r, err := rb.Rule(step.RuleID)
		if err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrUnsound, i+1, err)
		}
		if len(step.Premises) != len(r.Antecedents) {
			return fmt.Errorf("%w: step %d: %s takes %d premises, got %d", ErrUnsound, i+1, r.ID, len(r.Antecedents), len(step.Premises))
		}
		for _, p := range step.Premises {
			if !known[p.Key()] {
				return fmt.Errorf("%w: step %d: premise %s is not established", ErrUnsound, i+1, p)
			}
		}
		if !reproduces(r, step.Premises, step.Derived) {
			return fmt.Errorf("%w: step %d: %s does not derive %s from its premises", ErrUnsound, i+1, r.ID, step.Derived)
		}
		known[step.Derived.Key()] = true
	}

	if !known[proof.Conclusion.Key()] {
		return fmt.Errorf("%w: conclusion %s is not established", ErrUnsound, proof.Conclusion)
	}
	goal, err := problem.Goal.Normalize()
	if err != nil {
		return fmt.Errorf("goal %s: %w", problem.Goal, err)
	}
	if _, ok := match.Fact(goal, proof.Conclusion.Canonical(), formal.Substitution{}); !ok {
		return fmt.Errorf("%w: conclusion %s does not match goal %s", ErrUnsound, proof.Conclusion, goal)
	}
	return nil
}

// reproduces reports whether some substitution matching the antecedents to
// the premises, slot by slot, instantiates the consequent to derived.
func reproduces(r rules.Rule, premises []formal.Predicate, derived formal.Predicate) bool {
	want := derived.Key()
	var try func(i int, s formal.Substitution) bool
	try = func(i int, s formal.Substitution) bool {
		if i == len(premises) {
			c, err := r.Consequent.Substitute(s).Normalize()
			return err == nil && c.IsGround() && c.Key() == want
		}
		// EachFact reports false only when the callback stopped it.
		return !match.EachFact(r.Antecedents[i], premises[i].Canonical(), s, func(next formal.Substitution) bool {
			return !try(i+1, next)
		})
	}
	return try(0, formal.Substitution{})
}
