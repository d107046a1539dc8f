package parse

import (
	"errors"
	"fmt"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
)

// Problem parses the given facts and the goal of a problem.
//
// Given facts must be ground: pattern variables (X, ?, _y) are rejected.
// Every problem symbol in the goal must occur in some given fact; pattern
// variables in the goal are the unknowns to solve for.
func Problem(facts []string, goal string) (formal.Problem, error) {
	known := make(map[string]bool)
	given := make([]formal.Predicate, 0, len(facts))
	for i, text := range facts {
		source := fmt.Sprintf("fact %d", i+1)
		pred, idents, err := predicateWithIdents(text)
		if err != nil {
			return formal.Problem{}, withSource(err, source)
		}
		for _, id := range idents {
			if formal.IsPatternName(id.name) {
				return formal.Problem{}, &Error{
					Kind:   UnexpectedToken,
					Span:   id.span,
					Input:  text,
					Source: source,
					Msg:    fmt.Sprintf("pattern variable %q is not allowed in a given fact", id.name),
				}
			}
			known[id.name] = true
		}
		given = append(given, pred)
	}

	goalPred, idents, err := predicateWithIdents(goal)
	if err != nil {
		return formal.Problem{}, withSource(err, "goal")
	}
	for _, id := range idents {
		if formal.IsPatternName(id.name) || known[id.name] {
			continue
		}
		return formal.Problem{}, &Error{
			Kind:   UnboundIdentifierInGoal,
			Span:   id.span,
			Input:  goal,
			Source: "goal",
			Msg:    fmt.Sprintf("%q does not occur in any given fact", id.name),
		}
	}
	return formal.Problem{Given: given, Goal: goalPred}, nil
}

func withSource(err error, source string) error {
	var pe *Error
	if errors.As(err, &pe) {
		pe.Source = source
		return pe
	}
	return fmt.Errorf("%s: %w", source, err)
}
