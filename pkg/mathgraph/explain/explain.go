// Package explain renders proofs and failed searches as prose.
//
// Template is deterministic and always available. LLM asks a chat model
// for a friendlier write-up and falls back to Template whenever the model
// cannot be reached. Neither adds anything to the proof's validity.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference"
)

// Request is what gets explained: a problem with either its proof or the
// failure that ended the search.
type Request struct {
	Problem formal.Problem
	Proof   *inference.Proof
	Failure *inference.SearchFailure
}

// Explainer renders a Request as text.
type Explainer interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// Template is the built-in deterministic explainer.
type Template struct{}

func (Template) Explain(_ context.Context, req Request) (string, error) {
	var b strings.Builder
	if req.Problem.Text != "" {
		fmt.Fprintf(&b, "Problem: %s\n", req.Problem.Text)
	}
	fmt.Fprintf(&b, "Given: %s\n", joinPreds(req.Problem.Given, ", "))
	fmt.Fprintf(&b, "Goal: %s\n\n", req.Problem.Goal)

	switch {
	case req.Proof != nil:
		writeProof(&b, req.Proof)
	case req.Failure != nil:
		writeFailure(&b, req.Failure)
	default:
		return "", fmt.Errorf("explain: request has neither proof nor failure")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeProof(b *strings.Builder, p *inference.Proof) {
	if p.Trivial() {
		fmt.Fprintf(b, "The goal holds directly: %s is one of the given facts.\n", p.Conclusion)
	} else {
		b.WriteString(FormatSteps(p.Steps))
	}
	fmt.Fprintf(b, "Therefore %s.", p.Conclusion)
	if p.Answer.Len() > 0 {
		parts := make([]string, 0, p.Answer.Len())
		for _, name := range p.Answer.Names() {
			v, _ := p.Answer.Lookup(name)
			parts = append(parts, fmt.Sprintf("%s = %s", name, v))
		}
		fmt.Fprintf(b, " Answer: %s.", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

func writeFailure(b *strings.Builder, f *inference.SearchFailure) {
	switch f.Kind {
	case inference.FixpointReached:
		fmt.Fprintf(b, "No proof: after %d iterations no rule could add a new fact (%d facts known). ", f.Iterations, f.Facts)
		b.WriteString("The goal does not follow from the given facts with the enabled rules.\n")
	case inference.SearchBoundExceeded:
		if f.FactLimit > 0 {
			fmt.Fprintf(b, "No proof yet: the search stopped after generating its limit of %d facts in %d iterations. ", f.FactLimit, f.Iterations)
			b.WriteString("The rules keep producing new numbers; the goal may still be derivable with a larger fact bound.\n")
			return
		}
		fmt.Fprintf(b, "No proof yet: the search stopped at its bound of %d iterations with %d facts known. ", f.Iterations, f.Facts)
		b.WriteString("The goal may still be derivable with a larger bound.\n")
	default:
		fmt.Fprintf(b, "No proof: %s.\n", f.Kind)
	}
}

// FormatSteps renders proof steps one per line:
//
//	Step 1. From eq(7 + x, 15), by Subtraction property of equality, we get eq(x, 8).
func FormatSteps(steps []inference.Step) string {
	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "Step %d. From %s, by %s, we get %s.\n", i+1, joinPreds(s.Premises, " and "), s.RuleName, s.Derived)
	}
	return b.String()
}

func joinPreds(ps []formal.Predicate, sep string) string {
	if len(ps) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}
