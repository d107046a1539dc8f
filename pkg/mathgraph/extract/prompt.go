package extract

import (
	"fmt"
	"strings"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
)

var systemPrompt = `You convert mathematical word problems into formal logic for a rule-based prover.
Reply with one JSON object and nothing else.`

func userPrompt(text string) string {
	names := formal.Vocabulary()
	vocab := make([]string, len(names))
	for i, n := range names {
		vocab[i] = string(n)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Problem: %s\n\n", text)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "1. Use only these predicates: %s.\n", strings.Join(vocab, ", "))
	b.WriteString("2. Name the quantities of the problem with lowercase identifiers such as x, n, a.\n")
	b.WriteString("3. Use integers and + - * / only. No other functions.\n")
	b.WriteString("4. Facts are the concrete statements the problem gives.\n")
	b.WriteString("5. The goal is the single statement to prove. Write ? for a value to find, as in eq(x, ?).\n\n")
	b.WriteString(`Output format:
{"facts": ["eq(x + 3, 7)"], "goal": "eq(x, ?)", "problem_type": "linear_equation", "confidence": 0.9}

Examples:
"If n is even, prove 2n is even" -> {"facts": ["even(n)"], "goal": "even(2 * n)", "problem_type": "number_theory", "confidence": 0.9}
"If a > b and b > c, prove a > c" -> {"facts": ["gt(a, b)", "gt(b, c)"], "goal": "gt(a, c)", "problem_type": "inequality", "confidence": 0.95}
`)
	return b.String()
}
