package formal

import "strings"

// Problem is a set of given facts and the goal to derive from them. The goal
// may contain pattern variables, e.g. eq(x, ?) asks for the value of x.
type Problem struct {
	Given []Predicate
	Goal  Predicate

	// Text is the natural-language statement the problem came from, if any.
	Text string
	// Confidence is the extractor's self-reported score. It is metadata only.
	Confidence float64
}

// Key identifies the formal content of p. Order of the given facts is kept
// because it fixes the creation order the search depends on.
func (p Problem) Key() string {
	var sb strings.Builder
	for _, g := range p.Given {
		sb.WriteString(g.Key())
		sb.WriteString("; ")
	}
	sb.WriteString("⊢ ")
	sb.WriteString(p.Goal.Key())
	return sb.String()
}

func (p Problem) String() string {
	given := make([]string, len(p.Given))
	for i, g := range p.Given {
		given[i] = g.String()
	}
	return "given " + strings.Join(given, ", ") + " prove " + p.Goal.String()
}
