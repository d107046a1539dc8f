// Package match unifies predicate patterns with ground facts.
//
// Matching is one-way: only pattern variables in the pattern get bound.
// Nodes of the commutative operators + and * match either in order or with
// their operands swapped, in-order first, so the result never depends on
// how a fact happened to be written.
package match

import "github.com/cognicore/mathgraph/pkg/mathgraph/formal"

// Fact extends existing so that pattern, with the substitution applied,
// equals fact. It returns the first such extension, or false when names,
// arity or any argument disagree. There are no partial results.
func Fact(pattern, fact formal.Predicate, existing formal.Substitution) (formal.Substitution, bool) {
	var out formal.Substitution
	found := false
	EachFact(pattern, fact, existing, func(s formal.Substitution) bool {
		out, found = s, true
		return false
	})
	return out, found
}

// EachFact calls yield for every extension of existing that matches pattern
// against fact, in a fixed order, until yield returns false. It reports
// whether enumeration ran to completion.
func EachFact(pattern, fact formal.Predicate, existing formal.Substitution, yield func(formal.Substitution) bool) bool {
	if pattern.Name != fact.Name || len(pattern.Args) != len(fact.Args) {
		return true
	}
	return args(pattern.Args, fact.Args, existing, yield)
}

func args(ps, ts []formal.Term, s formal.Substitution, yield func(formal.Substitution) bool) bool {
	if len(ps) == 0 {
		return yield(s)
	}
	return Terms(ps[0], ts[0], s, func(next formal.Substitution) bool {
		return args(ps[1:], ts[1:], next, yield)
	})
}

// Terms enumerates the extensions of s under which pattern equals t.
func Terms(pattern, t formal.Term, s formal.Substitution, yield func(formal.Substitution) bool) bool {
	switch p := pattern.(type) {
	case formal.Variable:
		if !p.IsPattern() {
			if v, ok := t.(formal.Variable); ok && v.Name == p.Name {
				return yield(s)
			}
			return true
		}
		if bound, ok := s.Lookup(p.Name); ok {
			if formal.Equal(bound, t) {
				return yield(s)
			}
			return true
		}
		next, _ := s.Bind(p.Name, t)
		return yield(next)

	case formal.Number:
		if n, ok := t.(formal.Number); ok && formal.Compare(p, n) == 0 {
			return yield(s)
		}
		return true

	case formal.Binary:
		b, ok := t.(formal.Binary)
		if !ok || b.Op != p.Op {
			return true
		}
		if !pair(p.Left, p.Right, b.Left, b.Right, s, yield) {
			return false
		}
		if p.Op.Commutative() && formal.Compare(b.Left, b.Right) != 0 {
			return pair(p.Left, p.Right, b.Right, b.Left, s, yield)
		}
		return true
	}
	return true
}

func pair(pl, pr, tl, tr formal.Term, s formal.Substitution, yield func(formal.Substitution) bool) bool {
	return Terms(pl, tl, s, func(next formal.Substitution) bool {
		return Terms(pr, tr, next, yield)
	})
}
