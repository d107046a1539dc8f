package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/parse"
)

// pred parses a pattern as written.
func pred(t *testing.T, text string) formal.Predicate {
	t.Helper()
	p, err := parse.Predicate(text)
	require.NoError(t, err)
	return p
}

// fact parses a fact into the canonical form the engine stores.
func fact(t *testing.T, text string) formal.Predicate {
	t.Helper()
	return pred(t, text).Canonical()
}

func binding(t *testing.T, s formal.Substitution, name string) string {
	t.Helper()
	v, ok := s.Lookup(name)
	require.True(t, ok, "%s not bound in %s", name, s)
	return v.String()
}

func TestFactBindsVariables(t *testing.T) {
	s, ok := Fact(pred(t, "eq(A * X, B)"), fact(t, "eq(3 * y, 21)"), formal.Substitution{})
	require.True(t, ok)
	assert.Equal(t, "3", binding(t, s, "A"))
	assert.Equal(t, "y", binding(t, s, "X"))
	assert.Equal(t, "21", binding(t, s, "B"))
}

func TestFactCommutativeOperands(t *testing.T) {
	// eq(x + 7, 15) is stored as eq(7 + x, 15); both operand orders are tried.
	var got []string
	EachFact(pred(t, "eq(X + A, B)"), fact(t, "eq(x + 7, 15)"), formal.Substitution{}, func(s formal.Substitution) bool {
		got = append(got, s.String())
		return true
	})
	assert.Equal(t, []string{
		"{A: x, B: 15, X: 7}",
		"{A: 7, B: 15, X: x}",
	}, got)
}

func TestFactNonCommutativeOperandsKeepOrder(t *testing.T) {
	_, ok := Fact(pred(t, "eq(X - 1, B)"), fact(t, "eq(1 - x, 4)"), formal.Substitution{})
	assert.False(t, ok)
}

func TestFactMismatches(t *testing.T) {
	empty := formal.Substitution{}
	cases := []struct{ pattern, fact string }{
		{"gt(X, Y)", "lt(a, b)"},
		{"eq(X, 5)", "eq(x, 6)"},
		{"eq(X, X)", "eq(a, b)"},
		{"eq(x, Y)", "eq(z, 1)"},
		{"eq(X * Y, Z)", "eq(x + y, 3)"},
		{"even(2 * X)", "even(n)"},
	}
	for _, tc := range cases {
		_, ok := Fact(pred(t, tc.pattern), pred(t, tc.fact), empty)
		assert.False(t, ok, "%s vs %s", tc.pattern, tc.fact)
	}
}

func TestFactExtendsExisting(t *testing.T) {
	existing, _ := formal.Substitution{}.Bind("Y", formal.Var("b"))

	s, ok := Fact(pred(t, "gt(Y, Z)"), fact(t, "gt(b, c)"), existing)
	require.True(t, ok)
	assert.Equal(t, "c", binding(t, s, "Z"))
	assert.Equal(t, 1, existing.Len(), "existing substitution must not change")

	_, ok = Fact(pred(t, "gt(Y, Z)"), fact(t, "gt(a, c)"), existing)
	assert.False(t, ok, "conflicting binding for Y")
}

func TestFactBoundVariableComparedCanonically(t *testing.T) {
	existing, _ := formal.Substitution{}.Bind("X", formal.Add(formal.Var("b"), formal.Var("a")))
	_, ok := Fact(pred(t, "eq(X, 1)"), fact(t, "eq(a + b, 1)"), existing)
	assert.True(t, ok)
}

func TestFactSymbolsMatchThemselves(t *testing.T) {
	_, ok := Fact(pred(t, "eq(x, Y)"), fact(t, "eq(x, 8)"), formal.Substitution{})
	assert.True(t, ok)
}

type facts []formal.Predicate

func (fs facts) Candidates(name formal.Name) []Candidate {
	var out []Candidate
	for i, f := range fs {
		if f.Name == name {
			out = append(out, Candidate{ID: i, Pred: f})
		}
	}
	return out
}

func TestJoinSharedVariables(t *testing.T) {
	known := facts{
		fact(t, "gt(a, b)"),
		fact(t, "gt(b, c)"),
		fact(t, "gt(c, d)"),
	}
	ants := []formal.Predicate{pred(t, "gt(X, Y)"), pred(t, "gt(Y, Z)")}

	var got []string
	var used [][]int
	Join(ants, known, func(m Match) bool {
		got = append(got, formal.Substitute(formal.Var("X"), m.Subst).String()+">"+formal.Substitute(formal.Var("Z"), m.Subst).String())
		used = append(used, m.Used)
		return true
	})
	assert.Equal(t, []string{"a>c", "b>d"}, got)
	assert.Equal(t, [][]int{{0, 1}, {1, 2}}, used)
}

func TestJoinStopsEarly(t *testing.T) {
	known := facts{fact(t, "even(a)"), fact(t, "even(b)"), fact(t, "even(c)")}
	ants := []formal.Predicate{pred(t, "even(X)"), pred(t, "even(Y)")}

	n := 0
	Join(ants, known, func(Match) bool {
		n++
		return n < 4
	})
	assert.Equal(t, 4, n)

	n = 0
	Join(ants, known, func(Match) bool { n++; return true })
	assert.Equal(t, 9, n, "a fact may fill several slots")
}

func TestJoinPinned(t *testing.T) {
	known := facts{
		fact(t, "gt(a, b)"),
		fact(t, "gt(b, c)"),
		fact(t, "gt(c, d)"),
	}
	ants := []formal.Predicate{pred(t, "gt(X, Y)"), pred(t, "gt(Y, Z)")}
	pin := Candidate{ID: 1, Pred: known[1]}

	var used [][]int
	for slot := range ants {
		JoinPinned(ants, slot, pin, known, func(m Match) bool {
			used = append(used, m.Used)
			return true
		})
	}
	// gt(b, c) as the first premise pairs with gt(c, d); as the second with gt(a, b).
	assert.Equal(t, [][]int{{1, 2}, {0, 1}}, used)

	called := false
	JoinPinned(ants, 5, pin, known, func(Match) bool { called = true; return true })
	assert.False(t, called)
}

func TestJoinDeterministic(t *testing.T) {
	known := facts{
		fact(t, "eq(x, 5)"),
		fact(t, "eq(5, x)"),
		fact(t, "eq(x, x)"),
	}
	ants := []formal.Predicate{pred(t, "eq(X, Y)"), pred(t, "eq(Y, Z)")}
	run := func() []string {
		var out []string
		Join(ants, known, func(m Match) bool {
			out = append(out, m.Subst.String())
			return true
		})
		return out
	}
	assert.Equal(t, run(), run())
}
