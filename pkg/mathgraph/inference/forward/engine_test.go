package forward

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/parse"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
)

func problem(t *testing.T, goal string, facts ...string) formal.Problem {
	t.Helper()
	p, err := parse.Problem(facts, goal)
	require.NoError(t, err)
	return p
}

func engine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	rb, err := rules.Load()
	require.NoError(t, err)
	return New(rb, opts...)
}

func prove(t *testing.T, e *Engine, p formal.Problem) *inference.Proof {
	t.Helper()
	proof, err := e.Prove(p)
	require.NoError(t, err)
	require.NoError(t, Verify(e.Rules(), p, proof))
	return proof
}

func answer(t *testing.T, proof *inference.Proof, name string) string {
	t.Helper()
	v, ok := proof.Answer.Lookup(name)
	require.True(t, ok, "no binding for %s in %s", name, proof.Answer)
	return v.String()
}

func TestSolveLinearAddition(t *testing.T) {
	p := problem(t, "eq(x, ?)", "eq(x + 7, 15)")
	proof := prove(t, engine(t), p)

	assert.Equal(t, "8", answer(t, proof, "?"))
	assert.Equal(t, "eq(x, 8)", proof.Conclusion.String())
	require.Len(t, proof.Steps, 1)
	step := proof.Steps[0]
	assert.Equal(t, "subtraction_property", step.RuleID)
	assert.Equal(t, "Subtraction property of equality", step.RuleName)
	assert.Equal(t, "eq(7 + x, 15)", step.Premises[0].String())
	assert.Equal(t, "eq(x, 8)", step.Derived.String())
}

func TestSolveLinearMultiplication(t *testing.T) {
	p := problem(t, "eq(y, 7)", "eq(3 * y, 21)")
	proof := prove(t, engine(t), p)

	require.Len(t, proof.Steps, 1)
	assert.Equal(t, "division_property", proof.Steps[0].RuleID)
	assert.Equal(t, 0, proof.Answer.Len())

	proof = prove(t, engine(t), problem(t, "eq(y, ?)", "eq(3 * y, 21)"))
	require.Len(t, proof.Steps, 1)
	assert.Equal(t, "division_property", proof.Steps[0].RuleID)
	assert.Equal(t, "7", answer(t, proof, "?"))
	assert.Equal(t, "eq(y, 7)", proof.Conclusion.String())
}

func TestSolveRationalAnswer(t *testing.T) {
	p := problem(t, "eq(z, ?)", "eq(4 * z, 6)")
	proof := prove(t, engine(t), p)
	assert.Equal(t, "(3/2)", answer(t, proof, "?"))
}

func TestEvenDoubling(t *testing.T) {
	p := problem(t, "even(2 * n)", "even(n)")
	proof := prove(t, engine(t), p)

	require.Len(t, proof.Steps, 1)
	assert.Equal(t, "even_multiplication", proof.Steps[0].RuleID)
	assert.Equal(t, "even(2 * n)", proof.Conclusion.String())
}

func TestGreaterTransitivity(t *testing.T) {
	p := problem(t, "gt(a, c)", "gt(a, b)", "gt(b, c)")
	proof := prove(t, engine(t), p)

	require.Len(t, proof.Steps, 1)
	assert.Equal(t, "greater_transitivity", proof.Steps[0].RuleID)
	assert.Equal(t, []string{"gt(a, b)", "gt(b, c)"}, premises(proof.Steps[0]))
}

func TestLongerChainIsCausallyOrdered(t *testing.T) {
	p := problem(t, "gt(a, d)", "gt(a, b)", "gt(b, c)", "gt(c, d)")
	proof := prove(t, engine(t), p)

	require.Len(t, proof.Steps, 2)
	assert.Equal(t, "gt(a, c)", proof.Steps[0].Derived.String())
	assert.Equal(t, []string{"gt(a, c)", "gt(c, d)"}, premises(proof.Steps[1]))
}

func TestOddSumIsEven(t *testing.T) {
	p := problem(t, "even(a + b)", "eq(a, 2 * k + 1)", "eq(b, 2 * m + 1)")
	proof := prove(t, engine(t), p)

	last := proof.Steps[len(proof.Steps)-1]
	assert.Equal(t, "odd_addition_even", last.RuleID)
}

func TestPositiveFromTransitivity(t *testing.T) {
	p := problem(t, "positive(x)", "gt(x, y)", "gt(y, 0)")
	proof := prove(t, engine(t), p)
	assert.Equal(t, "positive_definition", proof.Steps[len(proof.Steps)-1].RuleID)
}

func TestGoalAmongGivens(t *testing.T) {
	p := problem(t, "gt(b, a)", "gt(b, a)")
	proof := prove(t, engine(t), p)
	assert.True(t, proof.Trivial())
	assert.Equal(t, 0, proof.Stats.Iterations)
}

func TestGivenWrittenDifferently(t *testing.T) {
	p := problem(t, "eq(x, 3 + 4)", "eq(x, 7)")
	proof := prove(t, engine(t), p)
	assert.True(t, proof.Trivial())
}

func TestFixpointWithoutGoal(t *testing.T) {
	p := problem(t, "gt(x, 10)", "eq(x, 5)")
	_, err := engine(t).Prove(p)

	var sf *inference.SearchFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, inference.FixpointReached, sf.Kind)
	assert.True(t, errors.Is(err, inference.ErrFixpointReached))
	assert.False(t, errors.Is(err, inference.ErrSearchBoundExceeded))
	assert.Positive(t, sf.Iterations)
	assert.GreaterOrEqual(t, sf.Facts, 1)
}

func TestEmptyGivensReachFixpoint(t *testing.T) {
	_, err := engine(t).Prove(problem(t, "even(4)"))
	assert.ErrorIs(t, err, inference.ErrFixpointReached)
}

func TestSearchBoundExceeded(t *testing.T) {
	p := problem(t, "gt(a, d)", "gt(a, b)", "gt(b, c)", "gt(c, d)")
	_, err := engine(t, WithStepBound(1)).Prove(p)

	var sf *inference.SearchFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, inference.SearchBoundExceeded, sf.Kind)
	assert.Equal(t, 1, sf.Iterations)
	assert.Zero(t, sf.FactLimit)
	assert.ErrorIs(t, err, inference.ErrSearchBoundExceeded)
}

func TestFactBoundStopsRunawayNumbers(t *testing.T) {
	// odd(X) → odd(X * X) and the sum rules fold to ever larger numbers
	// without growing term depth.
	for _, tc := range []struct{ goal, given string }{
		{"even(3)", "odd(3)"},
		{"odd(4)", "even(4)"},
	} {
		_, err := engine(t).Prove(problem(t, tc.goal, tc.given))

		var sf *inference.SearchFailure
		require.ErrorAs(t, err, &sf, tc.given)
		assert.Equal(t, inference.SearchBoundExceeded, sf.Kind, tc.given)
		assert.Equal(t, DefaultFactBound, sf.FactLimit, tc.given)
		assert.Equal(t, DefaultFactBound, sf.Facts, tc.given)
		assert.Less(t, sf.Iterations, DefaultStepBound, tc.given)
		assert.ErrorIs(t, err, inference.ErrSearchBoundExceeded)
	}
}

func TestWithFactBound(t *testing.T) {
	_, err := engine(t, WithFactBound(50)).Prove(problem(t, "even(3)", "odd(3)"))

	var sf *inference.SearchFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, 50, sf.Facts)
	assert.Equal(t, 50, sf.FactLimit)
	assert.Contains(t, sf.Error(), "fact bound 50")

	// A goal reachable below the bound is still proved.
	proof := prove(t, engine(t, WithFactBound(50)), problem(t, "odd(9)", "odd(3)"))
	assert.Equal(t, "odd_multiplication", proof.Steps[0].RuleID)
}

func TestNoCircularAnswer(t *testing.T) {
	// The given already has the shape eq(x, ?) but restates x in terms of x.
	p := problem(t, "eq(x, ?)", "eq(x, 2 * x - 3)")
	_, err := engine(t, WithStepBound(500)).Prove(p)

	var sf *inference.SearchFailure
	require.ErrorAs(t, err, &sf)
}

func TestDivisionByZeroIsDiscarded(t *testing.T) {
	div := rules.MustParse("div", "Division", rules.Algebra, "eq(A * X, B) → eq(X, B / A)")
	rb, err := rules.New([]rules.Rule{div})
	require.NoError(t, err)

	// eq(x, 5 / 0) is dropped; only the swapped match eq(0, 5 / x) is kept.
	_, err = New(rb).Prove(problem(t, "eq(x, ?)", "eq(0 * x, 5)"))
	var sf *inference.SearchFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, inference.FixpointReached, sf.Kind)
	assert.Equal(t, 2, sf.Facts)
}

func TestCategoryFilterChangesOutcome(t *testing.T) {
	rb, err := rules.Load(rules.WithCategories(rules.Algebra))
	require.NoError(t, err)

	_, err = New(rb).Prove(problem(t, "gt(a, c)", "gt(a, b)", "gt(b, c)"))
	assert.ErrorIs(t, err, inference.ErrFixpointReached)
}

func TestMalformedProblem(t *testing.T) {
	bad := formal.Problem{
		Given: []formal.Predicate{formal.MustPredicate(formal.Even, formal.Var("X"))},
		Goal:  formal.MustPredicate(formal.Even, formal.Int(2)),
	}
	_, err := engine(t).Prove(bad)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	undefined := formal.Problem{
		Given: []formal.Predicate{formal.MustPredicate(formal.Eq, formal.Var("x"), formal.Div(formal.Int(1), formal.Int(0)))},
		Goal:  formal.MustPredicate(formal.Eq, formal.Var("x"), formal.Var("?")),
	}
	_, err = engine(t).Prove(undefined)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

var proofCmp = []cmp.Option{
	cmp.Comparer(func(a, b formal.Substitution) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b formal.Number) bool { return formal.Compare(a, b) == 0 }),
}

func TestDeterministic(t *testing.T) {
	problems := []formal.Problem{
		problem(t, "eq(x, ?)", "eq(x + 7, 15)"),
		problem(t, "even(a + b)", "eq(a, 2 * k + 1)", "eq(b, 2 * m + 1)"),
		problem(t, "gt(a, d)", "gt(a, b)", "gt(b, c)", "gt(c, d)"),
	}
	for _, p := range problems {
		first, err := engine(t).Prove(p)
		require.NoError(t, err)
		second, err := engine(t).Prove(p)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second, proofCmp...); diff != "" {
			t.Errorf("%s: proofs differ (-first +second):\n%s", p, diff)
		}
	}
}

func TestDepthHorizonBoundsGrowth(t *testing.T) {
	// even(X) → even(2 * X) would run forever without a horizon.
	e := engine(t, WithDepthSlack(2))
	_, err := e.Prove(problem(t, "odd(n)", "even(n)"))
	var sf *inference.SearchFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, inference.FixpointReached, sf.Kind)

	proof := prove(t, e, problem(t, "even(2 * (2 * n))", "even(n)"))
	assert.Len(t, proof.Steps, 2)

	// With no slack only divides(2, n) stays within depth 1.
	_, err = engine(t, WithDepthSlack(0)).Prove(problem(t, "odd(n)", "even(n)"))
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, inference.FixpointReached, sf.Kind)
	assert.Equal(t, 2, sf.Facts)
}

func TestDerivationsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := engine(t, WithLogger(zap.New(core)))
	prove(t, e, problem(t, "gt(a, c)", "gt(a, b)", "gt(b, c)"))

	assert.NotZero(t, logs.FilterMessage("derived").Len())
	assert.Equal(t, 1, logs.FilterMessage("goal proved").Len())
}

func premises(s inference.Step) []string {
	out := make([]string, len(s.Premises))
	for i, p := range s.Premises {
		out[i] = p.String()
	}
	return out
}
