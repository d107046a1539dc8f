// Package forward is a forward-chaining prover over the rule base.
//
// A session starts from the given facts and repeatedly pops the oldest
// unprocessed fact, joins it with every known fact through each rule it can
// take part in, and adds the novel, ground results. Facts are kept folded
// and canonical, deduplicated by structure. The search ends when the goal
// matches a known fact, when no unprocessed fact is left, or when the step
// bound or the fact bound runs out.
//
// Rules are tried in declaration order and facts in creation order, so the
// same problem always yields the same proof.
package forward

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
)

const (
	DefaultStepBound  = 10000
	DefaultFactBound  = 1000
	DefaultDepthSlack = 1
)

// Engine proves problems against a fixed rule base. It holds no per-search
// state and may be used from several goroutines at once.
type Engine struct {
	rb         *rules.RuleBase
	stepBound  int
	factBound  int
	depthSlack int
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStepBound caps the number of processed facts per search.
func WithStepBound(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.stepBound = n
		}
	}
}

// WithFactBound caps the number of known facts per search. Rules that
// fold to fresh numbers, such as odd(X) → odd(X * X), can otherwise add
// facts without end while the depth horizon stays satisfied.
func WithFactBound(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.factBound = n
		}
	}
}

// WithDepthSlack sets how much deeper than the deepest given or goal term a
// derived term may grow.
func WithDepthSlack(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.depthSlack = n
		}
	}
}

// WithLogger sets the logger for derivation tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an engine over rb.
func New(rb *rules.RuleBase, opts ...Option) *Engine {
	e := &Engine{
		rb:         rb,
		stepBound:  DefaultStepBound,
		factBound:  DefaultFactBound,
		depthSlack: DefaultDepthSlack,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rule base.
func (e *Engine) Rules() *rules.RuleBase { return e.rb }

// Prove searches for a derivation of problem.Goal. An unsuccessful search
// returns a *inference.SearchFailure; any other error means the problem
// itself is malformed.
func (e *Engine) Prove(problem formal.Problem) (*inference.Proof, error) {
	s, err := e.newSession(problem)
	if err != nil {
		return nil, err
	}
	proof, err := s.run()
	if err != nil {
		e.log.Debug("search failed",
			zap.Stringer("goal", s.goal),
			zap.Error(err),
		)
		return nil, err
	}
	e.log.Debug("goal proved",
		zap.Stringer("goal", s.goal),
		zap.Stringer("conclusion", proof.Conclusion),
		zap.Int("steps", len(proof.Steps)),
		zap.Int("iterations", proof.Stats.Iterations),
	)
	return proof, nil
}

var _ inference.Prover = (*Engine)(nil)

func (e *Engine) newSession(problem formal.Problem) (*session, error) {
	goal, err := problem.Goal.Normalize()
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w: %v", problem.Goal, internalerr.ErrInvalidInput, err)
	}
	s := &session{
		e:           e,
		goal:        goal,
		goalVars:    goal.Vars(),
		goalSymbols: make(map[string]bool),
		index:       make(map[string]int),
		byName:      make(map[formal.Name][]int),
	}
	for _, sym := range goal.Symbols() {
		s.goalSymbols[sym] = true
	}

	depth := goal.Depth()
	for i, g := range problem.Given {
		if !g.IsGround() {
			return nil, fmt.Errorf("given %d %s: %w: pattern variables %v", i+1, g, internalerr.ErrInvalidInput, g.Vars())
		}
		n, err := g.Normalize()
		if err != nil {
			return nil, fmt.Errorf("given %d %s: %w: %v", i+1, g, internalerr.ErrInvalidInput, err)
		}
		depth = max(depth, n.Depth())
		s.add(inference.Fact{Pred: n, Origin: inference.Given})
	}
	s.horizon = depth + e.depthSlack
	return s, nil
}
