// Package mathgraph ties the proof engine to its collaborators: problem
// extraction, explanation, the session journal and a proof cache.
package mathgraph

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/mathgraph/pkg/mathgraph/config"
	"github.com/cognicore/mathgraph/pkg/mathgraph/explain"
	"github.com/cognicore/mathgraph/pkg/mathgraph/extract"
	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference/forward"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/parse"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store"
)

// System is the main proof facade
type System struct {
	engine    *forward.Engine
	journal   store.Journal
	extractor extract.Extractor
	explainer explain.Explainer
	cache     *lru.Cache[string, outcome]
	workers   int
	log       *zap.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a System
type Options struct {
	Config config.Config
	// Rules overrides the rule base built from Config.Rules.
	Rules *rules.RuleBase

	Logger *zap.Logger
	// Journal records every session; nil disables recording.
	Journal store.Journal
	// Extractor turns natural-language text into a problem; Solve needs it.
	Extractor extract.Extractor
	// Explainer renders results; nil uses explain.Template.
	Explainer explain.Explainer
}

// outcome is what the cache keeps for a problem. Exactly one field is set.
type outcome struct {
	proof   *inference.Proof
	failure *inference.SearchFailure
}

// New creates a System with the given dependencies
func New(opts Options) (*System, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	rb := opts.Rules
	if rb == nil {
		comp, err := (&config.Loader{Config: opts.Config}).Load()
		if err != nil {
			return nil, err
		}
		rb = comp.Rules
	}

	explainer := opts.Explainer
	if explainer == nil {
		explainer = explain.Template{}
	}

	s := &System{
		engine: forward.New(rb,
			forward.WithStepBound(opts.Config.Search.StepBound),
			forward.WithFactBound(opts.Config.Search.FactBound),
			forward.WithDepthSlack(opts.Config.Search.DepthSlack),
			forward.WithLogger(log),
		),
		journal:   opts.Journal,
		extractor: opts.Extractor,
		explainer: explainer,
		workers:   opts.Config.Search.Parallelism,
		log:       log,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	if size := opts.Config.Cache.Size; size > 0 {
		cache, err := lru.New[string, outcome](size)
		if err != nil {
			return nil, fmt.Errorf("proof cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Close cleanly shuts down the journal, if any
func (s *System) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// Rules returns the rule base proofs are searched against.
func (s *System) Rules() *rules.RuleBase { return s.engine.Rules() }

// Journal returns the session journal, or nil when recording is disabled.
func (s *System) Journal() store.Journal { return s.journal }

// ProveRequest is a problem in formal notation
type ProveRequest struct {
	Facts []string
	Goal  string
	// Text is the original wording, kept for explanations and the journal.
	Text string
}

// Result is the outcome of one session. Exactly one of Proof and Failure is
// set.
type Result struct {
	SessionID   string
	Problem     formal.Problem
	Proof       *inference.Proof
	Failure     *inference.SearchFailure
	Explanation string
	// Cached is true when the search result came from the proof cache.
	Cached bool
}

// Proved reports whether the goal was derived.
func (r *Result) Proved() bool { return r.Proof != nil }

// Prove parses the request and searches for a proof. A search that ends
// without a proof is reported in Result.Failure, not as an error; errors
// mean malformed input or a failing collaborator.
func (s *System) Prove(ctx context.Context, req ProveRequest) (*Result, error) {
	problem, err := parse.Problem(req.Facts, req.Goal)
	if err != nil {
		s.recordInvalid(ctx, req.Text, req.Facts, req.Goal, err)
		return nil, err
	}
	problem.Text = req.Text
	return s.solve(ctx, problem)
}

// Solve extracts a problem from natural-language text and proves it.
func (s *System) Solve(ctx context.Context, text string) (*Result, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("solve: no extractor configured: %w", internalerr.ErrInvalidConfig)
	}
	ext, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	problem, err := ext.Problem(text)
	if err != nil {
		s.recordInvalid(ctx, text, ext.Facts, ext.Goal, err)
		return nil, err
	}
	return s.solve(ctx, problem)
}

// ProveAll proves independent requests in parallel, at most
// Search.Parallelism at a time. Results are in request order. The first
// error cancels the requests that have not started yet.
func (s *System) ProveAll(ctx context.Context, reqs []ProveRequest) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Prove(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *System) solve(ctx context.Context, problem formal.Problem) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Problem: problem}
	out, cached := s.lookup(problem)
	if !cached {
		var err error
		out, err = s.search(problem)
		if err != nil {
			s.recordInvalid(ctx, problem.Text, predStrings(problem.Given), problem.Goal.String(), err)
			return nil, err
		}
		s.remember(problem, out)
	}
	res.Proof, res.Failure, res.Cached = out.proof, out.failure, cached

	text, err := s.explainer.Explain(ctx, explain.Request{Problem: problem, Proof: res.Proof, Failure: res.Failure})
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	res.Explanation = text

	res.SessionID = s.record(ctx, res)

	fields := []zap.Field{
		zap.String("session", res.SessionID),
		zap.String("goal", problem.Goal.String()),
		zap.String("outcome", string(outcomeOf(res))),
		zap.Bool("cached", cached),
	}
	if res.Proof != nil {
		fields = append(fields, zap.Int("steps", len(res.Proof.Steps)), zap.Int("iterations", res.Proof.Stats.Iterations))
	} else {
		fields = append(fields, zap.Int("iterations", res.Failure.Iterations))
	}
	s.log.Info("session finished", fields...)
	return res, nil
}

func (s *System) search(problem formal.Problem) (outcome, error) {
	proof, err := s.engine.Prove(problem)
	if err == nil {
		return outcome{proof: proof}, nil
	}
	var sf *inference.SearchFailure
	if errors.As(err, &sf) {
		return outcome{failure: sf}, nil
	}
	return outcome{}, err
}

func (s *System) lookup(problem formal.Problem) (outcome, bool) {
	if s.cache == nil {
		return outcome{}, false
	}
	return s.cache.Get(problem.Key())
}

func (s *System) remember(problem formal.Problem, out outcome) {
	if s.cache != nil {
		s.cache.Add(problem.Key(), out)
	}
}

// newID returns a ULID. Ids from one System sort in creation order.
func (s *System) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// record writes the session to the journal and returns its id. Journal
// failures are logged; the result is still returned to the caller.
func (s *System) record(ctx context.Context, res *Result) string {
	id := s.newID()
	if s.journal == nil {
		return id
	}
	sess := store.Session{
		ID:          id,
		Text:        res.Problem.Text,
		Facts:       predStrings(res.Problem.Given),
		Goal:        res.Problem.Goal.String(),
		Outcome:     outcomeOf(res),
		Explanation: res.Explanation,
		CreatedAt:   time.Now().UTC(),
	}
	if p := res.Proof; p != nil {
		sess.Steps = make([]string, len(p.Steps))
		for i, st := range p.Steps {
			sess.Steps[i] = st.String()
		}
		if p.Answer.Len() > 0 {
			sess.Answer = p.Answer.String()
		}
		sess.Iterations = p.Stats.Iterations
	} else {
		sess.Iterations = res.Failure.Iterations
		sess.Error = res.Failure.Error()
	}
	if err := s.journal.Record(ctx, sess); err != nil {
		s.log.Warn("journal record failed", zap.String("session", id), zap.Error(err))
	}
	return id
}

func (s *System) recordInvalid(ctx context.Context, text string, facts []string, goal string, cause error) {
	if s.journal == nil {
		return
	}
	sess := store.Session{
		ID:        s.newID(),
		Text:      text,
		Facts:     facts,
		Goal:      goal,
		Outcome:   store.Invalid,
		Error:     cause.Error(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.journal.Record(ctx, sess); err != nil {
		s.log.Warn("journal record failed", zap.String("session", sess.ID), zap.Error(err))
	}
}

func outcomeOf(res *Result) store.Outcome {
	switch {
	case res.Proof != nil:
		return store.Proved
	case res.Failure != nil && res.Failure.Kind == inference.SearchBoundExceeded:
		return store.BoundExceeded
	default:
		return store.Fixpoint
	}
}

func predStrings(ps []formal.Predicate) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
