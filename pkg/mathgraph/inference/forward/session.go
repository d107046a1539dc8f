package forward

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference"
	"github.com/cognicore/mathgraph/pkg/mathgraph/match"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
)

// session is the mutable state of one search: the fact arena, its indexes
// and the worklist. It is never shared.
type session struct {
	e *Engine

	goal        formal.Predicate
	goalVars    []string
	goalSymbols map[string]bool
	horizon     int

	facts  []inference.Fact
	index  map[string]int // canonical key → fact id
	byName map[formal.Name][]int

	// The worklist is facts[head:]; ids are assigned in queue order.
	head int
	// Facts below checked have already failed the goal test.
	checked int

	stats inference.Stats
}

func (s *session) run() (*inference.Proof, error) {
	for {
		if p := s.checkGoal(); p != nil {
			return p, nil
		}
		if s.full() {
			return nil, s.failure(inference.SearchBoundExceeded)
		}
		if s.head == len(s.facts) {
			return nil, s.failure(inference.FixpointReached)
		}
		if s.stats.Iterations >= s.e.stepBound {
			return nil, s.failure(inference.SearchBoundExceeded)
		}
		s.stats.Iterations++
		id := s.head
		s.head++
		s.expand(id)
	}
}

func (s *session) failure(kind inference.FailureKind) error {
	sf := &inference.SearchFailure{
		Kind:       kind,
		Goal:       s.goal,
		Iterations: s.stats.Iterations,
		Facts:      len(s.facts),
	}
	if s.full() {
		sf.FactLimit = s.e.factBound
	}
	return sf
}

// full reports whether the arena reached the fact bound. Derivations are
// dropped from then on, so an empty worklist no longer means fixpoint.
func (s *session) full() bool {
	return len(s.facts) >= s.e.factBound
}

// add stores a fact unless an identical one is known. It reports whether
// the fact was new.
func (s *session) add(f inference.Fact) bool {
	key := f.Pred.String()
	if _, ok := s.index[key]; ok {
		return false
	}
	f.ID = len(s.facts)
	s.facts = append(s.facts, f)
	s.index[key] = f.ID
	s.byName[f.Pred.Name] = append(s.byName[f.Pred.Name], f.ID)
	return true
}

// Candidates implements match.Source over the arena in creation order.
func (s *session) Candidates(name formal.Name) []match.Candidate {
	ids := s.byName[name]
	out := make([]match.Candidate, len(ids))
	for i, id := range ids {
		out[i] = match.Candidate{ID: id, Pred: s.facts[id].Pred}
	}
	return out
}

// expand joins fact id with the arena through every rule it can fill an
// antecedent of. Only derivations that use the fact are enumerated; the
// others were found when their own facts were expanded. Expansion stops
// as soon as the arena is full.
func (s *session) expand(id int) {
	f := s.facts[id]
	pin := match.Candidate{ID: id, Pred: f.Pred}
	for _, r := range s.e.rb.RulesFor(f.Pred.Name) {
		for slot, ant := range r.Antecedents {
			if ant.Name != f.Pred.Name {
				continue
			}
			if s.full() {
				return
			}
			match.JoinPinned(r.Antecedents, slot, pin, s, func(m match.Match) bool {
				return s.derive(r, m)
			})
		}
	}
}

// derive adds the instantiated consequent of r if it is ground, defined,
// within the depth horizon and new. It returns false once the fact bound
// is reached, which ends the join.
func (s *session) derive(r rules.Rule, m match.Match) bool {
	if s.full() {
		return false
	}
	c := r.Consequent.Substitute(m.Subst)
	if !c.IsGround() {
		s.stats.Discarded++
		return true
	}
	n, err := c.Normalize()
	if err != nil {
		// Only division by zero can fail here.
		s.stats.Discarded++
		return true
	}
	if n.Depth() > s.horizon {
		s.stats.Discarded++
		return true
	}
	added := s.add(inference.Fact{
		Pred:    n,
		Origin:  inference.Derived,
		RuleID:  r.ID,
		Sources: m.Used,
		Subst:   m.Subst,
	})
	if !added {
		return true
	}
	s.stats.Derived++
	if ce := s.e.log.Check(zap.DebugLevel, "derived"); ce != nil {
		ce.Write(
			zap.Int("id", len(s.facts)-1),
			zap.Stringer("fact", n),
			zap.String("rule", r.ID),
			zap.Ints("sources", m.Used),
		)
	}
	return !s.full()
}

// checkGoal tests the facts added since the last check, in creation order.
func (s *session) checkGoal() *inference.Proof {
	for ; s.checked < len(s.facts); s.checked++ {
		f := s.facts[s.checked]
		var answer formal.Substitution
		found := false
		match.EachFact(s.goal, f.Pred, formal.Substitution{}, func(sub formal.Substitution) bool {
			if s.acceptable(sub) {
				answer, found = sub, true
				return false
			}
			return true
		})
		if found {
			return s.reconstruct(f.ID, answer)
		}
	}
	return nil
}

// acceptable rejects answers that restate the question: an unknown may not
// be bound to a term mentioning a symbol of the goal, as in x = x.
func (s *session) acceptable(sub formal.Substitution) bool {
	for _, v := range s.goalVars {
		t, ok := sub.Lookup(v)
		if !ok {
			continue
		}
		for _, sym := range formal.Symbols(t) {
			if s.goalSymbols[sym] {
				return false
			}
		}
	}
	return true
}

// reconstruct walks provenance back from the goal fact and orders the
// derived ancestors by id. A fact's sources always have smaller ids, so
// the order is causal.
//
// Each fact records only its first derivation. A later derivation of the
// same predicate is a duplicate and is dropped, even when its sources are
// shallower, so the proof follows discovery order and need not be the
// shortest one. The FIFO worklist derives shallow facts first, which keeps
// the two close in practice.
func (s *session) reconstruct(goalID int, answer formal.Substitution) *inference.Proof {
	seen := map[int]bool{goalID: true}
	queue := []int{goalID}
	var derived []int
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		f := s.facts[id]
		if f.Origin != inference.Derived {
			continue
		}
		derived = append(derived, id)
		for _, src := range f.Sources {
			if !seen[src] {
				seen[src] = true
				queue = append(queue, src)
			}
		}
	}
	sort.Ints(derived)

	steps := make([]inference.Step, len(derived))
	for i, id := range derived {
		f := s.facts[id]
		premises := make([]formal.Predicate, len(f.Sources))
		for j, src := range f.Sources {
			premises[j] = s.facts[src].Pred
		}
		name := f.RuleID
		if r, err := s.e.rb.Rule(f.RuleID); err == nil {
			name = r.Name
		}
		steps[i] = inference.Step{
			RuleID:       f.RuleID,
			RuleName:     name,
			Premises:     premises,
			Substitution: f.Subst,
			Derived:      f.Pred,
		}
	}

	stats := s.stats
	stats.Facts = len(s.facts)
	return &inference.Proof{
		Goal:       s.goal,
		Conclusion: s.facts[goalID].Pred,
		Answer:     answer,
		Steps:      steps,
		Stats:      stats,
	}
}
