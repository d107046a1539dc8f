package match

import "github.com/cognicore/mathgraph/pkg/mathgraph/formal"

// Candidate is a known fact the join may assign to an antecedent slot.
type Candidate struct {
	ID   int
	Pred formal.Predicate
}

// Source lists the known facts with a given predicate name in creation
// order. The order fixes which solution the join finds first.
type Source interface {
	Candidates(name formal.Name) []Candidate
}

// SourceFunc adapts a function to Source.
type SourceFunc func(name formal.Name) []Candidate

func (f SourceFunc) Candidates(name formal.Name) []Candidate { return f(name) }

// Match is one consistent assignment of facts to every antecedent.
type Match struct {
	Subst formal.Substitution
	// Used holds the fact id assigned to each antecedent slot.
	Used []int
}

// Join enumerates, depth first and in candidate order, every way to match
// all antecedents against facts from src under a single substitution.
// A fact may fill more than one slot. Enumeration stops when yield
// returns false.
func Join(antecedents []formal.Predicate, src Source, yield func(Match) bool) {
	j := joiner{antecedents: antecedents, src: src, pinned: -1, used: make([]int, len(antecedents))}
	j.slot(0, formal.Substitution{}, yield)
}

// JoinPinned is Join with slot fixed to the given fact. The forward
// chainer uses it to enumerate only derivations the fact takes part in.
func JoinPinned(antecedents []formal.Predicate, slot int, fact Candidate, src Source, yield func(Match) bool) {
	if slot < 0 || slot >= len(antecedents) {
		return
	}
	j := joiner{antecedents: antecedents, src: src, pinned: slot, pin: fact, used: make([]int, len(antecedents))}
	j.slot(0, formal.Substitution{}, yield)
}

type joiner struct {
	antecedents []formal.Predicate
	src         Source
	pinned      int
	pin         Candidate
	used        []int
}

func (j *joiner) slot(i int, s formal.Substitution, yield func(Match) bool) bool {
	if i == len(j.antecedents) {
		used := make([]int, len(j.used))
		copy(used, j.used)
		return yield(Match{Subst: s, Used: used})
	}
	pattern := j.antecedents[i]
	var candidates []Candidate
	if i == j.pinned {
		candidates = []Candidate{j.pin}
	} else {
		candidates = j.src.Candidates(pattern.Name)
	}
	for _, c := range candidates {
		j.used[i] = c.ID
		ok := EachFact(pattern, c.Pred, s, func(next formal.Substitution) bool {
			return j.slot(i+1, next, yield)
		})
		if !ok {
			return false
		}
	}
	return true
}
