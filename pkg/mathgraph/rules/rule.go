// Package rules holds the immutable catalogue of inference rules.
//
// A rule is a conjunction of antecedent patterns and one consequent
// pattern, e.g.
//
//	gt(X, Y) ∧ gt(Y, Z) → gt(X, Z)
//
// Every rule must be range-restricted: each pattern variable of the
// consequent occurs in some antecedent. The check runs when a rule base is
// built, so an unsafe rule never reaches the engine.
package rules

import (
	"fmt"
	"strings"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/parse"
)

// Category groups rules for selection. It has no effect on search order.
type Category string

const (
	Algebra      Category = "algebra"
	Arithmetic   Category = "arithmetic"
	NumberTheory Category = "number-theory"
	Inequality   Category = "inequality"
)

var categories = []Category{Algebra, Arithmetic, NumberTheory, Inequality}

// AllCategories returns every known category in declaration order.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

// Rule is an inference rule: when every antecedent matches a known fact
// under one substitution, the instantiated consequent is a new fact.
type Rule struct {
	ID          string
	Name        string
	Category    Category
	Antecedents []formal.Predicate
	Consequent  formal.Predicate
}

// Parse builds a rule from its text form, "p1 ∧ p2 → c". The result is
// not validated; that happens in New.
func Parse(id, name string, category Category, text string) (Rule, error) {
	ants, cons, err := parse.Rule(text)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", id, err)
	}
	return Rule{ID: id, Name: name, Category: category, Antecedents: ants, Consequent: cons}, nil
}

// MustParse is Parse for the built-in catalogue.
func MustParse(id, name string, category Category, text string) Rule {
	r, err := Parse(id, name, category, text)
	if err != nil {
		panic(err)
	}
	return r
}

// String renders the rule in the text form Parse accepts.
func (r Rule) String() string {
	parts := make([]string, len(r.Antecedents))
	for i, a := range r.Antecedents {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ∧ ") + " → " + r.Consequent.String()
}

// Unbound returns the consequent variables that no antecedent binds.
func (r Rule) Unbound() []string {
	bound := make(map[string]bool)
	for _, a := range r.Antecedents {
		for _, v := range a.Vars() {
			bound[v] = true
		}
	}
	var out []string
	for _, v := range r.Consequent.Vars() {
		if !bound[v] {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks that r can be used by the engine.
func (r Rule) Validate() error {
	switch {
	case r.ID == "":
		return &LoadError{Kind: MissingID, RuleID: r.Name}
	case !r.Category.Valid():
		return &LoadError{Kind: UnknownCategory, RuleID: r.ID, Category: r.Category}
	case len(r.Antecedents) == 0:
		return &LoadError{Kind: NoAntecedents, RuleID: r.ID}
	}
	if vars := r.Unbound(); len(vars) > 0 {
		return &LoadError{Kind: NotRangeRestricted, RuleID: r.ID, Vars: vars}
	}
	return nil
}

// LoadErrorKind classifies why a rule was rejected.
type LoadErrorKind int

const (
	NotRangeRestricted LoadErrorKind = iota + 1
	NoAntecedents
	DuplicateID
	UnknownCategory
	MissingID
	// UnknownRule means WithoutRules named an id that no rule has.
	UnknownRule
)

func (k LoadErrorKind) String() string {
	switch k {
	case NotRangeRestricted:
		return "not range-restricted"
	case NoAntecedents:
		return "no antecedents"
	case DuplicateID:
		return "duplicate id"
	case UnknownCategory:
		return "unknown category"
	case MissingID:
		return "missing id"
	case UnknownRule:
		return "unknown rule"
	}
	return fmt.Sprintf("LoadErrorKind(%d)", int(k))
}

// LoadError rejects a rule at load time.
type LoadError struct {
	Kind   LoadErrorKind
	RuleID string
	// Vars lists the offending consequent variables for NotRangeRestricted.
	Vars     []string
	Category Category
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("rules: %s: %s", e.RuleID, e.Kind)
	switch e.Kind {
	case NotRangeRestricted:
		msg += fmt.Sprintf(" (consequent variables %s not bound by any antecedent)", strings.Join(e.Vars, ", "))
	case UnknownCategory:
		msg += fmt.Sprintf(" %q", string(e.Category))
	}
	return msg
}

func (e *LoadError) Unwrap() error { return internalerr.ErrInvalidConfig }
