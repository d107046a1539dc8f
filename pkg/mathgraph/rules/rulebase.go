package rules

import (
	"fmt"
	"sort"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
)

// RuleBase is an immutable, validated rule set indexed by predicate name.
// It is safe to share between concurrent proof sessions.
type RuleBase struct {
	rules  []Rule
	byID   map[string]int
	byName map[formal.Name][]int
}

type options struct {
	categories map[Category]bool
	disabled   map[string]bool
	extra      []Rule
	noBuiltins bool
}

// Option configures Load and New.
type Option func(*options)

// WithCategories keeps only rules of the given categories. Without it every
// category is enabled.
func WithCategories(cs ...Category) Option {
	return func(o *options) {
		if o.categories == nil {
			o.categories = make(map[Category]bool)
		}
		for _, c := range cs {
			o.categories[c] = true
		}
	}
}

// WithoutRules drops the rules with the given ids. Every id must name a
// rule of the set being built, whatever its category.
func WithoutRules(ids ...string) Option {
	return func(o *options) {
		if o.disabled == nil {
			o.disabled = make(map[string]bool)
		}
		for _, id := range ids {
			o.disabled[id] = true
		}
	}
}

// WithRules appends rules after the built-in catalogue.
func WithRules(rs ...Rule) Option {
	return func(o *options) {
		o.extra = append(o.extra, rs...)
	}
}

// WithoutBuiltins starts Load from an empty catalogue.
func WithoutBuiltins() Option {
	return func(o *options) { o.noBuiltins = true }
}

// Load builds a rule base from the built-in catalogue plus any extra rules.
func Load(opts ...Option) (*RuleBase, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var all []Rule
	if !o.noBuiltins {
		all = Builtin()
	}
	all = append(all, o.extra...)
	return build(all, o)
}

// New validates and indexes an arbitrary rule set. WithRules and
// WithoutBuiltins have no meaning here; WithCategories and WithoutRules
// still filter.
func New(rs []Rule, opts ...Option) (*RuleBase, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return build(rs, o)
}

func build(rs []Rule, o options) (*RuleBase, error) {
	for c := range o.categories {
		if !c.Valid() {
			return nil, &LoadError{Kind: UnknownCategory, RuleID: "(options)", Category: c}
		}
	}

	rb := &RuleBase{
		byID:   make(map[string]int),
		byName: make(map[formal.Name][]int),
	}
	// known holds every id seen, including filtered rules, so duplicates
	// across disabled categories are still caught.
	known := make(map[string]bool)
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if known[r.ID] {
			return nil, &LoadError{Kind: DuplicateID, RuleID: r.ID}
		}
		known[r.ID] = true
		// Disabled categories and rules are dropped before indexing.
		if o.categories != nil && !o.categories[r.Category] {
			continue
		}
		if o.disabled[r.ID] {
			continue
		}

		idx := len(rb.rules)
		rb.rules = append(rb.rules, r)
		rb.byID[r.ID] = idx

		seen := make(map[formal.Name]bool)
		for _, p := range append([]formal.Predicate{r.Consequent}, r.Antecedents...) {
			if !seen[p.Name] {
				seen[p.Name] = true
				rb.byName[p.Name] = append(rb.byName[p.Name], idx)
			}
		}
	}
	for _, id := range sortedKeys(o.disabled) {
		if !known[id] {
			return nil, &LoadError{Kind: UnknownRule, RuleID: id}
		}
	}
	return rb, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of enabled rules.
func (rb *RuleBase) Len() int { return len(rb.rules) }

// Rules returns every enabled rule in declaration order.
func (rb *RuleBase) Rules() []Rule {
	out := make([]Rule, len(rb.rules))
	copy(out, rb.rules)
	return out
}

// RulesFor returns, in declaration order, the rules whose consequent or any
// antecedent uses the predicate name.
func (rb *RuleBase) RulesFor(name formal.Name) []Rule {
	idx := rb.byName[name]
	out := make([]Rule, len(idx))
	for i, j := range idx {
		out[i] = rb.rules[j]
	}
	return out
}

// Rule looks up a rule by id.
func (rb *RuleBase) Rule(id string) (Rule, error) {
	i, ok := rb.byID[id]
	if !ok {
		return Rule{}, fmt.Errorf("rule %q: %w", id, internalerr.ErrNotFound)
	}
	return rb.rules[i], nil
}

// ByCategory returns the enabled rules of one category in declaration order.
func (rb *RuleBase) ByCategory(c Category) []Rule {
	var out []Rule
	for _, r := range rb.rules {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the categories that have at least one enabled rule.
func (rb *RuleBase) Categories() []Category {
	present := make(map[Category]bool)
	for _, r := range rb.rules {
		present[r.Category] = true
	}
	var out []Category
	for _, c := range categories {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}
