package formal

import (
	"errors"
	"fmt"
	"strings"
)

// Name is a predicate name from the fixed vocabulary.
type Name string

const (
	Eq       Name = "eq"
	Gt       Name = "gt"
	Lt       Name = "lt"
	Gte      Name = "gte"
	Lte      Name = "lte"
	Even     Name = "even"
	Odd      Name = "odd"
	Prime    Name = "prime"
	Positive Name = "positive"
	Negative Name = "negative"
	Divides  Name = "divides"
	Multiple Name = "multiple"
)

var vocabulary = []Name{Eq, Gt, Lt, Gte, Lte, Even, Odd, Prime, Positive, Negative, Divides, Multiple}

var arities = map[Name]int{
	Eq: 2, Gt: 2, Lt: 2, Gte: 2, Lte: 2, Divides: 2, Multiple: 2,
	Even: 1, Odd: 1, Prime: 1, Positive: 1, Negative: 1,
}

var (
	ErrUnknownPredicate = errors.New("formal: unknown predicate")
	ErrArityMismatch    = errors.New("formal: arity mismatch")
)

// Vocabulary returns every predicate name in declaration order.
func Vocabulary() []Name {
	out := make([]Name, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Arity returns the fixed argument count of n.
func (n Name) Arity() (int, bool) {
	a, ok := arities[n]
	return a, ok
}

// Valid reports whether n is part of the vocabulary.
func (n Name) Valid() bool {
	_, ok := arities[n]
	return ok
}

// Predicate is a named relation applied to an ordered list of terms.
type Predicate struct {
	Name Name
	Args []Term
}

// NewPredicate checks the name and arity and copies args.
func NewPredicate(name Name, args ...Term) (Predicate, error) {
	arity, ok := name.Arity()
	if !ok {
		return Predicate{}, fmt.Errorf("%w: %q", ErrUnknownPredicate, string(name))
	}
	if len(args) != arity {
		return Predicate{}, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrArityMismatch, name, arity, len(args))
	}
	for i, a := range args {
		if a == nil {
			return Predicate{}, fmt.Errorf("formal: %s argument %d is nil", name, i+1)
		}
	}
	cp := make([]Term, len(args))
	copy(cp, args)
	return Predicate{Name: name, Args: cp}, nil
}

// MustPredicate is NewPredicate for statically known predicates.
func MustPredicate(name Name, args ...Term) Predicate {
	p, err := NewPredicate(name, args...)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders p in the parser's input syntax, e.g. eq(x + 7, 15).
// Distinct predicates always render differently, so the string doubles as
// a deduplication key.
func (p Predicate) String() string {
	var sb strings.Builder
	sb.WriteString(string(p.Name))
	sb.WriteByte('(')
	for i, a := range p.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Key is the structural identity of the canonical form of p.
func (p Predicate) Key() string {
	return p.Canonical().String()
}

// Canonical canonicalizes every argument.
func (p Predicate) Canonical() Predicate {
	return p.mapArgs(Canonicalize)
}

// Substitute applies s to every argument.
func (p Predicate) Substitute(s Substitution) Predicate {
	return p.mapArgs(func(t Term) Term { return Substitute(t, s) })
}

// Fold evaluates the identifier-free sub-terms of every argument.
func (p Predicate) Fold() (Predicate, error) {
	args := make([]Term, len(p.Args))
	for i, a := range p.Args {
		f, err := Fold(a)
		if err != nil {
			return Predicate{}, fmt.Errorf("%s argument %d: %w", p.Name, i+1, err)
		}
		args[i] = f
	}
	return Predicate{Name: p.Name, Args: args}, nil
}

// Normalize folds and then canonicalizes p, the form every fact is kept in.
func (p Predicate) Normalize() (Predicate, error) {
	f, err := p.Fold()
	if err != nil {
		return Predicate{}, err
	}
	return f.Canonical(), nil
}

// Equal compares two predicates up to commutative operand order.
func (p Predicate) Equal(q Predicate) bool {
	if p.Name != q.Name || len(p.Args) != len(q.Args) {
		return false
	}
	for i := range p.Args {
		if !Equal(p.Args[i], q.Args[i]) {
			return false
		}
	}
	return true
}

// IsGround reports whether no argument contains a pattern variable.
func (p Predicate) IsGround() bool {
	for _, a := range p.Args {
		if !IsGround(a) {
			return false
		}
	}
	return true
}

// Depth is the deepest argument depth.
func (p Predicate) Depth() int {
	d := 0
	for _, a := range p.Args {
		d = max(d, Depth(a))
	}
	return d
}

// Vars returns the pattern variables across all arguments.
func (p Predicate) Vars() []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range p.Args {
		out = collect(a, out, seen, true)
	}
	return out
}

// Symbols returns the problem symbols across all arguments.
func (p Predicate) Symbols() []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range p.Args {
		out = collect(a, out, seen, false)
	}
	return out
}

func (p Predicate) mapArgs(fn func(Term) Term) Predicate {
	args := make([]Term, len(p.Args))
	for i, a := range p.Args {
		args[i] = fn(a)
	}
	return Predicate{Name: p.Name, Args: args}
}
