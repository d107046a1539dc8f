// Package formal holds the immutable data model shared by the parser, the
// pattern matcher, the rule base and the proof engine: arithmetic terms,
// predicates over them, substitutions and problems.
//
// Identifiers follow one convention everywhere. A name starting with an
// upper-case letter, '_' or '?' is a pattern variable and can be bound by a
// substitution. Any other identifier (x, n, a) is a problem symbol: it is a
// constant of the problem and only ever matches itself.
package formal

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Op is a binary arithmetic operator.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

// Valid reports whether o is one of + - * /.
func (o Op) Valid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

// Commutative reports whether operand order is irrelevant for o.
func (o Op) Commutative() bool {
	return o == OpAdd || o == OpMul
}

func (o Op) precedence() int {
	if o == OpMul || o == OpDiv {
		return 2
	}
	return 1
}

func (o Op) String() string { return string(o) }

// kind orders the term variants: numbers sort before variables, variables
// before compound terms.
type kind int

const (
	kindNumber kind = iota
	kindVariable
	kindBinary
)

// Term is a Variable, a Number or a Binary. The set of variants is closed.
type Term interface {
	fmt.Stringer
	kind() kind
}

// Variable is a named identifier, either a pattern variable or a problem
// symbol depending on its name.
type Variable struct {
	Name string
}

// Var returns the variable with the given name.
func Var(name string) Variable { return Variable{Name: name} }

// IsPattern reports whether v can be bound by a substitution.
func (v Variable) IsPattern() bool {
	return IsPatternName(v.Name)
}

func (Variable) kind() kind { return kindVariable }

func (v Variable) String() string { return v.Name }

// IsPatternName reports whether an identifier names a pattern variable.
func IsPatternName(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return r == '_' || r == '?' || unicode.IsUpper(r)
}

// Number is an exact rational. The wrapped value is never mutated after
// construction, so Numbers can be shared freely.
type Number struct {
	r *big.Rat
}

// Int returns the integer n as a Number.
func Int(n int64) Number { return Number{r: new(big.Rat).SetInt64(n)} }

// Rat returns num/den as a Number. It panics if den is zero.
func Rat(num, den int64) Number {
	if den == 0 {
		panic("formal: zero denominator")
	}
	return Number{r: big.NewRat(num, den)}
}

// NumberOf copies r into a Number.
func NumberOf(r *big.Rat) Number {
	return Number{r: new(big.Rat).Set(r)}
}

// Rat returns a copy of the value.
func (n Number) Rat() *big.Rat {
	return new(big.Rat).Set(n.rat())
}

// IsInt reports whether the value is an integer.
func (n Number) IsInt() bool { return n.rat().IsInt() }

// Sign returns -1, 0 or +1.
func (n Number) Sign() int { return n.rat().Sign() }

func (n Number) rat() *big.Rat {
	if n.r == nil {
		return new(big.Rat)
	}
	return n.r
}

func (Number) kind() kind { return kindNumber }

// String prints integers bare and non-integers as a parenthesised fraction,
// so a rational value never prints like a division term.
func (n Number) String() string {
	r := n.rat()
	if r.IsInt() {
		return r.Num().String()
	}
	return "(" + r.RatString() + ")"
}

// Binary is an arithmetic operation on two terms.
type Binary struct {
	Op    Op
	Left  Term
	Right Term
}

// NewBinary builds a Binary, rejecting unknown operators and nil operands.
func NewBinary(op Op, left, right Term) (Binary, error) {
	if !op.Valid() {
		return Binary{}, fmt.Errorf("formal: invalid operator %q", rune(op))
	}
	if left == nil || right == nil {
		return Binary{}, fmt.Errorf("formal: nil operand for %q", rune(op))
	}
	return Binary{Op: op, Left: left, Right: right}, nil
}

func Add(l, r Term) Binary { return Binary{Op: OpAdd, Left: l, Right: r} }
func Sub(l, r Term) Binary { return Binary{Op: OpSub, Left: l, Right: r} }
func Mul(l, r Term) Binary { return Binary{Op: OpMul, Left: l, Right: r} }
func Div(l, r Term) Binary { return Binary{Op: OpDiv, Left: l, Right: r} }

func (Binary) kind() kind { return kindBinary }

// String uses the fewest parentheses that keep the text unambiguous under
// left-associative parsing, so distinct terms never print the same.
func (b Binary) String() string {
	var sb strings.Builder
	writeOperand(&sb, b.Left, b.Op, false)
	sb.WriteByte(' ')
	sb.WriteByte(byte(b.Op))
	sb.WriteByte(' ')
	writeOperand(&sb, b.Right, b.Op, true)
	return sb.String()
}

func writeOperand(sb *strings.Builder, t Term, parent Op, right bool) {
	if c, ok := t.(Binary); ok {
		p, q := c.Op.precedence(), parent.precedence()
		if p < q || (right && p == q) {
			sb.WriteByte('(')
			sb.WriteString(c.String())
			sb.WriteByte(')')
			return
		}
	}
	sb.WriteString(t.String())
}
