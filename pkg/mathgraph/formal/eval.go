package formal

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNotGround is returned when evaluation meets an identifier.
	ErrNotGround = errors.New("formal: term is not ground")
	// ErrDivisionByZero is returned for x / 0.
	ErrDivisionByZero = errors.New("formal: division by zero")
)

// Evaluate collapses an identifier-free arithmetic term to an exact
// rational. Floating point is never involved.
func Evaluate(t Term) (Number, error) {
	switch x := t.(type) {
	case Number:
		return x, nil
	case Variable:
		return Number{}, fmt.Errorf("%w: %s", ErrNotGround, x.Name)
	case Binary:
		l, err := Evaluate(x.Left)
		if err != nil {
			return Number{}, err
		}
		r, err := Evaluate(x.Right)
		if err != nil {
			return Number{}, err
		}
		return apply(x.Op, l, r)
	}
	return Number{}, fmt.Errorf("formal: unknown term %T", t)
}

// Fold evaluates every identifier-free sub-term of t and keeps the symbolic
// structure around them: (15 - 7) + x folds to 8 + x.
func Fold(t Term) (Term, error) {
	b, ok := t.(Binary)
	if !ok {
		return t, nil
	}
	l, err := Fold(b.Left)
	if err != nil {
		return nil, err
	}
	r, err := Fold(b.Right)
	if err != nil {
		return nil, err
	}
	ln, lok := l.(Number)
	rn, rok := r.(Number)
	if lok && rok {
		return apply(b.Op, ln, rn)
	}
	return Binary{Op: b.Op, Left: l, Right: r}, nil
}

func apply(op Op, l, r Number) (Number, error) {
	out := new(big.Rat)
	switch op {
	case OpAdd:
		out.Add(l.rat(), r.rat())
	case OpSub:
		out.Sub(l.rat(), r.rat())
	case OpMul:
		out.Mul(l.rat(), r.rat())
	case OpDiv:
		if r.Sign() == 0 {
			return Number{}, ErrDivisionByZero
		}
		out.Quo(l.rat(), r.rat())
	default:
		return Number{}, fmt.Errorf("formal: invalid operator %q", rune(op))
	}
	return Number{r: out}, nil
}
