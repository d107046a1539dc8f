package formal

import "strings"

// Compare is a total order on terms: numbers by value, then variables by
// name, then binaries by operator, left operand and right operand.
func Compare(a, b Term) int {
	if ka, kb := a.kind(), b.kind(); ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case Number:
		return x.rat().Cmp(b.(Number).rat())
	case Variable:
		return strings.Compare(x.Name, b.(Variable).Name)
	case Binary:
		y := b.(Binary)
		if x.Op != y.Op {
			if x.Op < y.Op {
				return -1
			}
			return 1
		}
		if c := Compare(x.Left, y.Left); c != 0 {
			return c
		}
		return Compare(x.Right, y.Right)
	}
	return 0
}

// Canonicalize orders the operands of every + and * node so that the
// smaller operand comes first. a+b and b+a canonicalize to the same term,
// and canonicalizing twice changes nothing.
func Canonicalize(t Term) Term {
	b, ok := t.(Binary)
	if !ok {
		return t
	}
	l, r := Canonicalize(b.Left), Canonicalize(b.Right)
	if b.Op.Commutative() && Compare(r, l) < 0 {
		l, r = r, l
	}
	return Binary{Op: b.Op, Left: l, Right: r}
}

// Equal reports whether two terms are identical up to commutative operand
// order.
func Equal(a, b Term) bool {
	return Compare(Canonicalize(a), Canonicalize(b)) == 0
}
