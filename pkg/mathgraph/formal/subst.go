package formal

import (
	"sort"
	"strings"
)

// Substitution maps pattern variable names to terms. It is immutable: Bind
// returns an extended copy and leaves the receiver untouched. The zero
// value is the empty substitution.
type Substitution struct {
	m map[string]Term
}

// Lookup returns the term bound to name.
func (s Substitution) Lookup(name string) (Term, bool) {
	t, ok := s.m[name]
	return t, ok
}

// Bind extends s with name → t. Binding a name that is already bound
// succeeds only when both terms are canonically equal; a conflicting
// binding returns false and the receiver.
func (s Substitution) Bind(name string, t Term) (Substitution, bool) {
	if prev, ok := s.m[name]; ok {
		return s, Equal(prev, t)
	}
	m := make(map[string]Term, len(s.m)+1)
	for k, v := range s.m {
		m[k] = v
	}
	m[name] = t
	return Substitution{m: m}, true
}

// Len returns the number of bindings.
func (s Substitution) Len() int { return len(s.m) }

// Names returns the bound names in sorted order.
func (s Substitution) Names() []string {
	names := make([]string, 0, len(s.m))
	for k := range s.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both substitutions bind the same names to
// canonically equal terms.
func (s Substitution) Equal(o Substitution) bool {
	if len(s.m) != len(o.m) {
		return false
	}
	for k, v := range s.m {
		w, ok := o.m[k]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

// String renders the bindings sorted by name, e.g. {A: 7, X: x}.
func (s Substitution) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range s.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(s.m[name].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Substitute replaces every bound pattern variable in t. Unbound variables
// and problem symbols are left as they are, so terms without pattern
// variables come back unchanged.
func Substitute(t Term, s Substitution) Term {
	switch x := t.(type) {
	case Variable:
		if b, ok := s.m[x.Name]; ok {
			return b
		}
		return x
	case Binary:
		return Binary{Op: x.Op, Left: Substitute(x.Left, s), Right: Substitute(x.Right, s)}
	}
	return t
}
