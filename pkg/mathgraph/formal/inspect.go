package formal

// Depth is 1 for a leaf and 1 + the deeper operand for a Binary.
func Depth(t Term) int {
	b, ok := t.(Binary)
	if !ok {
		return 1
	}
	return 1 + max(Depth(b.Left), Depth(b.Right))
}

// Vars returns the pattern variables of t in order of first appearance.
func Vars(t Term) []string {
	return collect(t, nil, map[string]bool{}, true)
}

// Symbols returns the problem symbols of t in order of first appearance.
func Symbols(t Term) []string {
	return collect(t, nil, map[string]bool{}, false)
}

// IsGround reports whether t contains no pattern variables.
func IsGround(t Term) bool {
	switch x := t.(type) {
	case Variable:
		return !x.IsPattern()
	case Binary:
		return IsGround(x.Left) && IsGround(x.Right)
	}
	return true
}

func collect(t Term, out []string, seen map[string]bool, patterns bool) []string {
	switch x := t.(type) {
	case Variable:
		if x.IsPattern() == patterns && !seen[x.Name] {
			seen[x.Name] = true
			out = append(out, x.Name)
		}
	case Binary:
		out = collect(x.Left, out, seen, patterns)
		out = collect(x.Right, out, seen, patterns)
	}
	return out
}
