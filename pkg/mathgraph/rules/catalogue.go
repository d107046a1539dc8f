package rules

// builtin is the default catalogue in declaration order. The order is part
// of the engine's determinism: rules are tried in this order.
var builtin = []struct {
	id, name string
	category Category
	text     string
}{
	// Solving linear equations.
	{"subtraction_property", "Subtraction property of equality", Algebra, "eq(X + A, B) → eq(X, B - A)"},
	{"division_property", "Division property of equality", Algebra, "eq(A * X, B) → eq(X, B / A)"},
	{"addition_property", "Addition property of equality", Algebra, "eq(X - A, B) → eq(X, B + A)"},
	{"multiplication_property", "Multiplication property of equality", Algebra, "eq(X / A, B) → eq(X, B * A)"},
	{"equality_symmetry", "Symmetry of equality", Algebra, "eq(X, Y) → eq(Y, X)"},
	{"equality_transitivity", "Transitivity of equality", Algebra, "eq(X, Y) ∧ eq(Y, Z) → eq(X, Z)"},

	// Parity.
	{"even_definition", "Definition of even numbers", Arithmetic, "eq(X, 2 * Y) → even(X)"},
	{"odd_definition", "Definition of odd numbers", Arithmetic, "eq(X, 2 * Y + 1) → odd(X)"},
	{"even_multiplication", "Doubling an even number", Arithmetic, "even(X) → even(2 * X)"},
	{"odd_multiplication", "Product of odd numbers", Arithmetic, "odd(X) ∧ odd(Y) → odd(X * Y)"},
	{"even_addition", "Sum of even numbers", Arithmetic, "even(X) ∧ even(Y) → even(X + Y)"},
	{"odd_addition_even", "Sum of odd numbers", Arithmetic, "odd(X) ∧ odd(Y) → even(X + Y)"},
	{"even_odd_addition", "Sum of an even and an odd number", Arithmetic, "even(X) ∧ odd(Y) → odd(X + Y)"},
	{"even_square", "Square of an even number", Arithmetic, "even(X) → even(X * X)"},
	{"odd_square", "Square of an odd number", Arithmetic, "odd(X) → odd(X * X)"},

	// Order relations.
	{"greater_transitivity", "Transitivity of greater than", Inequality, "gt(X, Y) ∧ gt(Y, Z) → gt(X, Z)"},
	{"equality_substitution_gt", "Substitution of equals in greater than", Inequality, "eq(X, Y) ∧ gt(Y, Z) → gt(X, Z)"},
	{"less_transitivity", "Transitivity of less than", Inequality, "lt(X, Y) ∧ lt(Y, Z) → lt(X, Z)"},
	{"gte_transitivity", "Transitivity of greater or equal", Inequality, "gte(X, Y) ∧ gte(Y, Z) → gte(X, Z)"},
	{"lte_transitivity", "Transitivity of less or equal", Inequality, "lte(X, Y) ∧ lte(Y, Z) → lte(X, Z)"},
	{"gt_lt_relationship", "Greater than as less than", Inequality, "gt(X, Y) → lt(Y, X)"},
	{"lt_gt_relationship", "Less than as greater than", Inequality, "lt(X, Y) → gt(Y, X)"},
	{"gt_implies_gte", "Greater than implies greater or equal", Inequality, "gt(X, Y) → gte(X, Y)"},
	{"positive_definition", "Definition of positive numbers", Inequality, "gt(X, 0) → positive(X)"},
	{"negative_definition", "Definition of negative numbers", Inequality, "lt(X, 0) → negative(X)"},

	// Divisibility.
	{"divisibility_transitivity", "Transitivity of divisibility", NumberTheory, "divides(A, B) ∧ divides(B, C) → divides(A, C)"},
	{"multiple_divides", "Multiples are divisible", NumberTheory, "multiple(X, Y) → divides(Y, X)"},
	{"divides_multiple", "Divisibility gives multiples", NumberTheory, "divides(Y, X) → multiple(X, Y)"},
	{"divisibility_sum", "Divisor of a sum", NumberTheory, "divides(A, B) ∧ divides(A, C) → divides(A, B + C)"},
	{"prime_not_even", "Primes above two are odd", NumberTheory, "prime(X) ∧ gt(X, 2) → odd(X)"},
	{"even_divisible", "Even numbers are divisible by two", NumberTheory, "even(X) → divides(2, X)"},
	{"divisible_even", "Divisible by two means even", NumberTheory, "divides(2, X) → even(X)"},
}

// Builtin returns a fresh copy of the default catalogue.
func Builtin() []Rule {
	out := make([]Rule, len(builtin))
	for i, b := range builtin {
		out[i] = MustParse(b.id, b.name, b.category, b.text)
	}
	return out
}
