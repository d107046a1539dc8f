package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
)

func TestLoaderDefaults(t *testing.T) {
	loader := Loader{Config: Default()}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Default loader should succeed: %v", err)
	}
	if comp.Rules == nil || comp.Rules.Len() == 0 {
		t.Fatal("Should have the built-in rules")
	}
	if len(comp.Rules.Categories()) != 4 {
		t.Errorf("Expected all 4 categories, got %v", comp.Rules.Categories())
	}
}

func TestLoaderCategories(t *testing.T) {
	cfg := Default()
	cfg.Rules.Categories = []string{"inequality"}

	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(comp.Rules.RulesFor(formal.Eq)) != 1 {
		// Only equality_substitution_gt mentions eq.
		t.Errorf("Expected 1 eq rule, got %d", len(comp.Rules.RulesFor(formal.Eq)))
	}
}

func TestLoaderRuleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "extra.yaml")
	content := `rules:
  - id: double_even
    name: Doubles are even
    category: arithmetic
    rule: "eq(X, Y + Y) → even(X)"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Rules.Files = []string{path}
	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := comp.Rules.Rule("double_even"); err != nil {
		t.Errorf("Rule from file should be loaded: %v", err)
	}
}

func TestLoaderRejectsUnsafeRuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unsafe.yaml")
	content := `rules:
  - id: invent
    category: arithmetic
    rule: "even(X) → odd(Y)"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Rules.Files = []string{path}
	_, err := (&Loader{Config: cfg}).Load()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("Expected invalid config error, got %v", err)
	}
}

func TestLoaderNonExistentRuleFile(t *testing.T) {
	cfg := Default()
	cfg.Rules.Files = []string{"/nonexistent/rules.yaml"}
	if _, err := (&Loader{Config: cfg}).Load(); err == nil {
		t.Error("Should error on nonexistent rule file")
	}
}

func TestLoaderDisabledRules(t *testing.T) {
	cfg := Default()
	cfg.Rules.Disabled = []string{"equality_symmetry", "odd_square"}

	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := comp.Rules.Rule("equality_symmetry"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Disabled rule should be gone, got %v", err)
	}
	if comp.Rules.Len() != len(rules.Builtin())-2 {
		t.Errorf("Expected %d rules, got %d", len(rules.Builtin())-2, comp.Rules.Len())
	}

	cfg.Rules.Disabled = []string{"no_such_rule"}
	if _, err := (&Loader{Config: cfg}).Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Unknown disabled rule should be a config error, got %v", err)
	}
}
