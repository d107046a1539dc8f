package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/cognicore/mathgraph/pkg/mathgraph/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProveCommand(t *testing.T) {
	out, err := run(t, "prove", "--fact", "eq(x + 7, 15)", "--goal", "eq(x, ?)", "--verify")
	if err != nil {
		t.Fatalf("prove failed: %v", err)
	}
	if !strings.Contains(out, "Answer: ? = 8.") {
		t.Errorf("Expected the answer in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Proof verified.") {
		t.Errorf("Expected verification, got:\n%s", out)
	}
}

func TestProveCommandNoProof(t *testing.T) {
	out, err := run(t, "prove", "--fact", "eq(x, 5)", "--goal", "gt(x, 10)")
	if err != nil {
		t.Fatalf("A failed search is not a command error: %v", err)
	}
	if !strings.Contains(out, "does not follow") {
		t.Errorf("Expected a failure explanation, got:\n%s", out)
	}
}

func TestProveCommandBadInput(t *testing.T) {
	if _, err := run(t, "prove", "--fact", "eq(x +, 15)", "--goal", "eq(x, ?)"); err == nil {
		t.Error("Should fail on malformed fact")
	}
	if _, err := run(t, "prove", "--goal", "eq(x, ?)"); err == nil {
		t.Error("Should require --fact")
	}
}

func TestRulesCommand(t *testing.T) {
	out, err := run(t, "rules", "--category", "algebra")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if !strings.Contains(out, "subtraction_property") {
		t.Errorf("Expected algebra rules, got:\n%s", out)
	}
	if strings.Contains(out, "greater_transitivity") {
		t.Error("Inequality rules should be filtered out")
	}

	if _, err := run(t, "rules", "--category", "geometry"); err == nil {
		t.Error("Should reject unknown category")
	}
}

func TestRulesExportFeedsRuleFiles(t *testing.T) {
	out, err := run(t, "rules", "--category", "number-theory", "--yaml")
	if err != nil {
		t.Fatalf("rules --yaml failed: %v", err)
	}
	dir := t.TempDir()
	rulesPath := writeFile(t, dir, "exported.yaml", strings.ReplaceAll(out, "id: ", "id: copy_"))
	cfgPath := writeFile(t, dir, "mathgraph.yaml", "rules:\n  categories: [inequality, number-theory]\n  files: ["+rulesPath+"]\n")

	out, err = run(t, "--config", cfgPath, "rules")
	if err != nil {
		t.Fatalf("rules with exported file failed: %v", err)
	}
	if !strings.Contains(out, "copy_") {
		t.Errorf("Expected exported rules to load, got:\n%s", out)
	}
}

func TestBatchAndHistory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "mathgraph.yaml", "journal:\n  driver: sqlite\n  path: "+filepath.Join(dir, "journal.db")+"\n")
	problems := writeFile(t, dir, "problems.yaml", `problems:
  - facts: ["eq(x + 7, 15)"]
    goal: "eq(x, ?)"
  - facts: ["eq(x, 5)"]
    goal: "gt(x, 10)"
  - facts: ["gt(a, b)", "gt(b, c)"]
    goal: "gt(a, c)"
`)

	out, err := run(t, "--config", cfgPath, "batch", problems)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if !strings.Contains(out, "{?: 8}") || !strings.Contains(out, "fixpoint reached") {
		t.Errorf("Unexpected batch output:\n%s", out)
	}

	out, err = run(t, "--config", cfgPath, "history", "--limit", "10")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "proved 2, fixpoint 1, bound exceeded 0, invalid 0") {
		t.Errorf("Unexpected history output:\n%s", out)
	}
}

func TestHistoryWithoutJournal(t *testing.T) {
	if _, err := run(t, "history"); err == nil {
		t.Error("history should fail without a journal")
	}
}

func TestSolveRequiresLLM(t *testing.T) {
	if _, err := run(t, "solve", "what is x if x + 7 = 15?"); err == nil {
		t.Error("solve should fail without an LLM endpoint")
	}
}

func TestBuildSystem(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Driver = "memory"

	sys, cleanup, err := buildSystem(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildSystem failed: %v", err)
	}
	defer cleanup()

	if sys.Journal() == nil {
		t.Error("Expected a memory journal")
	}
	if sys.Rules().Len() == 0 {
		t.Error("Expected the built-in rules")
	}
}

func TestBuildSystemBadJournalPath(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Driver = "sqlite"
	cfg.Journal.Path = filepath.Join(t.TempDir(), "missing", "dir", "journal.db")

	if _, _, err := buildSystem(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("Should fail when the journal cannot be opened")
	}
}

func TestSolveFallsBackToTemplates(t *testing.T) {
	dir := t.TempDir()
	templates := writeFile(t, dir, "templates.yaml", `templates:
  three y:
    facts: ["eq(3 * y, 21)"]
    goal: "eq(y, ?)"
`)
	// Nothing listens here, so the model call fails.
	cfgPath := writeFile(t, dir, "mathgraph.yaml", "llm:\n  base_url: http://127.0.0.1:1\n  model: test\n  timeout: 2s\n  templates: "+templates+"\n")

	out, err := run(t, "--config", cfgPath, "solve", "If three y is 21, what is y?")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "? = 7") {
		t.Errorf("Expected the template answer, got:\n%s", out)
	}
}
