// Package extract turns natural-language problem statements into formal
// problems by asking a chat completion service. Its output carries no
// mathematical guarantee: every extraction is validated and then parsed
// like any other formal input.
package extract

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/parse"
)

// Extraction is the formal reading of a problem statement.
type Extraction struct {
	Facts       []string `json:"facts" yaml:"facts" validate:"required,min=1,max=32,dive,required,max=256"`
	Goal        string   `json:"goal" yaml:"goal" validate:"required,max=256"`
	ProblemType string   `json:"problem_type" yaml:"problem_type" validate:"omitempty,max=64"`
	// Confidence is the extractor's own score. Nothing downstream trusts it.
	Confidence float64 `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
}

var validate = validator.New()

// Validate checks the shape of an extraction. It does not parse anything.
func (e Extraction) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("extract: %w: %v", internalerr.ErrCollaborator, err)
	}
	return nil
}

// Problem validates and parses the extraction. text is kept as the
// problem's natural-language statement.
func (e Extraction) Problem(text string) (formal.Problem, error) {
	if err := e.Validate(); err != nil {
		return formal.Problem{}, err
	}
	p, err := parse.Problem(e.Facts, e.Goal)
	if err != nil {
		return formal.Problem{}, fmt.Errorf("extract: %w", err)
	}
	p.Text = text
	p.Confidence = e.Confidence
	return p, nil
}

// Extractor reads a formal problem out of text.
type Extractor interface {
	Extract(ctx context.Context, text string) (Extraction, error)
}

// Completer is the chat completion capability extraction needs.
type Completer interface {
	ChatJSON(ctx context.Context, system, user string, out any) error
}

// LLM extracts problems with a JSON chat completion.
type LLM struct {
	Client Completer
}

// Extract asks the model for an Extraction and validates its shape.
func (l *LLM) Extract(ctx context.Context, text string) (Extraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Extraction{}, fmt.Errorf("extract: empty problem text: %w", internalerr.ErrInvalidInput)
	}
	var out Extraction
	if err := l.Client.ChatJSON(ctx, systemPrompt, userPrompt(text), &out); err != nil {
		return Extraction{}, fmt.Errorf("extract: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Extraction{}, err
	}
	return out, nil
}

// Static returns a fixed extraction. It stands in for the model in tests
// and offline runs.
type Static map[string]Extraction

func (s Static) Extract(_ context.Context, text string) (Extraction, error) {
	e, ok := s[strings.TrimSpace(text)]
	if !ok {
		return Extraction{}, fmt.Errorf("extract: no extraction for %q: %w", text, internalerr.ErrNotFound)
	}
	return e, nil
}

// TemplateConfidence is the confidence Fallback gives a template match.
const TemplateConfidence = 0.7

// Fallback asks Primary first. When Primary fails it looks for a template
// whose key occurs in the text, ignoring case, and returns that instead.
// Keys are tried in sorted order. With no match the primary error is
// returned unchanged.
type Fallback struct {
	Primary   Extractor
	Templates map[string]Extraction
}

func (f *Fallback) Extract(ctx context.Context, text string) (Extraction, error) {
	e, err := f.Primary.Extract(ctx, text)
	if err == nil {
		return e, nil
	}
	if ctx.Err() != nil {
		return Extraction{}, err
	}
	lower := strings.ToLower(text)
	keys := make([]string, 0, len(f.Templates))
	for k := range f.Templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "" || !strings.Contains(lower, strings.ToLower(k)) {
			continue
		}
		t := f.Templates[k]
		t.Facts = append([]string(nil), t.Facts...)
		t.Confidence = TemplateConfidence
		if t.ProblemType == "" {
			t.ProblemType = "template"
		}
		return t, nil
	}
	return Extraction{}, err
}

// LoadTemplates reads Fallback templates from a YAML file mapping a phrase
// to the extraction it stands for:
//
//	templates:
//	  sum of two odd:
//	    facts: ["odd(a)", "odd(b)"]
//	    goal: "even(a + b)"
func LoadTemplates(path string) (map[string]Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Templates map[string]Extraction `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for k, e := range doc.Templates {
		// Confidence is assigned on match.
		e.Confidence = 0
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%s: template %q: %w", path, k, err)
		}
	}
	return doc.Templates, nil
}
