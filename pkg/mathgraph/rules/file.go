package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a rule file:
//
//	rules:
//	  - id: double_even
//	    name: Doubles are even
//	    category: arithmetic
//	    rule: "eq(X, Y + Y) → even(X)"
type File struct {
	Rules []FileRule `yaml:"rules"`
}

// FileRule is one entry of a rule file.
type FileRule struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Rule     string `yaml:"rule"`
}

// LoadFile reads rules from a YAML file. The rules are parsed but not
// validated; pass them to Load with WithRules.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Decode parses the YAML rule file format.
func Decode(data []byte) ([]Rule, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	out := make([]Rule, 0, len(f.Rules))
	for i, fr := range f.Rules {
		name := fr.Name
		if name == "" {
			name = fr.ID
		}
		r, err := Parse(fr.ID, name, Category(fr.Category), fr.Rule)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Encode renders rules in the rule file format. Decode(Encode(rs)) yields
// the same rules.
func Encode(rs []Rule) ([]byte, error) {
	f := File{Rules: make([]FileRule, len(rs))}
	for i, r := range rs {
		f.Rules[i] = FileRule{ID: r.ID, Name: r.Name, Category: string(r.Category), Rule: r.String()}
	}
	return yaml.Marshal(&f)
}
