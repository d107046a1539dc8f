package config

import (
	"fmt"

	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
)

// Loader builds runtime components from a configuration
type Loader struct {
	Config Config
}

// Components holds all loaded configuration components
type Components struct {
	Config Config
	Rules  *rules.RuleBase
}

// Load builds the rule base: the built-in catalogue limited to the
// configured categories, followed by the rules of every rule file, less
// the disabled rule ids.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Config: l.Config}

	var opts []rules.Option
	if len(l.Config.Rules.Categories) > 0 {
		cats := make([]rules.Category, len(l.Config.Rules.Categories))
		for i, c := range l.Config.Rules.Categories {
			cats[i] = rules.Category(c)
		}
		opts = append(opts, rules.WithCategories(cats...))
	}
	if len(l.Config.Rules.Disabled) > 0 {
		opts = append(opts, rules.WithoutRules(l.Config.Rules.Disabled...))
	}

	// Load rule files
	for _, path := range l.Config.Rules.Files {
		rs, err := rules.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load rule file: %w", err)
		}
		opts = append(opts, rules.WithRules(rs...))
	}

	rb, err := rules.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	comp.Rules = rb

	return comp, nil
}
