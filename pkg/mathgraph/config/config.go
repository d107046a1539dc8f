package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
)

// EnvPrefix prefixes every environment variable, e.g. MATHGRAPH_SEARCH_STEP_BOUND.
const EnvPrefix = "MATHGRAPH_"

// Config is the complete runtime configuration
type Config struct {
	Search  Search  `yaml:"search" envPrefix:"SEARCH_"`
	Rules   Rules   `yaml:"rules" envPrefix:"RULES_"`
	LLM     LLM     `yaml:"llm" envPrefix:"LLM_"`
	Journal Journal `yaml:"journal" envPrefix:"JOURNAL_"`
	Cache   Cache   `yaml:"cache" envPrefix:"CACHE_"`
}

// Search bounds the proof search
type Search struct {
	StepBound   int `yaml:"step_bound" env:"STEP_BOUND" validate:"gte=1,lte=10000000"`
	FactBound   int `yaml:"fact_bound" env:"FACT_BOUND" validate:"gte=1,lte=10000000"`
	DepthSlack  int `yaml:"depth_slack" env:"DEPTH_SLACK" validate:"gte=0,lte=16"`
	Parallelism int `yaml:"parallelism" env:"PARALLELISM" validate:"gte=1,lte=256"`
}

// Rules selects the rule base
type Rules struct {
	// Categories limits the enabled rules; empty means all.
	Categories []string `yaml:"categories" env:"CATEGORIES" envSeparator:"," validate:"dive,oneof=algebra arithmetic number-theory inequality"`
	// Files are YAML rule files appended after the catalogue.
	Files []string `yaml:"files" env:"FILES" envSeparator:","`
	// Disabled lists rule ids to leave out, e.g. equality_symmetry.
	Disabled []string `yaml:"disabled" env:"DISABLED" envSeparator:","`
}

// LLM configures the chat completion service used for extraction and
// explanation. It is optional.
type LLM struct {
	BaseURL     string        `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	Model       string        `yaml:"model" env:"MODEL" validate:"required_with=BaseURL"`
	APIKey      string        `yaml:"-" env:"API_KEY"`
	Temperature float32       `yaml:"temperature" env:"TEMPERATURE" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gte=0"`
	// Templates is a YAML file of canned extractions used when the model fails.
	Templates string `yaml:"templates" env:"TEMPLATES"`
}

// Enabled reports whether an LLM endpoint is configured.
func (l LLM) Enabled() bool {
	return l.BaseURL != "" && l.Model != ""
}

// Journal selects where sessions are recorded
type Journal struct {
	// Driver is "sqlite", "memory" or "none".
	Driver string `yaml:"driver" env:"DRIVER" validate:"oneof=sqlite memory none"`
	Path   string `yaml:"path" env:"PATH" validate:"required_if=Driver sqlite"`
}

// Cache sizes the proof cache; 0 disables it.
type Cache struct {
	Size int `yaml:"size" env:"SIZE" validate:"gte=0"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Search: Search{
			StepBound:   10000,
			FactBound:   1000,
			DepthSlack:  1,
			Parallelism: 4,
		},
		LLM: LLM{
			Timeout: 30 * time.Second,
		},
		Journal: Journal{Driver: "none"},
		Cache:   Cache{Size: 256},
	}
}

// Load reads the configuration: defaults, then the YAML file at path (if
// any), then MATHGRAPH_* environment variables. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks value ranges and cross-field requirements
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}
