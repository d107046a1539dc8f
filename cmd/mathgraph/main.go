package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/mathgraph/internal/llm"
	"github.com/cognicore/mathgraph/pkg/mathgraph"
	"github.com/cognicore/mathgraph/pkg/mathgraph/config"
	"github.com/cognicore/mathgraph/pkg/mathgraph/explain"
	"github.com/cognicore/mathgraph/pkg/mathgraph/extract"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store/memstore"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the persistent flags and what PersistentPreRunE builds from them.
type cli struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "mathgraph",
		Short: "Prove math problems by forward chaining over a rule base",
		Long: `mathgraph derives a goal from given facts, e.g.

  mathgraph prove --fact "eq(x + 7, 15)" --goal "eq(x, ?)"

Settings come from an optional YAML file and MATHGRAPH_* environment
variables; a .env file in the working directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Optional, so a missing .env is not an error.
			_ = godotenv.Load()

			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg

			logCfg := zap.NewProductionConfig()
			if c.verbose {
				logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			c.log, err = logCfg.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log every derivation")

	root.AddCommand(
		newProveCmd(c),
		newBatchCmd(c),
		newSolveCmd(c),
		newRulesCmd(c),
		newHistoryCmd(c),
	)
	return root
}

// buildSystem wires the configured journal and LLM collaborators into a
// System. The returned cleanup closes the journal.
func buildSystem(ctx context.Context, cfg config.Config, log *zap.Logger) (*mathgraph.System, func(), error) {
	var journal store.Journal
	switch cfg.Journal.Driver {
	case "sqlite":
		j, err := sqlite.OpenSQLite(ctx, cfg.Journal.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		journal = j
	case "memory":
		journal = memstore.New()
	}

	opts := mathgraph.Options{
		Config:  cfg,
		Logger:  log,
		Journal: journal,
	}
	if cfg.LLM.Enabled() {
		client := &llm.Client{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			HTTPClient:  &http.Client{Timeout: cfg.LLM.Timeout},
		}
		opts.Extractor = &extract.LLM{Client: client}
		opts.Explainer = &explain.LLM{Client: client, Logger: log}
		if cfg.LLM.Templates != "" {
			templates, err := extract.LoadTemplates(cfg.LLM.Templates)
			if err != nil {
				if journal != nil {
					journal.Close()
				}
				return nil, nil, fmt.Errorf("load templates: %w", err)
			}
			opts.Extractor = &extract.Fallback{Primary: opts.Extractor, Templates: templates}
		}
	}

	sys, err := mathgraph.New(opts)
	if err != nil {
		if journal != nil {
			journal.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		sys.Close()
	}
	return sys, cleanup, nil
}
