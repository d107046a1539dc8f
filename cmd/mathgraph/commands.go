package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/mathgraph/pkg/mathgraph"
	"github.com/cognicore/mathgraph/pkg/mathgraph/config"
	"github.com/cognicore/mathgraph/pkg/mathgraph/inference/forward"
	"github.com/cognicore/mathgraph/pkg/mathgraph/rules"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store"
)

func newProveCmd(c *cli) *cobra.Command {
	var (
		facts  []string
		goal   string
		text   string
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove a goal from formal facts",
		Example: `  mathgraph prove --fact "eq(x + 7, 15)" --goal "eq(x, ?)"
  mathgraph prove --fact "gt(a, b)" --fact "gt(b, c)" --goal "gt(a, c)" --verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, cleanup, err := buildSystem(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := sys.Prove(cmd.Context(), mathgraph.ProveRequest{Facts: facts, Goal: goal, Text: text})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), sys, res, verify)
		},
	}
	cmd.Flags().StringArrayVar(&facts, "fact", nil, "Given fact, repeatable")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal to prove")
	cmd.Flags().StringVar(&text, "text", "", "Original wording of the problem")
	cmd.Flags().BoolVar(&verify, "verify", false, "Re-check the proof step by step")
	cmd.MarkFlagRequired("fact")
	cmd.MarkFlagRequired("goal")
	return cmd
}

// batchFile is the YAML input of the batch command.
type batchFile struct {
	Problems []struct {
		Facts []string `yaml:"facts"`
		Goal  string   `yaml:"goal"`
		Text  string   `yaml:"text"`
	} `yaml:"problems"`
}

func newBatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <problems.yaml>",
		Short: "Prove every problem in a YAML file in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var bf batchFile
			if err := yaml.Unmarshal(data, &bf); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			reqs := make([]mathgraph.ProveRequest, len(bf.Problems))
			for i, p := range bf.Problems {
				reqs[i] = mathgraph.ProveRequest{Facts: p.Facts, Goal: p.Goal, Text: p.Text}
			}

			sys, cleanup, err := buildSystem(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := sys.ProveAll(cmd.Context(), reqs)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tGOAL\tOUTCOME\tANSWER")
			for i, res := range results {
				outcome, answer := "proved", ""
				if res.Proved() {
					if res.Proof.Answer.Len() > 0 {
						answer = res.Proof.Answer.String()
					}
				} else {
					outcome = res.Failure.Kind.String()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, res.Problem.Goal, outcome, answer)
			}
			return w.Flush()
		},
	}
}

func newSolveCmd(c *cli) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "solve <problem text>",
		Short: "Extract a problem from plain language with the LLM and prove it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.LLM.Enabled() {
				return fmt.Errorf("solve needs an LLM: set llm.base_url and llm.model (or MATHGRAPH_LLM_BASE_URL and MATHGRAPH_LLM_MODEL)")
			}
			sys, cleanup, err := buildSystem(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := sys.Solve(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), sys, res, verify)
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Re-check the proof step by step")
	return cmd
}

func newRulesCmd(c *cli) *cobra.Command {
	var (
		category string
		asYAML   bool
	)
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the enabled inference rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := (&config.Loader{Config: c.cfg}).Load()
			if err != nil {
				return err
			}
			list := comp.Rules.Rules()
			if category != "" {
				cat := rules.Category(category)
				if !cat.Valid() {
					return fmt.Errorf("unknown category %q", category)
				}
				list = comp.Rules.ByCategory(cat)
			}
			if asYAML {
				data, err := rules.Encode(list)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tRULE")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Category, r)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list rules of this category")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the rules in rule file format")
	return cmd
}

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sessions from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, cleanup, err := buildSystem(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer cleanup()

			journal := sys.Journal()
			if journal == nil {
				return fmt.Errorf("no journal configured: set journal.driver to sqlite")
			}
			sessions, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			counts, err := journal.Counts(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tOUTCOME\tGOAL\tANSWER")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Outcome, s.Goal, s.Answer)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nproved %d, fixpoint %d, bound exceeded %d, invalid %d\n",
				counts[store.Proved], counts[store.Fixpoint], counts[store.BoundExceeded], counts[store.Invalid])
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of sessions to show")
	return cmd
}

func printResult(w io.Writer, sys *mathgraph.System, res *mathgraph.Result, verify bool) error {
	fmt.Fprintln(w, res.Explanation)
	if !res.Proved() {
		return nil
	}
	if verify {
		if err := forward.Verify(sys.Rules(), res.Problem, res.Proof); err != nil {
			return err
		}
		fmt.Fprintln(w, "Proof verified.")
	}
	return nil
}
