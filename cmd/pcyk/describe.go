package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nihei9/pcyk/spec"
)

type describeFlags struct {
	model string
}

func init() {
	flags := &describeFlags{}
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print grammar statistics for a compiled model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(flags)
		},
	}
	cmd.Flags().StringVar(&flags.model, "model", "", "compiled model file (required)")
	cmd.MarkFlagRequired("model")
	rootCmd.AddCommand(cmd)
}

func runDescribe(flags *describeFlags) error {
	modelFile, err := os.Open(flags.model)
	if err != nil {
		return fmt.Errorf("opening model file: %w", err)
	}
	defer modelFile.Close()

	m, err := spec.Read(modelFile)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}
	g, err := m.Grammar()
	if err != nil {
		return fmt.Errorf("rebuilding grammar: %w", err)
	}

	var ambiguitySum int
	for _, entries := range g.Lexicon {
		ambiguitySum += len(entries)
	}
	avgAmbiguity := 0.0
	if len(g.Lexicon) > 0 {
		avgAmbiguity = float64(ambiguitySum) / float64(len(g.Lexicon))
	}

	pterm.DefaultTable.WithData(pterm.TableData{
		{"tags", fmt.Sprint(g.Tags.Len())},
		{"binary rules", fmt.Sprint(len(g.BinaryRules))},
		{"unary rules", fmt.Sprint(len(g.UnaryRules))},
		{"lexicon tokens", fmt.Sprint(len(g.Lexicon))},
		{"average tags per token", fmt.Sprintf("%.3f", avgAmbiguity)},
		{"fingerprint", g.Fingerprint},
	}).Render()
	return nil
}
