package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nihei9/pcyk/chart"
	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/oov"
)

type parseFlags struct {
	model      string
	embeddings string
	input      string
	out        string
	k          int
	lambda     float64
	verbose    bool
}

func init() {
	flags := &parseFlags{}
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a test file against a compiled model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(flags)
		},
	}
	cmd.Flags().StringVar(&flags.model, "model", "", "compiled model file (required)")
	cmd.Flags().StringVar(&flags.embeddings, "embeddings", "", "embedding file (optional)")
	cmd.Flags().StringVar(&flags.input, "input", "", "test sentence file (required)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output file (default stdout)")
	cmd.Flags().IntVar(&flags.k, "k", oov.DefaultK, "edit-distance threshold for OOV candidates")
	cmd.Flags().Float64Var(&flags.lambda, "lambda", oov.DefaultLambda, "bigram weight mixed into embedding similarity")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "log every OOV substitution and fallback")
	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("input")
	rootCmd.AddCommand(cmd)
}

func runParse(flags *parseFlags) error {
	g, resolver, err := loadSession(flags.model, flags.embeddings)
	if err != nil {
		return err
	}
	resolver.K = flags.k
	resolver.Lambda = flags.lambda

	in, err := os.Open(flags.input)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	out := os.Stdout
	if flags.out != "" {
		f, err := os.Create(flags.out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	scanner := bufio.NewScanner(in)
	row := 0
	for scanner.Scan() {
		row++
		words := strings.Fields(scanner.Text())
		if len(words) == 0 {
			fmt.Fprintln(out)
			continue
		}

		opts := chart.FillOptions{}
		if flags.verbose {
			opts.OnOOVSubstitution = func(original, substituted string, pos int) {
				pterm.Info.Printfln("line %d: substituted OOV word %q with %q at position %d", row, original, substituted, pos)
			}
		}

		result, _, err := chart.Parse(words, g, resolver, opts)
		if errors.Is(err, perr.ErrNoDerivation) {
			if flags.verbose {
				pterm.Warning.Printfln("line %d: no derivation, falling back to a flat tree", row)
			}
			fmt.Fprintf(out, "(SENT %s)\n", strings.Join(words, " "))
			continue
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", row, err)
		}
		fmt.Fprintln(out, chart.Print(result))
	}
	return scanner.Err()
}
