package main

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nihei9/pcyk/chart"
	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/oov"
)

type replFlags struct {
	model      string
	embeddings string
	k          int
	lambda     float64
}

func init() {
	flags := &replFlags{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse one sentence at a time against a compiled model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(flags)
		},
	}
	cmd.Flags().StringVar(&flags.model, "model", "", "compiled model file (required)")
	cmd.Flags().StringVar(&flags.embeddings, "embeddings", "", "embedding file (optional)")
	cmd.Flags().IntVar(&flags.k, "k", oov.DefaultK, "edit-distance threshold for OOV candidates")
	cmd.Flags().Float64Var(&flags.lambda, "lambda", oov.DefaultLambda, "bigram weight mixed into embedding similarity")
	cmd.MarkFlagRequired("model")
	rootCmd.AddCommand(cmd)
}

func runRepl(flags *replFlags) error {
	g, resolver, err := loadSession(flags.model, flags.embeddings)
	if err != nil {
		return err
	}
	resolver.K = flags.k
	resolver.Lambda = flags.lambda

	rl, err := readline.New("pcyk> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Printfln("loaded grammar with %d tags; type a sentence, Ctrl-D to quit", g.Tags.Len())

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		var subs []string
		opts := chart.FillOptions{
			OnOOVSubstitution: func(original, substituted string, pos int) {
				subs = append(subs, original+" -> "+substituted)
			},
		}
		result, score, err := chart.Parse(words, g, resolver, opts)
		for _, s := range subs {
			pterm.Info.Printfln("OOV substitution: %s", s)
		}
		if errors.Is(err, perr.ErrNoDerivation) {
			pterm.Warning.Println("no derivation")
			continue
		}
		if err != nil {
			pterm.Error.Printfln("%v", err)
			continue
		}
		pterm.Success.Printfln("score: %g", score)
		chart.PrintTree(rl.Stdout(), result)
	}
}
