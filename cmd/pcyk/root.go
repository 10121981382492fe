package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pcyk",
	Short: "Train and run a probabilistic constituency parser",
	Long: `pcyk provides four subcommands:
- train: estimate a PCFG and bigram model from a treebank into a compiled model.
- parse: parse a test file against a compiled model.
- describe: print grammar statistics for a compiled model.
- repl: an interactive, one-sentence-at-a-time parsing session.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
