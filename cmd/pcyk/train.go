package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nihei9/pcyk/grammar"
	"github.com/nihei9/pcyk/lm"
	"github.com/nihei9/pcyk/spec"
)

type trainFlags struct {
	trees     string
	sentences string
	out       string
	verbose   bool
}

func init() {
	flags := &trainFlags{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Estimate a PCFG and bigram model from a treebank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(flags)
		},
	}
	cmd.Flags().StringVar(&flags.trees, "trees", "", "training tree file (required)")
	cmd.Flags().StringVar(&flags.sentences, "sentences", "", "training sentence file (required)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output compiled model path (required)")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "log every skipped training tree")
	cmd.MarkFlagRequired("trees")
	cmd.MarkFlagRequired("sentences")
	cmd.MarkFlagRequired("out")
	rootCmd.AddCommand(cmd)
}

func runTrain(flags *trainFlags) error {
	treeFile, err := os.Open(flags.trees)
	if err != nil {
		return fmt.Errorf("opening tree file: %w", err)
	}
	defer treeFile.Close()

	e := grammar.NewEstimator()
	scanner := bufio.NewScanner(treeFile)
	row := 0
	skipped := 0
	for scanner.Scan() {
		row++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		tr, err := grammar.ParseTrainingTree(line)
		if err != nil {
			skipped++
			if flags.verbose {
				pterm.Warning.Printfln("line %d: skipped: %v", row, err)
			}
			continue
		}
		if err := e.AddTree(tr); err != nil {
			skipped++
			if flags.verbose {
				pterm.Warning.Printfln("line %d: skipped: %v", row, err)
			}
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading tree file: %w", err)
	}

	g, err := e.Build()
	if err != nil {
		return fmt.Errorf("building grammar: %w", err)
	}

	sentenceFile, err := os.Open(flags.sentences)
	if err != nil {
		return fmt.Errorf("opening sentence file: %w", err)
	}
	defer sentenceFile.Close()

	vocab := make([]string, 0, len(g.Lexicon))
	for t := range g.Lexicon {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)

	bigram, err := lm.BuildBigram(sentenceFile, vocab)
	if err != nil {
		return fmt.Errorf("building bigram model: %w", err)
	}

	m, err := spec.Build(g, bigram)
	if err != nil {
		return fmt.Errorf("compiling model: %w", err)
	}

	out, err := os.Create(flags.out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()
	if err := m.Write(out); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}

	pterm.Success.Printfln(
		"trained grammar: %d tags, %d binary rules, %d unary rules, %d lexicon tokens (%d training trees skipped)",
		g.Tags.Len(), len(g.BinaryRules), len(g.UnaryRules), len(g.Lexicon), skipped,
	)
	return nil
}
