package main

import (
	"fmt"
	"os"

	"github.com/nihei9/pcyk/grammar"
	"github.com/nihei9/pcyk/lm"
	"github.com/nihei9/pcyk/oov"
	"github.com/nihei9/pcyk/spec"
)

// loadSession opens a compiled model (and, if embeddingsPath is non-empty,
// an embedding file) and assembles the grammar/bigram/resolver triple a
// parse or repl session needs.
func loadSession(modelPath, embeddingsPath string) (*grammar.Grammar, *oov.Resolver, error) {
	modelFile, err := os.Open(modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening model file: %w", err)
	}
	defer modelFile.Close()

	m, err := spec.Read(modelFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading model file: %w", err)
	}

	g, err := m.Grammar()
	if err != nil {
		return nil, nil, fmt.Errorf("rebuilding grammar: %w", err)
	}
	bigram, err := m.Bigram()
	if err != nil {
		return nil, nil, fmt.Errorf("rebuilding bigram model: %w", err)
	}

	var embedding *lm.Embedding
	if embeddingsPath != "" {
		embFile, err := os.Open(embeddingsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening embedding file: %w", err)
		}
		defer embFile.Close()
		embedding, err = lm.LoadEmbedding(embFile)
		if err != nil {
			return nil, nil, fmt.Errorf("reading embedding file: %w", err)
		}
	}

	resolver, err := oov.NewResolver(g, bigram, embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("building OOV resolver: %w", err)
	}
	return g, resolver, nil
}
