// Package spec defines the compiled training artifact: the grammar and bigram
// model serialized into a single file a later "pcyk parse" invocation loads,
// with a structhash fingerprint tying the two runs to the same binarization
// contract. The embedding store is not part of it; it is read from its own
// file at parse time.
package spec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"math"

	"github.com/nihei9/pcyk/compressor"
	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/grammar"
	"github.com/nihei9/pcyk/lm"
)

// bigramScale is the fixed-point scale the bigram matrix is quantized to
// before compression; transition probabilities lie in [0, 1], so this gives
// roughly 7 significant decimal digits of precision.
const bigramScale = 1 << 24

// Model is the serializable form of a trained grammar + bigram model. Tags
// are stored as a flat name list in id order rather than the grammar's
// *TagTable directly, since the table's fields are unexported; FromParts
// rebuilds the table (and every derived index) from this shape on load.
type Model struct {
	Fingerprint string

	Tags        []string
	BinaryRules []grammar.BinaryRule
	UnaryRules  []grammar.UnaryRule
	Lexicon     map[string][]grammar.LexEntry
	TokenCount  map[string]float64

	BigramVocab []string // id order; last entry is lm.Boundary
	BigramTable *compressor.UniqueEntriesTable
	BigramScale int
}

// Build compresses a trained grammar and bigram into a Model ready to write.
// Most rows of the bigram matrix are either a single left-context token's
// transition distribution or the all-zero row of a token that is never a
// left context, which is exactly the repeated-row pattern
// compressor.UniqueEntriesTable exists to exploit.
func Build(g *grammar.Grammar, b *lm.Bigram) (*Model, error) {
	vocab := b.VocabNames()
	matrix := b.Matrix()
	entries := make([]int, 0, len(vocab)*len(vocab))
	for _, row := range matrix {
		for _, p := range row {
			entries = append(entries, int(math.Round(p*bigramScale)))
		}
	}
	orig, err := compressor.NewOriginalTable(entries, len(vocab))
	if err != nil {
		return nil, fmt.Errorf("compressing bigram matrix: %w", err)
	}
	table := compressor.NewUniqueEntriesTable()
	if err := table.Compress(orig); err != nil {
		return nil, fmt.Errorf("compressing bigram matrix: %w", err)
	}

	return &Model{
		Fingerprint: g.Fingerprint,
		Tags:        g.Tags.Names(),
		BinaryRules: g.BinaryRules,
		UnaryRules:  g.UnaryRules,
		Lexicon:     g.Lexicon,
		TokenCount:  g.TokenCount,
		BigramVocab: vocab,
		BigramTable: table,
		BigramScale: bigramScale,
	}, nil
}

// Write gob-encodes m to w.
func (m *Model) Write(w io.Writer) error {
	return gob.NewEncoder(w).Encode(m)
}

// Read decodes a Model previously written by Write.
func Read(r io.Reader) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Grammar rebuilds the *grammar.Grammar this model was built from, checking
// its fingerprint against the freshly rebuilt vocabulary.
func (m *Model) Grammar() (*grammar.Grammar, error) {
	return grammar.FromParts(m.Tags, m.BinaryRules, m.UnaryRules, m.Lexicon, m.TokenCount, m.Fingerprint)
}

// Bigram decompresses the bigram matrix and rebuilds a *lm.Bigram.
func (m *Model) Bigram() (*lm.Bigram, error) {
	n := len(m.BigramVocab)
	matrix := make([][]float64, n)
	for row := 0; row < n; row++ {
		matrix[row] = make([]float64, n)
		for col := 0; col < n; col++ {
			v, err := m.BigramTable.Lookup(row, col)
			if err != nil {
				return nil, fmt.Errorf("%w: decompressing bigram matrix: %v", perr.ErrInconsistentProbability, err)
			}
			matrix[row][col] = float64(v) / float64(m.BigramScale)
		}
	}
	return lm.NewBigramFromMatrix(m.BigramVocab, matrix), nil
}

// roundtrip is a convenience used by tests: encode m to an in-memory buffer
// and decode it back.
func roundtrip(m *Model) (*Model, error) {
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		return nil, err
	}
	return Read(&buf)
}
