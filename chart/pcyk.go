// Package chart implements the probabilistic CYK parser: a 3-D probability
// chart plus a parallel back-pointer chart, filled bottom-up and decoded
// into the maximum-probability derivation.
package chart

import (
	"fmt"
	"sort"

	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/grammar"
	"github.com/nihei9/pcyk/oov"
	"github.com/nihei9/pcyk/tree"
)

type bpKind byte

const (
	bpLeaf bpKind = iota
	bpUnary
	bpBinary
)

type backPointer struct {
	kind  bpKind
	split int // binary only
	b, c  grammar.Tag
	word  string // leaf only
}

// cell holds every tag with a nonzero derivation probability for one span,
// and its current best back-pointer. Using a sparse map keyed by tag rather
// than a dense [tags]float64 slice means the inductive fill's loops only
// ever visit tags that are actually present in a span.
type cell struct {
	score map[grammar.Tag]float64
	back  map[grammar.Tag]backPointer
}

func newCell() *cell {
	return &cell{score: map[grammar.Tag]float64{}, back: map[grammar.Tag]backPointer{}}
}

// update records (a, p, bp) in the cell if p strictly improves a's current
// score, and reports whether it did. Using strict improvement (not >=) is
// what makes the fixed-point unary sweep below terminate.
func (c *cell) update(a grammar.Tag, p float64, bp backPointer) bool {
	if cur, ok := c.score[a]; ok && p <= cur {
		return false
	}
	c.score[a] = p
	c.back[a] = bp
	return true
}

func (c *cell) sortedTags() []grammar.Tag {
	tags := make([]grammar.Tag, 0, len(c.score))
	for a := range c.score {
		tags = append(tags, a)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Chart is the PCYK probability/back-pointer table for one sentence. Only
// cells[i][j] with i < j are ever populated.
type Chart struct {
	n     int
	cells [][]*cell
}

func newChart(n int) *Chart {
	cells := make([][]*cell, n+1)
	for i := range cells {
		cells[i] = make([]*cell, n+1)
	}
	return &Chart{n: n, cells: cells}
}

func (ch *Chart) cell(i, j int) *cell {
	c := ch.cells[i][j]
	if c == nil {
		c = newCell()
		ch.cells[i][j] = c
	}
	return c
}

// FillOptions configures optional diagnostics for Fill.
type FillOptions struct {
	// OnOOVSubstitution, if non-nil, is called every time the leaf fill
	// substitutes an out-of-vocabulary word, with its 1-based position.
	OnOOVSubstitution func(original, substituted string, pos int)
}

// Fill builds and fills a chart for words against grammar g, resolving any
// out-of-vocabulary words through resolver.
func Fill(words []string, g *grammar.Grammar, resolver *oov.Resolver, opts FillOptions) (*Chart, error) {
	n := len(words)
	ch := newChart(n)

	for j := 1; j <= n; j++ {
		token := words[j-1]
		if _, ok := g.Lexicon[token]; !ok {
			var left, right *string
			if j-2 >= 0 {
				left = &words[j-2]
			}
			if j < n {
				right = &words[j]
			}
			substituted := resolver.Resolve(token, left, right)
			if opts.OnOOVSubstitution != nil {
				opts.OnOOVSubstitution(token, substituted, j)
			}
			token = substituted
		}
		c := ch.cell(j-1, j)
		for _, entry := range g.Lexicon[token] {
			c.update(entry.Tag, entry.Prob, backPointer{kind: bpLeaf, word: token})
		}
		// A preterminal can itself be the child of a unary chain (e.g. N ->
		// NC over a single token), so length-1 spans need the same
		// fixed-point unary sweep every longer span gets; skipping it here
		// would strand any tag that only a unary lift over the leaf can
		// reach, breaking coverage for single-word sentences and for any
		// higher rule that references the lifted tag.
		sweepUnary(c, g)
	}

	for length := 2; length <= n; length++ {
		for i := 0; i+length <= n; i++ {
			j := i + length
			cIJ := ch.cell(i, j)

			for k := i + 1; k < j; k++ {
				cIK, cKJ := ch.cell(i, k), ch.cell(k, j)
				for _, b := range cIK.sortedTags() {
					pb := cIK.score[b]
					for _, c := range cKJ.sortedTags() {
						pc := cKJ.score[c]
						for _, rule := range g.BinaryByChild[[2]grammar.Tag{b, c}] {
							cand := rule.Prob * pb * pc
							cIJ.update(rule.LHS, cand, backPointer{kind: bpBinary, split: k, b: b, c: c})
						}
					}
				}
			}

			sweepUnary(cIJ, g)
		}
	}

	return ch, nil
}

// sweepUnary applies unary rules to c to a fixed point: repeated passes over
// every tag currently in the cell until a pass adds or improves nothing.
// Sweeping rather than a single pass is what lets a unary chain of length > 1
// (including one rooted at a preterminal's own leaf span) fully propagate
// within one span.
func sweepUnary(c *cell, g *grammar.Grammar) {
	for {
		changed := false
		for _, b := range c.sortedTags() {
			pb := c.score[b]
			for _, rule := range g.UnaryByChild[b] {
				cand := rule.Prob * pb
				if c.update(rule.LHS, cand, backPointer{kind: bpUnary, b: b}) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

// Score returns T[0, n, id(SENT)], the sentence's derivation score, and
// whether SENT derives the whole sentence at all.
func (ch *Chart) Score(g *grammar.Grammar) (float64, bool) {
	sent, ok := g.SentTag()
	if !ok {
		return 0, false
	}
	c := ch.cells[0][ch.n]
	if c == nil {
		return 0, false
	}
	p, ok := c.score[sent]
	return p, ok && p > 0
}

// Extract reconstructs the best SENT derivation as a binary tree (still
// binarized: callers un-binarize via the tree package before printing).
// Returns perr.ErrNoDerivation if the sentence has no SENT derivation.
func Extract(ch *Chart, g *grammar.Grammar) (*tree.Node, error) {
	sent, ok := g.SentTag()
	if !ok {
		return nil, fmt.Errorf("%w: grammar has no SENT tag", perr.ErrUnknownTag)
	}
	score, ok := ch.Score(g)
	if !ok || score == 0 {
		return nil, perr.ErrNoDerivation
	}
	return ch.buildTree(0, ch.n, sent, g)
}

func (ch *Chart) buildTree(i, j int, a grammar.Tag, g *grammar.Grammar) (*tree.Node, error) {
	c := ch.cells[i][j]
	if c == nil {
		return nil, fmt.Errorf("%w: no cell for span [%d,%d)", perr.ErrUnknownTag, i, j)
	}
	bp, ok := c.back[a]
	if !ok {
		return nil, fmt.Errorf("%w: no back-pointer for %s at [%d,%d)", perr.ErrUnknownTag, g.Tags.Name(a), i, j)
	}
	switch bp.kind {
	case bpLeaf:
		return &tree.Node{Label: g.Tags.Name(a), Word: bp.word}, nil
	case bpUnary:
		child, err := ch.buildTree(i, j, bp.b, g)
		if err != nil {
			return nil, err
		}
		return &tree.Node{Label: g.Tags.Name(a), Children: []*tree.Node{child}}, nil
	case bpBinary:
		left, err := ch.buildTree(i, bp.split, bp.b, g)
		if err != nil {
			return nil, err
		}
		right, err := ch.buildTree(bp.split, j, bp.c, g)
		if err != nil {
			return nil, err
		}
		return &tree.Node{Label: g.Tags.Name(a), Children: []*tree.Node{left, right}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown back-pointer kind", perr.ErrUnknownTag)
	}
}

// Parse fills a chart for words and decodes the best derivation, un-
// binarizing the result. Returns perr.ErrNoDerivation if no SENT derivation
// exists; callers implement the fallback flat tree described in the error
// handling section themselves (it is a CLI-layer concern, not the chart's).
func Parse(words []string, g *grammar.Grammar, resolver *oov.Resolver, opts FillOptions) (*tree.Node, float64, error) {
	ch, err := Fill(words, g, resolver, opts)
	if err != nil {
		return nil, 0, err
	}
	score, ok := ch.Score(g)
	if !ok {
		return nil, 0, perr.ErrNoDerivation
	}
	n, err := Extract(ch, g)
	if err != nil {
		return nil, 0, err
	}
	return tree.Unbinarize(n), score, nil
}
