package grammar

import (
	"fmt"
	"math"

	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/tree"
)

const epsilon = 1e-9

type binaryKey struct{ lhs, b, c Tag }
type unaryKey struct{ lhs, b Tag }
type lexKey struct {
	token string
	tag   Tag
}

// Estimator accumulates counts over a stream of already-parsed training
// trees and, on Build, derives the rule and lexicon probability tables
// described in the PCFG estimator's contract: count(A), count(A -> alpha),
// count(token), and count(token, tag).
type Estimator struct {
	tags *TagTable

	lhsCount      map[Tag]float64
	binaryCount   map[binaryKey]float64
	unaryCount    map[unaryKey]float64
	tokenCount    map[string]float64
	tokenTagCount map[lexKey]float64

	binaryOrder []binaryKey // first-seen order, for deterministic output
	unaryOrder  []unaryKey
	lexOrder    []lexKey
}

// NewEstimator returns an empty estimator with a fresh tag table.
func NewEstimator() *Estimator {
	return &Estimator{
		tags:          NewTagTable(),
		lhsCount:      map[Tag]float64{},
		binaryCount:   map[binaryKey]float64{},
		unaryCount:    map[unaryKey]float64{},
		tokenCount:    map[string]float64{},
		tokenTagCount: map[lexKey]float64{},
	}
}

// ParseTrainingTree parses and binarizes one training tree line, the first
// half of the estimator's per-tree contract ("strip the root wrapper,
// binarize, and walk every node").
func ParseTrainingTree(line string) (*tree.Node, error) {
	n, err := tree.Parse(line)
	if err != nil {
		return nil, err
	}
	return tree.Binarize(n), nil
}

// AddTree walks an already-binarized tree, recording one binary rule per
// arity-2 node, one unary rule per arity-1 node, and one lexicon entry per
// preterminal, wherever in the tree it occurs. A preterminal's lexicon entry
// is always credited to its own tag, never to whatever ancestor happens to
// dominate it, so the same tag's rule and lexicon mass land in the same
// lhsCount bucket (the thing invariant 1 checks).
func (e *Estimator) AddTree(root *tree.Node) error {
	return e.walk(root)
}

func (e *Estimator) walk(n *tree.Node) error {
	if n.IsPreterminal() {
		tag := e.tags.Intern(n.Label)
		k := lexKey{n.Word, tag}
		if _, ok := e.tokenTagCount[k]; !ok {
			e.lexOrder = append(e.lexOrder, k)
		}
		e.tokenTagCount[k]++
		e.tokenCount[n.Word]++
		e.lhsCount[tag]++
		return nil
	}
	lhs := e.tags.Intern(n.Label)
	switch len(n.Children) {
	case 2:
		b := e.tags.Intern(n.Children[0].Label)
		c := e.tags.Intern(n.Children[1].Label)
		k := binaryKey{lhs, b, c}
		if _, ok := e.binaryCount[k]; !ok {
			e.binaryOrder = append(e.binaryOrder, k)
		}
		e.binaryCount[k]++
		e.lhsCount[lhs]++
	case 1:
		b := e.tags.Intern(n.Children[0].Label)
		k := unaryKey{lhs, b}
		if _, ok := e.unaryCount[k]; !ok {
			e.unaryOrder = append(e.unaryOrder, k)
		}
		e.unaryCount[k]++
		e.lhsCount[lhs]++
	default:
		return fmt.Errorf("%w: node %q has %d children", perr.ErrArityExceeded, n.Label, len(n.Children))
	}
	for _, c := range n.Children {
		if err := e.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// Build finalizes the accumulated counts into a Grammar, checking the
// probability-sum invariants from the data model section along the way.
// Violations are aggregated into a single perr.Errors and returned rather
// than the first one found, so a caller sees every offending tag/token.
func (e *Estimator) Build() (*Grammar, error) {
	var errs perr.Errors

	g := &Grammar{
		Tags:          e.tags,
		BinaryByChild: map[[2]Tag][]BinaryRule{},
		UnaryByChild:  map[Tag][]UnaryRule{},
		RulesByLHS:    map[Tag]*LHSRules{},
		Lexicon:       map[string][]LexEntry{},
		TokenCount:    map[string]float64{},
	}

	lhsSum := map[Tag]float64{}

	for _, k := range e.binaryOrder {
		p := e.binaryCount[k] / e.lhsCount[k.lhs]
		if p < -epsilon || p > 1+epsilon {
			errs = append(errs, &perr.ParseError{Cause: fmt.Errorf("%w: P(%s -> %s %s) = %g", perr.ErrInconsistentProbability, e.tags.Name(k.lhs), e.tags.Name(k.b), e.tags.Name(k.c), p)})
			continue
		}
		r := BinaryRule{LHS: k.lhs, B: k.b, C: k.c, Prob: p}
		g.BinaryRules = append(g.BinaryRules, r)
		g.BinaryByChild[[2]Tag{k.b, k.c}] = append(g.BinaryByChild[[2]Tag{k.b, k.c}], r)
		lr := g.lhsRules(k.lhs)
		lr.Binary = append(lr.Binary, r)
		lhsSum[k.lhs] += p
	}

	for _, k := range e.unaryOrder {
		p := e.unaryCount[k] / e.lhsCount[k.lhs]
		if p < -epsilon || p > 1+epsilon {
			errs = append(errs, &perr.ParseError{Cause: fmt.Errorf("%w: P(%s -> %s) = %g", perr.ErrInconsistentProbability, e.tags.Name(k.lhs), e.tags.Name(k.b), p)})
			continue
		}
		r := UnaryRule{LHS: k.lhs, B: k.b, Prob: p}
		g.UnaryRules = append(g.UnaryRules, r)
		g.UnaryByChild[k.b] = append(g.UnaryByChild[k.b], r)
		lr := g.lhsRules(k.lhs)
		lr.Unary = append(lr.Unary, r)
		lhsSum[k.lhs] += p
	}

	for _, k := range e.lexOrder {
		posterior := e.tokenTagCount[k] / e.tokenCount[k.token]
		if posterior < -epsilon || posterior > 1+epsilon {
			errs = append(errs, &perr.ParseError{Cause: fmt.Errorf("%w: P(%s | %s) = %g", perr.ErrInconsistentProbability, k.token, e.tags.Name(k.tag), posterior)})
			continue
		}
		g.Lexicon[k.token] = append(g.Lexicon[k.token], LexEntry{Tag: k.tag, Prob: posterior})
		// The generative share of the same emission under its LHS total,
		// used only to check invariant 1 (Sigma P(A -> alpha) + Sigma
		// P(A -> t) == 1); the parser itself never reads this value, only
		// the posterior above (see the estimator's documented open
		// question on posterior vs. likelihood).
		lhsSum[k.tag] += e.tokenTagCount[k] / e.lhsCount[k.tag]
	}

	for t, c := range e.tokenCount {
		g.TokenCount[t] = c
	}

	for lhs, sum := range lhsSum {
		if e.lhsCount[lhs] == 0 {
			continue
		}
		if math.Abs(sum-1) > epsilon {
			errs = append(errs, &perr.ParseError{Cause: fmt.Errorf("%w: tag %s rule+lexicon probabilities sum to %g", perr.ErrInconsistentProbability, e.tags.Name(lhs), sum)})
		}
	}

	for token, entries := range g.Lexicon {
		var sum float64
		for _, en := range entries {
			sum += en.Prob
		}
		if math.Abs(sum-1) > epsilon {
			errs = append(errs, &perr.ParseError{Cause: fmt.Errorf("%w: token %q posterior tag probabilities sum to %g", perr.ErrInconsistentProbability, token, sum)})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	g.Fingerprint = fingerprint(g.Tags.Names())
	return g, nil
}
