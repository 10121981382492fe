package grammar

import (
	"fmt"

	"github.com/cnf/structhash"

	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/tree"
)

// BinaryRule is a grammar production A -> B C with its MLE probability.
type BinaryRule struct {
	LHS, B, C Tag
	Prob      float64
}

// UnaryRule is a grammar production A -> B with its MLE probability.
type UnaryRule struct {
	LHS, B Tag
	Prob   float64
}

// LexEntry is a (tag, posterior probability) pair for one lexicon token, as
// used directly by the chart's leaf fill: Prob is count(t, tag) / count(t),
// not the classical emission likelihood (see the estimator's documented
// open question on posterior vs. likelihood).
type LexEntry struct {
	Tag  Tag
	Prob float64
}

// LHSRules groups a tag's binary and unary rules together, the "rules
// grouped by LHS" index the data model calls for.
type LHSRules struct {
	Binary []BinaryRule
	Unary  []UnaryRule
}

// Grammar is the immutable output of Estimator.Build: rule and lexicon
// probability tables plus the derived indexes the PCYK chart and the OOV
// resolver read from.
type Grammar struct {
	Tags *TagTable

	BinaryRules []BinaryRule
	UnaryRules  []UnaryRule

	// BinaryByChild indexes binary rules by their (B, C) child pair, the
	// shape the chart's inductive fill probes when combining two already
	// filled spans.
	BinaryByChild map[[2]Tag][]BinaryRule

	// UnaryByChild indexes unary rules by their single child tag B, read
	// whenever a cell for B changes during the per-span unary sweep.
	UnaryByChild map[Tag][]UnaryRule

	// RulesByLHS is the rhss_by_lhs derived index from the data model. The
	// chart does not read it; the estimator tests do.
	RulesByLHS map[Tag]*LHSRules

	// Lexicon maps a token to every tag that can emit it, with the
	// posterior probability the chart's leaf fill multiplies in directly.
	Lexicon map[string][]LexEntry

	// TokenCount is count(token t) across the whole lexicon, read by the
	// OOV resolver's bigram-score renormalisation fallback.
	TokenCount map[string]float64

	// Fingerprint identifies the tag vocabulary and binarization delimiter
	// this grammar was built with. A compiled model stores it at training
	// time and a parser re-checks it at load time, giving §4.1's "the
	// chosen binarization scheme is part of the grammar contract" a
	// concrete, checkable form.
	Fingerprint string
}

func (g *Grammar) lhsRules(lhs Tag) *LHSRules {
	lr, ok := g.RulesByLHS[lhs]
	if !ok {
		lr = &LHSRules{}
		g.RulesByLHS[lhs] = lr
	}
	return lr
}

// SentTag returns the id of the distinguished sentence-root tag, or false if
// the grammar never saw one (an empty or malformed training corpus).
func (g *Grammar) SentTag() (Tag, bool) {
	return g.Tags.Lookup("SENT")
}

// FromParts rebuilds a Grammar and its derived indexes from the flat parts a
// compiled model stores on disk: the tag vocabulary in id order, the rule
// lists, and the lexicon. Every tag referenced by a rule or lexicon entry
// must be within the vocabulary, the data model's bijection invariant;
// violating it is ErrUnknownTag, a fatal, programmer-error class failure
// rather than something a caller recovers from per sentence.
func FromParts(tagNames []string, binary []BinaryRule, unary []UnaryRule, lexicon map[string][]LexEntry, tokenCount map[string]float64, wantFingerprint string) (*Grammar, error) {
	tags := TagTableFromNames(tagNames)
	valid := func(t Tag) bool { return t >= 0 && int(t) < tags.Len() }

	g := &Grammar{
		Tags:          tags,
		BinaryRules:   binary,
		UnaryRules:    unary,
		BinaryByChild: map[[2]Tag][]BinaryRule{},
		UnaryByChild:  map[Tag][]UnaryRule{},
		RulesByLHS:    map[Tag]*LHSRules{},
		Lexicon:       lexicon,
		TokenCount:    tokenCount,
	}

	for _, r := range binary {
		if !valid(r.LHS) || !valid(r.B) || !valid(r.C) {
			return nil, fmt.Errorf("%w: binary rule references a tag outside the vocabulary", perr.ErrUnknownTag)
		}
		g.BinaryByChild[[2]Tag{r.B, r.C}] = append(g.BinaryByChild[[2]Tag{r.B, r.C}], r)
		lr := g.lhsRules(r.LHS)
		lr.Binary = append(lr.Binary, r)
	}
	for _, r := range unary {
		if !valid(r.LHS) || !valid(r.B) {
			return nil, fmt.Errorf("%w: unary rule references a tag outside the vocabulary", perr.ErrUnknownTag)
		}
		g.UnaryByChild[r.B] = append(g.UnaryByChild[r.B], r)
		lr := g.lhsRules(r.LHS)
		lr.Unary = append(lr.Unary, r)
	}
	for token, entries := range lexicon {
		for _, e := range entries {
			if !valid(e.Tag) {
				return nil, fmt.Errorf("%w: lexicon entry for %q references a tag outside the vocabulary", perr.ErrUnknownTag, token)
			}
		}
	}

	g.Fingerprint = fingerprint(tags.Names())
	if wantFingerprint != "" && g.Fingerprint != wantFingerprint {
		return nil, fmt.Errorf("%w: compiled model fingerprint does not match the rebuilt grammar", perr.ErrInconsistentProbability)
	}
	return g, nil
}

// fingerprint hashes the tag vocabulary, in id order, together with the
// binarization delimiter, using the same structhash.Hash(v, 1) call the
// retrieval pack's Earley parser uses to fingerprint grammars.
func fingerprint(tagNames []string) string {
	v := struct {
		Tags  []string
		Delim string
	}{
		Tags:  tagNames,
		Delim: tree.Delim,
	}
	h, err := structhash.Hash(v, 1)
	if err != nil {
		// structhash.Hash only fails on unsupported field types; v is a
		// struct of strings and a string slice, always supported.
		panic(err)
	}
	return h
}
