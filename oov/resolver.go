// Package oov implements the out-of-vocabulary resolver: it maps an unseen
// token to the in-vocabulary token most likely to stand in for it, combining
// edit-distance candidates, bigram context, and embedding similarity.
package oov

import (
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	perr "github.com/nihei9/pcyk/error"
	"github.com/nihei9/pcyk/grammar"
	"github.com/nihei9/pcyk/lm"
)

// DefaultK is the default edit-distance threshold for candidate generation.
const DefaultK = 2

// DefaultLambda is the default weight the bigram score gets when mixed into
// the embedding-similarity vector.
const DefaultLambda = 1000.0

// Resolver implements the OOV substitution contract. Embedding may be nil if
// no embedding file was loaded, in which case every word falls through to
// the not-in-embedding-vocab branch.
type Resolver struct {
	Grammar   *grammar.Grammar
	Bigram    *lm.Bigram
	Embedding *lm.Embedding
	K         int
	Lambda    float64

	tokens  []string       // lexicon tokens, sorted: tokens[id] is the token with that id
	tokenID map[string]int // token -> id, the inverse of tokens
}

// NewResolver builds a resolver over a grammar's lexicon. Token ids are
// assigned by sorting the lexicon's tokens, so that "lowest token id" tie-
// breaking is reproducible across runs without depending on map iteration
// order.
func NewResolver(g *grammar.Grammar, b *lm.Bigram, e *lm.Embedding) (*Resolver, error) {
	if len(g.Lexicon) == 0 {
		return nil, perr.ErrEmptyLexicon
	}
	tokens := make([]string, 0, len(g.Lexicon))
	for t := range g.Lexicon {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	tokenID := make(map[string]int, len(tokens))
	for i, t := range tokens {
		tokenID[t] = i
	}
	return &Resolver{
		Grammar: g, Bigram: b, Embedding: e,
		K: DefaultK, Lambda: DefaultLambda,
		tokens: tokens, tokenID: tokenID,
	}, nil
}

// candidates returns every lexicon token within edit distance K of w, as a
// set of token ids. Using a treeset ordered by utils.IntComparator (the way
// the retrieval pack's LR table builder orders its state worklist) makes
// iteration order deterministic by construction rather than incidental map
// order, which is what gives the tie-break its "lowest token id" guarantee.
func (r *Resolver) candidates(w string) []string {
	set := treeset.NewWith(utils.IntComparator)
	for _, t := range r.tokens {
		if lm.DamerauLevenshtein(w, t) <= r.K {
			set.Add(r.tokenID[t])
		}
	}
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, r.tokens[v.(int)])
	}
	return out
}

// leftFactor returns B[id(ℓ), id(c)]: ℓ precedes candidate c. ℓ = nil means
// sentence start (a boundary lookup); ℓ present but outside the lexicon
// yields a factor of 1 rather than a boundary lookup — the reference's
// prev_word-is-None-vs-unknown distinction, preserved here rather than
// "corrected".
func (r *Resolver) leftFactor(left *string, c string) float64 {
	if left == nil {
		u, _ := r.Bigram.ID(lm.Boundary)
		v, _ := r.Bigram.ID(c)
		return r.Bigram.P(u, v)
	}
	u, inLexicon := r.Bigram.ID(*left)
	if !inLexicon {
		return 1
	}
	v, _ := r.Bigram.ID(c)
	return r.Bigram.P(u, v)
}

// rightFactor returns B[id(c), id(r)]: candidate c precedes its right
// neighbour r, symmetric to leftFactor but with the bigram direction
// reversed.
func (r *Resolver) rightFactor(right *string, c string) float64 {
	u, _ := r.Bigram.ID(c)
	if right == nil {
		v, _ := r.Bigram.ID(lm.Boundary)
		return r.Bigram.P(u, v)
	}
	v, inLexicon := r.Bigram.ID(*right)
	if !inLexicon {
		return 1
	}
	return r.Bigram.P(u, v)
}

func (r *Resolver) bigramScore(left, right *string, c string) float64 {
	return r.leftFactor(left, c) * r.rightFactor(right, c)
}

// bigramScores computes the combined bigram score for every candidate, then
// applies the renormalisation rule: if every candidate scored exactly 1
// (both context words unknown), scores are replaced by each candidate's raw
// lexicon count and renormalised to sum to 1.
func (r *Resolver) bigramScores(left, right *string, cands []string) map[string]float64 {
	scores := make(map[string]float64, len(cands))
	var sum float64
	for _, c := range cands {
		s := r.bigramScore(left, right, c)
		scores[c] = s
		sum += s
	}
	if sum == float64(len(cands)) {
		var total float64
		for _, c := range cands {
			total += r.Grammar.TokenCount[c]
		}
		if total > 0 {
			for _, c := range cands {
				scores[c] = r.Grammar.TokenCount[c] / total
			}
		}
	}
	return scores
}

// argmax returns the candidate token with the largest score, breaking ties
// by lowest token id.
func (r *Resolver) argmax(scores map[string]float64) string {
	best := ""
	bestScore := 0.0
	bestID := -1
	first := true
	for token, score := range scores {
		id := r.tokenID[token]
		if first || score > bestScore || (score == bestScore && id < bestID) {
			best, bestScore, bestID, first = token, score, id, false
		}
	}
	return best
}

// Resolve maps an unseen word w, with its left/right neighbours (nil at a
// sentence boundary), to a single in-vocabulary token.
func (r *Resolver) Resolve(w string, left, right *string) string {
	cands := r.candidates(w)

	if r.Embedding != nil {
		wPrime := r.Embedding.Normalize(w)
		if r.Embedding.Has(wPrime) {
			sim := make(map[string]float64, len(r.tokens))
			for _, t := range r.tokens {
				tPrime := r.Embedding.Normalize(t)
				if r.Embedding.Has(tPrime) {
					sim[t] = r.Embedding.Cosine(wPrime, tPrime)
				} else {
					sim[t] = 0
				}
			}
			if len(cands) == 0 {
				return r.argmax(sim)
			}
			bg := r.bigramScores(left, right, cands)
			for _, c := range cands {
				sim[c] += r.Lambda * bg[c]
			}
			return r.argmax(sim)
		}
	}

	if len(cands) == 0 {
		cands = r.tokens
	}
	return r.argmax(r.bigramScores(left, right, cands))
}
