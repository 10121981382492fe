package grammar

import (
	"errors"
	"math"
	"testing"

	perr "github.com/nihei9/pcyk/error"
)

func buildFromLines(t *testing.T, lines []string) *Grammar {
	t.Helper()
	e := NewEstimator()
	for _, line := range lines {
		tr, err := ParseTrainingTree(line)
		if err != nil {
			t.Fatalf("ParseTrainingTree(%q): %v", line, err)
		}
		if err := e.AddTree(tr); err != nil {
			t.Fatalf("AddTree(%q): %v", line, err)
		}
	}
	g, err := e.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestEstimatorS1Grammar(t *testing.T) {
	g := buildFromLines(t, []string{
		"((SENT (NP (DET the) (N cat)) (VN (V sleeps))))",
	})

	sent, ok := g.SentTag()
	if !ok {
		t.Fatalf("SENT tag not interned")
	}
	lr := g.RulesByLHS[sent]
	if lr == nil || len(lr.Binary) != 1 {
		t.Fatalf("expected exactly one binary rule under SENT, got %+v", lr)
	}
	if lr.Binary[0].Prob != 1 {
		t.Errorf("SENT -> NP VN probability = %g, want 1", lr.Binary[0].Prob)
	}

	for _, token := range []string{"the", "cat", "sleeps"} {
		entries, ok := g.Lexicon[token]
		if !ok || len(entries) == 0 {
			t.Fatalf("no lexicon entry for %q", token)
		}
		if entries[0].Prob != 1 {
			t.Errorf("P(tag | %q) = %g, want 1 (only one emitting tag)", token, entries[0].Prob)
		}
	}
}

// Invariant 1: for every tag A with count(A) > 0, the rule and lexicon
// probabilities under A sum to 1 within epsilon.
func TestEstimatorInvariantLHSSumsToOne(t *testing.T) {
	g := buildFromLines(t, []string{
		"((SENT (NP (DET the) (N cat)) (VN (V sleeps))))",
		"((SENT (NP (DET the) (N dog)) (VN (V runs))))",
		"((SENT (NP (DET a) (N cat)) (VN (V runs))))",
	})

	for lhs, lr := range g.RulesByLHS {
		var sum float64
		for _, r := range lr.Binary {
			sum += r.Prob
		}
		for _, r := range lr.Unary {
			sum += r.Prob
		}
		if sum == 0 {
			continue // lexicon-only LHS; its share is checked inside Build
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("tag %s: rule probabilities sum to %g, want ~1", g.Tags.Name(lhs), sum)
		}
	}
}

// Invariant 2: for every token t, Sigma_A P(t|A) = 1 under the posterior
// formulation actually used by the parser.
func TestEstimatorInvariantTokenPosteriorSumsToOne(t *testing.T) {
	g := buildFromLines(t, []string{
		"((SENT (NP (DET the) (N cat)) (VN (V sleeps))))",
		"((SENT (NP (DET the) (N dog)) (VN (V sleeps))))",
	})
	for token, entries := range g.Lexicon {
		var sum float64
		for _, e := range entries {
			sum += e.Prob
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("token %q: posterior tag probabilities sum to %g, want 1", token, sum)
		}
	}
}

func TestEstimatorMalformedTree(t *testing.T) {
	_, err := ParseTrainingTree("(SENT (NP (DET the)))")
	if err == nil {
		t.Fatal("expected a malformed-tree error")
	}
	if !errors.Is(err, perr.ErrMalformedTree) {
		t.Errorf("error %v does not wrap ErrMalformedTree", err)
	}
}
