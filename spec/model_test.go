package spec

import (
	"math"
	"strings"
	"testing"

	"github.com/nihei9/pcyk/grammar"
	"github.com/nihei9/pcyk/lm"
)

func buildTestModel(t *testing.T) *Model {
	t.Helper()
	e := grammar.NewEstimator()
	tr, err := grammar.ParseTrainingTree("((SENT (NP (DET the) (N cat)) (VN (V sleeps))))")
	if err != nil {
		t.Fatalf("ParseTrainingTree: %v", err)
	}
	if err := e.AddTree(tr); err != nil {
		t.Fatalf("AddTree: %v", err)
	}
	g, err := e.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := lm.BuildBigram(strings.NewReader("the cat sleeps\n"), []string{"the", "cat", "sleeps"})
	if err != nil {
		t.Fatalf("BuildBigram: %v", err)
	}
	m, err := Build(g, b)
	if err != nil {
		t.Fatalf("Build(model): %v", err)
	}
	return m
}

func TestModelRoundtrip(t *testing.T) {
	m := buildTestModel(t)
	got, err := roundtrip(m)
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}

	g, err := got.Grammar()
	if err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	if _, ok := g.SentTag(); !ok {
		t.Fatal("rebuilt grammar has no SENT tag")
	}

	b, err := got.Bigram()
	if err != nil {
		t.Fatalf("Bigram: %v", err)
	}
	u, _ := b.ID("the")
	v, _ := b.ID("cat")
	if got := b.P(u, v); math.Abs(got-1) > 1e-6 {
		t.Errorf("P(cat|the) = %g, want ~1", got)
	}
}

func TestModelFingerprintMismatch(t *testing.T) {
	m := buildTestModel(t)
	m.Fingerprint = "corrupt"
	if _, err := m.Grammar(); err == nil {
		t.Fatal("expected a fingerprint mismatch error")
	}
}
