package lm

import (
	"math"
	"strings"
	"testing"
)

// S4
func TestBuildBigramRowSum(t *testing.T) {
	b, err := BuildBigram(strings.NewReader("a b\na c\n"), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BuildBigram: %v", err)
	}
	aID, _ := b.ID("a")
	bID, _ := b.ID("b")
	cID, _ := b.ID("c")

	if got := b.P(aID, bID); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("P(b|a) = %g, want 0.5", got)
	}
	if got := b.P(aID, cID); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("P(c|a) = %g, want 0.5", got)
	}

	var sum float64
	for v := 0; v < b.Vocab(); v++ {
		sum += b.P(aID, v)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("row for 'a' sums to %g, want 1", sum)
	}
}

// Invariant 3: every row sums to 0 or 1.
func TestBigramRowsSumToZeroOrOne(t *testing.T) {
	b, err := BuildBigram(strings.NewReader("a b\n"), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BuildBigram: %v", err)
	}
	for u := 0; u < b.Vocab(); u++ {
		var sum float64
		for v := 0; v < b.Vocab(); v++ {
			sum += b.P(u, v)
		}
		if math.Abs(sum) > 1e-9 && math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %g, want 0 or 1", u, sum)
		}
	}
}

func TestBuildBigramUnknownToken(t *testing.T) {
	_, err := BuildBigram(strings.NewReader("a z\n"), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected an error for a token outside the lexicon")
	}
}
