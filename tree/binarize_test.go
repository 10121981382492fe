package tree

import (
	"reflect"
	"strings"
	"testing"
)

func TestBinarizeArity(t *testing.T) {
	n := &Node{Label: "NP", Children: []*Node{
		{Label: "DET", Word: "le"},
		{Label: "ADJ", Word: "petit"},
		{Label: "N", Word: "chat"},
		{Label: "PP", Word: "noir"},
	}}
	b := Binarize(n)
	var checkArity func(*Node)
	checkArity = func(node *Node) {
		if !node.IsPreterminal() && len(node.Children) > 2 {
			t.Fatalf("node %q has arity %d after binarization", node.Label, len(node.Children))
		}
		for _, c := range node.Children {
			checkArity(c)
		}
	}
	checkArity(b)
}

func TestBinarizeUnbinarizeRoundTrip(t *testing.T) {
	tests := []string{
		"((SENT (NP (DET le) (N chat)) (VN (V dort))))",
		"((SENT (VP (V mange) (NP (DET le) (ADJ petit) (N chat) (PP noir)))))",
		"((SENT (NP (N chat))))",
		// Arity 5: exercises two nested folds, so a binarization scheme that
		// reuses the same synthetic label at every depth (rather than
		// deepening it per level) would leave an interior synthetic node
		// unspliced here.
		"((SENT (NP (DET le) (ADJ petit) (ADJ vieux) (N chat) (PP noir))))",
	}
	for _, line := range tests {
		orig, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		got := Unbinarize(Binarize(orig))
		if !reflect.DeepEqual(got, orig) {
			t.Errorf("Unbinarize(Binarize(%q)) = %+v, want %+v", line, got, orig)
		}
	}
}

// No synthetic, Delim-suffixed label may survive into the un-binarized
// output: every interior node a fold introduces must be spliced away,
// however deeply nested.
func TestUnbinarizeLeavesNoSyntheticLabel(t *testing.T) {
	line := "((SENT (NP (DET le) (ADJ petit) (ADJ vieux) (N chat) (PP noir))))"
	orig, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	got := Unbinarize(Binarize(orig))
	var check func(*Node)
	check = func(n *Node) {
		if !n.IsPreterminal() && strings.HasSuffix(n.Label, Delim) {
			t.Errorf("synthetic label %q leaked into un-binarized output", n.Label)
		}
		for _, c := range n.Children {
			check(c)
		}
	}
	check(got)
}

func TestBinarizePreservesGenuineUnary(t *testing.T) {
	n := &Node{Label: "VP", Children: []*Node{
		{Label: "V", Word: "dort"},
	}}
	b := Binarize(n)
	if b.Label != "VP" || len(b.Children) != 1 || b.Children[0].Label != "V" {
		t.Errorf("Binarize collapsed a genuine unary node: %+v", b)
	}
}
