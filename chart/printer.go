package chart

import (
	"fmt"
	"io"

	"github.com/nihei9/pcyk/tree"
)

// Print renders a parsed, already un-binarized tree to the bracket output
// format: a single outer parenthesis pair, TAG-first nodes, single-space
// separation between a tag and its children and between siblings, leaf
// tokens rendered as the raw surface word.
func Print(n *tree.Node) string {
	return n.Bracket()
}

// PrintTree writes a human-readable box-drawing rendering of n to w, the
// same shape the grammar-compiler CLI's semantic-action printer uses for
// debug output. It is not part of the parse-output contract; the REPL uses
// it for inspection.
func PrintTree(w io.Writer, n *tree.Node) {
	printTree(w, n, "", true)
}

func printTree(w io.Writer, n *tree.Node, prefix string, root bool) {
	label := n.Label
	if n.IsPreterminal() {
		label = fmt.Sprintf("%s %q", n.Label, n.Word)
	}
	if root {
		fmt.Fprintln(w, label)
	}
	for i, c := range n.Children {
		last := i == len(n.Children)-1
		branch := "├── "
		nextPrefix := prefix + "│   "
		if last {
			branch = "└── "
			nextPrefix = prefix + "    "
		}
		childLabel := c.Label
		if c.IsPreterminal() {
			childLabel = fmt.Sprintf("%s %q", c.Label, c.Word)
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, childLabel)
		if !c.IsPreterminal() {
			printTree(w, c, nextPrefix, false)
		}
	}
}
