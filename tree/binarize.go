package tree

// Delim is the reversible-join marker used to reduce arity-N (N>2) nodes to
// the binary-or-unary shape the PCFG estimator and PCYK chart require. A node
// with label L and children C1..Cn (n>=3) is right-folded into a chain of
// interior nodes labeled L+Delim, L+Delim+Delim, and so on — one extra Delim
// per level of nesting, so that no two interior nodes of the same fold share
// a label. Unbinarize recognizes a child labeled exactly "parent label +
// Delim" and splices that child's children back into its parent, recovering
// the original flat sibling list one level at a time; without the deepened
// label every interior node of an arity>=4 fold would collide on L+Delim and
// only the outermost splice would fire. Genuine unary productions already
// present in the corpus (a node with exactly one non-leaf child) are left
// untouched — they are valid CNF-style unary rules on their own, not a
// binarization artifact.
//
// Training data is assumed not to contain a tag that already ends in Delim;
// Binarize/Unbinarize is not invertible otherwise.
const Delim = "_"

// Binarize returns a tree with every internal node reduced to at most two
// children. The result may still contain genuine unary nodes (arity 1).
func Binarize(n *Node) *Node {
	if n.IsPreterminal() {
		return &Node{Label: n.Label, Word: n.Word}
	}
	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = Binarize(c)
	}
	if len(children) <= 2 {
		return &Node{Label: n.Label, Children: children}
	}
	return rightFold(n.Label, n.Label+Delim, children)
}

func rightFold(label, synthetic string, children []*Node) *Node {
	if len(children) == 2 {
		return &Node{Label: label, Children: children}
	}
	return &Node{Label: label, Children: []*Node{
		children[0],
		rightFold(synthetic, synthetic+Delim, children[1:]),
	}}
}

// Unbinarize reverses Binarize, restoring the original flat sibling lists.
func Unbinarize(n *Node) *Node {
	if n.IsPreterminal() {
		return &Node{Label: n.Label, Word: n.Word}
	}
	var children []*Node
	for _, c := range n.Children {
		uc := Unbinarize(c)
		if !uc.IsPreterminal() && uc.Label == n.Label+Delim {
			children = append(children, uc.Children...)
		} else {
			children = append(children, uc)
		}
	}
	return &Node{Label: n.Label, Children: children}
}
