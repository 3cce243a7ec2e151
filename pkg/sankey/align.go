package sankey

// AlignFunc decides which column a node lands in. It receives the node
// (with Depth and Height already computed) and the total number of columns,
// and returns the column index in [0, columns). Results outside that range
// are clamped.
type AlignFunc func(n *Node, columns int) int

// AlignJustify places sources at their depth and pushes every sink into the
// last column, so flows stretch across the full width. This is the default.
func AlignJustify(n *Node, columns int) int {
	if len(n.sourceLinks) == 0 {
		return columns - 1
	}
	return n.Depth
}

// AlignLeft places each node as far left as its depth allows.
func AlignLeft(n *Node, _ int) int { return n.Depth }

// AlignRight places each node as far right as its height allows.
func AlignRight(n *Node, columns int) int { return columns - 1 - n.Height }

// AlignCenter places nodes with incoming flow at their depth and pulls
// disconnected sources next to their nearest target column.
func AlignCenter(n *Node, _ int) int {
	if len(n.targetLinks) > 0 {
		return n.Depth
	}
	if len(n.sourceLinks) > 0 {
		min := n.sourceLinks[0].target.Depth
		for _, l := range n.sourceLinks[1:] {
			if l.target.Depth < min {
				min = l.target.Depth
			}
		}
		return min - 1
	}
	return 0
}
