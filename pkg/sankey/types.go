package sankey

import "math"

// Metadata stores arbitrary key-value pairs attached to nodes or links.
// It is commonly used to carry caller-supplied display data (labels, colors,
// categories) through the layout pass untouched. Metadata maps may be nil.
type Metadata map[string]any

// Node is a vertex in the flow graph. Callers populate ID (and optionally
// Meta); [Compute] fills in every other field. The computed bounds X0, Y0,
// X1, Y1 are NaN until the node has been placed, so a node that never went
// through layout (or could not be placed) is distinguishable from one
// legitimately positioned at the origin.
type Node struct {
	ID   string   // Unique identifier used for link resolution
	Meta Metadata // Arbitrary caller-supplied metadata (passed through)

	// Computed by layout.
	Index  int     // Position in Graph.Nodes
	Value  float64 // Total flow through the node
	Depth  int     // Distance from the nearest source (column candidate)
	Height int     // Distance to the farthest sink
	Layer  int     // Final column index after alignment
	X0     float64 // Left edge (NaN until placed)
	X1     float64 // Right edge
	Y0     float64 // Top edge
	Y1     float64 // Bottom edge

	sourceLinks []*Link // Outgoing links, ordered by stacking position
	targetLinks []*Link // Incoming links, ordered by stacking position
}

// SourceLinks returns the node's outgoing links in stacking order.
// The slice is owned by the layout engine and must not be modified.
func (n *Node) SourceLinks() []*Link { return n.sourceLinks }

// TargetLinks returns the node's incoming links in stacking order.
// The slice is owned by the layout engine and must not be modified.
func (n *Node) TargetLinks() []*Link { return n.targetLinks }

// Placed reports whether all four bounds are defined. Renderers skip nodes
// that are not placed rather than emitting malformed geometry.
func (n *Node) Placed() bool {
	return !math.IsNaN(n.X0) && !math.IsNaN(n.X1) && !math.IsNaN(n.Y0) && !math.IsNaN(n.Y1)
}

// Link is a weighted directed connection between two nodes, referenced by ID.
// Callers populate Source, Target and Value; [Compute] resolves the endpoint
// nodes and fills in the geometry fields.
type Link struct {
	Source string   // Source node ID
	Target string   // Target node ID
	Value  float64  // Flow quantity (drives ribbon width)
	Meta   Metadata // Arbitrary caller-supplied metadata (passed through)

	// Computed by layout.
	Index int     // Position in Graph.Links
	Width float64 // Ribbon thickness in pixels (NaN until computed)
	Y0    float64 // Vertical midpoint at the source's right edge
	Y1    float64 // Vertical midpoint at the target's left edge

	source *Node
	target *Node
}

// SourceNode returns the resolved source node, or nil before layout.
func (l *Link) SourceNode() *Node { return l.source }

// TargetNode returns the resolved target node, or nil before layout.
func (l *Link) TargetNode() *Node { return l.target }

// Graph holds the nodes and links of a flow diagram. The caller owns and
// constructs the graph; [Compute] mutates it in place, enriching nodes and
// links with computed geometry. The same graph object is the computed result,
// there is no copy.
//
// Graph is not safe for concurrent use during layout.
type Graph struct {
	Nodes []*Node
	Links []*Link
}

// NodeByID returns the node with the given ID and true, or nil and false.
// This is a linear scan; layout itself builds an index internally.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

func ascendingBreadth(a, b *Node) int {
	switch {
	case a.Y0 < b.Y0:
		return -1
	case a.Y0 > b.Y0:
		return 1
	default:
		return 0
	}
}

func ascendingSourceBreadth(a, b *Link) int {
	if c := ascendingBreadth(a.source, b.source); c != 0 {
		return c
	}
	return a.Index - b.Index
}

func ascendingTargetBreadth(a, b *Link) int {
	if c := ascendingBreadth(a.target, b.target); c != 0 {
		return c
	}
	return a.Index - b.Index
}
