// Package sankey computes Sankey diagram layouts: given a directed acyclic
// graph of nodes and weighted links, it assigns each node a rectangular
// extent and each link a ribbon whose thickness is proportional to its flow
// value, arranged to minimize visual crossing within a bounded drawing
// region.
//
// # Usage
//
// Construct a [Graph], then run [Compute] with options:
//
//	g := &sankey.Graph{
//	    Nodes: []*sankey.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
//	    Links: []*sankey.Link{
//	        {Source: "a", Target: "b", Value: 10},
//	        {Source: "b", Target: "c", Value: 10},
//	    },
//	}
//	err := sankey.Compute(g,
//	    sankey.WithSize(800, 600),
//	    sankey.WithNodePadding(12),
//	)
//
// Compute mutates the graph in place; afterwards every node carries pixel
// bounds and every link a width and endpoint offsets. [LinkPath] converts a
// computed link into an SVG path description.
//
// # Algorithm
//
// Layout proceeds in fixed stages: link resolution, flow value aggregation,
// column assignment (breadth-first depth and height, then an alignment
// function), vertical stacking, and a configurable number of relaxation
// iterations that pull nodes toward the flow-weighted position of their
// neighbors while resolving overlaps. The procedure is seeded entirely from
// input order and runs a fixed number of passes, so results are
// deterministic: no randomness, no dependence on map iteration order.
//
// # Constraints
//
// The link structure must form a DAG; [Compute] fails with [ErrCycleDetected]
// otherwise. Links referencing unknown node IDs fail with
// [ErrUnknownSourceNode] or [ErrUnknownTargetNode]. The package is fully
// synchronous and performs no internal concurrency; a Graph must not be
// shared between goroutines during layout.
package sankey
