package sankey

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

var (
	// ErrUnknownSourceNode is returned by [Compute] when a link's Source ID
	// does not resolve to any node in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Compute] when a link's Target ID
	// does not resolve to any node in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateNodeID is returned by [Compute] when two nodes share an ID.
	// Link resolution requires unique identifiers.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrCycleDetected is returned by [Compute] when the links form a directed
	// cycle. Column assignment requires a DAG; rather than iterating forever
	// the engine fails fast with this error.
	ErrCycleDetected = errors.New("graph contains a cycle")
)

// Default configuration values. Omitted options keep these defaults and are
// never overwritten with zero values.
const (
	DefaultNodeWidth   = 24.0
	DefaultNodePadding = 8.0
	DefaultIterations  = 6
)

// config is the immutable layout configuration assembled from options before
// Compute starts. There is no mutable engine object; every invocation builds
// a fresh config and runs the pure layout pass against it.
type config struct {
	id          func(*Node) string
	nodeWidth   float64
	nodePadding float64
	align       AlignFunc
	x0, y0      float64
	x1, y1      float64
	iterations  int

	nodeSort    func(a, b *Node) int
	nodeSortSet bool
	linkSort    func(a, b *Link) int
	linkSortSet bool
}

// Option configures a single layout parameter.
type Option func(*config)

// WithNodeID overrides how a node's identifier is derived. The default uses
// Node.ID, falling back to the node's index when the ID is empty.
func WithNodeID(id func(*Node) string) Option {
	return func(c *config) {
		if id != nil {
			c.id = id
		}
	}
}

// WithNodeWidth sets the horizontal thickness of each node rectangle.
func WithNodeWidth(w float64) Option { return func(c *config) { c.nodeWidth = w } }

// WithNodePadding sets the minimum vertical gap between nodes that share a
// column. The effective padding shrinks when a column is too crowded to fit.
func WithNodePadding(p float64) Option { return func(c *config) { c.nodePadding = p } }

// WithAlign sets the column alignment function. See [AlignJustify],
// [AlignLeft], [AlignRight] and [AlignCenter].
func WithAlign(a AlignFunc) Option {
	return func(c *config) {
		if a != nil {
			c.align = a
		}
	}
}

// WithExtent sets the bounding box the layout must fit within.
func WithExtent(x0, y0, x1, y1 float64) Option {
	return func(c *config) { c.x0, c.y0, c.x1, c.y1 = x0, y0, x1, y1 }
}

// WithSize is a convenience for an extent anchored at the origin.
func WithSize(w, h float64) Option { return WithExtent(0, 0, w, h) }

// WithIterations sets the number of relaxation passes used to balance node
// vertical positions. Zero is valid and skips relaxation entirely.
func WithIterations(n int) Option { return func(c *config) { c.iterations = n } }

// WithNodeSort sets the ordering of nodes within a column. Passing a non-nil
// comparator fixes the order once, before relaxation. Passing nil is the
// "leave as-is" sentinel: input order is kept. When the option is omitted the
// engine re-sorts columns by vertical position during relaxation, which
// minimizes crossings.
func WithNodeSort(cmp func(a, b *Node) int) Option {
	return func(c *config) { c.nodeSort, c.nodeSortSet = cmp, true }
}

// WithLinkSort sets the stacking order of links at each node endpoint.
// Passing nil keeps input order; omitting the option orders links by the
// breadth of the opposite endpoint (the engine default).
func WithLinkSort(cmp func(a, b *Link) int) Option {
	return func(c *config) { c.linkSort, c.linkSortSet = cmp, true }
}

func newConfig(opts []Option) config {
	c := config{
		id: func(n *Node) string {
			if n.ID != "" {
				return n.ID
			}
			return strconv.Itoa(n.Index)
		},
		nodeWidth:   DefaultNodeWidth,
		nodePadding: DefaultNodePadding,
		align:       AlignJustify,
		x1:          1,
		y1:          1,
		iterations:  DefaultIterations,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Compute runs the full Sankey layout over g, mutating it in place: every
// reachable node gains pixel bounds (X0, Y0, X1, Y1) and every link gains a
// width and vertical endpoint offsets. The returned graph is the same object.
//
// The procedure is deterministic: identical input and options produce
// bit-identical geometry. It is synchronous and runs to completion, bounded
// by the configured iteration count.
//
// Compute fails fast on malformed input: a link referencing a missing node
// returns ErrUnknownSourceNode or ErrUnknownTargetNode, duplicate node IDs
// return ErrDuplicateNodeID, and a directed cycle returns ErrCycleDetected.
// No geometry is defined on error.
func Compute(g *Graph, opts ...Option) error {
	cfg := newConfig(opts)

	if err := resolveLinks(g, cfg); err != nil {
		return err
	}
	computeNodeValues(g)
	if err := computeNodeDepths(g); err != nil {
		return err
	}
	if err := computeNodeHeights(g); err != nil {
		return err
	}
	if len(g.Nodes) == 0 {
		return nil
	}
	columns := computeNodeLayers(g, cfg)
	computeNodeBreadths(g, columns, cfg)
	computeLinkBreadths(g)
	return nil
}

// resolveLinks indexes nodes by ID and wires each link to its endpoint
// structs, building the per-node link lists.
func resolveLinks(g *Graph, cfg config) error {
	byID := make(map[string]*Node, len(g.Nodes))
	for i, n := range g.Nodes {
		n.Index = i
		n.X0, n.X1, n.Y0, n.Y1 = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		n.sourceLinks = nil
		n.targetLinks = nil
		key := cfg.id(n)
		if _, exists := byID[key]; exists {
			return fmt.Errorf("node %q: %w", key, ErrDuplicateNodeID)
		}
		byID[key] = n
	}

	for i, l := range g.Links {
		l.Index = i
		l.Width, l.Y0, l.Y1 = math.NaN(), math.NaN(), math.NaN()
		src, ok := byID[l.Source]
		if !ok {
			return fmt.Errorf("link %d (%s→%s): %w", i, l.Source, l.Target, ErrUnknownSourceNode)
		}
		dst, ok := byID[l.Target]
		if !ok {
			return fmt.Errorf("link %d (%s→%s): %w", i, l.Source, l.Target, ErrUnknownTargetNode)
		}
		l.source, l.target = src, dst
		src.sourceLinks = append(src.sourceLinks, l)
		dst.targetLinks = append(dst.targetLinks, l)
	}

	if cfg.linkSortSet && cfg.linkSort != nil {
		for _, n := range g.Nodes {
			slices.SortStableFunc(n.sourceLinks, cfg.linkSort)
			slices.SortStableFunc(n.targetLinks, cfg.linkSort)
		}
	}
	return nil
}

// computeNodeValues sets each node's value to the larger of its total
// incoming and total outgoing flow.
func computeNodeValues(g *Graph) {
	for _, n := range g.Nodes {
		var in, out float64
		for _, l := range n.targetLinks {
			in += l.Value
		}
		for _, l := range n.sourceLinks {
			out += l.Value
		}
		n.Value = math.Max(in, out)
	}
}

// computeNodeDepths assigns each node its distance from the nearest source
// by breadth-first sweeps. More than len(nodes) sweeps means the links loop.
func computeNodeDepths(g *Graph) error {
	current := make(map[*Node]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		current[n] = struct{}{}
	}
	for x := 0; len(current) > 0; x++ {
		if x > len(g.Nodes) {
			return ErrCycleDetected
		}
		next := make(map[*Node]struct{})
		for n := range current {
			n.Depth = x
			for _, l := range n.sourceLinks {
				next[l.target] = struct{}{}
			}
		}
		current = next
	}
	return nil
}

// computeNodeHeights mirrors computeNodeDepths from the sink side.
func computeNodeHeights(g *Graph) error {
	current := make(map[*Node]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		current[n] = struct{}{}
	}
	for x := 0; len(current) > 0; x++ {
		if x > len(g.Nodes) {
			return ErrCycleDetected
		}
		next := make(map[*Node]struct{})
		for n := range current {
			n.Height = x
			for _, l := range n.targetLinks {
				next[l.source] = struct{}{}
			}
		}
		current = next
	}
	return nil
}

// computeNodeLayers assigns final columns via the alignment function and
// fixes each node's horizontal extent.
func computeNodeLayers(g *Graph, cfg config) [][]*Node {
	columns := 0
	for _, n := range g.Nodes {
		if n.Depth+1 > columns {
			columns = n.Depth + 1
		}
	}

	kx := 0.0
	if columns > 1 {
		kx = (cfg.x1 - cfg.x0 - cfg.nodeWidth) / float64(columns-1)
	}

	cols := make([][]*Node, columns)
	for _, n := range g.Nodes {
		i := cfg.align(n, columns)
		i = max(0, min(columns-1, i))
		n.Layer = i
		n.X0 = cfg.x0 + float64(i)*kx
		n.X1 = n.X0 + cfg.nodeWidth
		cols[i] = append(cols[i], n)
	}

	// Deterministic seed order: a fixed comparator if given, otherwise the
	// caller's node order.
	if cfg.nodeSortSet && cfg.nodeSort != nil {
		for _, col := range cols {
			slices.SortStableFunc(col, cfg.nodeSort)
		}
	} else {
		for _, col := range cols {
			slices.SortStableFunc(col, func(a, b *Node) int { return a.Index - b.Index })
		}
	}
	return cols
}

// computeNodeBreadths stacks each column, then runs the relaxation schedule:
// alternating right-to-left and left-to-right sweeps pull nodes toward the
// flow-weighted position of their neighbors while collision resolution keeps
// columns inside the extent.
func computeNodeBreadths(g *Graph, columns [][]*Node, cfg config) {
	py := cfg.nodePadding
	maxLen := 0
	for _, col := range columns {
		if len(col) > maxLen {
			maxLen = len(col)
		}
	}
	if maxLen > 1 {
		py = math.Min(py, (cfg.y1-cfg.y0)/float64(maxLen-1))
	}

	initializeNodeBreadths(columns, py, cfg)

	for i := 0; i < cfg.iterations; i++ {
		alpha := math.Pow(0.99, float64(i))
		beta := math.Max(1-alpha, float64(i+1)/float64(cfg.iterations))
		relaxRightToLeft(columns, alpha, beta, py, cfg)
		relaxLeftToRight(columns, alpha, beta, py, cfg)
	}
}

func initializeNodeBreadths(columns [][]*Node, py float64, cfg config) {
	// Scale so the tightest column still fits its nodes plus padding.
	ky := math.Inf(1)
	for _, col := range columns {
		sum := 0.0
		for _, n := range col {
			sum += n.Value
		}
		if k := (cfg.y1 - cfg.y0 - float64(len(col)-1)*py) / sum; k < ky {
			ky = k
		}
	}

	for _, col := range columns {
		y := cfg.y0
		for _, n := range col {
			n.Y0 = y
			n.Y1 = y + n.Value*ky
			y = n.Y1 + py
			for _, l := range n.sourceLinks {
				l.Width = l.Value * ky
			}
		}
		// Distribute leftover space evenly between nodes.
		spare := (cfg.y1 - y + py) / float64(len(col)+1)
		for i, n := range col {
			n.Y0 += spare * float64(i+1)
			n.Y1 += spare * float64(i+1)
		}
		reorderLinks(col, cfg)
	}
}

func relaxLeftToRight(columns [][]*Node, alpha, beta, py float64, cfg config) {
	for i := 1; i < len(columns); i++ {
		column := columns[i]
		for _, target := range column {
			var y, w float64
			for _, l := range target.targetLinks {
				v := l.Value * float64(target.Layer-l.source.Layer)
				y += targetTop(l.source, target, py) * v
				w += v
			}
			if !(w > 0) {
				continue
			}
			dy := (y/w - target.Y0) * alpha
			target.Y0 += dy
			target.Y1 += dy
			reorderNodeLinks(target, cfg)
		}
		if !cfg.nodeSortSet {
			slices.SortStableFunc(column, ascendingBreadth)
		}
		resolveCollisions(column, beta, py, cfg)
	}
}

func relaxRightToLeft(columns [][]*Node, alpha, beta, py float64, cfg config) {
	for i := len(columns) - 2; i >= 0; i-- {
		column := columns[i]
		for _, source := range column {
			var y, w float64
			for _, l := range source.sourceLinks {
				v := l.Value * float64(l.target.Layer-source.Layer)
				y += sourceTop(source, l.target, py) * v
				w += v
			}
			if !(w > 0) {
				continue
			}
			dy := (y/w - source.Y0) * alpha
			source.Y0 += dy
			source.Y1 += dy
			reorderNodeLinks(source, cfg)
		}
		if !cfg.nodeSortSet {
			slices.SortStableFunc(column, ascendingBreadth)
		}
		resolveCollisions(column, beta, py, cfg)
	}
}

// resolveCollisions pushes overlapping nodes apart, working outward from the
// middle of the column and then clamping against the extent edges.
func resolveCollisions(nodes []*Node, alpha, py float64, cfg config) {
	if len(nodes) == 0 {
		return
	}
	i := len(nodes) >> 1
	subject := nodes[i]
	resolveCollisionsBottomToTop(nodes, subject.Y0-py, i-1, alpha, py)
	resolveCollisionsTopToBottom(nodes, subject.Y1+py, i+1, alpha, py)
	resolveCollisionsBottomToTop(nodes, cfg.y1, len(nodes)-1, alpha, py)
	resolveCollisionsTopToBottom(nodes, cfg.y0, 0, alpha, py)
}

func resolveCollisionsTopToBottom(nodes []*Node, y float64, i int, alpha, py float64) {
	for ; i < len(nodes); i++ {
		n := nodes[i]
		if dy := (y - n.Y0) * alpha; dy > 1e-6 {
			n.Y0 += dy
			n.Y1 += dy
		}
		y = n.Y1 + py
	}
}

func resolveCollisionsBottomToTop(nodes []*Node, y float64, i int, alpha, py float64) {
	for ; i >= 0; i-- {
		n := nodes[i]
		if dy := (n.Y1 - y) * alpha; dy > 1e-6 {
			n.Y0 -= dy
			n.Y1 -= dy
		}
		y = n.Y0 - py
	}
}

// reorderLinks restores the default breadth-based stacking order at every
// node of a column. Skipped entirely when the caller supplied a link sort.
func reorderLinks(nodes []*Node, cfg config) {
	if cfg.linkSortSet {
		return
	}
	for _, n := range nodes {
		slices.SortStableFunc(n.sourceLinks, ascendingTargetBreadth)
		slices.SortStableFunc(n.targetLinks, ascendingSourceBreadth)
	}
}

// reorderNodeLinks re-sorts the link lists of every neighbor touching n
// after n moved vertically.
func reorderNodeLinks(n *Node, cfg config) {
	if cfg.linkSortSet {
		return
	}
	for _, l := range n.targetLinks {
		slices.SortStableFunc(l.source.sourceLinks, ascendingTargetBreadth)
	}
	for _, l := range n.sourceLinks {
		slices.SortStableFunc(l.target.targetLinks, ascendingSourceBreadth)
	}
}

// targetTop returns the y where target's incoming ribbon from source would
// start if links stacked ideally, used to weight the relaxation pull.
func targetTop(source, target *Node, py float64) float64 {
	y := source.Y0 - float64(len(source.sourceLinks)-1)*py/2
	for _, l := range source.sourceLinks {
		if l.target == target {
			break
		}
		y += l.Width + py
	}
	for _, l := range target.targetLinks {
		if l.source == source {
			break
		}
		y -= l.Width
	}
	return y
}

// sourceTop mirrors targetTop for the right-to-left sweep.
func sourceTop(source, target *Node, py float64) float64 {
	y := target.Y0 - float64(len(target.targetLinks)-1)*py/2
	for _, l := range target.targetLinks {
		if l.source == source {
			break
		}
		y += l.Width + py
	}
	for _, l := range source.sourceLinks {
		if l.target == target {
			break
		}
		y -= l.Width
	}
	return y
}

// computeLinkBreadths assigns each link its vertical midpoint at both
// endpoints, stacking ribbons in link-list order.
func computeLinkBreadths(g *Graph) {
	for _, n := range g.Nodes {
		y0, y1 := n.Y0, n.Y0
		for _, l := range n.sourceLinks {
			l.Y0 = y0 + l.Width/2
			y0 += l.Width
		}
		for _, l := range n.targetLinks {
			l.Y1 = y1 + l.Width/2
			y1 += l.Width
		}
	}
}
