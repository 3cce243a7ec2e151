package graph

import (
	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/sankey"
)

// =============================================================================
// Graph - Flow Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for flow graphs.
// Used for API requests, storage, caching, and file import/export.
//
// The format is human-readable and designed for round-trip fidelity:
// import → layout → export → re-import preserves nodes and links.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// Node is a serialized flow-graph vertex.
type Node struct {
	ID   string         `json:"id" bson:"id"`
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Link is a serialized weighted connection between two nodes.
type Link struct {
	Source string         `json:"source" bson:"source"`
	Target string         `json:"target" bson:"target"`
	Value  float64        `json:"value" bson:"value"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks structural integrity without running layout: node IDs must
// be non-empty and unique, link values non-negative, and every link endpoint
// must resolve to a node. Cycle detection is left to the layout engine.
func (g Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidGraph, "node %d has an empty id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for i, l := range g.Links {
		if _, ok := seen[l.Source]; !ok {
			return errors.New(errors.ErrCodeUnknownNode, "link %d references unknown source %q", i, l.Source)
		}
		if _, ok := seen[l.Target]; !ok {
			return errors.New(errors.ErrCodeUnknownNode, "link %d references unknown target %q", i, l.Target)
		}
		if l.Value < 0 {
			return errors.New(errors.ErrCodeInvalidGraph, "link %d (%s→%s) has negative value %v", i, l.Source, l.Target, l.Value)
		}
	}
	return nil
}

// =============================================================================
// Serialization ↔ Engine Conversion
// =============================================================================

// ToSankey converts the serialization format into an engine graph ready for
// layout. Returns a validation error for malformed input.
func ToSankey(g Graph) (*sankey.Graph, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	out := &sankey.Graph{
		Nodes: make([]*sankey.Node, len(g.Nodes)),
		Links: make([]*sankey.Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = &sankey.Node{ID: n.ID, Meta: copyMeta(n.Meta)}
	}
	for i, l := range g.Links {
		out.Links[i] = &sankey.Link{
			Source: l.Source,
			Target: l.Target,
			Value:  l.Value,
			Meta:   copyMeta(l.Meta),
		}
	}
	return out, nil
}

// FromSankey converts an engine graph back to the serialization format.
// Computed geometry is not carried; use [LayoutOf] for that.
func FromSankey(g *sankey.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Links: make([]Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{ID: n.ID, Meta: copyMeta(n.Meta)}
	}
	for i, l := range g.Links {
		out.Links[i] = Link{Source: l.Source, Target: l.Target, Value: l.Value, Meta: copyMeta(l.Meta)}
	}
	return out
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
