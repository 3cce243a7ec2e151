package graph

import (
	"encoding/json"
	"math"

	"github.com/flowviz/sankey/pkg/sankey"
)

// =============================================================================
// Layout - Computed Geometry Serialization
// =============================================================================

// Layout is the serialized result of a layout pass: the input graph enriched
// with pixel geometry. It is the payload of the `layout` command and of API
// layout responses, and feeds straight into renderers that consume geometry
// rather than recomputing it.
type Layout struct {
	Width  float64      `json:"width" bson:"width"`
	Height float64      `json:"height" bson:"height"`
	Nodes  []LayoutNode `json:"nodes" bson:"nodes"`
	Links  []LayoutLink `json:"links" bson:"links"`
}

// LayoutNode carries a node's computed rectangular extent.
type LayoutNode struct {
	ID string  `json:"id" bson:"id"`
	X0 float64 `json:"x0" bson:"x0"`
	Y0 float64 `json:"y0" bson:"y0"`
	X1 float64 `json:"x1" bson:"x1"`
	Y1 float64 `json:"y1" bson:"y1"`
}

// LayoutLink carries a link's computed ribbon geometry and path description.
type LayoutLink struct {
	Source string  `json:"source" bson:"source"`
	Target string  `json:"target" bson:"target"`
	Value  float64 `json:"value" bson:"value"`
	Width  float64 `json:"width" bson:"width"`
	Y0     float64 `json:"y0" bson:"y0"`
	Y1     float64 `json:"y1" bson:"y1"`
	Path   string  `json:"path,omitempty" bson:"path,omitempty"`
}

// LayoutOf extracts the computed geometry from an engine graph.
// Unplaced nodes are skipped, matching renderer behavior.
func LayoutOf(g *sankey.Graph, width, height float64) Layout {
	l := Layout{Width: width, Height: height}
	for _, n := range g.Nodes {
		if !n.Placed() {
			continue
		}
		l.Nodes = append(l.Nodes, LayoutNode{ID: n.ID, X0: n.X0, Y0: n.Y0, X1: n.X1, Y1: n.Y1})
	}
	for _, link := range g.Links {
		if math.IsNaN(link.Width) || math.IsNaN(link.Y0) || math.IsNaN(link.Y1) {
			continue
		}
		l.Links = append(l.Links, LayoutLink{
			Source: link.Source,
			Target: link.Target,
			Value:  link.Value,
			Width:  link.Width,
			Y0:     link.Y0,
			Y1:     link.Y1,
			Path:   sankey.LinkPath(link),
		})
	}
	return l
}

// MarshalLayout converts a Layout to indented JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes to a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}
