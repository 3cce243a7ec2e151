// Package svg renders computed Sankey graphs as SVG documents.
//
// Rendering has exactly two modes, resolved once per call:
//
//   - Default mode emits one translucent stroked curve per link and one
//     opaque rectangle per node, with a restricted style-property
//     passthrough for each shape kind.
//   - Override mode, selected by [WithRenderFunc], hands the computed graph
//     to a caller-supplied function and embeds its output verbatim, skipping
//     the default shape logic (and its default style props) entirely.
//
// Shapes whose geometry is undefined - a node missing bounds, a link whose
// path cannot be resolved - are silently skipped, never rendered malformed.
package svg

import (
	"bytes"
	"fmt"
	"math"

	"github.com/flowviz/sankey/pkg/sankey"
)

// RenderFunc receives the computed graph and returns arbitrary SVG content
// to embed in place of the default shapes.
type RenderFunc func(g *sankey.Graph) []byte

// Option configures RenderSVG.
type Option func(*renderer)

type renderer struct {
	width, height float64
	linkStyle     LinkStyle
	nodeStyle     NodeStyle
	pathOpts      []sankey.PathOption
	override      RenderFunc
}

// WithViewBox sets the SVG viewport dimensions. When omitted the viewport is
// fitted to the graph's computed bounds.
func WithViewBox(w, h float64) Option {
	return func(r *renderer) { r.width, r.height = w, h }
}

// WithLinkStyle overrides default link style properties.
func WithLinkStyle(s LinkStyle) Option { return func(r *renderer) { r.linkStyle = s } }

// WithNodeStyle overrides default node style properties.
func WithNodeStyle(s NodeStyle) Option { return func(r *renderer) { r.nodeStyle = s } }

// WithPathOptions forwards options to the link path generator, allowing
// custom endpoint accessors.
func WithPathOptions(opts ...sankey.PathOption) Option {
	return func(r *renderer) { r.pathOpts = opts }
}

// WithRenderFunc switches to override mode: fn receives the computed graph
// and full control of the document body.
func WithRenderFunc(fn RenderFunc) Option { return func(r *renderer) { r.override = fn } }

// RenderSVG renders a computed graph as an SVG document.
func RenderSVG(g *sankey.Graph, opts ...Option) []byte {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width == 0 || r.height == 0 {
		r.width, r.height = fitViewBox(g)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)

	if r.override != nil {
		buf.Write(r.override(g))
	} else {
		renderLinks(&buf, g, r.linkStyle.withDefaults(), r.pathOpts)
		renderNodes(&buf, g, r.nodeStyle.withDefaults())
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLinks(buf *bytes.Buffer, g *sankey.Graph, style LinkStyle, pathOpts []sankey.PathOption) {
	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range g.Links {
		d := sankey.LinkPath(l, pathOpts...)
		if d == "" {
			continue
		}
		fmt.Fprintf(buf, `    <path d="%s" fill="%s"`, d, style.Fill)
		if style.FillOpacity != "" {
			fmt.Fprintf(buf, ` fill-opacity="%s"`, style.FillOpacity)
		}
		fmt.Fprintf(buf, ` stroke="%s" stroke-opacity="%s" stroke-width="%s"`,
			style.Stroke, style.StrokeOpacity, strokeWidth(l.Width))
		if style.StrokeDasharray != "" {
			fmt.Fprintf(buf, ` stroke-dasharray="%s"`, style.StrokeDasharray)
		}
		if style.StrokeDashoffset != "" {
			fmt.Fprintf(buf, ` stroke-dashoffset="%s"`, style.StrokeDashoffset)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

func renderNodes(buf *bytes.Buffer, g *sankey.Graph, style NodeStyle) {
	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range g.Nodes {
		if !n.Placed() {
			continue
		}
		fmt.Fprintf(buf, `    <rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="%s"`,
			n.X0, n.Y0, n.X1-n.X0, n.Y1-n.Y0, style.Fill)
		if style.FillOpacity != "" {
			fmt.Fprintf(buf, ` fill-opacity="%s"`, style.FillOpacity)
		}
		if style.Stroke != "" {
			fmt.Fprintf(buf, ` stroke="%s"`, style.Stroke)
		}
		if style.StrokeOpacity != "" {
			fmt.Fprintf(buf, ` stroke-opacity="%s"`, style.StrokeOpacity)
		}
		if style.StrokeWidth != "" {
			fmt.Fprintf(buf, ` stroke-width="%s"`, style.StrokeWidth)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

// strokeWidth clamps a link's computed width to at least one pixel so that
// tiny flows remain visible and zero or negative widths never reach the
// output.
func strokeWidth(w float64) string {
	if math.IsNaN(w) || w < 1 {
		w = 1
	}
	return fmt.Sprintf("%.3f", w)
}

// fitViewBox derives viewport dimensions from the graph's computed bounds.
func fitViewBox(g *sankey.Graph) (w, h float64) {
	for _, n := range g.Nodes {
		if !n.Placed() {
			continue
		}
		w = math.Max(w, n.X1)
		h = math.Max(h, n.Y1)
	}
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return w, h
}
