package svg

import (
	"bytes"
	"fmt"

	"github.com/flowviz/sankey/pkg/graph"
)

// RenderLayout renders precomputed layout geometry as an SVG document. It is
// the rendering path for cached layouts, where the engine graph is no longer
// available and only the serialized geometry remains. Only default-mode
// rendering is supported; override functions need the live engine graph and
// must go through [RenderSVG].
func RenderLayout(l graph.Layout, opts ...Option) []byte {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width == 0 || r.height == 0 {
		r.width, r.height = l.Width, l.Height
	}

	linkStyle := r.linkStyle.withDefaults()
	nodeStyle := r.nodeStyle.withDefaults()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)

	buf.WriteString(`  <g class="links">` + "\n")
	for _, link := range l.Links {
		if link.Path == "" {
			continue
		}
		fmt.Fprintf(&buf, `    <path d="%s" fill="%s"`, link.Path, linkStyle.Fill)
		if linkStyle.FillOpacity != "" {
			fmt.Fprintf(&buf, ` fill-opacity="%s"`, linkStyle.FillOpacity)
		}
		fmt.Fprintf(&buf, ` stroke="%s" stroke-opacity="%s" stroke-width="%s"`,
			linkStyle.Stroke, linkStyle.StrokeOpacity, strokeWidth(link.Width))
		if linkStyle.StrokeDasharray != "" {
			fmt.Fprintf(&buf, ` stroke-dasharray="%s"`, linkStyle.StrokeDasharray)
		}
		if linkStyle.StrokeDashoffset != "" {
			fmt.Fprintf(&buf, ` stroke-dashoffset="%s"`, linkStyle.StrokeDashoffset)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, `    <rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="%s"`,
			n.X0, n.Y0, n.X1-n.X0, n.Y1-n.Y0, nodeStyle.Fill)
		if nodeStyle.FillOpacity != "" {
			fmt.Fprintf(&buf, ` fill-opacity="%s"`, nodeStyle.FillOpacity)
		}
		if nodeStyle.Stroke != "" {
			fmt.Fprintf(&buf, ` stroke="%s"`, nodeStyle.Stroke)
		}
		if nodeStyle.StrokeOpacity != "" {
			fmt.Fprintf(&buf, ` stroke-opacity="%s"`, nodeStyle.StrokeOpacity)
		}
		if nodeStyle.StrokeWidth != "" {
			fmt.Fprintf(&buf, ` stroke-width="%s"`, nodeStyle.StrokeWidth)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
