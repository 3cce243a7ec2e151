package svg

import (
	"strings"
	"testing"

	"github.com/flowviz/sankey/pkg/sankey"
)

func computedChain(t *testing.T) *sankey.Graph {
	t.Helper()
	g := &sankey.Graph{
		Nodes: []*sankey.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Links: []*sankey.Link{
			{Source: "a", Target: "b", Value: 10},
			{Source: "b", Target: "c", Value: 10},
		},
	}
	if err := sankey.Compute(g, sankey.WithSize(100, 100)); err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return g
}

func TestRenderSVG_DefaultShapes(t *testing.T) {
	out := string(RenderSVG(computedChain(t), WithViewBox(100, 100)))

	if got := strings.Count(out, "<path "); got != 2 {
		t.Errorf("path count = %d, want 2", got)
	}
	if got := strings.Count(out, "<rect "); got != 3 {
		t.Errorf("rect count = %d, want 3", got)
	}
	if !strings.Contains(out, `viewBox="0 0 100.0 100.0"`) {
		t.Errorf("missing viewBox, got:\n%s", out)
	}
}

func TestRenderSVG_DefaultStyleProps(t *testing.T) {
	out := string(RenderSVG(computedChain(t)))

	for _, want := range []string{
		`fill="none"`,          // link fill transparent
		`stroke="#000"`,        // link stroke black
		`stroke-opacity="0.5"`, // link stroke opacity
		`fill="#000"`,          // node fill black
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing default %s", want)
		}
	}
	if strings.Contains(out, "stroke-dasharray") {
		t.Error("dash properties emitted without override")
	}
}

func TestRenderSVG_StylePassthrough(t *testing.T) {
	out := string(RenderSVG(computedChain(t),
		WithLinkStyle(LinkStyle{Stroke: "steelblue", StrokeDasharray: "4 2"}),
		WithNodeStyle(NodeStyle{Fill: "tomato", Stroke: "#333", StrokeWidth: "2"}),
	))

	for _, want := range []string{
		`stroke="steelblue"`,
		`stroke-dasharray="4 2"`,
		`fill="tomato"`,
		`stroke="#333"`,
		`stroke-width="2"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing override %s", want)
		}
	}
	// Unset overrides keep their defaults.
	if !strings.Contains(out, `stroke-opacity="0.5"`) {
		t.Error("default link stroke-opacity lost when other props overridden")
	}
}

func TestRenderSVG_MinimumStrokeWidth(t *testing.T) {
	g := &sankey.Graph{
		Nodes: []*sankey.Node{{ID: "a"}, {ID: "b"}},
		Links: []*sankey.Link{{Source: "a", Target: "b", Value: 0.0001}},
	}
	if err := sankey.Compute(g, sankey.WithSize(100, 100)); err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	out := string(RenderSVG(g))
	if !strings.Contains(out, `stroke-width="1.000"`) {
		t.Errorf("tiny flow not clamped to 1px stroke, got:\n%s", out)
	}
}

func TestRenderSVG_OverrideMode(t *testing.T) {
	var seen *sankey.Graph
	g := computedChain(t)

	out := string(RenderSVG(g, WithRenderFunc(func(cg *sankey.Graph) []byte {
		seen = cg
		return []byte(`<circle r="5"/>`)
	})))

	if seen != g {
		t.Error("override func did not receive the computed graph verbatim")
	}
	if !strings.Contains(out, `<circle r="5"/>`) {
		t.Error("override output not embedded")
	}
	if strings.Contains(out, "<rect ") || strings.Contains(out, "<path ") {
		t.Error("override mode emitted default shapes")
	}
}

func TestRenderSVG_SkipsUnplacedShapes(t *testing.T) {
	// Failed layout leaves all geometry undefined: a self-loop errors out
	// after geometry is reset but before anything is placed.
	g := &sankey.Graph{
		Nodes: []*sankey.Node{{ID: "a"}},
		Links: []*sankey.Link{{Source: "a", Target: "a", Value: 1}},
	}
	if err := sankey.Compute(g); err == nil {
		t.Fatal("Compute() on self-loop succeeded, want error")
	}

	out := string(RenderSVG(g, WithViewBox(10, 10)))
	if strings.Contains(out, "<rect ") {
		t.Error("unplaced node rendered")
	}
	if strings.Contains(out, "<path ") {
		t.Error("unresolved link rendered")
	}
}
