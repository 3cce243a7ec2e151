package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/flowviz/sankey/pkg/cache"
	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/graph"
)

func testGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Links: []graph.Link{
			{Source: "a", Target: "b", Value: 10},
			{Source: "b", Target: "c", Value: 10},
		},
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %vx%v, want %vx%v", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.Align != AlignJustify {
		t.Errorf("align = %q, want justify", opts.Align)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("formats = %v, want [svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestOptions_Idempotent(t *testing.T) {
	opts := Options{Width: 100}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	opts.Align = "bogus" // must be ignored on the second call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v, want nil", err)
	}
}

func TestOptions_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative width", Options{Width: -1}, errors.ErrCodeInvalidInput},
		{"negative iterations", Options{Iterations: -1}, errors.ErrCodeInvalidInput},
		{"bad align", Options{Align: "diagonal"}, errors.ErrCodeInvalidAlign},
		{"bad format", Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRunner_Execute(t *testing.T) {
	r := NewRunner(nil, nil)
	opts := DefaultOptions()
	opts.Formats = []string{FormatSVG, FormatJSON, FormatDOT}

	result, err := r.Execute(context.Background(), testGraph(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.NodeCount != 3 || result.Stats.LinkCount != 2 {
		t.Errorf("stats = %d nodes, %d links, want 3/2", result.Stats.NodeCount, result.Stats.LinkCount)
	}
	if len(result.Layout.Nodes) != 3 {
		t.Errorf("layout has %d nodes, want 3", len(result.Layout.Nodes))
	}

	svgOut := result.Artifacts[FormatSVG]
	if !bytes.Contains(svgOut, []byte("<svg")) || !bytes.Contains(svgOut, []byte("<rect")) {
		t.Errorf("svg artifact missing markup:\n%s", svgOut)
	}
	if !bytes.Contains(result.Artifacts[FormatDOT], []byte("digraph flow")) {
		t.Error("dot artifact missing digraph header")
	}

	layout, err := graph.UnmarshalLayout(result.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact invalid: %v", err)
	}
	if len(layout.Links) != 2 {
		t.Errorf("json artifact has %d links, want 2", len(layout.Links))
	}
}

func TestRunner_CacheHits(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil)
	opts := DefaultOptions()
	ctx := context.Background()

	first, err := r.Execute(ctx, testGraph(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run reported cache hits")
	}

	second, err := r.Execute(ctx, testGraph(), DefaultOptions())
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from computed artifact")
	}

	refresh := DefaultOptions()
	refresh.Refresh = true
	third, err := r.Execute(ctx, testGraph(), refresh)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Error("refresh run reported cache hits")
	}
}

func TestRunner_OptionsChangeCacheKey(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, testGraph(), DefaultOptions()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wider := DefaultOptions()
	wider.Width = 1600
	result, err := r.Execute(ctx, testGraph(), wider)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("different layout options hit the same cache entry")
	}
}

func TestRunner_CycleError(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Links: []graph.Link{
			{Source: "a", Target: "b", Value: 1},
			{Source: "b", Target: "a", Value: 1},
		},
	}
	_, err := NewRunner(nil, nil).Execute(context.Background(), g, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("Execute() error = %v, want CYCLE_DETECTED", err)
	}
}

func TestRunner_InvalidStyle(t *testing.T) {
	opts := DefaultOptions()
	opts.LinkStyle = "stroke-width=3" // link stroke width is derived, not settable
	_, err := NewRunner(nil, nil).Execute(context.Background(), testGraph(), opts)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Execute() error = %v, want INVALID_INPUT", err)
	}
}

func TestRunner_StylePassthrough(t *testing.T) {
	opts := DefaultOptions()
	opts.LinkStyle = "stroke=steelblue;stroke-opacity=0.4"
	opts.NodeStyle = "fill=#333"

	result, err := NewRunner(nil, nil).Execute(context.Background(), testGraph(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := string(result.Artifacts[FormatSVG])
	for _, want := range []string{`stroke="steelblue"`, `stroke-opacity="0.4"`, `fill="#333"`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}
