package dot

import (
	"strings"
	"testing"

	"github.com/flowviz/sankey/pkg/graph"
)

func TestToDOT(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "coal"}, {ID: "power"}},
		Links: []graph.Link{{Source: "coal", Target: "power", Value: 12.5}},
	}

	out := ToDOT(g)

	for _, want := range []string{
		"digraph flow {",
		"rankdir=LR;",
		`"coal";`,
		`"power";`,
		`"coal" -> "power" [label="12.5"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, out)
		}
	}
}

func TestToDOT_EmptyGraph(t *testing.T) {
	out := ToDOT(graph.Graph{})
	if !strings.HasPrefix(out, "digraph flow {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("ToDOT() on empty graph = %q", out)
	}
}
