package store

import (
	"context"
	"testing"
	"time"

	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/graph"
)

func testDiagram(name string) Diagram {
	return Diagram{
		Name: name,
		Graph: graph.Graph{
			Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
			Links: []graph.Link{{Source: "a", Target: "b", Value: 5}},
		},
	}
}

func TestMemoryStore_PutAssignsID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d, err := s.Put(ctx, testDiagram("energy"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if d.ID == "" {
		t.Fatal("Put() did not assign an ID")
	}
	if d.CreatedAt.IsZero() || d.UpdatedAt.IsZero() {
		t.Error("Put() did not set timestamps")
	}
}

func TestMemoryStore_GetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	put, _ := s.Put(ctx, testDiagram("energy"))
	got, err := s.Get(ctx, put.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "energy" {
		t.Errorf("Get() name = %q, want %q", got.Name, "energy")
	}
	if len(got.Graph.Nodes) != 2 || len(got.Graph.Links) != 1 {
		t.Errorf("Get() graph lost data: %d nodes, %d links", len(got.Graph.Nodes), len(got.Graph.Links))
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStore_UpdateKeepsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, _ := s.Put(ctx, testDiagram("v1"))
	time.Sleep(time.Millisecond)

	update := first
	update.Name = "v2"
	update.CreatedAt = time.Time{}
	second, err := s.Put(ctx, update)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("update changed CreatedAt: %v → %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("update did not advance UpdatedAt")
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, testDiagram("old"))
	time.Sleep(time.Millisecond)
	s.Put(ctx, testDiagram("new"))

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() count = %d, want 2", len(list))
	}
	if list[0].Name != "new" {
		t.Errorf("List() first = %q, want newest", list[0].Name)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d, _ := s.Put(ctx, testDiagram("x"))
	if err := s.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, d.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Delete() twice error = %v, want NOT_FOUND", err)
	}
}
