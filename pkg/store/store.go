// Package store persists named flow diagrams for the HTTP API.
//
// A Diagram couples a caller-chosen name with a serialized graph so it can
// be re-rendered later without resubmitting the data. Two backends are
// provided: [MemoryStore] for development and tests, and [MongoStore] for
// deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowviz/sankey/pkg/graph"
)

// Diagram is a stored flow graph with identity and bookkeeping fields.
type Diagram struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Graph     graph.Graph `json:"graph" bson:"graph"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Store is the persistence interface for diagrams.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put inserts or replaces a diagram. An empty ID is assigned a new one;
	// the (possibly updated) diagram is returned.
	Put(ctx context.Context, d Diagram) (Diagram, error)

	// Get returns the diagram with the given ID, or an
	// errors.ErrCodeNotFound error.
	Get(ctx context.Context, id string) (Diagram, error)

	// List returns all diagrams ordered by creation time, newest first.
	List(ctx context.Context) ([]Diagram, error)

	// Delete removes a diagram. Deleting a missing ID returns an
	// errors.ErrCodeNotFound error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewID returns a fresh diagram identifier.
func NewID() string { return uuid.NewString() }
