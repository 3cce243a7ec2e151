// Package cache provides content-addressed caching for layout and render
// results. Layouts are expensive for large graphs, so the pipeline caches
// them keyed by a hash of the input graph plus the layout options; rendered
// artifacts are keyed by the layout hash plus render options.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for the
// HTTP server, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the layout options that contribute to a layout cache key.
// Any option that changes computed geometry must appear here.
type LayoutKeyOpts struct {
	Width       float64
	Height      float64
	NodeWidth   float64
	NodePadding float64
	Align       string
	Iterations  int
}

// ArtifactKeyOpts are the render options that contribute to an artifact
// cache key.
type ArtifactKeyOpts struct {
	Format    string
	LinkStyle string
	NodeStyle string
}

// LayoutKey derives the cache key for a layout computation.
func LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey derives the cache key for a rendered artifact.
func ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
