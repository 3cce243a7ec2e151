package sankey

import (
	"fmt"
	"math"
)

// PointFunc extracts an endpoint for a link ribbon. The default source point
// is the midpoint of the link at the source node's right edge, and the
// default target point is the midpoint at the target node's left edge.
type PointFunc func(l *Link) (x, y float64)

func defaultSourcePoint(l *Link) (float64, float64) {
	if l.source == nil {
		return math.NaN(), math.NaN()
	}
	return l.source.X1, l.Y0
}

func defaultTargetPoint(l *Link) (float64, float64) {
	if l.target == nil {
		return math.NaN(), math.NaN()
	}
	return l.target.X0, l.Y1
}

type pathConfig struct {
	source PointFunc
	target PointFunc
}

// PathOption configures [LinkPath].
type PathOption func(*pathConfig)

// WithSourcePoint overrides the source endpoint accessor.
func WithSourcePoint(f PointFunc) PathOption {
	return func(c *pathConfig) {
		if f != nil {
			c.source = f
		}
	}
}

// WithTargetPoint overrides the target endpoint accessor.
func WithTargetPoint(f PointFunc) PathOption {
	return func(c *pathConfig) {
		if f != nil {
			c.target = f
		}
	}
}

// LinkPath renders a link as an SVG path description: a cubic curve from the
// source point to the target point whose control points sit at the horizontal
// midpoint, producing the smooth horizontal ribbon characteristic of Sankey
// diagrams.
//
// If any required coordinate is undefined (NaN), LinkPath returns the empty
// string; callers render nothing rather than malformed geometry.
func LinkPath(l *Link, opts ...PathOption) string {
	cfg := pathConfig{source: defaultSourcePoint, target: defaultTargetPoint}
	for _, opt := range opts {
		opt(&cfg)
	}

	x0, y0 := cfg.source(l)
	x1, y1 := cfg.target(l)
	if math.IsNaN(x0) || math.IsNaN(y0) || math.IsNaN(x1) || math.IsNaN(y1) {
		return ""
	}

	xm := (x0 + x1) / 2
	return fmt.Sprintf("M%s,%sC%s,%s %s,%s %s,%s",
		fmtCoord(x0), fmtCoord(y0),
		fmtCoord(xm), fmtCoord(y0),
		fmtCoord(xm), fmtCoord(y1),
		fmtCoord(x1), fmtCoord(y1))
}

// fmtCoord formats a coordinate with enough precision for crisp rendering
// without the noise of full float formatting.
func fmtCoord(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*1000)/1000)
}
