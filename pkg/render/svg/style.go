package svg

// Default shape styling. Links render as translucent black strokes with no
// fill; nodes render as opaque black rectangles.
const (
	defaultLinkFill          = "none"
	defaultLinkStroke        = "#000"
	defaultLinkStrokeOpacity = "0.5"
	defaultNodeFill          = "#000"
)

// LinkStyle is the style-property passthrough for default link rendering.
// Only the listed properties are honored; empty fields fall back to the
// documented defaults. StrokeWidth is not configurable - it is always derived
// from the link's computed flow width.
type LinkStyle struct {
	Fill             string
	FillOpacity      string
	Stroke           string
	StrokeOpacity    string
	StrokeDasharray  string
	StrokeDashoffset string
}

// NodeStyle is the style-property passthrough for default node rendering.
// Nodes accept fill and stroke properties only; dash properties are not
// supported on rectangles.
type NodeStyle struct {
	Fill          string
	FillOpacity   string
	Stroke        string
	StrokeOpacity string
	StrokeWidth   string
}

func (s LinkStyle) withDefaults() LinkStyle {
	if s.Fill == "" {
		s.Fill = defaultLinkFill
	}
	if s.Stroke == "" {
		s.Stroke = defaultLinkStroke
	}
	if s.StrokeOpacity == "" {
		s.StrokeOpacity = defaultLinkStrokeOpacity
	}
	return s
}

func (s NodeStyle) withDefaults() NodeStyle {
	if s.Fill == "" {
		s.Fill = defaultNodeFill
	}
	return s
}
