package svg

import (
	"strings"

	"github.com/flowviz/sankey/pkg/errors"
)

// ParseLinkStyle parses a style string like
// "stroke=steelblue;stroke-opacity=0.4" into a [LinkStyle]. Properties
// outside the link passthrough set are rejected.
func ParseLinkStyle(s string) (LinkStyle, error) {
	var style LinkStyle
	err := parseStyle(s, map[string]*string{
		"fill":              &style.Fill,
		"fill-opacity":      &style.FillOpacity,
		"stroke":            &style.Stroke,
		"stroke-opacity":    &style.StrokeOpacity,
		"stroke-dasharray":  &style.StrokeDasharray,
		"stroke-dashoffset": &style.StrokeDashoffset,
	})
	return style, err
}

// ParseNodeStyle parses a style string into a [NodeStyle]. Properties outside
// the node passthrough set are rejected.
func ParseNodeStyle(s string) (NodeStyle, error) {
	var style NodeStyle
	err := parseStyle(s, map[string]*string{
		"fill":           &style.Fill,
		"fill-opacity":   &style.FillOpacity,
		"stroke":         &style.Stroke,
		"stroke-opacity": &style.StrokeOpacity,
		"stroke-width":   &style.StrokeWidth,
	})
	return style, err
}

// parseStyle splits "prop=value;prop=value" pairs into the given fields.
func parseStyle(s string, fields map[string]*string) error {
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, value, ok := strings.Cut(part, "=")
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "malformed style %q (expected prop=value)", part)
		}
		prop = strings.TrimSpace(prop)
		field, known := fields[prop]
		if !known {
			return errors.New(errors.ErrCodeInvalidInput, "unsupported style property %q", prop)
		}
		*field = strings.TrimSpace(value)
	}
	return nil
}
