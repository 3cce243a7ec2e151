// Package pipeline provides the layout → render pipeline shared by the CLI
// and the HTTP API.
//
// Centralizing this logic keeps behavior consistent across entry points:
// both run the same validation, the same caching strategy, and the same
// rendering, differing only in how options arrive (flags vs. JSON).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Width, opts.Height = 1024, 768
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/flowviz/sankey/pkg/cache"
	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/sankey"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultIterations is the default relaxation pass count.
	DefaultIterations = sankey.DefaultIterations

	// DefaultAlign is the default column alignment.
	DefaultAlign = AlignJustify
)

// Alignment names accepted in options.
const (
	AlignJustify = "justify"
	AlignLeft    = "left"
	AlignRight   = "right"
	AlignCenter  = "center"
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"     // Sankey diagram as SVG
	FormatJSON    = "json"    // computed layout geometry as JSON
	FormatDOT     = "dot"     // node-link topology as Graphviz DOT source
	FormatPreview = "preview" // node-link topology rendered to SVG via Graphviz
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatJSON:    true,
	FormatDOT:     true,
	FormatPreview: true,
}

// alignFuncs maps alignment names to engine alignment functions.
var alignFuncs = map[string]sankey.AlignFunc{
	AlignJustify: sankey.AlignJustify,
	AlignLeft:    sankey.AlignLeft,
	AlignRight:   sankey.AlignRight,
	AlignCenter:  sankey.AlignCenter,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests; decode request
// bodies over a [DefaultOptions] value so omitted fields keep their defaults
// rather than collapsing to zero values.
type Options struct {
	// Layout options
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	NodeWidth   float64 `json:"node_width,omitempty"`   // 0 = engine default
	NodePadding float64 `json:"node_padding,omitempty"` // 0 = engine default
	Align       string  `json:"align,omitempty"`
	Iterations  int     `json:"iterations"` // 0 is valid and skips relaxation

	// Render options
	Formats   []string `json:"formats,omitempty"`
	LinkStyle string   `json:"link_style,omitempty"` // "stroke=steelblue;stroke-opacity=0.4"
	NodeStyle string   `json:"node_style,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// DefaultOptions returns an Options populated with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Align:      DefaultAlign,
		Iterations: DefaultIterations,
		Formats:    []string{FormatSVG},
	}
}

// ValidateAndSetDefaults checks fields and fills gaps with defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame size must be positive, got %vx%v", o.Width, o.Height)
	}
	if o.NodeWidth < 0 || o.NodePadding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "node width and padding must not be negative")
	}
	if o.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "iterations must not be negative, got %d", o.Iterations)
	}

	if o.Align == "" {
		o.Align = DefaultAlign
	}
	if _, ok := alignFuncs[o.Align]; !ok {
		return errors.New(errors.ErrCodeInvalidAlign, "invalid align: %q (must be one of: justify, left, right, center)", o.Align)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, dot, preview)", f)
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// LayoutOptions translates pipeline options into engine options, adding a
// setting only when the caller provided it so omitted values keep the
// engine's own defaults.
func (o *Options) LayoutOptions() []sankey.Option {
	opts := []sankey.Option{
		sankey.WithSize(o.Width, o.Height),
		sankey.WithIterations(o.Iterations),
		sankey.WithAlign(alignFuncs[o.Align]),
	}
	if o.NodeWidth > 0 {
		opts = append(opts, sankey.WithNodeWidth(o.NodeWidth))
	}
	if o.NodePadding > 0 {
		opts = append(opts, sankey.WithNodePadding(o.NodePadding))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		NodeWidth:   o.NodeWidth,
		NodePadding: o.NodePadding,
		Align:       o.Align,
		Iterations:  o.Iterations,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		LinkStyle: o.LinkStyle,
		NodeStyle: o.NodeStyle,
	}
}
