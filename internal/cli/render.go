package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowviz/sankey/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	layoutOpts
	formats   []string // output formats: svg, json, dot, preview
	linkStyle string   // style passthrough for link ribbons
	nodeStyle string   // style passthrough for node rectangles
}

// newRenderCmd creates the render command for generating diagram output.
// It supports SVG, JSON layout export, DOT source, and a Graphviz-rendered
// node-link preview.
func newRenderCmd(cfg Config) *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		layoutOpts: layoutOpts{
			width:       cfg.Width,
			height:      cfg.Height,
			nodeWidth:   cfg.NodeWidth,
			nodePadding: cfg.NodePadding,
			align:       cfg.Align,
			iterations:  cfg.Iterations,
			cacheDir:    cfg.CacheDir,
		},
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a flow graph as a Sankey diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	addLayoutFlags(cmd, &opts.layoutOpts)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, preview (comma-separated)")
	cmd.Flags().StringVar(&opts.linkStyle, "link-style", "", `link style passthrough, e.g. "stroke=steelblue;stroke-opacity=0.4"`)
	cmd.Flags().StringVar(&opts.nodeStyle, "node-style", "", `node style passthrough, e.g. "fill=#333"`)
	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// fileExt maps output formats to file extensions.
var fileExt = map[string]string{
	pipeline.FormatSVG:     "svg",
	pipeline.FormatJSON:    "json",
	pipeline.FormatDOT:     "dot",
	pipeline.FormatPreview: "svg",
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output ends in a
// known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the graph, runs the pipeline, and writes one file per
// requested format.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded graph: %d nodes, %d links", len(g.Nodes), len(g.Links))

	runner, closeCache := newRunnerFromFlags(&opts.layoutOpts, logger)
	defer closeCache()

	popts := opts.pipelineOptions()
	popts.Formats = opts.formats
	popts.LinkStyle = opts.linkStyle
	popts.NodeStyle = opts.nodeStyle
	popts.Logger = logger

	track := newProgress(logger)
	spin := newSpinnerWithContext(ctx, "Rendering diagram")
	spin.Start()
	result, err := runner.Execute(ctx, g, popts)
	spin.Stop()
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Rendered %d format(s)", len(opts.formats)))

	printSuccess("Rendered %s", input)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.LayoutHit)

	base := basePath(opts.output, input)
	single := len(opts.formats) == 1
	for _, format := range opts.formats {
		var path string
		switch {
		case single && opts.output != "":
			path = opts.output
		case single:
			path = base + "." + fileExt[format]
		default:
			path = fmt.Sprintf("%s_%s.%s", base, format, fileExt[format])
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}
