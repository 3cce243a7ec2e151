package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowviz/sankey/pkg/cache"
	"github.com/flowviz/sankey/pkg/errors"
	"github.com/flowviz/sankey/pkg/graph"
	"github.com/flowviz/sankey/pkg/pipeline"
)

// layoutOpts holds the command-line flags shared by layout and render.
type layoutOpts struct {
	output      string  // output file path (or base path for multiple formats)
	width       float64 // frame width in pixels
	height      float64 // frame height in pixels
	nodeWidth   float64 // node rectangle width (0 = engine default)
	nodePadding float64 // vertical gap between nodes (0 = engine default)
	align       string  // column alignment: justify, left, right, center
	iterations  int     // relaxation passes (0 = initial placement only)
	refresh     bool    // bypass cached results
	noCache     bool    // disable the result cache entirely
	cacheDir    string  // override cache directory
}

// addLayoutFlags registers the layout-related flags on cmd.
func addLayoutFlags(cmd *cobra.Command, opts *layoutOpts) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from input)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().Float64Var(&opts.nodeWidth, "node-width", opts.nodeWidth, "node rectangle width")
	cmd.Flags().Float64Var(&opts.nodePadding, "node-padding", opts.nodePadding, "vertical gap between nodes in a column")
	cmd.Flags().StringVar(&opts.align, "align", opts.align, "column alignment: justify, left, right, center")
	cmd.Flags().IntVar(&opts.iterations, "iterations", opts.iterations, "relaxation passes (0 skips relaxation)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", opts.cacheDir, "cache directory")
}

// pipelineOptions translates flags into pipeline options.
func (o *layoutOpts) pipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Width = o.width
	opts.Height = o.height
	opts.NodeWidth = o.nodeWidth
	opts.NodePadding = o.nodePadding
	opts.Align = o.align
	opts.Iterations = o.iterations
	opts.Refresh = o.refresh
	return opts
}

// newLayoutCmd creates the layout command. It computes node and link geometry
// for a flow graph and writes it as JSON.
func newLayoutCmd(cfg Config) *cobra.Command {
	opts := layoutOpts{
		width:       cfg.Width,
		height:      cfg.Height,
		nodeWidth:   cfg.NodeWidth,
		nodePadding: cfg.NodePadding,
		align:       cfg.Align,
		iterations:  cfg.Iterations,
		cacheDir:    cfg.CacheDir,
	}

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute diagram geometry for a flow graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), args[0], &opts)
		},
	}
	addLayoutFlags(cmd, &opts)
	return cmd
}

// runLayout loads the graph, computes its layout, and writes the geometry JSON.
func runLayout(ctx context.Context, input string, opts *layoutOpts) error {
	logger := loggerFromContext(ctx)

	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded graph: %d nodes, %d links", len(g.Nodes), len(g.Links))

	runner, closeCache := newRunnerFromFlags(opts, logger)
	defer closeCache()

	popts := opts.pipelineOptions()
	popts.Formats = []string{pipeline.FormatJSON}
	popts.Logger = logger

	spin := newSpinnerWithContext(ctx, "Computing layout")
	spin.Start()
	result, err := runner.Execute(ctx, g, popts)
	spin.Stop()
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "_layout.json"
	}
	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0644); err != nil {
		return err
	}

	printSuccess("Computed layout")
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.LayoutHit)
	printFile(outputPath)
	return nil
}

// loadGraph reads and validates a graph file, mapping missing files to a
// coded error for consistent reporting.
func loadGraph(path string) (graph.Graph, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return graph.Graph{}, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	return graph.ReadGraphFile(path)
}

// newRunnerFromFlags builds a pipeline runner with the configured cache.
// Cache setup failures degrade to an uncached runner with a warning; the
// returned func releases cache resources.
func newRunnerFromFlags(opts *layoutOpts, logger *log.Logger) (*pipeline.Runner, func()) {
	if opts.noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil), func() {}
	}

	dir := opts.cacheDir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			logger.Warnf("cache unavailable: %v", err)
			return pipeline.NewRunner(cache.NewNullCache(), nil), func() {}
		}
		dir = d
	}

	c, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warnf("cache unavailable: %v", err)
		return pipeline.NewRunner(cache.NewNullCache(), nil), func() {}
	}
	return pipeline.NewRunner(c, nil), func() { _ = c.Close() }
}
