package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the sankey CLI and returns an error if any command fails.
//
// The function loads user defaults from the config file, sets up the root
// command with all subcommands (layout, render, serve, cache), configures
// logging based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext. Cancelling ctx stops in-flight work and shuts the serve
// command down gracefully.
func Execute(ctx context.Context) error {
	var verbose bool

	cfg, err := loadConfig("")
	if err != nil {
		printWarning("%v (using defaults)", err)
		cfg = defaultConfig()
	}

	root := &cobra.Command{
		Use:          appName,
		Short:        "Sankey lays out and renders flow diagrams",
		Long:         `Sankey is a CLI tool for computing Sankey diagram layouts from weighted flow graphs and rendering them as SVG, with proportional node heights and curved link ribbons.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newLayoutCmd(cfg))
	root.AddCommand(newRenderCmd(cfg))
	root.AddCommand(newServeCmd(cfg))
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
