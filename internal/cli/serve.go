package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowviz/sankey/internal/server"
	"github.com/flowviz/sankey/pkg/cache"
	"github.com/flowviz/sankey/pkg/pipeline"
	"github.com/flowviz/sankey/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redis    string // Redis address for the shared cache (empty = file cache)
	mongoURI string // MongoDB URI for the diagram store (empty = in-memory)
	mongoDB  string // MongoDB database name
	cacheDir string // file cache directory when Redis is not configured
	noCache  bool   // disable caching entirely
}

// newServeCmd creates the serve command for running the HTTP API.
func newServeCmd(cfg Config) *cobra.Command {
	opts := serveOpts{
		addr:     cfg.Server.Addr,
		redis:    cfg.Server.RedisURL,
		mongoURI: cfg.Server.MongoURI,
		mongoDB:  cfg.Server.MongoDatabase,
		cacheDir: cfg.CacheDir,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", opts.redis, "Redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB URI for persistent diagram storage")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-database", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", opts.cacheDir, "cache directory (when Redis is not configured)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	return cmd
}

// runServe wires up the cache, store, and router, then serves until the
// context is cancelled.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	c, err := buildCache(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := buildStore(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           server.NewServer(pipeline.NewRunner(c, logger), st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildCache selects the cache backend: Redis when configured, a file cache
// otherwise, and a null cache when caching is disabled or unavailable.
func buildCache(ctx context.Context, opts *serveOpts, logger *log.Logger) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redis != "" {
		logger.Info("using Redis cache", "addr", opts.redis)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redis})
	}

	dir := opts.cacheDir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			logger.Warnf("cache unavailable: %v", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	logger.Info("using file cache", "dir", dir)
	return cache.NewFileCache(dir)
}

// buildStore selects the diagram store backend: MongoDB when configured,
// in-memory otherwise.
func buildStore(ctx context.Context, opts *serveOpts, logger *log.Logger) (store.Store, error) {
	if opts.mongoURI != "" {
		logger.Info("using MongoDB store", "database", opts.mongoDB)
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      opts.mongoURI,
			Database: opts.mongoDB,
		})
	}
	logger.Info("using in-memory store")
	return store.NewMemoryStore(), nil
}
