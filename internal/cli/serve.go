package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamline/pkg/buildinfo"
	"github.com/matzehuels/seamline/pkg/cache"
	"github.com/matzehuels/seamline/pkg/pipeline"
	"github.com/matzehuels/seamline/pkg/server"
	"github.com/matzehuels/seamline/pkg/store"
)

// serveFlags holds the flags of the serve command.
type serveFlags struct {
	addr     string
	storeDir string
	redisURL string
	mongoURI string
	mongoDB  string
	timeout  time.Duration
	noCache  bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview API",
		Long: `Run the HTTP preview API.

Patterns are kept in a directory store, or in MongoDB with --mongo-uri.
Rendered artifacts are cached on disk, or in Redis with --redis-url so that
several servers can share them.

Endpoints:
  GET    /healthz
  GET    /patterns
  GET    /patterns/{name}
  PUT    /patterns/{name}
  DELETE /patterns/{name}
  POST   /patterns/{name}/render
  POST   /render`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyServerConfig(cmd, &flags)
			ctx := cmd.Context()

			st, err := c.openStore(ctx, flags)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			ch, err := c.openServerCache(ctx, flags)
			if err != nil {
				st.Close(context.Background())
				return err
			}
			// Servers of different versions may share a Redis cache.
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+"-"+buildinfo.Version+":")
			runner := pipeline.NewRunner(ch, keyer, c.Logger)
			defer runner.Close()

			srv := server.New(st, runner, c.Logger, server.WithRenderTimeout(flags.timeout))
			return srv.ListenAndServe(ctx, flags.addr)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&flags.storeDir, "store-dir", "", "pattern store directory (default ~/.local/share/seamline/patterns)")
	cmd.Flags().StringVar(&flags.redisURL, "redis-url", "", "share the render cache through Redis")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo-uri", "", "store patterns in MongoDB")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-db", "", "MongoDB database name (default "+store.DefaultMongoDatabase+")")
	cmd.Flags().DurationVar(&flags.timeout, "render-timeout", server.DefaultRenderTimeout, "maximum time per render request")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")
	return cmd
}

// applyServerConfig fills flags that were not given from the config file.
func (c *CLI) applyServerConfig(cmd *cobra.Command, flags *serveFlags) {
	cfg := c.Config.Server
	fill := func(name string, dst *string, v string) {
		if !cmd.Flags().Changed(name) && v != "" {
			*dst = v
		}
	}
	fill("addr", &flags.addr, cfg.Addr)
	fill("store-dir", &flags.storeDir, cfg.StoreDir)
	fill("redis-url", &flags.redisURL, cfg.RedisURL)
	fill("mongo-uri", &flags.mongoURI, cfg.MongoURI)
	fill("mongo-db", &flags.mongoDB, cfg.MongoDatabase)
	if flags.addr == "" {
		flags.addr = defaultConfig().Server.Addr
	}
}

func (c *CLI) openStore(ctx context.Context, flags serveFlags) (store.Store, error) {
	if flags.mongoURI != "" {
		c.Logger.Info("using mongodb store", "database", nameOrDefault(flags.mongoDB, store.DefaultMongoDatabase))
		return store.NewMongoStore(ctx, flags.mongoURI, flags.mongoDB, "")
	}
	dir := flags.storeDir
	if dir == "" {
		var err error
		if dir, err = dataDir(); err != nil {
			return nil, err
		}
	}
	c.Logger.Info("using directory store", "dir", dir)
	return store.NewFileStore(dir)
}

func (c *CLI) openServerCache(ctx context.Context, flags serveFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL != "" {
		c.Logger.Info("using redis cache")
		return cache.NewRedisCache(ctx, flags.redisURL, "")
	}
	return c.newCache(false)
}

func nameOrDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
