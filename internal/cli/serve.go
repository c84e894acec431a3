package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fontsnap/fontsnap/internal/server"
	"github.com/fontsnap/fontsnap/pkg/cache"
	"github.com/fontsnap/fontsnap/pkg/fetch"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		redisAddr  string
		mongoURI   string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the embedding engine as an HTTP service",
		Long: `Serve exposes font embedding over HTTP. Documents posted to /embed share
one resource store, so a font fetched for one document is reused for every
other document referencing the same URL.

The stores default to process memory. Point --redis or --mongo (or the
[server] config section) at a shared backend for multi-instance
deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(configPath); err != nil {
				return err
			}
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			if redisAddr != "" {
				c.Config.Server.Redis.Addr = redisAddr
			}
			if mongoURI != "" {
				c.Config.Server.Mongo.URI = mongoURI
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the shared stores")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "mongodb uri for the shared stores")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	resources, attempts, err := c.serveStores(ctx)
	if err != nil {
		return err
	}
	defer resources.Close()
	defer attempts.Close()

	var fetchOpts []fetch.Option
	if c.Config.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(c.Config.UserAgent))
	}

	srv := server.New(server.Config{
		Resources: resources,
		Attempts:  attempts,
		Fetcher:   fetch.NewClient(fetchOpts...),
		Logger:    c.Logger,
	})

	httpSrv := &http.Server{
		Addr:              c.Config.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serveStores builds the shared stores from config: Redis when a redis
// address is set, Mongo when a mongo URI is set, process memory otherwise.
func (c *CLI) serveStores(ctx context.Context) (cache.Cache, cache.SeenSet, error) {
	cfg := c.Config.Server

	switch {
	case cfg.Redis.Addr != "":
		redisCfg := cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		resources, err := cache.NewRedisCache(ctx, redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		attempts, err := cache.NewRedisSet(ctx, redisCfg, "font-attempts")
		if err != nil {
			resources.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis stores", "addr", cfg.Redis.Addr)
		return resources, attempts, nil

	case cfg.Mongo.URI != "":
		mongoCfg := cache.MongoConfig{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}
		resources, err := cache.NewMongoCache(ctx, mongoCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		attempts, err := cache.NewMongoSet(ctx, mongoCfg)
		if err != nil {
			resources.Close()
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		c.Logger.Info("using mongo stores", "database", mongoCfg.Database)
		return resources, attempts, nil

	default:
		return cache.NewMemoryCache(), cache.NewMemorySet(), nil
	}
}
