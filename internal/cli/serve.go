package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/prereqtree/pkg/observability"
	"github.com/matzehuels/prereqtree/pkg/server"
)

const (
	shutdownTimeout = 5 * time.Second
	pruneInterval   = time.Minute
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	noMetrics bool
	noCache   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive views over HTTP",
		Long: `Serve holds prerequisite trees in memory and exposes them over HTTP.
POST a payload to /views, then toggle nodes with
POST /views/{id}/nodes/{node}/toggle. Idle views are pruned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr == "" {
				opts.addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// runServe runs the HTTP server and the view pruner until ctx is
// cancelled or either fails.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	so := server.DefaultOptions()
	so.View = c.Config.ViewOptions()
	so.View.Logger = logger
	so.Canvas = c.Config.Canvas
	so.Tags = c.Config.Tags
	so.Runner = runner
	so.Logger = logger
	if c.Config.Server.MaxViews > 0 {
		so.MaxViews = c.Config.Server.MaxViews
	}
	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetViewHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		so.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	srv := server.New(so)
	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", opts.addr, "metrics", !opts.noMetrics)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if idle := c.Config.Server.IdleTimeout; idle > 0 {
		g.Go(func() error {
			return srv.RunPruner(ctx, pruneInterval, idle)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down", "views", srv.Len())
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
			return httpSrv.Close()
		}
		return nil
	})

	return g.Wait()
}
