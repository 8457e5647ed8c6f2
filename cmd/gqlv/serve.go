package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv"
	"go.causeway.dev/gqlv/config"
	"go.causeway.dev/gqlv/example/orders"
	"go.causeway.dev/gqlv/metrics"
	"go.causeway.dev/gqlv/schemabuilder"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL endpoint",
		Long: `Serve the demo order domain. The GraphQL endpoint answers POST requests and
serves a playground on GET. /metrics exposes Prometheus metrics and /healthz
reports liveness.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	router, err := newRouter(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("path", cfg.Server.Path),
			zap.String("variant", string(cfg.API.Variant)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter mounts the GraphQL endpoint, the playground, the metrics of reg
// and the health check.
func newRouter(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	handler, err := orders.GetGraphqlServer(cfg, logger, schemabuilder.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle(cfg.Server.Path, handler)
	r.Handle("/playground", gqlv.PlaygroundHandler("Orders", cfg.Server.Path))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r, nil
}
