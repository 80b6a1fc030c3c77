package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"ohana/internal/adapters/query"
	"ohana/internal/config"
	"ohana/internal/core"
	"ohana/internal/platform/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the dataset and serve the query API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	snap, err := openSnapshot(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	stats := snap.Stats()
	log.Info("snapshot built", "driver", cfg.Storage.Driver, "people", stats.People, "locations", stats.Locations, "edges", stats.Edges)

	var traceOut io.Writer
	if cfg.Trace.Path != "" {
		f, err := openTraceFile(cfg.Trace.Path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		traceOut = f
		log.Info("tracing queries", "path", cfg.Trace.Path)
	}

	srv, err := newServer(cfg, snap, log, traceOut)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openTraceFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return f, nil
}

// newServer wires the query service, the API handler, and the metrics
// endpoint onto one mux. A non-nil trace receives one JSON line per query.
func newServer(cfg config.Config, snap *core.Snapshot, log core.Logger, trace io.Writer) (*http.Server, error) {
	svcOpts := []core.ServiceOption{core.WithLogger(log)}
	if trace != nil {
		svcOpts = append(svcOpts, core.WithTracer(core.NewJSONTracer(trace)))
	}
	mux := http.NewServeMux()
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		svcOpts = append(svcOpts, core.WithMetricsRecorder(recorder))
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	var api http.Handler = query.NewHandler(core.NewService(snap, svcOpts...), log)
	if cfg.HTTP.RequestTimeout > 0 {
		api = http.TimeoutHandler(api, cfg.HTTP.RequestTimeout, `{"error":"request timed out"}`)
	}
	mux.Handle("/", api)

	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}, nil
}
