package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/equipviz/internal/animation"
	"github.com/JonMunkholm/equipviz/internal/config"
	"github.com/JonMunkholm/equipviz/internal/core"
	"github.com/JonMunkholm/equipviz/internal/history"
	"github.com/JonMunkholm/equipviz/internal/logging"
	"github.com/JonMunkholm/equipviz/internal/watch"
	"github.com/JonMunkholm/equipviz/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"history_driver", cfg.History.Driver,
		"history_retention", cfg.History.Retention,
		"watch_dir", cfg.Watch.Dir,
	)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openHistory(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := core.NewService(store, animation.NewSequencer(), core.Options{
		Metrics:        core.NewMetrics(reg),
		HistoryTimeout: cfg.History.Timeout,
		MaxWait:        cfg.Upload.MaxWaitTime,
	})
	server := web.NewServer(service, cfg, reg)

	var watcher *watch.Watcher
	if cfg.Watch.Dir != "" {
		if watcher, err = watch.New(cfg.Watch.Dir, cfg.Watch.Debounce, service); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return animation.NewDriver(service.Sequencer(), cfg.Animation.Step, cfg.Animation.Interval).Run(gctx)
	})

	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := service.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("ingestion did not complete in time", "error", err)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
			return err
		}
		return nil
	})

	return g.Wait()
}

// openHistory opens the configured store. When the medium is unreachable or
// corrupt the server still starts: ingestion keeps publishing views and the
// dashboard reports history as unavailable.
func openHistory(ctx context.Context, hc config.HistoryConfig) (history.Store, func() error, error) {
	store, closeStore, err := history.OpenStore(ctx, hc.Driver, hc.DSN, hc.Retention)
	switch {
	case errors.Is(err, history.ErrUnavailable):
		slog.Warn("history store unavailable, serving without history",
			"driver", hc.Driver,
			"error", err,
		)
		return history.Degraded(err), closeStore, nil
	case err != nil:
		return nil, closeStore, err
	}
	slog.Info("history store ready", "driver", hc.Driver)
	return store, closeStore, nil
}
