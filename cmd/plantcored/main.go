// Command plantcored runs the plant state tracker: transactional stores,
// background monitor, websocket dashboard feed, and the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plantcore/internal/blob"
	"plantcore/internal/config"
	"plantcore/internal/core"
	"plantcore/internal/httpapi"
	"plantcore/internal/logging"
	"plantcore/internal/observability"
	"plantcore/internal/web"
	"plantcore/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "plantcored:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default ./plantcore.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	zlog, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()
	logger := logging.NewAdapter(zlog)

	// Storage and blob selection follow the config; the env factories remain
	// the fallback for container deployments that set variables directly.
	applyStorageEnv(cfg)
	store, err := core.OpenPersistentStore(core.DefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobStore, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	metrics := observability.NewPrometheusRecorder(prometheus.DefaultRegisterer)

	service := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithBlobStore(blobStore),
		core.WithWorkstation(cfg.Workstation),
	)

	hub := web.NewHub(logger)
	go hub.Run(ctx)

	monitor := core.NewMonitor(service,
		core.WithEscalationInterval(cfg.Monitor.EscalationInterval),
		core.WithProgressInterval(cfg.Monitor.ProgressInterval),
		core.WithMonitorLogger(logger),
	)
	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("monitor stopped", "error", err)
		}
	}()

	// Push a dashboard snapshot on every progress tick so connected HMIs see
	// monitor-driven changes, not just command results.
	go func() {
		ticker := time.NewTicker(cfg.Monitor.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := service.Snapshot(ctx)
				if err != nil {
					continue
				}
				hub.BroadcastSnapshot(snap)
			}
		}
	}()

	api := httpapi.NewServer(service,
		httpapi.WithHub(hub),
		httpapi.WithMetricsHandler(promhttp.Handler()),
		httpapi.WithServerLogger(logger),
		httpapi.WithDefaultActor(domain.User{
			ID:       cfg.Operator.ID,
			Username: cfg.Operator.Username,
			FullName: cfg.Operator.FullName,
			Role:     cfg.Operator.Role,
		}),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "storage", cfg.Storage.Driver, "blob", cfg.Blob.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// applyStorageEnv projects config values onto the environment variables the
// store and blob factories read, without clobbering explicit overrides.
func applyStorageEnv(cfg config.Config) {
	setIfUnset("PLANTCORE_STORAGE_DRIVER", cfg.Storage.Driver)
	setIfUnset("PLANTCORE_SQLITE_PATH", cfg.Storage.SQLitePath)
	setIfUnset("PLANTCORE_POSTGRES_DSN", cfg.Storage.PostgresDSN)
	setIfUnset("PLANTCORE_BLOB_DRIVER", cfg.Blob.Driver)
	setIfUnset("PLANTCORE_BLOB_FS_ROOT", cfg.Blob.FSRoot)
}

func setIfUnset(key, value string) {
	if value == "" {
		return
	}
	if _, ok := os.LookupEnv(key); !ok {
		os.Setenv(key, value)
	}
}
