package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/micro-ha/device-inventory/internal/config"
	"github.com/micro-ha/device-inventory/internal/events"
	httpapi "github.com/micro-ha/device-inventory/internal/http"
	"github.com/micro-ha/device-inventory/internal/http/handlers"
	"github.com/micro-ha/device-inventory/internal/logging"
	"github.com/micro-ha/device-inventory/internal/metrics"
	"github.com/micro-ha/device-inventory/internal/poller"
	"github.com/micro-ha/device-inventory/internal/repository/mongodb"
	devicesvc "github.com/micro-ha/device-inventory/internal/services/device"
	"github.com/micro-ha/device-inventory/internal/storage"
)

const (
	startupTimeout = 15 * time.Second
	closeTimeout   = 5 * time.Second
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Resolve configuration, connect to MongoDB and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Resolve()
	if err != nil {
		// The configured logger depends on cfg; report with the default one.
		logging.New(slog.LevelInfo, "json").Error("configuration error", "err", err)
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("configuration resolved", "source", cfg.Source, "port", cfg.Port)

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	db, err := mongodb.Open(startupCtx, cfg.Mongo, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize mongodb", "err", err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Warn("mongodb disconnect failed", "err", err)
		}
	}()

	var history devicesvc.HistoryStore
	if cfg.AuditEnabled() {
		repo, err := storage.New(ctx, cfg.AuditDBPath, logger)
		if err != nil {
			logger.Error("failed to initialize history storage", "path", cfg.AuditDBPath, "err", err)
			return err
		}
		defer repo.Close()
		history = repo
	} else {
		logger.Warn("device history disabled", "AUDIT_DB_PATH", cfg.AuditDBPath)
	}

	hub := events.NewHub(logger, cfg.CORSAllowedOrigins)
	defer hub.Close()

	m := metrics.New()
	m.WatchClients(hub.ClientCount)

	storeMonitor := poller.New(db, m, poller.DefaultInterval, logger)
	go storeMonitor.Run(ctx)

	svc := devicesvc.New(mongodb.NewDeviceRepository(db), history, hub, logger)
	api := handlers.New(svc, db, storeMonitor, m, logger)
	router := httpapi.NewRouter(api, httpapi.Options{
		RequestTimeout:     cfg.RequestTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            m,
		Events:             hub.ServeWS,
	})

	server := httpapi.NewServer(cfg.Addr(), router)
	logger.Info("server starting", "addr", server.Addr)
	if err := httpapi.RunServer(ctx, server, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
