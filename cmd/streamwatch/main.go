package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trySamm/realtime/internal/auth"
	"github.com/trySamm/realtime/internal/bridge"
	"github.com/trySamm/realtime/internal/cache"
	"github.com/trySamm/realtime/internal/config"
	"github.com/trySamm/realtime/internal/realtime"
	"github.com/trySamm/realtime/internal/telemetry"
	"github.com/trySamm/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/streamwatch.local.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"tenant", cfg.Instance.Tenant,
		"ws_url", cfg.API.WSURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Token source: a token file wins so rotated credentials are picked up
	// on reconnect without a restart.
	var tokens auth.TokenProvider
	if cfg.API.TokenPath != "" {
		tokens = auth.File{Path: cfg.API.TokenPath}
	} else {
		tokens = auth.Static(cfg.API.Token)
	}

	// Metrics
	metrics := telemetry.NewMetrics(nil, map[string]string{
		"tenant": cfg.Instance.Tenant,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle(cfg.Metrics.Path, telemetry.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: metricsMux,
	}
	go func() {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// Wire the realtime core: dispatcher, session, query cache, bridge.
	dispatcher := realtime.NewDispatcher(logger, metrics)

	sessionCfg := realtime.DefaultSessionConfig()
	sessionCfg.URL = cfg.API.WSURL
	sessionCfg.Reconnect = realtime.ReconnectConfig{
		Enabled:      *cfg.Realtime.Reconnect.Enabled,
		MaxAttempts:  cfg.Realtime.Reconnect.MaxAttempts,
		InitialDelay: cfg.Realtime.Reconnect.InitialDelay,
		MaxDelay:     cfg.Realtime.Reconnect.MaxDelay,
	}
	sessionCfg.Heartbeat = realtime.HeartbeatConfig{
		Enabled:  *cfg.Realtime.Heartbeat.Enabled,
		Interval: cfg.Realtime.Heartbeat.Interval,
		Timeout:  cfg.Realtime.Heartbeat.Timeout,
	}

	session := realtime.New(sessionCfg, tokens, dispatcher,
		realtime.WithLogger(logger),
		realtime.WithMetrics(metrics),
	)

	store := cache.NewMemory()
	cacheBridge := bridge.New(store, bridge.WithLogger(logger))
	cacheBridge.Bind(dispatcher, cfg.Instance.Tenant)

	session.OnStateChange(func(st realtime.State) {
		logger.Info("connection state changed",
			"status", st.Status,
			"attempts", st.ReconnectAttempts,
			"error", st.LastError,
		)
	})

	// Print every domain event so the stream can be watched live.
	dispatcher.Subscribe([]string{realtime.Wildcard}, func(e realtime.Event) {
		logger.Info("event",
			"type", e.Type,
			"payload", e.Payload,
			"received_at", e.ReceivedAt.Format(time.RFC3339),
		)
	})

	if err := session.Connect(ctx); err != nil {
		logger.Error("initial connect failed", "error", err)
	}

	<-ctx.Done()

	logger.Info("shutting down")
	session.Disconnect()
	cacheBridge.Unbind()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}

	logger.Info("streamwatch stopped")
}
