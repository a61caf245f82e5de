package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obsidianstack/statuspanels/agent/internal/alerts"
	"github.com/obsidianstack/statuspanels/agent/internal/api"
	"github.com/obsidianstack/statuspanels/agent/internal/config"
	"github.com/obsidianstack/statuspanels/agent/internal/panel"
	"github.com/obsidianstack/statuspanels/agent/internal/store"
	"github.com/obsidianstack/statuspanels/agent/internal/telemetry"
	"github.com/obsidianstack/statuspanels/agent/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	logLevel := flag.String("log-level", "info", "log level: debug | info | warn | error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("statuspanels-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"datasources", len(cfg.Agent.Datasources),
		"panels", len(cfg.Agent.Panels),
		"refresh_interval", cfg.Agent.RefreshInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.New(reg)

	st := store.New()
	alertEngine := alerts.New(cfg.Agent.Alerts)
	board := panel.NewBoard(st, metrics)
	board.Observe(alertEngine)
	if err := board.Load(cfg); err != nil {
		slog.Error("failed to build panels", "err", err)
		os.Exit(1)
	}
	if len(cfg.Agent.Panels) == 0 {
		slog.Warn("no panels configured, agent will idle")
	}

	// Panels are rebuilt on reload. Port, interval and alert changes need a
	// restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			if err := board.Reload(updated); err != nil {
				slog.Error("config reload rejected, keeping previous panels", "err", err)
				return
			}
			slog.Info("config hot-reloaded", "panels", len(updated.Agent.Panels))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	go board.Run(ctx, cfg.Agent.RefreshInterval)

	hub := ws.New(st, cfg.Agent.BroadcastInterval)
	go hub.Run(ctx)

	auth := cfg.Agent.Auth
	mux := http.NewServeMux()
	mux.Handle("/api/", api.New(board, st, alertEngine, auth))
	mux.Handle("/ws/stream", api.APIKey(auth.Mode, auth.EffectiveHeader(), auth.Key())(hub))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Agent.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("statuspanels-agent shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
}
