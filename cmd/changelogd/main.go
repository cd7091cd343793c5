// Command changelogd runs the changelog pipeline as a daemon: an HTTP API
// for manual generation and reads, plus an optional recurring trigger.
//
// Usage:
//
//	changelogd -config changelogd.yaml
//
// A .env file in the working directory is loaded first; DSNs and URLs in
// the config file may reference its variables as ${NAME}.
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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/randalmurphal/changelogify/internal/telemetry"
	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/schedule"
	"github.com/randalmurphal/changelogify/pkg/changelogify/server"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
)

func main() {
	_ = godotenv.Load()

	path := flag.String("config", envOr("CHANGELOGD_CONFIG", "changelogd.yaml"), "path to the config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *path); err != nil {
		fmt.Fprintln(os.Stderr, "changelogd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	cfg, err := config.FromFile(path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel, err := telemetry.Setup(ctx, telemetry.ConfigFrom(cfg.Sub("telemetry")), reg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	logCfg := cfg.Sub("log")
	logger := telemetry.NewLogger(os.Stdout, logCfg.String("level", "info"), logCfg.String("format", "json"), tel)
	slog.SetDefault(logger)

	handle, err := openDatabase(cfg.Sub("database"))
	if err != nil {
		return err
	}
	defer handle.Close()

	native := source.NewNativeSource(handle)
	if err := native.EnsureSchema(ctx); err != nil {
		// Fetch retries the schema on every run; until it succeeds the native
		// source contributes no events and the other sources still run.
		logger.Warn("native log schema unavailable", slog.String("error", err.Error()))
	}

	store, err := openStore(ctx, cfg.Sub("releases"))
	if err != nil {
		return err
	}
	defer store.Close()

	d := newDaemon(source.NewDefaultRegistry(handle), store, logger, schedule.NewMetrics(reg))
	d.apply(ctx, config.SettingsFrom(cfg.Sub("settings")))
	defer d.stop()

	watcher, err := config.Watch(ctx, path, func(next config.Config) {
		d.apply(ctx, config.SettingsFrom(next.Sub("settings")))
	}, config.WithWatchLogger(logger))
	if err != nil {
		logger.Warn("config reload disabled", slog.String("error", err.Error()))
	} else {
		defer watcher.Close()
	}

	e := server.New(server.Deps{
		Pipeline: d.pipeline.Load,
		Recorder: source.NewRecorder(native, source.WithRecorderLogger(logger)),
		Gatherer: reg,
		Logger:   logger,
	})

	addr := cfg.Sub("server").String("addr", ":8080")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
