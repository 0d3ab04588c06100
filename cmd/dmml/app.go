package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"dmml/internal/config"
	"dmml/internal/logging"
	"dmml/internal/metrics"
	"dmml/internal/metrics/datadog"
	"dmml/internal/metrics/prompush"
	"dmml/internal/storage"
)

const (
	envMetricsBackend = config.EnvMetricsBackend
	envPushgatewayURL = config.EnvPushgatewayURL
)

// loadConfig resolves the configuration: file over defaults, then the
// environment, then flags. Validation issues are printed to w; any error
// severity issue fails the load.
func loadConfig(g *globalFlags, w io.Writer) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if g.metricsBackend != "" {
		cfg.Metrics.Backend = g.metricsBackend
	}
	if g.pushgatewayURL != "" {
		cfg.Metrics.PushgatewayURL = g.pushgatewayURL
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.quiet {
		cfg.Logging.Quiet = true
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintln(w, iss.Error())
	}
	if config.HasErrors(issues) {
		return nil, errors.New("configuration is invalid")
	}
	return cfg, nil
}

// bootstrapDirs creates the log, raw data and report directories.
func bootstrapDirs(p config.Paths) error {
	for _, dir := range []string{p.LogDir, p.RawDir, p.KaggleDir(), p.HuggingFaceDir(), p.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// newLogger opens the stage logger described by cfg.
func newLogger(cfg *config.Config, stage string) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{
		Dir:   cfg.Paths.LogDir,
		Level: level,
		Quiet: cfg.Logging.Quiet,
	}, stage, time.Now())
}

// setupMetrics installs the configured metrics backend. The returned func
// flushes and closes it, reporting a failed flush to the logger it is given.
// A backend that cannot be created is logged and metrics stay disabled.
func setupMetrics(cfg *config.Config, log *logging.Logger) func(*logging.Logger) {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "", "none":
		log.Debug("metrics disabled")
		return func(*logging.Logger) {}
	case "prometheus":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Metrics.Backend)
	}
	if err != nil {
		log.Warn("metrics backend unavailable; metrics disabled", zap.String("backend", cfg.Metrics.Backend), zap.Error(err))
		return func(*logging.Logger) {}
	}
	log.Info("metrics enabled", zap.String("backend", cfg.Metrics.Backend))
	metrics.SetBackend(b)
	return func(log *logging.Logger) {
		if err := metrics.Close(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}
}

// openStore opens the configured report store, or returns nil when storage
// is disabled.
func openStore(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	if !cfg.Storage.Enabled() {
		return nil, nil
	}
	return storage.New(ctx, storage.FromConfig(cfg.Storage))
}
