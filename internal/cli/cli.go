// Package cli holds the start-up steps shared by the calgen and calsync
// commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cronweek/internal/config"
	appLog "cronweek/internal/log"
	"cronweek/internal/metrics"
)

// ConfigEnv names the environment variable that overrides the default
// config path.
const ConfigEnv = "CRONWEEK_CONFIG"

// DefaultConfigPath is $CRONWEEK_CONFIG or ./cronweek.yaml.
func DefaultConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	return "cronweek.yaml"
}

// LoadConfig loads the config and applies its log level.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	appLog.Debug("effective config",
		"config_path", path,
		"display_timezone", cfg.DisplayTimezone,
		"jobs_path", cfg.JobsPath,
		"output_path", cfg.OutputPath,
		"ics_path", cfg.ICSPath,
		"metrics_textfile", cfg.MetricsTextfile,
		"preview", cfg.Preview != nil,
	)
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT/SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// Metrics is the sink for one run plus a flush that writes the textfile
// when one is configured.
type Metrics struct {
	Sink metrics.Sink
	prom *metrics.PrometheusSink
	path string
}

// NewMetrics returns a Prometheus-backed sink when path is set, else a
// no-op.
func NewMetrics(path string) *Metrics {
	if path == "" {
		return &Metrics{Sink: metrics.NewNoopSink()}
	}
	prom := metrics.NewPrometheusSink()
	return &Metrics{Sink: prom, prom: prom, path: path}
}

// Flush writes the textfile. Failures are logged only; metrics never fail
// a run.
func (m *Metrics) Flush() {
	if m.prom == nil {
		return
	}
	if err := m.prom.WriteTextfile(m.path); err != nil {
		appLog.Error("metrics textfile write failed", err, "path", m.path)
	}
}
