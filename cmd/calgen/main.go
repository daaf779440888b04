package main

import (
	"os"
	"time"

	"github.com/spf13/pflag"

	"cronweek/internal/cli"
	appLog "cronweek/internal/log"
	"cronweek/internal/pipeline"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", cli.DefaultConfigPath(), "Path to config file")
	pflag.Parse()

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	m := cli.NewMetrics(cfg.MetricsTextfile)
	defer m.Flush()

	// Single clock reading for the whole pass.
	now := time.Now()

	sum, err := pipeline.NewGenerator(cfg, m.Sink).Generate(ctx, now)
	if err != nil {
		appLog.Error("calendar generation failed", err)
		m.Flush()
		os.Exit(1)
	}
	if len(sum.Skipped) > 0 {
		appLog.Warn("some jobs were not placed on the calendar", "skipped", sum.Skipped)
	}
	appLog.Info("generated", "path", sum.OutputPath)
}
