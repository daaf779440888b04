package main

import (
	"os"
	"time"

	"github.com/spf13/pflag"

	"cronweek/internal/cli"
	"cronweek/internal/command"
	"cronweek/internal/jobsync"
	appLog "cronweek/internal/log"
	"cronweek/internal/pipeline"
	"cronweek/internal/publish"
	"cronweek/internal/scheduler"
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

	runner := command.ExecRunner{}
	syncer := &jobsync.Syncer{
		Lister:   scheduler.NewClient(runner, cfg.Scheduler.Command, cfg.Scheduler.Timeout),
		JobsPath: cfg.JobsPath,
		Merge: jobsync.MergeOptions{
			SelfJob:       cfg.Sync.SelfJob,
			SourceTag:     cfg.Sync.SourceTag,
			NameColors:    cfg.Sync.NameColors,
			FallbackColor: cfg.Sync.FallbackColor,
		},
		Generator: pipeline.NewGenerator(cfg, m.Sink),
		Publisher: &publish.Git{
			Runner:  runner,
			RepoDir: cfg.Publish.RepoDir,
			Message: cfg.Publish.CommitMessage,
			Push:    cfg.Publish.Push,
		},
		Metrics: m.Sink,
	}

	rep, err := syncer.Run(ctx, time.Now())
	m.Flush()
	if err != nil {
		appLog.Error("sync failed", err)
		os.Exit(1)
	}
	appLog.Info("sync complete",
		"fetched", rep.Fetched,
		"stored", rep.Stored,
		"occurrences", rep.Render.Occurrences,
		"committed", rep.Committed,
	)
}
