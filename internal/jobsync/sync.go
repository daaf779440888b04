package jobsync

import (
	"context"
	"fmt"
	"time"

	appLog "cronweek/internal/log"
	"cronweek/internal/metrics"
	"cronweek/internal/pipeline"
	"cronweek/internal/scheduler"
	"cronweek/internal/store"
)

// Lister fetches job definitions from the external scheduler.
type Lister interface {
	List(ctx context.Context) ([]scheduler.RemoteJob, error)
}

// Generator runs one render pass.
type Generator interface {
	Generate(ctx context.Context, now time.Time) (pipeline.Summary, error)
}

// Publisher commits and pushes; it reports whether a commit was made.
type Publisher interface {
	Publish(ctx context.Context) (bool, error)
}

// Syncer wires one fetch -> merge -> store -> render -> publish cycle.
type Syncer struct {
	Lister    Lister
	JobsPath  string
	Merge     MergeOptions
	Generator Generator
	Publisher Publisher
	Metrics   metrics.Sink
}

// Report summarizes a finished cycle.
type Report struct {
	Fetched   int
	Stored    int
	Render    pipeline.Summary
	Committed bool
}

// Run executes the cycle. A fetch failure returns before anything is
// written; later failures propagate without rolling back files already
// written.
func (s *Syncer) Run(ctx context.Context, now time.Time) (Report, error) {
	sink := s.Metrics
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	var rep Report

	appLog.Info("fetching scheduler jobs")
	fetched, err := s.Lister.List(ctx)
	if err != nil {
		sink.SyncFailed(metrics.StageFetch)
		return rep, fmt.Errorf("jobsync: fetch: %w", err)
	}
	rep.Fetched = len(fetched)
	appLog.Info("scheduler jobs fetched", "count", len(fetched))

	previous, err := store.LoadOrEmpty(s.JobsPath)
	if err != nil {
		sink.SyncFailed(metrics.StageStore)
		return rep, fmt.Errorf("jobsync: read previous: %w", err)
	}

	merged := Merge(previous, fetched, s.Merge)
	if err := store.Save(s.JobsPath, merged); err != nil {
		sink.SyncFailed(metrics.StageStore)
		return rep, fmt.Errorf("jobsync: write store: %w", err)
	}
	rep.Stored = len(merged)
	appLog.Info("job store updated", "path", s.JobsPath, "jobs", len(merged))

	rep.Render, err = s.Generator.Generate(ctx, now)
	if err != nil {
		sink.SyncFailed(metrics.StageRender)
		return rep, fmt.Errorf("jobsync: render: %w", err)
	}

	rep.Committed, err = s.Publisher.Publish(ctx)
	if err != nil {
		sink.SyncFailed(metrics.StagePublish)
		return rep, fmt.Errorf("jobsync: publish: %w", err)
	}

	sink.SyncCompleted(rep.Fetched, rep.Committed)
	return rep, nil
}
