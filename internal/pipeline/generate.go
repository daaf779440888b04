// Package pipeline runs one render pass: job store in, calendar artifacts
// out.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"cronweek/internal/capture"
	"cronweek/internal/config"
	"cronweek/internal/fsutil"
	"cronweek/internal/ics"
	appLog "cronweek/internal/log"
	"cronweek/internal/metrics"
	"cronweek/internal/model"
	"cronweek/internal/render"
	"cronweek/internal/store"
)

// CaptureFunc takes the page screenshot; swapped out in tests.
type CaptureFunc func(ctx context.Context, opts capture.Options) error

// Summary describes a finished render pass.
type Summary struct {
	Week        model.Week
	Jobs        int
	Occurrences int
	// Skipped names jobs whose expansion failed or was truncated.
	Skipped    []string
	OutputPath string
}

// Generator renders the calendar from the job store.
type Generator struct {
	cfg     *config.Config
	metrics metrics.Sink
	capture CaptureFunc
}

// NewGenerator builds a Generator. A nil sink disables metrics.
func NewGenerator(cfg *config.Config, sink metrics.Sink) *Generator {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	return &Generator{cfg: cfg, metrics: sink, capture: capture.PagePNG}
}

// Generate renders the week containing now. now is the single clock reading
// for the pass; the week, the "today" marker and the timestamp all derive
// from it.
func (g *Generator) Generate(ctx context.Context, now time.Time) (Summary, error) {
	started := time.Now()

	loc, err := g.cfg.DisplayLocation()
	if err != nil {
		return Summary{}, err
	}

	jobs, err := store.Load(g.cfg.JobsPath)
	if err != nil {
		return Summary{}, err
	}

	week := model.WeekOf(now, loc)
	grid := render.BuildGrid(jobs, week)

	skipped := make([]string, 0, len(grid.Failures))
	for _, f := range grid.Failures {
		skipped = append(skipped, f.Job.Name)
		g.metrics.ExpandFailed(f.Job.Name)
	}

	html, err := render.HTML(grid, now, render.Options{
		Title:     g.cfg.Title,
		Lang:      g.cfg.Lang,
		FooterURL: g.cfg.FooterURL,
	})
	if err != nil {
		return Summary{}, err
	}
	if err := fsutil.WriteFileAtomic(g.cfg.OutputPath, []byte(html), 0o644, 0o755); err != nil {
		return Summary{}, fmt.Errorf("pipeline: write page: %w", err)
	}
	appLog.Info("calendar generated",
		"path", g.cfg.OutputPath,
		"week_start", week.Start().Format("2006-01-02"),
		"jobs", len(jobs),
		"occurrences", len(grid.Occurrences),
		"skipped", len(skipped),
	)

	if g.cfg.ICSPath != "" {
		err := ics.WriteFile(g.cfg.ICSPath, grid.Occurrences, week, ics.ExportConfig{
			Name: g.cfg.Title,
			Now:  now,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("pipeline: write ics: %w", err)
		}
	}

	if p := g.cfg.Preview; p != nil {
		err := g.capture(ctx, capture.Options{
			HTMLPath:   g.cfg.OutputPath,
			OutputPath: p.Path,
			Width:      p.Width,
			Height:     p.Height,
			Timeout:    p.Timeout,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("pipeline: preview: %w", err)
		}
		appLog.Info("preview captured", "path", p.Path)
	}

	g.metrics.RenderCompleted(time.Since(started), len(jobs), len(grid.Occurrences))

	return Summary{
		Week:        week,
		Jobs:        len(jobs),
		Occurrences: len(grid.Occurrences),
		Skipped:     skipped,
		OutputPath:  g.cfg.OutputPath,
	}, nil
}
