package expand

import (
	"errors"
	"fmt"
	"time"

	"cronweek/internal/cron"
	appLog "cronweek/internal/log"
	"cronweek/internal/model"
)

const (
	// Padding applied to the search window in job-local time. A firing in
	// another zone can move across a day boundary once converted, by up to
	// 24h plus rounding.
	lowerPad = time.Hour
	upperPad = 25 * time.Hour

	// DefaultMaxOccurrencesPerJob bounds a single job's expansion. The
	// padded window is under 9 days, so an every-minute job stays below it.
	DefaultMaxOccurrencesPerJob = 9 * 24 * 60
)

// ErrTruncated is reported when a job hits the per-job occurrence cap.
var ErrTruncated = errors.New("expand: max occurrences reached")

// Config controls expansion of a batch of jobs.
type Config struct {
	// MaxOccurrencesPerJob is a safety cap. If zero,
	// DefaultMaxOccurrencesPerJob is used.
	MaxOccurrencesPerJob int
}

// Failure records a job that contributed no occurrences (or a truncated
// set) and why.
type Failure struct {
	Job model.Job
	Err error
}

// Result is the outcome of expanding a batch of jobs for one week.
type Result struct {
	// Occurrences in job iteration order, then firing order.
	Occurrences []model.Occurrence
	Failures    []Failure
}

// Occurrences returns every firing of job inside week, in display-local
// terms. A malformed cron expression or unknown timezone yields an empty
// slice and a non-nil diagnostic; it never panics.
func Occurrences(job model.Job, week model.Week) ([]model.Occurrence, error) {
	return occurrences(job, week, DefaultMaxOccurrencesPerJob)
}

// All expands every job. Failures are collected and logged but never stop
// the batch.
func All(jobs []model.Job, week model.Week, cfg Config) Result {
	limit := cfg.MaxOccurrencesPerJob
	if limit <= 0 {
		limit = DefaultMaxOccurrencesPerJob
	}

	var result Result
	for _, job := range jobs {
		occ, err := occurrences(job, week, limit)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Job: job, Err: err})
			appLog.Error("expand: job skipped", err,
				"job", job.Name,
				"cron", job.Cron,
				"tz", job.Timezone(),
				"kept", len(occ),
			)
		}
		result.Occurrences = append(result.Occurrences, occ...)
	}
	return result
}

func occurrences(job model.Job, week model.Week, limit int) ([]model.Occurrence, error) {
	display := week.Location
	if display == nil {
		display = time.Local
	}

	sched, err := cron.Parse(job.Cron, job.Timezone())
	if err != nil {
		return []model.Occurrence{}, fmt.Errorf("expand %s: %w", job.Name, err)
	}
	jobLoc := sched.Location()

	// Window in job-local time: the first anchor less the lower pad up to
	// the last (Sunday) anchor plus the upper pad.
	windowStart := week.Days[0].In(jobLoc).Add(-lowerPad)
	windowEnd := week.Days[model.DaysPerWeek-1].In(jobLoc).Add(upperPad)

	weekStart := week.Start()
	weekEnd := week.End()

	out := make([]model.Occurrence, 0)
	cursor := windowStart
	var lastWall time.Time
	for {
		next := sched.Next(cursor)
		// Compared in job-local terms so termination never depends on the
		// display zone.
		if next.IsZero() || next.After(windowEnd) {
			break
		}
		cursor = next

		// When the job's zone falls back, the repeated wall-clock hour is
		// yielded again by the iterator. It fires once.
		wall := wallClock(next.In(jobLoc))
		if !lastWall.IsZero() && !wall.After(lastWall) {
			continue
		}
		lastWall = wall

		local := next.In(display)
		// Padding-only hits belong to the neighbouring week.
		if local.Before(weekStart) || !local.Before(weekEnd) {
			continue
		}
		day := mondayIndex(local.Weekday())
		if day < 0 || day >= model.DaysPerWeek {
			continue
		}

		if len(out) >= limit {
			return out, fmt.Errorf("expand %s: %w (cap %d)", job.Name, ErrTruncated, limit)
		}
		out = append(out, model.Occurrence{
			Job:    job,
			Day:    day,
			Hour:   local.Hour(),
			Minute: local.Minute(),
			At:     local,
		})
	}

	return out, nil
}

// wallClock drops the zone offset so local readings compare as written.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// mondayIndex maps time.Weekday (Sunday=0) to a Monday-based index.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
