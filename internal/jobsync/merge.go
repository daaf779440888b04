// Package jobsync refreshes the job store from the external scheduler and
// republishes the calendar.
package jobsync

import (
	"cronweek/internal/model"
	"cronweek/internal/scheduler"
)

// MergeOptions are the fixed inputs of a merge.
type MergeOptions struct {
	// SelfJob is the calendar's own regeneration task, always first.
	SelfJob model.Job

	// SourceTag is assigned to every fetched job.
	SourceTag string

	// NameColors gives defaults for known names; FallbackColor covers the rest.
	NameColors    map[string]string
	FallbackColor string
}

// Merge builds the new job list: SelfJob, then each fetched job in fetch
// order. A color already stored for the same name is kept; otherwise the
// name default or the fallback applies. Only the color carries over from
// previous; every other field comes from the fetch.
func Merge(previous []model.Job, fetched []scheduler.RemoteJob, opts MergeOptions) []model.Job {
	stored := make(map[string]string, len(previous))
	for _, j := range previous {
		if j.Color != "" {
			stored[j.Name] = j.Color
		}
	}

	self := opts.SelfJob
	if self.TZ == "" {
		self.TZ = model.DefaultTimezone
	}

	out := make([]model.Job, 0, len(fetched)+1)
	out = append(out, self)
	for _, r := range fetched {
		out = append(out, model.Job{
			Name:        r.Name,
			Description: r.Description,
			Cron:        r.Expr,
			TZ:          r.TZ,
			Color:       pickColor(r.Name, stored, opts),
			Tag:         opts.SourceTag,
		})
	}
	return out
}

func pickColor(name string, stored map[string]string, opts MergeOptions) string {
	if c, ok := stored[name]; ok {
		return c
	}
	if c, ok := opts.NameColors[name]; ok && c != "" {
		return c
	}
	return opts.FallbackColor
}
