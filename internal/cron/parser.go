package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// standardParser accepts exactly five fields: minute, hour, day-of-month,
// month, day-of-week.
var standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule yields firing times of a cron expression in a fixed zone.
type Schedule interface {
	// Next returns the first firing strictly after the given instant, in
	// the schedule's zone, or the zero time if there is none.
	Next(after time.Time) time.Time
	Location() *time.Location
}

// Parse parses a 5-field expression evaluated in the named IANA zone.
// An empty zone name means UTC.
func Parse(expression, timezone string) (Schedule, error) {
	sched, err := standardParser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expression, err)
	}

	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &schedule{sched: sched, loc: loc}, nil
}

type schedule struct {
	sched cron.Schedule
	loc   *time.Location
}

func (s *schedule) Next(after time.Time) time.Time {
	return s.sched.Next(after.In(s.loc))
}

func (s *schedule) Location() *time.Location {
	return s.loc
}
