package model

import "time"

// DefaultTimezone is used for jobs that do not name a zone.
const DefaultTimezone = "UTC"

// DaysPerWeek and HoursPerDay fix the calendar grid shape.
const (
	DaysPerWeek = 7
	HoursPerDay = 24
)

// Job is one cron-scheduled job as stored in the job list.
// Name is the identity key.
type Job struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cron        string `json:"cron"`
	TZ          string `json:"tz"`
	Color       string `json:"color"`
	Tag         string `json:"tag"`
}

// Timezone returns the job's IANA zone name, defaulting to UTC.
func (j Job) Timezone() string {
	if j.TZ == "" {
		return DefaultTimezone
	}
	return j.TZ
}

// Week is the Monday-first sequence of day anchors (00:00 local) in the
// display timezone.
type Week struct {
	Days     [DaysPerWeek]time.Time
	Location *time.Location
}

// WeekOf returns the week containing now, in loc.
func WeekOf(now time.Time, loc *time.Location) Week {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	// time.Weekday is Sunday=0; shift so Monday=0.
	offset := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)

	w := Week{Location: loc}
	for i := range w.Days {
		w.Days[i] = monday.AddDate(0, 0, i)
	}
	return w
}

// Start is Monday 00:00.
func (w Week) Start() time.Time {
	return w.Days[0]
}

// End is the Monday 00:00 following the week (exclusive bound).
func (w Week) End() time.Time {
	return w.Days[0].AddDate(0, 0, DaysPerWeek)
}

// Contains reports whether t falls in [Start, End).
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && t.Before(w.End())
}

// DayIndex returns the Monday-based index of the day whose calendar date
// equals t's date in the week's location, or -1.
func (w Week) DayIndex(t time.Time) int {
	local := t.In(w.Location)
	y, m, d := local.Date()
	for i, day := range w.Days {
		dy, dm, dd := day.Date()
		if dy == y && dm == m && dd == d {
			return i
		}
	}
	return -1
}

// Occurrence is one firing of a job, in display-local terms.
type Occurrence struct {
	Job Job

	// Day is Monday-based (0..6); Hour and Minute are display-local.
	Day    int
	Hour   int
	Minute int

	// At is the instant of the firing in the display timezone.
	At time.Time
}
