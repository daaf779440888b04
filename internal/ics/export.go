package ics

import (
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"cronweek/internal/fsutil"
	appLog "cronweek/internal/log"
	"cronweek/internal/model"
)

// DefaultEventDuration is the length given to each firing; cron jobs have
// no end time of their own.
const DefaultEventDuration = 15 * time.Minute

// eventNamespace seeds stable per-occurrence UIDs so re-exports of the same
// week update events in subscribed clients instead of duplicating them.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cronweek:occurrence"))

// ExportConfig controls the iCalendar output.
type ExportConfig struct {
	// Name is shown as the calendar name (X-WR-CALNAME).
	Name string

	// Duration of each event. If zero, DefaultEventDuration is used.
	Duration time.Duration

	// Now is written as DTSTAMP; passing the render instant keeps output
	// deterministic.
	Now time.Time
}

// Export serializes occurrences as a VCALENDAR with one VEVENT per firing.
// Times are written in UTC; X-WR-TIMEZONE carries the display zone.
func Export(occurrences []model.Occurrence, week model.Week, cfg ExportConfig) string {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultEventDuration
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//cronweek//weekly cron calendar//EN")
	if cfg.Name != "" {
		cal.SetXWRCalName(cfg.Name)
	}
	if week.Location != nil {
		cal.SetXWRTimezone(week.Location.String())
	}

	for _, occ := range occurrences {
		start := occ.At.UTC()
		ev := cal.AddEvent(occurrenceUID(occ))
		ev.SetDtStampTime(cfg.Now.UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(cfg.Duration))
		ev.SetSummary(occ.Job.Name)
		if occ.Job.Description != "" {
			ev.SetDescription(occ.Job.Description)
		}
		if occ.Job.Tag != "" {
			ev.AddProperty(ical.ComponentPropertyCategories, occ.Job.Tag)
		}
		if occ.Job.Color != "" {
			ev.AddProperty(ical.ComponentProperty("COLOR"), occ.Job.Color)
		}
	}

	return cal.Serialize()
}

// WriteFile exports and writes the calendar atomically.
func WriteFile(path string, occurrences []model.Occurrence, week model.Week, cfg ExportConfig) error {
	if path == "" {
		return errors.New("ics: empty path")
	}
	body := Export(occurrences, week, cfg)
	if err := fsutil.WriteFileAtomic(path, []byte(body), 0o644, 0o755); err != nil {
		return err
	}
	appLog.Info("ics export written", "path", path, "event_count", len(occurrences))
	return nil
}

func occurrenceUID(occ model.Occurrence) string {
	key := occ.Job.Name + "|" + occ.At.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(eventNamespace, []byte(key)).String()
}
