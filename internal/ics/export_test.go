package ics

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cronweek/internal/expand"
	appLog "cronweek/internal/log"
	"cronweek/internal/model"
)

func TestMain(m *testing.M) {
	appLog.SetOutput(io.Discard)
	m.Run()
}

func fixture(t *testing.T) ([]model.Occurrence, model.Week, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, loc)
	week := model.WeekOf(now, loc)

	occ, err := expand.Occurrences(model.Job{
		Name:        "daily-review",
		Description: "review the day",
		Cron:        "30 8 * * *",
		TZ:          "Asia/Taipei",
		Color:       "#4A90D9",
		Tag:         "openclaw",
	}, week)
	require.NoError(t, err)
	return occ, week, now
}

func TestExport_OneEventPerOccurrence(t *testing.T) {
	occ, week, now := fixture(t)

	body := Export(occ, week, ExportConfig{Name: "OpenClaw", Now: now})

	cal, err := ical.ParseCalendar(strings.NewReader(body))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 7)

	first := events[0]
	assert.Equal(t, "daily-review", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "review the day", first.GetProperty(ical.ComponentPropertyDescription).Value)
	assert.Equal(t, "openclaw", first.GetProperty(ical.ComponentPropertyCategories).Value)

	start, err := first.GetStartAt()
	require.NoError(t, err)
	// 08:30 Taipei on Monday 2025-01-06.
	assert.True(t, start.Equal(time.Date(2025, 1, 6, 0, 30, 0, 0, time.UTC)))
	end, err := first.GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, DefaultEventDuration, end.Sub(start))

	assert.Contains(t, body, "X-WR-TIMEZONE:Asia/Taipei")
	assert.Contains(t, body, "X-WR-CALNAME:OpenClaw")
}

func TestExport_StableUIDs(t *testing.T) {
	occ, week, now := fixture(t)

	a := Export(occ, week, ExportConfig{Now: now})
	b := Export(occ, week, ExportConfig{Now: now})
	assert.Equal(t, a, b)

	uids := make(map[string]bool)
	for _, o := range occ {
		uids[occurrenceUID(o)] = true
	}
	assert.Len(t, uids, len(occ))
}

func TestWriteFile(t *testing.T) {
	occ, week, now := fixture(t)
	path := filepath.Join(t.TempDir(), "docs", "week.ics")

	require.NoError(t, WriteFile(path, occ, week, ExportConfig{Now: now, Duration: time.Hour}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))

	assert.Error(t, WriteFile("", occ, week, ExportConfig{}))
}
