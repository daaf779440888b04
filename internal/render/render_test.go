package render

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appLog "cronweek/internal/log"
	"cronweek/internal/model"
)

func TestMain(m *testing.M) {
	appLog.SetOutput(io.Discard)
	m.Run()
}

func taipeiWeek(t *testing.T) (model.Week, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, loc)
	return model.WeekOf(now, loc), now
}

func TestRender_ZeroJobs(t *testing.T) {
	week, now := taipeiWeek(t)

	html, err := Render(nil, week, now, Options{Title: "Cal", Lang: "en"})
	require.NoError(t, err)

	assert.Equal(t, 7, strings.Count(html, `<th class="day-header`))
	assert.Equal(t, 24, strings.Count(html, `<td class="hour-label">`))
	assert.Equal(t, 7*24, strings.Count(html, `<td class="cell"></td>`))
	assert.Contains(t, html, `<div class="legend"></div>`)
	assert.Contains(t, html, "<td class=\"hour-label\">00:00</td>")
	assert.Contains(t, html, "<td class=\"hour-label\">23:00</td>")
	assert.Contains(t, html, "2025/01/06 – 2025/01/12")
	assert.Contains(t, html, "Asia/Taipei")
	assert.Contains(t, html, "2025-01-08 12:00 CST")
	assert.NotContains(t, html, "<footer>")
}

func TestRender_LegendLastColorWinsAndTodayOnce(t *testing.T) {
	week, now := taipeiWeek(t)
	jobs := []model.Job{
		{Name: "a", Cron: "0 9 * * *", TZ: "Asia/Taipei", Color: "#111111", Tag: "ops"},
		{Name: "b", Cron: "0 10 * * *", TZ: "Asia/Taipei", Color: "#222222", Tag: "ops"},
	}

	html, err := Render(jobs, week, now, Options{})
	require.NoError(t, err)

	assert.Equal(t, []LegendEntry{{Tag: "ops", Color: "#222222"}}, Legend(jobs))
	assert.Equal(t, 1, strings.Count(html, `class="legend-item"`))
	assert.Contains(t, html, `<span class="legend-dot" style="background:#222222"></span>ops`)

	assert.Equal(t, 1, strings.Count(html, `class="day-header today"`))
	assert.Contains(t, html, `<th class="day-header today">Wed<br><span class="day-date">01/08</span></th>`)
}

func TestRender_TodayOutsideWeek(t *testing.T) {
	week, now := taipeiWeek(t)

	html, err := Render(nil, week, now.AddDate(0, 0, 14), Options{})
	require.NoError(t, err)
	assert.NotContains(t, html, "day-header today")
}

func TestLegend_FirstSeenOrder(t *testing.T) {
	jobs := []model.Job{
		{Tag: "b", Color: "1"},
		{Tag: "a", Color: "2"},
		{Tag: "b", Color: "3"},
		{Tag: "", Color: "4"},
	}
	assert.Equal(t, []LegendEntry{
		{Tag: "b", Color: "3"},
		{Tag: "a", Color: "2"},
		{Tag: "", Color: "4"},
	}, Legend(jobs))
	assert.Empty(t, Legend(nil))
}

func TestBuildGrid_CellOrder(t *testing.T) {
	week, _ := taipeiWeek(t)
	jobs := []model.Job{
		{Name: "first", Cron: "0,30 9 * * 1", TZ: "Asia/Taipei"},
		{Name: "second", Cron: "15 9 * * 1", TZ: "Asia/Taipei"},
		{Name: "broken", Cron: "nope"},
	}

	g := BuildGrid(jobs, week)

	names := make([]string, 0)
	for _, j := range g.Cells[0][9] {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"first", "first", "second"}, names)
	require.Len(t, g.Failures, 1)
	assert.Equal(t, "broken", g.Failures[0].Job.Name)
	assert.Len(t, g.Occurrences, 3)
}

func TestRender_EventMarkupIsEscaped(t *testing.T) {
	week, now := taipeiWeek(t)
	jobs := []model.Job{{
		Name:        "<b>x</b>",
		Description: `say "hi" & <leave>`,
		Cron:        "0 9 * * 1",
		TZ:          "Asia/Taipei",
		Color:       "#4A90D9",
		Tag:         "openclaw",
	}}

	html, err := Render(jobs, week, now, Options{FooterURL: "https://github.com/greg18jrr-ops/openclaw-calendar"})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(html, `<td class="cell has-event">`))
	assert.Contains(t, html, `style="background:#4A90D9"`)
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
	assert.NotContains(t, html, "<leave>")
	assert.Contains(t, html, ">openclaw-calendar</a>")
}

func TestRender_Deterministic(t *testing.T) {
	week, now := taipeiWeek(t)
	jobs := []model.Job{
		{Name: "a", Cron: "*/15 * * * *", TZ: "Europe/Berlin", Color: "#111", Tag: "x"},
		{Name: "b", Cron: "0 0 * * *", TZ: "UTC", Color: "#222", Tag: "y"},
	}

	first, err := Render(jobs, week, now, Options{Title: "t"})
	require.NoError(t, err)
	second, err := Render(jobs, week, now, Options{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_WeekWithoutLocation(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)
	var week model.Week
	for i := range week.Days {
		week.Days[i] = monday.AddDate(0, 0, i)
	}
	now := monday.Add(36 * time.Hour)

	var (
		html string
		err  error
	)
	require.NotPanics(t, func() {
		html, err = Render([]model.Job{{Name: "nightly", Cron: "0 3 * * *", TZ: "UTC", Tag: "ops"}}, week, now, Options{Title: "t"})
	})
	require.NoError(t, err)
	assert.Contains(t, html, time.Local.String())
	assert.Equal(t, 1, strings.Count(html, "day-header today"))
}
