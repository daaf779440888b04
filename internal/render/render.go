package render

import (
	_ "embed"
	"fmt"
	"path"
	"time"

	"github.com/flosch/pongo2/v6"

	"cronweek/internal/expand"
	"cronweek/internal/model"
)

var dayNames = [model.DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

//go:embed templates/calendar.html
var pageSource string

var pageTemplate = pongo2.Must(pongo2.FromString(pageSource))

// Options carries page chrome that is not derived from the jobs.
type Options struct {
	Title     string
	Lang      string
	FooterURL string
}

// Grid is the day×hour placement of jobs for one week.
type Grid struct {
	Week model.Week
	Jobs []model.Job

	// Cells[day][hour] lists jobs firing in that hour, in job order then
	// firing order. A job appears once per firing.
	Cells [model.DaysPerWeek][model.HoursPerDay][]model.Job

	Occurrences []model.Occurrence
	Failures    []expand.Failure
}

// LegendEntry maps a tag to its display color.
type LegendEntry struct {
	Tag   string
	Color string
}

type dayHeader struct {
	Name  string
	Date  string
	Today bool
}

type hourRow struct {
	Label string
	Cells [][]model.Job
}

// BuildGrid expands every job for week and places each firing in its cell.
// Jobs that fail to expand are listed in Failures and contribute nothing.
func BuildGrid(jobs []model.Job, week model.Week) Grid {
	res := expand.All(jobs, week, expand.Config{})

	g := Grid{
		Week:        week,
		Jobs:        jobs,
		Occurrences: res.Occurrences,
		Failures:    res.Failures,
	}
	for _, occ := range res.Occurrences {
		g.Cells[occ.Day][occ.Hour] = append(g.Cells[occ.Day][occ.Hour], occ.Job)
	}
	return g
}

// Legend returns one entry per distinct tag in first-seen order. When a tag
// appears with several colors the last one wins.
func Legend(jobs []model.Job) []LegendEntry {
	index := make(map[string]int)
	out := make([]LegendEntry, 0)
	for _, j := range jobs {
		if i, ok := index[j.Tag]; ok {
			out[i].Color = j.Color
			continue
		}
		index[j.Tag] = len(out)
		out = append(out, LegendEntry{Tag: j.Tag, Color: j.Color})
	}
	return out
}

// HTML renders the grid as a self-contained page. now drives the "today"
// marker and the update timestamp; it is converted to the week's zone,
// or to time.Local when the week carries none.
func HTML(g Grid, now time.Time, opts Options) (string, error) {
	week := g.Week
	if week.Location == nil {
		week.Location = time.Local
	}
	local := now.In(week.Location)
	today := week.DayIndex(local)

	days := make([]dayHeader, 0, model.DaysPerWeek)
	for i, d := range week.Days {
		days = append(days, dayHeader{
			Name:  dayNames[i],
			Date:  d.Format("01/02"),
			Today: i == today,
		})
	}

	rows := make([]hourRow, 0, model.HoursPerDay)
	for h := 0; h < model.HoursPerDay; h++ {
		row := hourRow{
			Label: fmt.Sprintf("%02d:00", h),
			Cells: make([][]model.Job, model.DaysPerWeek),
		}
		for d := 0; d < model.DaysPerWeek; d++ {
			row.Cells[d] = g.Cells[d][h]
		}
		rows = append(rows, row)
	}

	footerText := ""
	if opts.FooterURL != "" {
		footerText = path.Base(opts.FooterURL)
	}

	out, err := pageTemplate.Execute(pongo2.Context{
		"Lang":       opts.Lang,
		"Title":      opts.Title,
		"WeekLabel":  week.Days[0].Format("2006/01/02") + " – " + week.Days[model.DaysPerWeek-1].Format("2006/01/02"),
		"Timezone":   week.Location.String(),
		"Updated":    local.Format("2006-01-02 15:04 MST"),
		"Legend":     Legend(g.Jobs),
		"Days":       days,
		"Rows":       rows,
		"FooterURL":  opts.FooterURL,
		"FooterText": footerText,
	})
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}
	return out, nil
}

// Render builds the grid for jobs and renders it in one step.
func Render(jobs []model.Job, week model.Week, now time.Time, opts Options) (string, error) {
	return HTML(BuildGrid(jobs, week), now, opts)
}
