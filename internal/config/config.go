package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cronweek/internal/fsutil"
	appLog "cronweek/internal/log"
	"cronweek/internal/model"
)

const (
	defaultDisplayTimezone = "Asia/Taipei"
	defaultJobsPath        = "schedules/jobs.json"
	defaultOutputPath      = "docs/index.html"
	defaultTitle           = "🦞 OpenClaw Calendar"
	defaultLang            = "zh-TW"
	defaultFallbackColor   = "#58A6FF"
	defaultSourceTag       = "openclaw"
	defaultCommitMessage   = "chore: sync openclaw cron jobs"
)

// SchedulerConfig describes how to query the external scheduler.
type SchedulerConfig struct {
	// Command is argv of the listing command; it must print
	// {"jobs": [...]} on stdout.
	Command []string `yaml:"command" json:"command"`

	// Timeout bounds the subprocess. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// SyncConfig controls how fetched jobs are merged into the store.
type SyncConfig struct {
	// SourceTag is assigned to every fetched job.
	SourceTag string `yaml:"source_tag" json:"source_tag"`

	// NameColors is the default color for known job names, used when the
	// store has no color for the job yet.
	NameColors map[string]string `yaml:"name_colors" json:"name_colors"`

	// FallbackColor is used for jobs with neither a stored nor a named color.
	FallbackColor string `yaml:"fallback_color" json:"fallback_color"`

	// SelfJob is the calendar's own regeneration task, always listed first.
	SelfJob model.Job `yaml:"self_job" json:"self_job"`
}

// PublishConfig describes the git publish step.
type PublishConfig struct {
	// RepoDir is the working tree that is staged and committed.
	RepoDir       string `yaml:"repo_dir" json:"repo_dir"`
	CommitMessage string `yaml:"commit_message" json:"commit_message"`
	// Push can be turned off to commit locally only.
	Push bool `yaml:"push" json:"push"`
}

// PreviewConfig enables a PNG screenshot of the rendered page.
type PreviewConfig struct {
	Path    string        `yaml:"path" json:"path"`
	Width   int           `yaml:"width" json:"width"`
	Height  int           `yaml:"height" json:"height"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	// DisplayTimezone is the IANA zone the grid's days and hours are labeled in.
	DisplayTimezone string `yaml:"display_timezone" json:"display_timezone"`

	// JobsPath is the JSON job store.
	JobsPath string `yaml:"jobs_path" json:"jobs_path"`

	// OutputPath is where the HTML page is written.
	OutputPath string `yaml:"output_path" json:"output_path"`

	Title     string `yaml:"title" json:"title"`
	Lang      string `yaml:"lang" json:"lang"`
	FooterURL string `yaml:"footer_url" json:"footer_url"`

	// ICSPath, if set, also writes the week as an iCalendar file.
	ICSPath string `yaml:"ics_path,omitempty" json:"ics_path,omitempty"`

	// MetricsTextfile, if set, writes Prometheus metrics in text format
	// after each run (node_exporter textfile collector).
	MetricsTextfile string `yaml:"metrics_textfile,omitempty" json:"metrics_textfile,omitempty"`

	// Preview, if non-nil with a path, captures a PNG of the page.
	Preview *PreviewConfig `yaml:"preview,omitempty" json:"preview,omitempty"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`
	Sync      SyncConfig      `yaml:"sync" json:"sync"`
	Publish   PublishConfig   `yaml:"publish" json:"publish"`
}

// DefaultSelfJob is the calendar's own daily regeneration task.
func DefaultSelfJob() model.Job {
	return model.Job{
		Name:        "generate-calendar",
		Description: "自動產生本週曆頁面並 push 到 GitHub Pages",
		Cron:        "0 0 * * *",
		TZ:          "UTC",
		Color:       "#E67E22",
		Tag:         "github-actions",
	}
}

func defaultNameColors() map[string]string {
	return map[string]string{
		"daily-review":      "#4A90D9",
		"stock-forum-daily": "#27AE60",
		"weekly-review":     "#8E44AD",
		"generate-calendar": "#E67E22",
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DisplayTimezone: defaultDisplayTimezone,
		JobsPath:        defaultJobsPath,
		OutputPath:      defaultOutputPath,
		Title:           defaultTitle,
		Lang:            defaultLang,
		FooterURL:       "https://github.com/greg18jrr-ops/openclaw-calendar",
		LogLevel:        "info",
		Scheduler: SchedulerConfig{
			Command: []string{"openclaw", "cron", "list", "--json"},
			Timeout: 60 * time.Second,
		},
		Sync: SyncConfig{
			SourceTag:     defaultSourceTag,
			NameColors:    defaultNameColors(),
			FallbackColor: defaultFallbackColor,
			SelfJob:       DefaultSelfJob(),
		},
		Publish: PublishConfig{
			RepoDir:       ".",
			CommitMessage: defaultCommitMessage,
			Push:          true,
		},
	}
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.DisplayTimezone == "" {
		c.DisplayTimezone = defaultDisplayTimezone
	}
	if c.JobsPath == "" {
		c.JobsPath = defaultJobsPath
	}
	if c.OutputPath == "" {
		c.OutputPath = defaultOutputPath
	}
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Lang == "" {
		c.Lang = defaultLang
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.Scheduler.Command) == 0 {
		c.Scheduler.Command = []string{"openclaw", "cron", "list", "--json"}
	}
	if c.Sync.SourceTag == "" {
		c.Sync.SourceTag = defaultSourceTag
	}
	if c.Sync.NameColors == nil {
		c.Sync.NameColors = defaultNameColors()
	}
	if c.Sync.FallbackColor == "" {
		c.Sync.FallbackColor = defaultFallbackColor
	}
	if c.Sync.SelfJob.Name == "" {
		c.Sync.SelfJob = DefaultSelfJob()
	}
	if c.Sync.SelfJob.TZ == "" {
		c.Sync.SelfJob.TZ = model.DefaultTimezone
	}
	if c.Publish.RepoDir == "" {
		c.Publish.RepoDir = "."
	}
	if c.Publish.CommitMessage == "" {
		c.Publish.CommitMessage = defaultCommitMessage
	}
	if c.Preview != nil && c.Preview.Path == "" {
		c.Preview = nil
	}
}

// DisplayLocation resolves DisplayTimezone.
func (c *Config) DisplayLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: display timezone %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 perms and returned. If that write fails the defaults are still
//     returned and a warning is logged.
//   - Otherwise the YAML is decoded and defaults are normalized in.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// A read-only checkout still runs on defaults.
				appLog.Warn("config: default file not written, using defaults", "path", path, "error", err)
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o600, 0o700)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
