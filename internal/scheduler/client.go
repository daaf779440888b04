// Package scheduler queries the external job scheduler through its CLI.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cronweek/internal/command"
	appLog "cronweek/internal/log"
	"cronweek/internal/model"
)

// RemoteJob is a job definition as reported by the scheduler.
type RemoteJob struct {
	Name        string
	Description string
	Expr        string
	TZ          string
}

type listPayload struct {
	Jobs []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Schedule    struct {
			Expr string `json:"expr"`
			TZ   string `json:"tz"`
		} `json:"schedule"`
	} `json:"jobs"`
}

// Client runs the scheduler's list command.
type Client struct {
	runner  command.Runner
	argv    []string
	timeout time.Duration
}

// NewClient builds a client for argv, e.g. ["openclaw", "cron", "list",
// "--json"]. A zero timeout leaves the call bounded only by ctx.
func NewClient(runner command.Runner, argv []string, timeout time.Duration) *Client {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Client{runner: runner, argv: argv, timeout: timeout}
}

// List returns the scheduler's jobs in reported order. A non-zero exit or
// unparseable output is an error.
func (c *Client) List(ctx context.Context) ([]RemoteJob, error) {
	if len(c.argv) == 0 {
		return nil, errors.New("scheduler: empty command")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	appLog.Debug("scheduler list start", "command", c.argv)

	res, err := command.Check(ctx, c.runner, "", c.argv[0], c.argv[1:]...)
	if err != nil {
		return nil, fmt.Errorf("scheduler: list: %w", err)
	}

	jobs, err := Decode(res.Stdout)
	if err != nil {
		return nil, err
	}
	appLog.Debug("scheduler list done", "jobs", len(jobs))
	return jobs, nil
}

// Decode parses the list payload {"jobs": [...]}. A missing name becomes
// "unknown" and a missing zone becomes UTC.
func Decode(data []byte) ([]RemoteJob, error) {
	var p listPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("scheduler: decode list output: %w", err)
	}

	out := make([]RemoteJob, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		name := j.Name
		if name == "" {
			name = "unknown"
		}
		tz := j.Schedule.TZ
		if tz == "" {
			tz = model.DefaultTimezone
		}
		out = append(out, RemoteJob{
			Name:        name,
			Description: j.Description,
			Expr:        j.Schedule.Expr,
			TZ:          tz,
		})
	}
	return out, nil
}
