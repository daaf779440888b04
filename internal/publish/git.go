// Package publish commits and pushes the regenerated calendar.
package publish

import (
	"context"
	"errors"
	"fmt"

	"cronweek/internal/command"
	appLog "cronweek/internal/log"
)

// Git stages everything in RepoDir, commits when the staged diff is not
// empty, and optionally pushes.
type Git struct {
	Runner  command.Runner
	RepoDir string
	Message string
	Push    bool
}

// Publish returns whether a commit was made.
func (g *Git) Publish(ctx context.Context) (bool, error) {
	if g.Message == "" {
		return false, errors.New("publish: empty commit message")
	}
	runner := g.Runner
	if runner == nil {
		runner = command.ExecRunner{}
	}
	dir := g.RepoDir
	if dir == "" {
		dir = "."
	}

	if _, err := command.Check(ctx, runner, "", "git", "-C", dir, "add", "-A"); err != nil {
		return false, fmt.Errorf("publish: stage: %w", err)
	}

	// --quiet exits 1 when there are staged changes and 0 when there are none.
	res, err := runner.Run(ctx, "", "git", "-C", dir, "diff", "--cached", "--quiet")
	if err != nil {
		return false, fmt.Errorf("publish: diff: %w", err)
	}
	switch res.ExitCode {
	case 0:
		appLog.Info("no changes to commit", "repo", dir)
		return false, nil
	case 1:
	default:
		return false, fmt.Errorf("publish: diff: %w", &command.ExitError{
			Name:     "git",
			Args:     []string{"-C", dir, "diff", "--cached", "--quiet"},
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		})
	}

	if _, err := command.Check(ctx, runner, "", "git", "-C", dir, "commit", "-m", g.Message); err != nil {
		return false, fmt.Errorf("publish: commit: %w", err)
	}
	appLog.Info("committed calendar changes", "repo", dir, "message", g.Message)

	if !g.Push {
		return true, nil
	}
	if _, err := command.Check(ctx, runner, "", "git", "-C", dir, "push"); err != nil {
		return true, fmt.Errorf("publish: push: %w", err)
	}
	appLog.Info("pushed calendar changes", "repo", dir)
	return true, nil
}
