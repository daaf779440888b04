// Package store reads and rewrites the JSON job list, the only durable
// state of the calendar.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/jsonc"

	"cronweek/internal/fsutil"
	"cronweek/internal/model"
)

// Load reads the job list at path. The file may carry // and /* */
// comments and trailing commas, since it is edited by hand to assign
// colors.
func Load(path string) ([]model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	return Decode(data)
}

// LoadOrEmpty is Load, except a missing file yields an empty list.
func LoadOrEmpty(path string) ([]model.Job, error) {
	jobs, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Job{}, nil
	}
	return jobs, err
}

// Decode parses a job list document.
func Decode(data []byte) ([]model.Job, error) {
	var jobs []model.Job
	if err := json.Unmarshal(jsonc.ToJSON(data), &jobs); err != nil {
		return nil, fmt.Errorf("store: decode jobs: %w", err)
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}

// Encode serializes jobs as an indented JSON array. Non-ASCII text and
// HTML-sensitive characters are written literally.
func Encode(jobs []model.Job) ([]byte, error) {
	if jobs == nil {
		jobs = []model.Job{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		return nil, fmt.Errorf("store: encode jobs: %w", err)
	}
	return buf.Bytes(), nil
}

// Save fully rewrites the job list at path.
func Save(path string, jobs []model.Job) error {
	data, err := Encode(jobs)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644, 0o755); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
