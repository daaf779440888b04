package jobsync

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appLog "cronweek/internal/log"
	"cronweek/internal/model"
	"cronweek/internal/pipeline"
	"cronweek/internal/scheduler"
	"cronweek/internal/store"
)

func TestMain(m *testing.M) {
	appLog.SetOutput(io.Discard)
	m.Run()
}

type fakeLister struct {
	jobs []scheduler.RemoteJob
	err  error
}

func (f *fakeLister) List(context.Context) ([]scheduler.RemoteJob, error) {
	return f.jobs, f.err
}

type fakeGenerator struct {
	calls int
	seen  []model.Job
	path  string
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, _ time.Time) (pipeline.Summary, error) {
	f.calls++
	if f.err != nil {
		return pipeline.Summary{}, f.err
	}
	jobs, err := store.Load(f.path)
	if err != nil {
		return pipeline.Summary{}, err
	}
	f.seen = jobs
	return pipeline.Summary{Jobs: len(jobs)}, nil
}

type fakePublisher struct {
	calls     int
	committed bool
	err       error
}

func (f *fakePublisher) Publish(context.Context) (bool, error) {
	f.calls++
	return f.committed, f.err
}

func newSyncer(t *testing.T, lister Lister) (*Syncer, *fakeGenerator, *fakePublisher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedules", "jobs.json")
	gen := &fakeGenerator{path: path}
	pub := &fakePublisher{committed: true}
	return &Syncer{
		Lister:    lister,
		JobsPath:  path,
		Merge:     mergeOptions(),
		Generator: gen,
		Publisher: pub,
	}, gen, pub
}

func TestSyncer_Run(t *testing.T) {
	lister := &fakeLister{jobs: []scheduler.RemoteJob{
		{Name: "daily-review", Expr: "0 9 * * *", TZ: "Asia/Taipei"},
	}}
	s, gen, pub := newSyncer(t, lister)
	require.NoError(t, store.Save(s.JobsPath, []model.Job{{Name: "daily-review", Color: "#ABCDEF"}}))

	rep, err := s.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Fetched)
	assert.Equal(t, 2, rep.Stored)
	assert.True(t, rep.Committed)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, pub.calls)
	require.Len(t, gen.seen, 2)
	assert.Equal(t, "generate-calendar", gen.seen[0].Name)
	assert.Equal(t, "#ABCDEF", gen.seen[1].Color)
}

func TestSyncer_FetchFailureWritesNothing(t *testing.T) {
	s, gen, pub := newSyncer(t, &fakeLister{err: errors.New("exit status 1")})

	_, err := s.Run(context.Background(), time.Now())
	require.Error(t, err)

	_, statErr := os.Stat(s.JobsPath)
	assert.True(t, os.IsNotExist(statErr))
	assert.Zero(t, gen.calls)
	assert.Zero(t, pub.calls)
}

func TestSyncer_RenderFailureSkipsPublish(t *testing.T) {
	s, gen, pub := newSyncer(t, &fakeLister{})
	gen.err = errors.New("disk full")

	_, err := s.Run(context.Background(), time.Now())
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, pub.calls)

	// The store was already rewritten and is not rolled back.
	jobs, loadErr := store.Load(s.JobsPath)
	require.NoError(t, loadErr)
	assert.Len(t, jobs, 1)
}

func TestSyncer_PublishFailurePropagates(t *testing.T) {
	s, _, pub := newSyncer(t, &fakeLister{})
	pub.err = errors.New("rejected")

	_, err := s.Run(context.Background(), time.Now())
	assert.ErrorContains(t, err, "rejected")
}

func TestSyncer_CorruptStoreIsFatal(t *testing.T) {
	s, gen, _ := newSyncer(t, &fakeLister{})
	require.NoError(t, os.MkdirAll(filepath.Dir(s.JobsPath), 0o755))
	require.NoError(t, os.WriteFile(s.JobsPath, []byte("{not json"), 0o644))

	_, err := s.Run(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Zero(t, gen.calls)
}
