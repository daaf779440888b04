package metrics

import "time"

// Sink records calendar run metrics.
// Methods are fire-and-forget and never return errors.
type Sink interface {
	// Render pass
	RenderCompleted(duration time.Duration, jobs, occurrences int)
	ExpandFailed(job string)

	// Sync cycle
	SyncCompleted(fetched int, committed bool)
	SyncFailed(stage string)
}

// Sync stages reported through SyncFailed.
const (
	StageFetch   = "fetch"
	StageStore   = "store"
	StageRender  = "render"
	StagePublish = "publish"
)

// NoopSink is used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) RenderCompleted(duration time.Duration, jobs, occurrences int) {}
func (n *NoopSink) ExpandFailed(job string)                                       {}
func (n *NoopSink) SyncCompleted(fetched int, committed bool)                     {}
func (n *NoopSink) SyncFailed(stage string)                                       {}
