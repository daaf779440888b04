package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appLog "cronweek/internal/log"
)

// PrometheusSink implements Sink on a private registry. The process is
// short-lived, so the registry is written out with WriteTextfile at the end
// of a run instead of being scraped.
type PrometheusSink struct {
	reg *prometheus.Registry
	now func() time.Time

	renderDuration    prometheus.Gauge
	renderJobs        prometheus.Gauge
	renderOccurrences prometheus.Gauge
	lastRenderSuccess prometheus.Gauge
	expandFailures    *prometheus.CounterVec
	syncFetchedJobs   prometheus.Gauge
	syncCommitted     *prometheus.CounterVec
	syncFailures      *prometheus.CounterVec
	lastSyncSuccess   prometheus.Gauge
}

// NewPrometheusSink creates a sink with its own registry.
func NewPrometheusSink() *PrometheusSink {
	s := &PrometheusSink{reg: prometheus.NewRegistry(), now: time.Now}

	s.renderDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cronweek_render_duration_seconds",
		Help: "Duration of the last render pass in seconds.",
	})
	s.renderJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cronweek_render_jobs",
		Help: "Number of jobs in the last render pass.",
	})
	s.renderOccurrences = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cronweek_render_occurrences",
		Help: "Number of occurrences placed on the grid in the last render pass.",
	})
	s.lastRenderSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cronweek_render_last_success_timestamp_seconds",
		Help: "Unix time of the last successful render pass.",
	})
	s.expandFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cronweek_expand_failures_total",
		Help: "Jobs whose occurrences could not be expanded.",
	}, []string{"job"})
	s.syncFetchedJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cronweek_sync_fetched_jobs",
		Help: "Number of jobs reported by the external scheduler in the last sync.",
	})
	s.syncCommitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cronweek_sync_completed_total",
		Help: "Completed sync cycles by whether a commit was made.",
	}, []string{"committed"})
	s.syncFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cronweek_sync_failures_total",
		Help: "Failed sync cycles by stage.",
	}, []string{"stage"})
	s.lastSyncSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cronweek_sync_last_success_timestamp_seconds",
		Help: "Unix time of the last successful sync cycle.",
	})

	s.reg.MustRegister(
		s.renderDuration,
		s.renderJobs,
		s.renderOccurrences,
		s.lastRenderSuccess,
		s.expandFailures,
		s.syncFetchedJobs,
		s.syncCommitted,
		s.syncFailures,
		s.lastSyncSuccess,
	)
	return s
}

// Registry exposes the underlying registry for gathering.
func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.reg
}

func (s *PrometheusSink) RenderCompleted(duration time.Duration, jobs, occurrences int) {
	s.renderDuration.Set(duration.Seconds())
	s.renderJobs.Set(float64(jobs))
	s.renderOccurrences.Set(float64(occurrences))
	s.lastRenderSuccess.Set(float64(s.now().Unix()))
}

func (s *PrometheusSink) ExpandFailed(job string) {
	s.expandFailures.WithLabelValues(job).Inc()
}

func (s *PrometheusSink) SyncCompleted(fetched int, committed bool) {
	s.syncFetchedJobs.Set(float64(fetched))
	s.syncCommitted.WithLabelValues(strconv.FormatBool(committed)).Inc()
	s.lastSyncSuccess.Set(float64(s.now().Unix()))
}

func (s *PrometheusSink) SyncFailed(stage string) {
	s.syncFailures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (s *PrometheusSink) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, s.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	appLog.Debug("metrics textfile written", "path", path)
	return nil
}
