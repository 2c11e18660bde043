// Package metrics records build and chat activity as Prometheus metrics
// on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure Recorder implements the interfaces.
var (
	_ driven.BuildMetrics = (*Recorder)(nil)
	_ driven.ChatMetrics  = (*Recorder)(nil)
)

const namespace = "repochat"

// Build result label values.
const (
	ResultOK      = "ok"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Recorder owns the application's collectors.
type Recorder struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	chunks        prometheus.Counter
	buildDuration prometheus.Histogram
	messages      *prometheus.CounterVec
	retrieved     prometheus.Histogram
}

// New creates a Recorder with its collectors registered on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Repository index builds by result.",
		}, []string{"result"}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_chunks_total",
			Help:      "Chunks embedded and saved across all builds.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Wall time of a single repository build.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat replies by profile and kind.",
		}, []string{"profile", "kind"}),
		retrieved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_chunks",
			Help:      "Fused chunks returned per retrieval.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
	}

	r.registry.MustRegister(r.builds, r.chunks, r.buildDuration, r.messages, r.retrieved)
	return r
}

// ObserveBuild records one repository build.
func (r *Recorder) ObserveBuild(report domain.BuildReport) {
	switch {
	case report.Err != nil:
		r.builds.WithLabelValues(ResultFailed).Inc()
	case report.Skipped:
		r.builds.WithLabelValues(ResultSkipped).Inc()
	default:
		r.builds.WithLabelValues(ResultOK).Inc()
		r.chunks.Add(float64(report.Chunks))
	}
	r.buildDuration.Observe(report.Duration.Seconds())
}

// ObserveMessage records one reply sent for a profile.
func (r *Recorder) ObserveMessage(profile domain.ChatProfile, kind domain.ReplyKind) {
	r.messages.WithLabelValues(profileLabel(profile), kind.String()).Inc()
}

// ObserveRetrieval records the size of a fused result set.
func (r *Recorder) ObserveRetrieval(chunks int) {
	r.retrieved.Observe(float64(chunks))
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func profileLabel(p domain.ChatProfile) string {
	switch p {
	case domain.ProfileDirectChat:
		return "direct_chat"
	case domain.ProfileRepoQA:
		return "repo_qa"
	default:
		return "unknown"
	}
}
