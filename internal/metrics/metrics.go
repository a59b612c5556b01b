package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ghostwriter"

// Recorder holds the bot's Prometheus metrics on a private registry so tests
// and multiple instances do not collide on the default one.
type Recorder struct {
	registry *prometheus.Registry

	postsGenerated  *prometheus.CounterVec
	postsPublished  *prometheus.CounterVec
	failures        *prometheus.CounterVec
	generationTime  prometheus.Histogram
	lastPublished   prometheus.Gauge
	nextScheduled   prometheus.Gauge
	historyAppendOK prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.postsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_generated_total",
			Help:      "Posts generated, by context type and dry-run flag",
		},
		[]string{"context_type", "dry_run"},
	)

	r.postsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_published_total",
			Help:      "Posts accepted by the platform, by context type",
		},
		[]string{"context_type"},
	)

	r.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Pipeline failures by error kind",
		},
		[]string{"kind"},
	)

	r.generationTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of content generation calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	r.lastPublished = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_published_timestamp_seconds",
			Help:      "Unix time of the last published post",
		},
	)

	r.nextScheduled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_scheduled_timestamp_seconds",
			Help:      "Unix time of the next scheduled post",
		},
	)

	r.historyAppendOK = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_appends_total",
			Help:      "Records appended to the post history",
		},
	)

	r.registry.MustRegister(
		r.postsGenerated,
		r.postsPublished,
		r.failures,
		r.generationTime,
		r.lastPublished,
		r.nextScheduled,
		r.historyAppendOK,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) ObserveGeneration(contextType string, dryRun bool, d time.Duration) {
	flag := "false"
	if dryRun {
		flag = "true"
	}
	r.postsGenerated.WithLabelValues(contextType, flag).Inc()
	r.generationTime.Observe(d.Seconds())
}

func (r *Recorder) ObservePublished(contextType string, at time.Time) {
	r.postsPublished.WithLabelValues(contextType).Inc()
	r.lastPublished.Set(float64(at.Unix()))
}

func (r *Recorder) ObserveFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

func (r *Recorder) ObserveHistoryAppend() {
	r.historyAppendOK.Inc()
}

func (r *Recorder) SetNextRun(at time.Time) {
	if at.IsZero() {
		r.nextScheduled.Set(0)
		return
	}
	r.nextScheduled.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
