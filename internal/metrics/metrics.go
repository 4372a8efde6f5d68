// Package metrics records build pipeline metrics for the optional /metrics
// endpoint of the local server.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects build cycle metrics on its own registry.
type Recorder struct {
	registry      *prom.Registry
	buildDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	stageDuration *prom.HistogramVec
	pagesRendered prom.Counter
	pagesIndexed  prom.Counter
	watchEvents   *prom.CounterVec
}

// NewRecorder constructs and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prom.NewRegistry()}
	r.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "ngdocs",
		Name:      "build_duration_seconds",
		Help:      "Total build cycle duration by rebuild kind",
		Buckets:   prom.DefBuckets,
	}, []string{"kind"})
	r.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "ngdocs",
		Name:      "build_outcomes_total",
		Help:      "Build cycle outcomes by kind and final status",
	}, []string{"kind", "outcome"})
	r.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "ngdocs",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	r.pagesRendered = prom.NewCounter(prom.CounterOpts{
		Namespace: "ngdocs",
		Name:      "pages_rendered_total",
		Help:      "Pages rendered and written across all cycles",
	})
	r.pagesIndexed = prom.NewCounter(prom.CounterOpts{
		Namespace: "ngdocs",
		Name:      "pages_indexed_total",
		Help:      "Pages submitted to the search index across all cycles",
	})
	r.watchEvents = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "ngdocs",
		Name:      "watch_events_total",
		Help:      "Accepted filesystem events by classification",
	}, []string{"class"})

	r.registry.MustRegister(r.buildDuration, r.buildOutcome, r.stageDuration,
		r.pagesRendered, r.pagesIndexed, r.watchEvents)
	return r
}

// ObserveBuild records one completed cycle.
func (r *Recorder) ObserveBuild(kind, outcome string, d time.Duration) {
	r.buildDuration.WithLabelValues(kind).Observe(d.Seconds())
	r.buildOutcome.WithLabelValues(kind, outcome).Inc()
}

// ObserveStage records one stage execution.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// PageRendered counts one rendered-and-written page.
func (r *Recorder) PageRendered() { r.pagesRendered.Inc() }

// PageIndexed counts one page submitted to the search index.
func (r *Recorder) PageIndexed() { r.pagesIndexed.Inc() }

// WatchEvent counts one accepted filesystem event ("structural"/"content").
func (r *Recorder) WatchEvent(class string) { r.watchEvents.WithLabelValues(class).Inc() }

// Handler exposes the registry for the /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
