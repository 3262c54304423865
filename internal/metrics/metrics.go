// Package metrics exposes Prometheus counters for the opponent cache, the
// importer, registrations and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lca"

// Label values.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	ImportImported = "imported"
	ImportSkipped  = "skipped"
	ImportFailed   = "failed"

	RegistrationCreated     = "created"
	RegistrationRejected    = "rejected"
	RegistrationRateLimited = "rate_limited"
)

// Recorder owns a private registry and the collectors registered on it.
// A nil *Recorder records nothing, so callers never need to check.
type Recorder struct {
	registry *prometheus.Registry

	opponentCache   *prometheus.CounterVec
	importFiles     *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	searchDocuments prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewRecorder builds a Recorder with Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		opponentCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opponent_cache_lookups_total",
			Help:      "Opponent map lookups by result.",
		}, []string{"result"}),
		importFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_files_total",
			Help:      "Import files processed by kind and status.",
		}, []string{"kind", "status"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Rows written by imports, by kind.",
		}, []string{"kind"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"status"}),
		searchDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_documents",
			Help:      "Players in the search index after the last rebuild.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.opponentCache,
		r.importFiles,
		r.importRows,
		r.registrations,
		r.searchDocuments,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// OpponentCache counts one opponent map lookup.
func (r *Recorder) OpponentCache(result string) {
	if r == nil {
		return
	}
	r.opponentCache.WithLabelValues(result).Inc()
}

// ImportFile counts one processed import file.
func (r *Recorder) ImportFile(kind, status string) {
	if r == nil {
		return
	}
	r.importFiles.WithLabelValues(kind, status).Inc()
}

// ImportRows adds n written rows for kind.
func (r *Recorder) ImportRows(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.importRows.WithLabelValues(kind).Add(float64(n))
}

// Registration counts one registration attempt.
func (r *Recorder) Registration(status string) {
	if r == nil {
		return
	}
	r.registrations.WithLabelValues(status).Inc()
}

// SearchDocuments sets the indexed player count.
func (r *Recorder) SearchDocuments(n int) {
	if r == nil {
		return
	}
	r.searchDocuments.Set(float64(n))
}

// HTTPRequest records one finished request.
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
