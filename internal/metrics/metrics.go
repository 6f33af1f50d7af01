// Package metrics exposes Prometheus counters for cache tiers, archive reads
// and request outcomes. A nil *Recorder is valid and records nothing, so
// components can be constructed without metrics in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zipserve"

// Cache tiers.
const (
	TierPositive = "positive"
	TierNegative = "negative"
)

// Recorder owns a private registry so several instances can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	cacheLookups *prometheus.CounterVec
	cacheWrites  *prometheus.CounterVec
	archiveReads *prometheus.CounterVec
	openFailure  *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Cache writes by tier and result.",
		}, []string{"tier", "result"}),
		archiveReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_reads_total",
			Help:      "Archive lookups by how the member was located.",
		}, []string{"result"}),
		openFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_open_failures_total",
			Help:      "Archives skipped because they could not be opened.",
		}, []string{"archive"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests by final outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		r.cacheLookups,
		r.cacheWrites,
		r.archiveReads,
		r.openFailure,
		r.outcomes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the Prometheus exposition format for this Recorder.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the private registry, mainly for tests in other packages.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// CacheLookup records a positive or negative tier lookup.
func (r *Recorder) CacheLookup(tier string, hit bool) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(tier, hitLabel(hit)).Inc()
}

// CacheWrite records a cache write result such as "stored" or "too_large".
func (r *Recorder) CacheWrite(tier, result string) {
	if r == nil {
		return
	}
	r.cacheWrites.WithLabelValues(tier, result).Inc()
}

// ArchiveRead records how a fetch ended: "index", "scan" or "miss".
func (r *Recorder) ArchiveRead(result string) {
	if r == nil {
		return
	}
	r.archiveReads.WithLabelValues(result).Inc()
}

// ArchiveOpenFailed records an archive that could not be opened and was skipped.
func (r *Recorder) ArchiveOpenFailed(archive string) {
	if r == nil {
		return
	}
	r.openFailure.WithLabelValues(archive).Inc()
}

// Outcome records the final outcome of a request.
func (r *Recorder) Outcome(outcome string) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(outcome).Inc()
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
