package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	cacheOutcomes      *prom.CounterVec
	remoteDuration     *prom.HistogramVec
	remoteResults      *prom.CounterVec
	cacheWriteFailures prom.Counter
	paginationDropped  prom.Counter
}

// NewPrometheusRecorder constructs and registers the catalog metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		cacheOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gamedeck",
			Name:      "cache_outcomes_total",
			Help:      "Page-1 requests by how they were served",
		}, []string{"outcome"}),
		remoteDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "gamedeck",
			Name:      "remote_fetch_duration_seconds",
			Help:      "Duration of remote catalog calls",
			Buckets:   prom.DefBuckets,
		}, []string{"op"}),
		remoteResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gamedeck",
			Name:      "remote_fetch_results_total",
			Help:      "Remote catalog calls by result",
		}, []string{"op", "result"}),
		cacheWriteFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "gamedeck",
			Name:      "cache_write_failures_total",
			Help:      "Write-through cache updates that failed",
		}),
		paginationDropped: prom.NewCounter(prom.CounterOpts{
			Namespace: "gamedeck",
			Name:      "pagination_dropped_total",
			Help:      "Next-page requests dropped because one was already in flight",
		}),
	}
	reg.MustRegister(pr.cacheOutcomes, pr.remoteDuration, pr.remoteResults, pr.cacheWriteFailures, pr.paginationDropped)
	return pr
}

func (p *PrometheusRecorder) IncCacheOutcome(outcome CacheOutcome) {
	if p == nil {
		return
	}
	p.cacheOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRemoteFetch(op string, d time.Duration, err error) {
	if p == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	p.remoteDuration.WithLabelValues(op).Observe(d.Seconds())
	p.remoteResults.WithLabelValues(op, result).Inc()
}

func (p *PrometheusRecorder) IncCacheWriteFailure() {
	if p == nil {
		return
	}
	p.cacheWriteFailures.Inc()
}

func (p *PrometheusRecorder) IncPaginationDropped() {
	if p == nil {
		return
	}
	p.paginationDropped.Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
