package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
)

// MetricsService owns the Prometheus registry for HTTP, cache and planner instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	selections     *prometheus.CounterVec
	autoAssigned   prometheus.Counter
	autoSkipped    prometheus.Counter
	confirmations  *prometheus.CounterVec
	confirmLatency prometheus.Histogram
	activeSessions prometheus.Gauge
	mergedBlocks   prometheus.Counter
	ingestSkipped  *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	confirmationCount    uint64
	activeSessionCount   int64
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_hits_total", Help: "Total cache hits"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_misses_total", Help: "Total cache misses"})

	selections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_selections_total",
		Help: "Manual selection attempts by result code",
	}, []string{"result"})

	autoAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_auto_assigned_total",
		Help: "Sessions picked by the greedy auto-assignment",
	})

	autoSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_auto_skipped_total",
		Help: "Teachers left unassigned by auto-assignment",
	})

	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_confirmations_total",
		Help: "Confirmation round trips by outcome",
	}, []string{"status"})

	confirmLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_confirmation_seconds",
		Help:    "Duration of confirmation round trips",
		Buckets: prometheus.DefBuckets,
	})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_active_sessions",
		Help: "Planning sessions currently held in memory",
	})

	mergedBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_blocks_absorbed_total",
		Help: "Existing availability blocks absorbed by merges",
	})

	ingestSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_ingest_skipped_total",
		Help: "Malformed records skipped while loading planning inputs",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		selections, autoAssigned, autoSkipped, confirmations, confirmLatency, activeSessions, mergedBlocks, ingestSkipped, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		selections:      selections,
		autoAssigned:    autoAssigned,
		autoSkipped:     autoSkipped,
		confirmations:   confirmations,
		confirmLatency:  confirmLatency,
		activeSessions:  activeSessions,
		mergedBlocks:    mergedBlocks,
		ingestSkipped:   ingestSkipped,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records inbound and outbound request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordSelection counts a manual selection attempt; result is "OK" or an error code.
func (m *MetricsService) RecordSelection(result string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(result).Inc()
}

// RecordAutoAssign counts the outcome of one greedy pass.
func (m *MetricsService) RecordAutoAssign(assigned, skipped int) {
	if m == nil {
		return
	}
	m.autoAssigned.Add(float64(assigned))
	m.autoSkipped.Add(float64(skipped))
}

// RecordConfirmation counts a confirmation round trip by outcome status.
func (m *MetricsService) RecordConfirmation(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(status).Inc()
	m.confirmLatency.Observe(duration.Seconds())
	atomic.AddUint64(&m.confirmationCount, 1)
}

// SetActiveSessions publishes the number of live planning sessions.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
	atomic.StoreInt64(&m.activeSessionCount, int64(n))
}

// RecordMerge counts blocks absorbed by an availability merge.
func (m *MetricsService) RecordMerge(absorbed int) {
	if m == nil {
		return
	}
	m.mergedBlocks.Add(float64(absorbed))
}

// RecordIngestSkipped counts malformed records dropped at the parsing boundary.
func (m *MetricsService) RecordIngestSkipped(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingestSkipped.WithLabelValues(kind).Add(float64(n))
}

// Snapshot returns aggregated metrics for the health endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ActiveSessions:           atomic.LoadInt64(&m.activeSessionCount),
		Confirmations:            atomic.LoadUint64(&m.confirmationCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
