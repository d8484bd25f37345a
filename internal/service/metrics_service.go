package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/oratoria-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	dbQueryDuration  *prometheus.HistogramVec
	upstreamDuration *prometheus.HistogramVec
	historySize      prometheus.Histogram
	exportJobs       *prometheus.CounterVec
	exportDuration   prometheus.Histogram

	cacheHitCount         uint64
	cacheMissCount        uint64
	requestCount          uint64
	requestDurationTotal  uint64
	dbQueryCount          uint64
	dbQueryDurationTotal  uint64
	upstreamCount         uint64
	upstreamErrors        uint64
	upstreamDurationTotal uint64
	exportsCompleted      uint64
	exportsFailed         uint64
}

// NewMetricsService registers core Prometheus collectors.
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
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of calls to the analysis backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})

	historySize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "history_presentations",
		Help:    "Number of presentations aggregated per dashboard build",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Export jobs by format and final status",
	}, []string{"format", "status"})

	exportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "export_job_duration_seconds",
		Help:    "Time spent rendering an export",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, upstreamDuration, historySize, exportJobs, exportDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		dbQueryDuration:  dbQueryDuration,
		upstreamDuration: upstreamDuration,
		historySize:      historySize,
		exportJobs:       exportJobs,
		exportDuration:   exportDuration,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveUpstream records one call to the analysis backend.
func (m *MetricsService) ObserveUpstream(endpoint string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.upstreamErrors, 1)
	}
	m.upstreamDuration.WithLabelValues(endpoint, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.upstreamCount, 1)
	atomic.AddUint64(&m.upstreamDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveHistorySize records how many presentations fed a dashboard.
func (m *MetricsService) ObserveHistorySize(n int) {
	if m == nil {
		return
	}
	m.historySize.Observe(float64(n))
}

// RecordExportJob counts a finished export attempt.
func (m *MetricsService) RecordExportJob(format string, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "finished"
	if failed {
		status = "failed"
		atomic.AddUint64(&m.exportsFailed, 1)
	} else {
		atomic.AddUint64(&m.exportsCompleted, 1)
	}
	m.exportJobs.WithLabelValues(format, status).Inc()
	m.exportDuration.Observe(duration.Seconds())
}

// Snapshot returns aggregated metrics suitable for the ops endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	upstream := atomic.LoadUint64(&m.upstreamCount)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(atomic.LoadUint64(&m.requestDurationTotal), requests),
		UpstreamCalls:            upstream,
		UpstreamErrors:           atomic.LoadUint64(&m.upstreamErrors),
		AverageUpstreamMs:        averageMs(atomic.LoadUint64(&m.upstreamDurationTotal), upstream),
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: averageMs(atomic.LoadUint64(&m.dbQueryDurationTotal), dbCount),
		ExportsCompleted:         atomic.LoadUint64(&m.exportsCompleted),
		ExportsFailed:            atomic.LoadUint64(&m.exportsFailed),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func averageMs(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
