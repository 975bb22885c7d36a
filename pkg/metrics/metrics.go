package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Histogram buckets covering everything from template renders to the
	// backend's AI generation calls, which routinely take tens of seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Vocabulary API client metrics
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vocabulary_api_operation_duration_seconds",
			Help:    "Vocabulary API client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	BackendRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabulary_api_operation_total",
			Help: "Total number of vocabulary API client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashlang_logins_total",
			Help: "Total login attempts",
		},
		[]string{"status"},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashlang_registrations_total",
			Help: "Total registration attempts",
		},
		[]string{"status"},
	)

	WordsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashlang_words_generated_total",
			Help: "Total vocabulary generation requests",
		},
		[]string{"status"},
	)

	BulkRowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashlang_bulk_rows_processed_total",
			Help: "Total rows processed by bulk generation batches",
		},
		[]string{"status"},
	)

	DeckDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashlang_deck_downloads_total",
			Help: "Total packaged deck download attempts",
		},
		[]string{"status"},
	)

	GuardRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashlang_guard_redirects_total",
			Help: "Total redirects issued by route guards",
		},
		[]string{"guard", "target"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
