package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors live in the default registry and are served on /metrics by the
// API. The CLI records into them too; nothing scrapes them there.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagex_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagex_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CrawlsTotal counts crawls by driver; status is success or failure
	CrawlsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagex_crawls_total",
			Help: "Total number of page crawls.",
		},
		[]string{"driver", "status"},
	)

	CrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagex_crawl_duration_seconds",
			Help:    "Duration of page crawls.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
		[]string{"driver"},
	)

	// ExtractionDuration is labelled with the step name, e.g. "price extraction"
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagex_extraction_duration_seconds",
			Help:    "Duration of language model extraction steps.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"step"},
	)

	// ImageVerifications counts image URL checks; result is verified or rejected
	ImageVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagex_image_verifications_total",
			Help: "Total number of image URL verifications.",
		},
		[]string{"result"},
	)

	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagex_sink_failures_total",
			Help: "Total number of failed artifact writes.",
		},
		[]string{"sink"},
	)

	ReportCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagex_report_cache_lookups_total",
			Help: "Report cache lookups; result is hit, miss or error.",
		},
		[]string{"result"},
	)
)

// Result labels shared by the counters above
const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	ResultVerified = "verified"
	ResultRejected = "rejected"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
