// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal                 *prometheus.CounterVec
	bytesTotal                 *prometheus.CounterVec
	gamesTotal                 *prometheus.CounterVec
	daysTotal                  *prometheus.CounterVec
	recordsTotal               *prometheus.CounterVec
	rowsUploadedTotal          *prometheus.CounterVec
	pitchMisalignedTotal       prometheus.Counter
	activeWorkers              prometheus.Gauge
	rateLimitDelaySeconds      prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sponavi_pages_total",
				Help: "Total number of pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		bytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sponavi_bytes_total",
				Help: "Total number of bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		gamesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sponavi_games_total",
				Help: "Games processed, labeled by game status or failed.",
			},
			[]string{"status"},
		)

		daysTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sponavi_days_total",
				Help: "Days processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sponavi_records_total",
				Help: "Records extracted, labeled by kind.",
			},
			[]string{"kind"},
		)

		rowsUploadedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sponavi_rows_uploaded_total",
				Help: "Rows appended to the warehouse, labeled by table.",
			},
			[]string{"table"},
		)

		pitchMisalignedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sponavi_pitch_misaligned_total",
				Help: "Scoring pages whose pitch lists differed in length.",
			},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sponavi_active_workers",
				Help: "Number of workers currently processing a game.",
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sponavi_rate_limit_delay_seconds",
				Help:    "Histogram of politeness wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch counts one fetched page. Status is the HTTP code or "error".
func ObserveFetch(site string, status string, bytesFetched int) {
	Init()
	sanitizedSite := SanitizeSite(site)
	pagesTotal.WithLabelValues(sanitizedSite, status).Inc()
	if bytesFetched > 0 {
		bytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveGame counts one processed game.
func ObserveGame(status string) {
	Init()
	gamesTotal.WithLabelValues(status).Inc()
}

// ObserveDay counts one processed day.
func ObserveDay(outcome string) {
	Init()
	daysTotal.WithLabelValues(outcome).Inc()
}

// ObserveRecords adds extracted records of a kind.
func ObserveRecords(kind string, n int) {
	Init()
	if n > 0 {
		recordsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveUpload adds rows appended to a table.
func ObserveUpload(table string, rows int) {
	Init()
	rowsUploadedTotal.WithLabelValues(table).Add(float64(rows))
}

// ObservePitchMisaligned counts a page with mismatched pitch lists.
func ObservePitchMisaligned() {
	Init()
	pitchMisalignedTotal.Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	activeWorkers.Dec()
}

// ObserveRateLimitDelay records the duration of a politeness wait.
func ObserveRateLimitDelay(duration time.Duration) {
	Init()
	rateLimitDelaySeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
