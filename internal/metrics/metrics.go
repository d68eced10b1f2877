// Package metrics exposes the client's own operational counters in
// Prometheus exposition format:
//   - tradesim_api_requests_total{method,outcome}  – service calls by outcome (ok|http_error|network_error|decode_error)
//   - tradesim_api_request_duration_seconds{method} – service call latency
//   - tradesim_sync_skips_total                    – periodic cycles skipped while disconnected
//   - tradesim_sync_cycle_failures_total           – periodic cycles that failed and were swallowed
//   - tradesim_trades_submitted_total{side,result} – trade submissions by side and result (ok|error)
//
// Collectors are registered in init and served by the HTTP handler
// started from Serve at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesim_api_requests_total",
			Help: "Service calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradesim_api_request_duration_seconds",
			Help:    "Service call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	syncSkips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradesim_sync_skips_total",
			Help: "Periodic sync cycles skipped while disconnected",
		},
	)

	syncCycleFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradesim_sync_cycle_failures_total",
			Help: "Periodic sync cycles that failed and were swallowed",
		},
	)

	tradesSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesim_trades_submitted_total",
			Help: "Trade submissions by side and result",
		},
		[]string{"side", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		syncSkips,
		syncCycleFailures,
		tradesSubmitted,
	)
}

// ObserveRequest records one service call.
func ObserveRequest(method, outcome string, dur time.Duration) {
	apiRequests.WithLabelValues(method, outcome).Inc()
	apiDuration.WithLabelValues(method).Observe(dur.Seconds())
}

// SyncSkipped counts a periodic cycle skipped because the backend is
// known down.
func SyncSkipped() { syncSkips.Inc() }

// SyncCycleFailed counts a periodic cycle that errored and was dropped.
func SyncCycleFailed() { syncCycleFailures.Inc() }

// TradeSubmitted records one trade submission outcome.
func TradeSubmitted(side, result string) {
	tradesSubmitted.WithLabelValues(side, result).Inc()
}

// Serve starts the /metrics listener on addr. It blocks, so callers run
// it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
