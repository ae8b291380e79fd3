package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exchange",
			Subsystem: "rates",
			Name:      "refresh_total",
			Help:      "Total number of rate refresh attempts by outcome.",
		},
		[]string{"status"},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "exchange",
			Subsystem: "rates",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of rate refresh attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exchange",
			Subsystem: "rates",
			Name:      "conversions_total",
			Help:      "Total number of conversions by path taken.",
		},
		[]string{"path"},
	)

	cachedCurrencies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "exchange",
			Subsystem: "rates",
			Name:      "cached_currencies",
			Help:      "Number of currencies currently held in the rate cache.",
		},
	)
)

// ObserveRefresh records one refresh attempt. Status is "success" or
// "failure".
func ObserveRefresh(status string, took time.Duration) {
	refreshTotal.WithLabelValues(status).Inc()
	refreshDuration.Observe(took.Seconds())
}

// CountConversion records one served conversion. Path is "identity",
// "remote" or "local".
func CountConversion(path string) {
	conversionsTotal.WithLabelValues(path).Inc()
}

// SetCachedCurrencies updates the cache size gauge.
func SetCachedCurrencies(n int) {
	cachedCurrencies.Set(float64(n))
}
