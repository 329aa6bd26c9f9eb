package metrics

import (
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    APILatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "monexa",
            Subsystem: "api",
            Name:      "latency_seconds",
            Help:      "Latency of API endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    APIErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "monexa",
            Subsystem: "api",
            Name:      "errors_total",
            Help:      "Errors by API endpoint",
        },
        []string{"endpoint"},
    )

    AggregateSize = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "monexa",
            Subsystem: "api",
            Name:      "aggregate_symbols",
            Help:      "Symbols returned per aggregate response",
            Buckets:   []float64{0, 1, 2, 5, 10, 20},
        },
        []string{"endpoint"},
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(APILatency, APIErrors, AggregateSize)
    })
}

// Observe records latency for endpoint and counts failures.
func Observe(endpoint string, start time.Time, failed bool) {
    APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
    if failed {
        APIErrors.WithLabelValues(endpoint).Inc()
    }
}
