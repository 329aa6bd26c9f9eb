package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	inFlight    prometheus.Gauge
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the process-wide recorder registered on the default registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegistry creates a recorder whose collectors are registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monexa_marketdata_fetch_total",
				Help: "Market-data fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monexa_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "monexa_last_price",
				Help: "Last derived price for a symbol in its display currency",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "monexa_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "monexa_fetch_in_flight",
				Help: "Market-data fetch tasks currently running",
			},
		),
	}
}

// RecordFetch records one market-data fetch outcome ("ok", "no_data", "error").
func (r *Recorder) RecordFetch(provider, outcome string) {
	r.fetchTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordInFlight adjusts the in-flight fetch gauge.
func (r *Recorder) RecordInFlight(delta float64) {
	r.inFlight.Add(delta)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordFetch(string, string)      {}
func (Nop) RecordError(string)              {}
func (Nop) RecordLastPrice(string, float64) {}
func (Nop) RecordLatency(string, float64)   {}
func (Nop) RecordInFlight(float64)          {}
