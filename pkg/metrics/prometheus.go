package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshes   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	state       *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_refreshes_total",
				Help: "Total number of signal refreshes by source",
			},
			[]string{"source", "asset"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signaldesk_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		state: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signaldesk_signal_state",
				Help: "Current lifecycle state per asset (1 for the active state)",
			},
			[]string{"asset", "state"},
		),
	}
}

// RecordRefresh records one completed signal refresh.
func (r *Recorder) RecordRefresh(source, asset string) {
	r.refreshes.WithLabelValues(source, asset).Inc()
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

// RecordState marks the current lifecycle state for an asset. States are
// mutually exclusive per asset; the active one reads 1.
func (r *Recorder) RecordState(asset, state string) {
	for _, s := range []string{"WAITING_FOR_ENTRY", "ENTRY_HIT", "TP_HIT", "SL_HIT", "EXPIRED", "CANCELLED", "UNKNOWN"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		r.state.WithLabelValues(asset, s).Set(v)
	}
}
