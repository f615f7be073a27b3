package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticks          *prometheus.CounterVec
	signals        *prometheus.CounterVec
	alpha          *prometheus.GaugeVec
	transitions    *prometheus.CounterVec
	settlements    *prometheus.CounterVec
	realizedPnL    *prometheus.CounterVec
	chatRequests   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	activeSessions prometheus.Gauge
	latency        *prometheus.HistogramVec
}

// New creates a recorder on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ticks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_simulator_ticks_total",
				Help: "Total number of simulator ticks",
			},
			[]string{"stock"},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_simulator_signals_total",
				Help: "Buy/sell markers emitted by the simulator",
			},
			[]string{"stock", "signal"},
		),
		alpha: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "yijinjing_simulator_alpha",
				Help: "Last alpha value per stock",
			},
			[]string{"stock"},
		),
		transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_lifecycle_transitions_total",
				Help: "Trading lifecycle transitions",
			},
			[]string{"from", "to"},
		),
		settlements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_lifecycle_settlements_total",
				Help: "Completed sells by trend at settlement",
			},
			[]string{"trend"},
		),
		realizedPnL: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_lifecycle_realized_pnl_abs_total",
				Help: "Absolute realized P&L of settlements by trend",
			},
			[]string{"trend"},
		),
		chatRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_chat_requests_total",
				Help: "Chat completions by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yijinjing_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "yijinjing_active_sessions",
				Help: "Dashboard sessions with a running engine",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yijinjing_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTick records a simulator step and its alpha.
func (r *Recorder) RecordTick(stock string, alpha float64) {
	r.ticks.WithLabelValues(stock).Inc()
	r.alpha.WithLabelValues(stock).Set(alpha)
}

// RecordSignal records a chart marker.
func (r *Recorder) RecordSignal(stock, signal string) {
	r.signals.WithLabelValues(stock, signal).Inc()
}

// RecordTransition records a lifecycle state change.
func (r *Recorder) RecordTransition(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

// RecordSettlement records a completed sell and its P&L magnitude.
func (r *Recorder) RecordSettlement(trend string, pnl float64) {
	r.settlements.WithLabelValues(trend).Inc()
	if pnl < 0 {
		pnl = -pnl
	}
	r.realizedPnL.WithLabelValues(trend).Add(pnl)
}

// RecordChat records a chat completion outcome.
func (r *Recorder) RecordChat(provider, outcome string) {
	r.chatRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// SetActiveSessions sets the running engine count.
func (r *Recorder) SetActiveSessions(n int) {
	r.activeSessions.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
