package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of the signal runner. They live on a
// private registry so several runners (and tests) never collide.
type Metrics struct {
	Registry *prometheus.Registry

	CyclesTotal       prometheus.Counter
	EvaluationsTotal  *prometheus.CounterVec // labels: symbol
	CrossoversTotal   *prometheus.CounterVec // labels: symbol
	SignalsTotal      *prometheus.CounterVec // labels: symbol, direction
	OrdersTotal       *prometheus.CounterVec // labels: symbol, status
	FailuresTotal     *prometheus.CounterVec // labels: stage
	EvaluationDur     prometheus.Histogram
	FetchDur          prometheus.Histogram
	LastCycleUnixTime prometheus.Gauge
}

// Failure stages used as FailuresTotal labels.
const (
	StageFetch    = "fetch"
	StageEvaluate = "evaluate"
	StagePersist  = "persist"
	StageSize     = "size"
	StageOrder    = "order"
)

// NewMetrics registers and returns all metrics on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emacross_cycles_total",
			Help: "Total evaluation cycles over all configured symbols",
		}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emacross_evaluations_total",
			Help: "Successful strategy evaluations per symbol",
		}, []string{"symbol"}),
		CrossoversTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emacross_latest_crossovers_total",
			Help: "Evaluations whose latest candle crossed",
		}, []string{"symbol"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emacross_signals_total",
			Help: "Trade signals emitted at the latest candle",
		}, []string{"symbol", "direction"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emacross_orders_total",
			Help: "Stop orders by final status",
		}, []string{"symbol", "status"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emacross_failures_total",
			Help: "Per-symbol failures by pipeline stage",
		}, []string{"stage"}),
		EvaluationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emacross_evaluation_duration_seconds",
			Help:    "Strategy evaluation latency per symbol",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emacross_fetch_duration_seconds",
			Help:    "Market data fetch latency per symbol",
			Buckets: prometheus.DefBuckets,
		}),
		LastCycleUnixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emacross_last_cycle_timestamp_seconds",
			Help: "Unix time at which the last cycle finished",
		}),
	}

	m.Registry.MustRegister(
		m.CyclesTotal,
		m.EvaluationsTotal,
		m.CrossoversTotal,
		m.SignalsTotal,
		m.OrdersTotal,
		m.FailuresTotal,
		m.EvaluationDur,
		m.FetchDur,
		m.LastCycleUnixTime,
	)

	return m
}
