// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Creation metrics
	RunsTotal          *prometheus.CounterVec
	CoinsCreated       prometheus.Counter
	CreationFailures   *prometheus.CounterVec
	MetadataOutcomes   *prometheus.CounterVec
	FeeLamports        prometheus.Counter
	RecordsPersisted   *prometheus.CounterVec
	LastSuccessfulMint prometheus.Gauge

	// Latency metrics
	StepLatency    *prometheus.HistogramVec
	RunDuration    prometheus.Histogram
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "token_forge"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "creator",
			Name:      "runs_total",
			Help:      "Total number of creation runs by status",
		}, []string{"status"}),
		CoinsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "creator",
			Name:      "coins_created_total",
			Help:      "Total number of confirmed token mints",
		}),
		CreationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "creator",
			Name:      "failures_total",
			Help:      "Total number of failed runs by error kind",
		}, []string{"kind"}),
		MetadataOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "outcomes_total",
			Help:      "Metadata pipeline results by outcome",
		}, []string{"outcome"}),
		FeeLamports: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "creator",
			Name:      "fee_lamports_total",
			Help:      "Service fee lamports transferred by confirmed mints",
		}),
		RecordsPersisted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "records_persisted_total",
			Help:      "Created coin records written by status",
		}, []string{"status"}),
		LastSuccessfulMint: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_mint_timestamp",
			Help:      "Unix timestamp of the last confirmed mint",
		}),

		StepLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "creator",
			Name:      "step_latency_seconds",
			Help:      "Workflow step latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"step"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "creator",
			Name:      "run_duration_seconds",
			Help:      "End to end creation run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		RPCCallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Solana RPC calls that returned an error",
		}, []string{"method"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a /metrics handler for a custom registry.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordRun records the end of a creation run. kind is empty on success.
func (m *Metrics) RecordRun(kind string, d time.Duration) {
	m.RunDuration.Observe(d.Seconds())
	if kind == "" {
		m.RunsTotal.WithLabelValues("success").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("failure").Inc()
	m.CreationFailures.WithLabelValues(kind).Inc()
}

// RecordMint records a confirmed mint and the fee it paid.
func (m *Metrics) RecordMint(feeLamports uint64) {
	m.CoinsCreated.Inc()
	m.FeeLamports.Add(float64(feeLamports))
	m.LastSuccessfulMint.SetToCurrentTime()
}

// RecordMetadata records a metadata pipeline outcome (VALID, UNVALIDATED, FAILED...).
func (m *Metrics) RecordMetadata(outcome string) {
	m.MetadataOutcomes.WithLabelValues(outcome).Inc()
}

// RecordStep records the latency of a workflow step.
func (m *Metrics) RecordStep(step string, d time.Duration) {
	m.StepLatency.WithLabelValues(step).Observe(d.Seconds())
}

// RecordPersist records a record write.
func (m *Metrics) RecordPersist(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RecordsPersisted.WithLabelValues(status).Inc()
}

// ObserveRPC matches solana.WithObserver.
func (m *Metrics) ObserveRPC(method string, d time.Duration, err error) {
	m.RPCCallLatency.WithLabelValues(method).Observe(d.Seconds())
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, d time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
