package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// MetricCache metrics
	CacheUpdatesTotal prometheus.Counter
	CacheActiveNodes  prometheus.Gauge

	// Evaluator metrics
	EvaluatorTickDuration prometheus.Histogram
	EvaluatorRulesManaged prometheus.Gauge
	EventsTotal           *prometheus.CounterVec

	// Provisioner metrics
	ProvisionerSyncDuration prometheus.Histogram
	ProvisionerRulesAdded   prometheus.Counter
	ProvisionerRulesRemoved prometheus.Counter

	// Database metrics
	DBQueriesTotal    *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBConnectionsOpen prometheus.Gauge
}

var metrics *Metrics

// InitMetrics initializes Prometheus metrics.
func InitMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "alarm_manager"
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		CacheUpdatesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "updates_total",
				Help:      "Total number of node snapshot updates applied to the metric cache",
			},
		),
		CacheActiveNodes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "active_nodes",
				Help:      "Number of nodes considered active at the last provisioner sync",
			},
		),

		EvaluatorTickDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "evaluator",
				Name:      "tick_duration_seconds",
				Help:      "Duration of one evaluator tick over the whole rule map",
				Buckets:   prometheus.DefBuckets,
			},
		),
		EvaluatorRulesManaged: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "evaluator",
				Name:      "rules_managed",
				Help:      "Number of rules currently held in the evaluator's rule map",
			},
		),
		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evaluator",
				Name:      "events_total",
				Help:      "Total number of triggered/recovered events fired",
			},
			[]string{"event_type"},
		),

		ProvisionerSyncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provisioner",
				Name:      "sync_duration_seconds",
				Help:      "Duration of one provisioner reconciliation pass",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ProvisionerRulesAdded: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provisioner",
				Name:      "rules_added_total",
				Help:      "Total number of rules added by the provisioner",
			},
		),
		ProvisionerRulesRemoved: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provisioner",
				Name:      "rules_removed_total",
				Help:      "Total number of rules removed by the provisioner",
			},
		),

		DBQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnectionsOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "connections_open",
				Help:      "Number of open database connections",
			},
		),
	}

	return metrics
}

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	if metrics == nil {
		return InitMetrics("")
	}
	return metrics
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
