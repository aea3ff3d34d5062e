// Package observability provides Prometheus metrics, tracing and logging setup.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Check metrics
	ChecksTotal    *prometheus.CounterVec
	CheckDuration  prometheus.Histogram
	WalletsChecked *prometheus.CounterVec
	HoldingsFound  prometheus.Counter
	RewardsByTier  *prometheus.CounterVec
	BoostValue     prometheus.Histogram
	TrackedWallets prometheus.Gauge

	// External call metrics
	RPCCallLatency  *prometheus.HistogramVec
	RPCCallErrors   *prometheus.CounterVec
	AnalysisLatency *prometheus.HistogramVec

	// Activity watcher metrics
	WSNotifications  prometheus.Counter
	WSReconnects     prometheus.Counter
	ActivityTriggers prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCheck prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "daio_rewards"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ChecksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "checks_total",
			Help:      "Total number of wallet check runs by trigger",
		}, []string{"trigger"}),
		CheckDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "check_duration_seconds",
			Help:      "Duration of a full check run in seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		WalletsChecked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "wallets_checked_total",
			Help:      "Total number of wallet checks by outcome",
		}, []string{"outcome"}),
		HoldingsFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "holdings_found_total",
			Help:      "Total number of qualifying holdings found",
		}),
		RewardsByTier: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reward",
			Name:      "computed_total",
			Help:      "Total number of rewards computed by tier",
		}, []string{"tier"}),
		BoostValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reward",
			Name:      "boost",
			Help:      "Distribution of computed boost values",
			Buckets:   []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5},
		}),
		TrackedWallets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "tracked_wallets",
			Help:      "Current number of tracked wallets",
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
			Help:      "Total number of failed Solana RPC calls",
		}, []string{"method"}),
		AnalysisLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "latency_seconds",
			Help:      "Language model analysis latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"status"}),

		WSNotifications: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_notifications_total",
			Help:      "Total number of WebSocket log notifications received",
		}),
		WSReconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),
		ActivityTriggers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "activity_triggers_total",
			Help:      "Total number of re-checks triggered by on-chain activity",
		}),

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

		LastSuccessfulCheck: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_check_timestamp",
			Help:      "Unix timestamp of last completed check run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordCheck records a completed check run.
func RecordCheck(trigger string, durationSeconds float64, finishedUnix int64) {
	DefaultMetrics.ChecksTotal.WithLabelValues(trigger).Inc()
	DefaultMetrics.CheckDuration.Observe(durationSeconds)
	DefaultMetrics.LastSuccessfulCheck.Set(float64(finishedUnix))
}

// RecordWalletOutcome records the outcome of a single wallet check.
func RecordWalletOutcome(outcome string) {
	DefaultMetrics.WalletsChecked.WithLabelValues(outcome).Inc()
}

// RecordHoldings adds n to the holdings found counter.
func RecordHoldings(n int) {
	DefaultMetrics.HoldingsFound.Add(float64(n))
}

// RecordReward records a computed reward.
func RecordReward(tier string, boost float64) {
	DefaultMetrics.RewardsByTier.WithLabelValues(tier).Inc()
	DefaultMetrics.BoostValue.Observe(boost)
}

// SetTrackedWallets updates the tracked wallets gauge.
func SetTrackedWallets(n int) {
	DefaultMetrics.TrackedWallets.Set(float64(n))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64, err error) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordAnalysis records an analysis call.
func RecordAnalysis(seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.AnalysisLatency.WithLabelValues(status).Observe(seconds)
}

// RecordWSNotification increments the WebSocket notification counter.
func RecordWSNotification() {
	DefaultMetrics.WSNotifications.Inc()
}

// RecordWSReconnect increments the WebSocket reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}

// RecordActivityTrigger increments the activity trigger counter.
func RecordActivityTrigger() {
	DefaultMetrics.ActivityTriggers.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
