package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels requests that completed normally.
	OutcomeSuccess = "success"
	// OutcomeError labels requests that failed.
	OutcomeError = "error"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "customer_analytics",
			Name:      "requests_total",
			Help:      "Total number of analytics requests handled, partitioned by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "customer_analytics",
			Name:      "request_seconds",
			Help:      "Analytics request latency in seconds.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	snapshotCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "customer_analytics",
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups, partitioned by result.",
		},
		[]string{"result"},
	)

	anomaliesDetected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "customer_analytics",
			Name:      "anomalies_detected",
			Help:      "Number of anomalies surfaced by the most recent dashboard computation.",
		},
	)
)

// Register attaches analytics collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		requestsTotal,
		requestDurationSeconds,
		snapshotCacheHits,
		anomaliesDetected,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records a request duration and outcome for an endpoint.
func ObserveRequest(endpoint string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	requestsTotal.WithLabelValues(endpoint, label).Inc()
	if duration < 0 {
		duration = 0
	}
	requestDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveSnapshotCache records a snapshot cache hit or miss.
func ObserveSnapshotCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	snapshotCacheHits.WithLabelValues(result).Inc()
}

// SetAnomaliesDetected publishes the anomaly count from the latest dashboard run.
func SetAnomaliesDetected(n int) {
	anomaliesDetected.Set(float64(n))
}
