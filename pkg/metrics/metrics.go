package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transcodebot"

// Metrics holds the process-wide Prometheus collectors.
type Metrics struct {
	JobsTotal       *prometheus.CounterVec
	JobDuration     prometheus.Histogram
	QueueDepth      prometheus.Gauge
	ArtifactsActive prometheus.Gauge
	SessionsActive  prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		JobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Transcode jobs by terminal status.",
		}, []string{"status"}),
		JobDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall-clock duration of transcode jobs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_queue_depth",
			Help:      "Jobs waiting for a worker slot.",
		}),
		ArtifactsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifacts_active",
			Help:      "Temporary artifacts currently reserved.",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "User sessions currently tracked.",
		}),
	}
}
