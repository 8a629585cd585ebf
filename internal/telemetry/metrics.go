package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus-метрики выполнения jobs и runs.
type Metrics struct {
	// JobsRunning — количество выполняющихся jobs.
	JobsRunning prometheus.Gauge

	// JobsTotal — завершённые jobs по терминальному статусу.
	JobsTotal *prometheus.CounterVec

	// JobDuration — длительность jobs в секундах.
	JobDuration prometheus.Histogram

	// RunsTotal — завершённые runs по статусу.
	RunsTotal *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики.
// reg == nil — регистрация в prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		JobsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gantry",
			Name:      "jobs_running",
			Help:      "Number of currently running matrix jobs.",
		}),
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "jobs_total",
			Help:      "Terminal matrix jobs by status.",
		}, []string{"status"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gantry",
			Name:      "job_duration_seconds",
			Help:      "Matrix job duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "runs_total",
			Help:      "Finished runs by status.",
		}, []string{"status"}),
	}
}
