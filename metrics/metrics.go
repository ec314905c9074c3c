package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "gobatch"

	jobLabel    = "job"
	stepLabel   = "step"
	statusLabel = "status"
)

var (
	jobExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_executions_total",
			Help:      "Number of finished job executions by job name and batch status.",
		},
		[]string{jobLabel, statusLabel},
	)
	stepExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_executions_total",
			Help:      "Number of finished step executions by step name and batch status.",
		},
		[]string{stepLabel, statusLabel},
	)
	stepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of step executions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{stepLabel},
	)

	initOnce sync.Once
)

// InitializeAll registers the batch collectors, repeated calls are no-ops
func InitializeAll(registerer prometheus.Registerer) error {
	var err error
	initOnce.Do(func() {
		for _, c := range []prometheus.Collector{jobExecutions, stepExecutions, stepDuration} {
			if err = registerer.Register(c); err != nil {
				return
			}
		}
	})
	return err
}

func incJobExecution(job, status string) {
	jobExecutions.With(prometheus.Labels{jobLabel: job, statusLabel: status}).Inc()
}

func incStepExecution(step, status string) {
	stepExecutions.With(prometheus.Labels{stepLabel: step, statusLabel: status}).Inc()
}

func observeStepDuration(step string, seconds float64) {
	stepDuration.With(prometheus.Labels{stepLabel: step}).Observe(seconds)
}
