package jobpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics is a MetricsPolicy that exports pool activity as
// Prometheus collectors.
type PromMetrics struct {
	Queued    prometheus.Gauge
	Executed  prometheus.Counter
	Failed    prometheus.Counter
	Discarded prometheus.Counter
	Duration  prometheus.Histogram
}

// NewPromMetrics creates the collectors and registers them on reg.
// A nil reg registers on prometheus.DefaultRegisterer.
func NewPromMetrics(namespace, subsystem string, reg prometheus.Registerer) (*PromMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PromMetrics{
		Queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_queued",
			Help:      "Current number of jobs waiting in the queue",
		}),
		Executed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_executed_total",
			Help:      "Total number of jobs run by workers",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_failed_total",
			Help:      "Total number of jobs recorded in the error log",
		}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_discarded_total",
			Help:      "Total number of queued jobs dropped by terminate or kill",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.Queued, m.Executed, m.Failed, m.Discarded, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PromMetrics) IncQueued()             { m.Queued.Inc() }
func (m *PromMetrics) BatchDecQueued(n int64) { m.Queued.Sub(float64(n)) }
func (m *PromMetrics) IncExecuted()           { m.Executed.Inc() }
func (m *PromMetrics) IncFailed()             { m.Failed.Inc() }
func (m *PromMetrics) IncDiscarded(n int64)   { m.Discarded.Add(float64(n)) }
func (m *PromMetrics) ObserveDuration(d time.Duration) {
	m.Duration.Observe(d.Seconds())
}
