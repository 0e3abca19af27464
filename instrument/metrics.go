package instrument

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by ObserveCalls.
type Metrics struct {
	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "instrument",
			Name:      "calls_total",
			Help:      "Total number of instrumented operation calls",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "instrument",
			Name:      "failures_total",
			Help:      "Total number of instrumented operation calls that returned an error",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "instrument",
			Name:      "call_duration_seconds",
			Help:      "Duration of instrumented operation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.calls, m.failures, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Metrics) record(id Identity, took time.Duration, err error) {
	op := string(id)
	m.calls.WithLabelValues(op).Inc()
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
	m.duration.WithLabelValues(op).Observe(took.Seconds())
}

// ObserveCalls records call count, failures and latency per identity.
// Unlike CountCalls it keeps its numbers in process, not in the store.
func ObserveCalls[A, R any](m *Metrics) Wrapper[A, R] {
	return func(id Identity, next Operation[A, R]) Operation[A, R] {
		return func(ctx context.Context, args A) (R, error) {
			start := time.Now()
			result, err := next(ctx, args)
			m.record(id, time.Since(start), err)
			return result, err
		}
	}
}
