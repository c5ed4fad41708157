package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports use-case events as Prometheus series.
type MetricsObserver struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	fields   *prometheus.CounterVec
}

// NewMetricsObserver registers the objetivos collectors on reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	m := &MetricsObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objetivos",
			Name:      "use_case_total",
			Help:      "Service use cases executed, by outcome.",
		}, []string{"use_case", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "objetivos",
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		fields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objetivos",
			Name:      "field_updates_total",
			Help:      "Field updates issued by save actions, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.calls, m.duration, m.fields)
	return m
}

func (m *MetricsObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	outcome := "success"
	if !event.Success {
		outcome = "error"
	}
	m.calls.WithLabelValues(event.Name, outcome).Inc()
	m.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	if n, ok := event.Fields["persisted"].(int); ok && n > 0 {
		m.fields.WithLabelValues("persisted").Add(float64(n))
	}
	if n, ok := event.Fields["failed"].(int); ok && n > 0 {
		m.fields.WithLabelValues("failed").Add(float64(n))
	}
}
