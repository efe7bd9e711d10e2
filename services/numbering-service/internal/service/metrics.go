package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/grigta/numbering/pkg/apperror"
)

type MetricsCollector struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	eventsFailed      *prometheus.CounterVec
}

// NewMetricsCollector registers the service metrics with reg, or with the
// default registerer when reg is nil.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsCollector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "numbering_operations_total",
				Help: "Total number of service operations by entity, operation and result",
			},
			[]string{"entity", "operation", "result"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "numbering_operation_duration_seconds",
				Help:    "Duration of service operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		eventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "numbering_events_failed_total",
				Help: "Total number of domain events that could not be published",
			},
			[]string{"event"},
		),
	}
}

// Observe records one finished operation. The result label is "success" or
// the error kind.
func (m *MetricsCollector) Observe(entity, operation string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = string(apperror.KindOf(err))
	}
	m.operations.WithLabelValues(entity, operation, result).Inc()
	m.operationDuration.WithLabelValues(entity, operation).Observe(time.Since(started).Seconds())
}

func (m *MetricsCollector) IncrementEventFailed(event string) {
	m.eventsFailed.WithLabelValues(event).Inc()
}
