package http

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/shopbot/pkg/domain"
)

// Metrics holds the conversation counters and histograms.
type Metrics struct {
	transitions *prometheus.CounterVec
	errors      *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbot_transitions_total",
				Help: "Total number of committed state transitions",
			},
			[]string{"from", "to", "trigger"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbot_handle_errors_total",
				Help: "Events that failed and left the state unchanged",
			},
			[]string{"state", "kind"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbot_delivery_failures_total",
				Help: "Outbound actions the transport rejected after a committed transition",
			},
			[]string{"action"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopbot_handle_duration_seconds",
				Help:    "Time from state lookup to committed transition",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"state"},
		),
	}
	reg.MustRegister(m.transitions, m.errors, m.deliveries, m.duration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(e.From.Label(), e.To.Label(), string(e.Trigger)).Inc()
			m.duration.WithLabelValues(e.From.Label()).Observe(e.Duration.Seconds())
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			m.errors.WithLabelValues(e.State.Label(), domain.ErrorKind(e.Err)).Inc()
		},
		OnDeliveryFailure: func(ctx context.Context, e *domain.DeliveryEvent) {
			m.deliveries.WithLabelValues(string(e.Action)).Inc()
		},
	}
}
