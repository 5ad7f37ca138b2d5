package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/ports"
)

// StoreMetrics records latency and outcome of state store calls.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
}

// NewStoreMetrics creates and registers the collectors on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopbot_store_duration_seconds",
				Help:    "State store call latency by operation and result",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op", "result"},
		),
	}
	reg.MustRegister(m.duration)
	return m
}

// Middleware returns a Middleware that observes into m.
func (m *StoreMetrics) Middleware() Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *StoreMetrics) observe(op string, start time.Time, err error) {
	m.duration.WithLabelValues(op, result(err)).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnknownUser):
		return "miss"
	default:
		return "error"
	}
}

type metricsMiddleware struct {
	next    ports.StateStore
	metrics *StoreMetrics
}

func (m *metricsMiddleware) Get(ctx context.Context, userID int64) (domain.State, error) {
	start := time.Now()
	state, err := m.next.Get(ctx, userID)
	m.metrics.observe("get", start, err)
	return state, err
}

func (m *metricsMiddleware) Set(ctx context.Context, userID int64, state domain.State) error {
	start := time.Now()
	err := m.next.Set(ctx, userID, state)
	m.metrics.observe("set", start, err)
	return err
}
