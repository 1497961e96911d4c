package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookrelay",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Number of dispatches by result status.",
		}, []string{"status"},
	)
	validationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hookrelay",
			Subsystem: "dispatch",
			Name:      "validation_duration_seconds",
			Help:      "Time spent in the synchronous validation phase.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	taskLaunches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookrelay",
			Subsystem: "task",
			Name:      "launches_total",
			Help:      "Number of background extraction tasks launched.",
		}, []string{"project"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{dispatches, validationDuration, taskLaunches}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// RegisterDefault registers against the default Prometheus registry.
func RegisterDefault() error { return Register(prometheus.DefaultRegisterer) }

// Handler returns an http.Handler serving metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func IncDispatch(status string) {
	if regOK.Load() {
		dispatches.WithLabelValues(status).Inc()
	}
}

func ObserveValidation(seconds float64) {
	if regOK.Load() {
		validationDuration.Observe(seconds)
	}
}

func IncTaskLaunch(project string) {
	if regOK.Load() {
		taskLaunches.WithLabelValues(project).Inc()
	}
}
