package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Success = "success"
	Failure = "failure"
)

// Metrics tracks the model lifecycle events.
type Metrics struct {
	prometheus Prometheus
}

// New creates a new set of metrics, not yet registered.
func New() *Metrics {
	return &Metrics{
		prometheus: NewPrometheusMetrics(),
	}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range m.prometheus.collectors() {
		if err := r.Register(c); err != nil {
			return fmt.Errorf("could not register metrics: %w", err)
		}
	}
	return nil
}

func (m *Metrics) Sample() {
	m.prometheus.Samples.Inc()
}

// Trained records a training run, accuracy is only recorded for successful runs.
func (m *Metrics) Trained(model string, duration time.Duration, accuracy float64, err error) {
	if err != nil {
		m.prometheus.Trainings.WithLabelValues(model, Failure).Inc()
		return
	}
	m.prometheus.Trainings.WithLabelValues(model, Success).Inc()
	m.prometheus.Duration.WithLabelValues(model).Observe(duration.Seconds())
	m.prometheus.Accuracy.WithLabelValues(model).Set(accuracy)
}

func (m *Metrics) Predicted(model string, err error) {
	outcome := Success
	if err != nil {
		outcome = Failure
	}
	m.prometheus.Predictions.WithLabelValues(model, outcome).Inc()
}

// Samples returns the counter of collected samples.
func (m *Metrics) Samples() prometheus.Counter {
	return m.prometheus.Samples
}

// Trainings returns the training counter of the given model and outcome.
func (m *Metrics) Trainings(model, outcome string) prometheus.Counter {
	return m.prometheus.Trainings.WithLabelValues(model, outcome)
}

// Predictions returns the prediction counter of the given model and outcome.
func (m *Metrics) Predictions(model, outcome string) prometheus.Counter {
	return m.prometheus.Predictions.WithLabelValues(model, outcome)
}

// Accuracy returns the last recorded accuracy gauge of the given model.
func (m *Metrics) Accuracy(model string) prometheus.Gauge {
	return m.prometheus.Accuracy.WithLabelValues(model)
}
