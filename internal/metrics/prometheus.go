package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "gesture"

type Prometheus struct {
	Samples     prometheus.Counter
	Trainings   *prometheus.CounterVec
	Predictions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Accuracy    *prometheus.GaugeVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Samples: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_total",
				Help:      "collected samples",
			}),
		Trainings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trainings_total",
				Help:      "training runs by outcome",
			}, []string{"model", "outcome"}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "predictions by outcome",
			}, []string{"model", "outcome"}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "training_duration_seconds",
				Help:      "duration of the training runs",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			}, []string{"model"}),
		Accuracy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_accuracy",
				Help:      "test accuracy of the last training run",
			}, []string{"model"}),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Samples, p.Trainings, p.Predictions, p.Duration, p.Accuracy}
}
