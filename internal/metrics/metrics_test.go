package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {

	m := New()
	registry := prometheus.NewRegistry()
	require.NoError(t, m.Register(registry))
	// registering twice fails
	assert.Error(t, m.Register(registry))

	m.Sample()
	m.Sample()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.prometheus.Samples))

	m.Trained("demo", time.Second, 0.9, nil)
	m.Trained("demo", time.Second, 0, errors.New("failed"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Trainings.WithLabelValues("demo", Success)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Trainings.WithLabelValues("demo", Failure)))
	assert.Equal(t, 0.9, testutil.ToFloat64(m.prometheus.Accuracy.WithLabelValues("demo")))

	m.Predicted("demo", nil)
	m.Predicted("other", errors.New("not found"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Predictions.WithLabelValues("demo", Success)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Predictions.WithLabelValues("other", Failure)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Samples()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Trainings("demo", Success)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions("other", Failure)))
	assert.Equal(t, 0.9, testutil.ToFloat64(m.Accuracy("demo")))

	count, err := testutil.GatherAndCount(registry, "gesture_trainings_total", "gesture_predictions_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
