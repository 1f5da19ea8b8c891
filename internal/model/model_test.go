package model

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/drakos74/free-gesture/infra/config"
	"github.com/drakos74/free-gesture/internal/metrics"
	"github.com/drakos74/free-gesture/internal/sample"
	"github.com/drakos74/free-gesture/internal/storage/file/json"
	"github.com/stretchr/testify/require"
)

const dim = 10

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Forest.Trees = 40
	cfg.Forest.Bags = 4
	return cfg
}

func newLocalManager() *Manager {
	store := NewStore(json.NewLocalStorage(), json.NewLocalStorage())
	return New(testConfig(), store).WithMetrics(metrics.New())
}

func newFileManager(t *testing.T) *Manager {
	cfg := testConfig()
	cfg.Dir = t.TempDir()
	m, err := NewManager(cfg)
	require.NoError(t, err)
	return m
}

// vector generates a feature vector around the given center.
func vector(center float64, rnd *rand.Rand) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = center + rnd.Float64()*0.5
	}
	return v
}

// collect generates n samples for each label, every label around its own center.
func collect(n int, labels map[string]float64) *sample.Store {
	rnd := rand.New(rand.NewSource(11))
	s := sample.NewStore()
	for _, label := range sortedKeys(labels) {
		for i := 0; i < n; i++ {
			s.Add(vector(labels[label], rnd), label)
		}
	}
	return s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
