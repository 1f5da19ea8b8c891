package model

import (
	"fmt"
	"path/filepath"

	"github.com/drakos74/free-gesture/infra/config"
	"github.com/drakos74/free-gesture/internal/metrics"
	"github.com/drakos74/free-gesture/internal/sample"
	"github.com/rs/zerolog/log"
)

// Manager runs the model lifecycle, from training to persistence and inference.
// It holds no samples itself, the sample store is owned by the caller.
type Manager struct {
	cfg     config.Config
	store   *Store
	metrics *metrics.Metrics
}

// New creates a manager on top of the given model store.
func New(cfg config.Config, store *Store) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   store,
		metrics: metrics.New(),
	}
}

// NewManager creates a manager with a file based model store as defined in the config.
func NewManager(cfg config.Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	store, err := NewFileStore(cfg.Dir, cfg.ModelsDir, cfg.MetadataDir)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("models", filepath.Join(cfg.Dir, cfg.ModelsDir)).
		Str("metadata", filepath.Join(cfg.Dir, cfg.MetadataDir)).
		Msg("created model manager")
	return New(cfg, store), nil
}

// WithMetrics replaces the metrics of the manager.
func (m *Manager) WithMetrics(metrics *metrics.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Metrics returns the metrics the manager records to.
func (m *Manager) Metrics() *metrics.Metrics {
	return m.metrics
}

// Store returns the underlying model store.
func (m *Manager) Store() *Store {
	return m.store
}

// Collect adds a sample to the given store.
// An empty vector means the feature source could not detect a hand and is rejected.
func (m *Manager) Collect(samples *sample.Store, vector []float64, label string) (int, error) {
	if len(vector) == 0 {
		return samples.Len(), fmt.Errorf("no features for label '%s': %w", label, InvalidVectorErr)
	}
	n := samples.Add(vector, label)
	m.metrics.Sample()
	log.Info().Str("label", label).Int("samples", n).Msg("added sample")
	return n, nil
}

// List returns the names of the persisted models.
func (m *Manager) List() ([]string, error) {
	return m.store.List()
}

// Info returns the metadata of the given model, empty if there is none.
func (m *Manager) Info(name string) (Metadata, error) {
	return m.store.Info(name)
}

// Delete removes the given model.
func (m *Manager) Delete(name string) error {
	return m.store.Delete(name)
}
