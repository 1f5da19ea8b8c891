package model

import (
	"errors"
	"fmt"

	"github.com/drakos74/free-gesture/internal/math/ml"
	"github.com/drakos74/free-gesture/internal/storage"
	"github.com/drakos74/free-gesture/internal/storage/file/json"
	"github.com/rs/zerolog/log"
)

const metadataSuffix = "_metadata"

// Store keeps the trained classifiers and their metadata in two parallel storages,
// both keyed by the sanitized model name.
// The two writes of a save are not atomic,
// a classifier can end up without metadata and the other way around.
type Store struct {
	models   storage.Persistence
	metadata storage.Persistence
}

// NewStore creates a model store on top of the given storages.
func NewStore(models, metadata storage.Persistence) *Store {
	return &Store{
		models:   models,
		metadata: metadata,
	}
}

// NewFileStore creates a model store backed by json files
// under <dir>/<modelsDir> and <dir>/<metadataDir>.
// Both directories are created if missing.
func NewFileStore(dir, modelsDir, metadataDir string) (*Store, error) {
	models, err := json.NewJsonBlob(dir, modelsDir)
	if err != nil {
		return nil, fmt.Errorf("could not create models storage: %v: %w", err, PersistenceFailureErr)
	}
	metadata, err := json.NewJsonBlob(dir, metadataDir)
	if err != nil {
		return nil, fmt.Errorf("could not create metadata storage: %v: %w", err, PersistenceFailureErr)
	}
	return NewStore(models, metadata.WithSuffix(metadataSuffix)), nil
}

// Save stores the classifier and its metadata under the sanitized name,
// overwriting any previous model.
func (s *Store) Save(classifier *ml.Forest, name string, metadata Metadata) error {
	k := storage.NewKey(name)
	if err := s.models.Store(k, classifier); err != nil {
		return fmt.Errorf("could not save model '%s': %v: %w", k, err, PersistenceFailureErr)
	}
	if err := s.metadata.Store(k, metadata); err != nil {
		return fmt.Errorf("could not save metadata for '%s': %v: %w", k, err, PersistenceFailureErr)
	}
	log.Debug().Str("model", k.String()).Msg("saved model")
	return nil
}

// Load loads the classifier for the given name.
func (s *Store) Load(name string) (Classifier, error) {
	k := storage.NewKey(name)
	forest := new(ml.Forest)
	if err := s.models.Load(k, forest); err != nil {
		if errors.Is(err, storage.NotFoundErr) {
			return nil, fmt.Errorf("could not find '%s': %w", k, ModelNotFoundErr)
		}
		return nil, fmt.Errorf("could not load model '%s': %v: %w", k, err, PersistenceFailureErr)
	}
	return forest, nil
}

// LoadMetadata loads the metadata for the given name.
// Missing metadata is not an error, an empty document is returned instead.
func (s *Store) LoadMetadata(name string) (Metadata, error) {
	k := storage.NewKey(name)
	var metadata Metadata
	if err := s.metadata.Load(k, &metadata); err != nil {
		if errors.Is(err, storage.NotFoundErr) {
			return Metadata{}, nil
		}
		return Metadata{}, fmt.Errorf("could not load metadata '%s': %v: %w", k, err, PersistenceFailureErr)
	}
	return metadata, nil
}

// List returns the names of all persisted classifiers.
func (s *Store) List() ([]string, error) {
	keys, err := s.models.Keys()
	if err != nil {
		return nil, fmt.Errorf("could not list models: %v: %w", err, PersistenceFailureErr)
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names, nil
}

// Info returns the metadata of the given model, empty if there is none.
func (s *Store) Info(name string) (Metadata, error) {
	return s.LoadMetadata(name)
}

// Delete removes the classifier and its metadata.
func (s *Store) Delete(name string) error {
	k := storage.NewKey(name)
	if err := s.models.Delete(k); err != nil {
		if errors.Is(err, storage.NotFoundErr) {
			return fmt.Errorf("could not find '%s': %w", k, ModelNotFoundErr)
		}
		return fmt.Errorf("could not delete model '%s': %v: %w", k, err, PersistenceFailureErr)
	}
	if err := s.metadata.Delete(k); err != nil && !errors.Is(err, storage.NotFoundErr) {
		return fmt.Errorf("could not delete metadata '%s': %v: %w", k, err, PersistenceFailureErr)
	}
	return nil
}
