package model

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-gesture/internal/math/ml"
	"github.com/drakos74/free-gesture/internal/storage/file/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedForest(t *testing.T) *ml.Forest {
	x, y := make([][]float64, 0), make([]string, 0)
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 8; i++ {
		x = append(x, vector(0, rnd))
		y = append(y, "fist")
		x = append(x, vector(5, rnd))
		y = append(y, "open")
	}
	d, err := ml.NewDataset(x, y)
	require.NoError(t, err)
	forest := ml.NewForest(testConfig().Forest)
	require.NoError(t, forest.Train(d, rnd))
	return forest
}

func TestStore_SaveAndLoad(t *testing.T) {

	dir := t.TempDir()
	store, err := NewFileStore(dir, "models", "model_metadata")
	require.NoError(t, err)

	forest := trainedForest(t)
	meta := Metadata{
		Accuracy:         1,
		NSamples:         16,
		NSamplesPerClass: map[string]int{"fist": 8, "open": 8},
		Classes:          []string{"fist", "open"},
		TrainingDate:     "2026-10-17T00:00:00Z",
	}
	require.NoError(t, store.Save(forest, "foo", meta))

	_, err = os.Stat(filepath.Join(dir, "models", "foo.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "model_metadata", "foo_metadata.json"))
	assert.NoError(t, err)

	names, err := store.List()
	require.NoError(t, err)
	assert.Contains(t, names, "foo")

	classifier, err := store.Load("foo")
	require.NoError(t, err)
	assert.Equal(t, meta.Classes, classifier.Classes())

	// the loaded classifier votes as the original one
	v := vector(0, rand.New(rand.NewSource(5)))
	expected, err := forest.Probabilities(v)
	require.NoError(t, err)
	actual, err := classifier.Probabilities(v)
	require.NoError(t, err)
	for c, p := range expected {
		assert.InDelta(t, p, actual[c], 1e-9)
	}

	loaded, err := store.LoadMetadata("foo")
	require.NoError(t, err)
	assert.Equal(t, meta, loaded)

	info, err := store.Info("foo")
	require.NoError(t, err)
	assert.Equal(t, meta, info)
}

func TestStore_Sanitize(t *testing.T) {

	store := NewStore(json.NewLocalStorage(), json.NewLocalStorage())
	forest := trainedForest(t)

	require.NoError(t, store.Save(forest, "../my model!", Metadata{Classes: forest.Classes()}))
	require.NoError(t, store.Save(forest, "../..", Metadata{}))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "mymodel"}, names)

	// any name sanitizing to the same key reaches the same model
	_, err = store.Load("my/model")
	assert.NoError(t, err)
	_, err = store.Load("")
	assert.NoError(t, err)
}

func TestStore_Missing(t *testing.T) {

	store := NewStore(json.NewLocalStorage(), json.NewLocalStorage())

	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ModelNotFoundErr)

	meta, err := store.LoadMetadata("missing")
	assert.NoError(t, err)
	assert.True(t, meta.IsEmpty())

	err = store.Delete("missing")
	assert.ErrorIs(t, err, ModelNotFoundErr)
}

func TestStore_ClassifierWithoutMetadata(t *testing.T) {

	dir := t.TempDir()
	store, err := NewFileStore(dir, "models", "model_metadata")
	require.NoError(t, err)
	require.NoError(t, store.Save(trainedForest(t), "orphan", Metadata{Classes: []string{"fist", "open"}}))

	// simulate a crash between the two writes
	require.NoError(t, os.Remove(filepath.Join(dir, "model_metadata", "orphan_metadata.json")))

	_, err = store.Load("orphan")
	assert.NoError(t, err)
	meta, err := store.Info("orphan")
	assert.NoError(t, err)
	assert.True(t, meta.IsEmpty())

	// and the other way around
	require.NoError(t, store.Save(trainedForest(t), "lost", Metadata{Classes: []string{"fist", "open"}}))
	require.NoError(t, os.Remove(filepath.Join(dir, "models", "lost.json")))

	_, err = store.Load("lost")
	assert.ErrorIs(t, err, ModelNotFoundErr)
	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, names)
}

func TestStore_Corrupted(t *testing.T) {

	dir := t.TempDir()
	store, err := NewFileStore(dir, "models", "model_metadata")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_metadata", "broken_metadata.json"), []byte("{"), 0644))

	_, err = store.Load("broken")
	assert.ErrorIs(t, err, PersistenceFailureErr)
	_, err = store.LoadMetadata("broken")
	assert.ErrorIs(t, err, PersistenceFailureErr)
}

func TestStore_Delete(t *testing.T) {

	store := NewStore(json.NewLocalStorage(), json.NewLocalStorage())
	require.NoError(t, store.Save(trainedForest(t), "foo", Metadata{Classes: []string{"fist", "open"}}))

	require.NoError(t, store.Delete("foo"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
	meta, err := store.Info("foo")
	require.NoError(t, err)
	assert.True(t, meta.IsEmpty())
}
