package model

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/drakos74/free-gesture/infra/config"
	"github.com/drakos74/free-gesture/internal/math/ml"
	"github.com/drakos74/free-gesture/internal/sample"
	"github.com/drakos74/free-gesture/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/evaluation"
)

// Train trains a new classifier on the given samples and stores it under the sanitized name,
// replacing any previous model with the same name.
// The call blocks until training and persistence are complete.
func (m *Manager) Train(samples []sample.Sample, name string) (Metadata, error) {
	start := time.Now()
	k := storage.NewKey(name)

	forest, metadata, err := m.train(samples)
	if err == nil {
		err = m.store.Save(forest, k.String(), metadata)
	}
	m.metrics.Trained(k.String(), time.Since(start), metadata.Accuracy, err)
	if err != nil {
		log.Error().Err(err).Str("model", k.String()).Int("samples", len(samples)).Msg("could not train model")
		return Metadata{}, err
	}

	log.Info().
		Str("model", k.String()).
		Str("version", metadata.Version).
		Float64("accuracy", metadata.Accuracy).
		Float64("cross-val", metadata.CrossValMean).
		Int("samples", metadata.NSamples).
		Bool("balanced", metadata.Balanced).
		Float64("duration", time.Since(start).Seconds()).
		Msg("trained model")
	return metadata, nil
}

func (m *Manager) train(samples []sample.Sample) (forest *ml.Forest, metadata Metadata, err error) {
	if len(samples) < m.cfg.MinSamples {
		return nil, metadata, fmt.Errorf("need at least %d samples but got %d: %w", m.cfg.MinSamples, len(samples), InsufficientDataErr)
	}
	x, y := sample.Split(samples)
	if classes := ml.Unique(y); len(classes) < 2 {
		return nil, metadata, fmt.Errorf("need at least 2 classes but got %v: %w", classes, InsufficientClassesErr)
	}

	// only catches panics on this goroutine, the trees are built in goroutines of the forest
	// so the dataset checks below are what keeps bad input away from them
	defer func() {
		if r := recover(); r != nil {
			forest = nil
			metadata = Metadata{}
			err = fmt.Errorf("unexpected error: %v: %w", r, TrainingFailureErr)
		}
	}()

	ds, err := ml.NewDataset(x, y)
	if err != nil {
		return nil, metadata, fmt.Errorf("invalid samples: %v: %w", err, TrainingFailureErr)
	}

	ds, balanced, err := m.balance(ds)
	if err != nil {
		return nil, metadata, err
	}

	rnd := rand.New(rand.NewSource(m.cfg.Seed))
	train, test := ml.StratifiedSplit(ds, m.cfg.TestSize, rnd)

	forest = ml.NewForest(m.cfg.Forest)
	if err := forest.Train(train, rnd); err != nil {
		return nil, metadata, fmt.Errorf("could not fit forest: %v: %w", err, TrainingFailureErr)
	}

	predictions, err := forest.PredictAll(test)
	if err != nil {
		return nil, metadata, fmt.Errorf("could not score test set: %v: %w", err, TrainingFailureErr)
	}
	cm, err := ml.ConfusionMatrix(ds.Classes, test.Y, predictions)
	if err != nil {
		return nil, metadata, fmt.Errorf("could not evaluate test set: %v: %w", err, TrainingFailureErr)
	}
	log.Debug().Str("summary", evaluation.GetSummary(cm)).Msg("test set performance")

	var cvMean, cvStd float64
	scores, err := ml.CrossValidate(ds, m.cfg.Forest, m.cfg.Folds, rnd)
	if err != nil {
		log.Warn().Err(err).Int("folds", m.cfg.Folds).Msg("skipping cross validation")
	} else {
		cvMean, cvStd = ml.MeanStd(scores)
	}

	metadata = Metadata{
		Version:           uuid.New().String(),
		Accuracy:          ml.Accuracy(test.Y, predictions),
		CrossValMean:      cvMean,
		CrossValStd:       cvStd,
		NSamples:          ds.Len(),
		NSamplesPerClass:  ds.CountsByLabel(),
		Report:            ml.NewReport(ds.Classes, cm),
		FeatureImportance: forest.Importance,
		Classes:           forest.Classes(),
		OOBScore:          forest.OOBScore,
		TrainingDate:      time.Now().UTC().Format(time.RFC3339Nano),
		Balanced:          balanced,
		NFeatures:         ds.Features(),
	}
	return forest, metadata, nil
}

// balance oversamples the minority classes if enabled.
// It reports whether the returned dataset was balanced.
func (m *Manager) balance(ds *ml.Dataset) (*ml.Dataset, bool, error) {
	if !m.cfg.Balancing.Enabled {
		return ds, false, nil
	}
	resampled, err := ml.NewSmote(m.cfg.Balancing.Neighbours, m.cfg.Seed).Resample(ds)
	if err != nil {
		if errors.Is(err, ml.SmoteNotApplicableErr) && m.cfg.Balancing.Fallback == config.Warn {
			log.Warn().Err(err).Msg("class balancing not available, continuing without")
			return ds, false, nil
		}
		return nil, false, fmt.Errorf("could not balance classes: %v: %w", err, TrainingFailureErr)
	}
	return resampled, true, nil
}
