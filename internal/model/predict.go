package model

import (
	"fmt"
	"sort"

	"github.com/drakos74/free-gesture/internal/storage"
	"github.com/rs/zerolog/log"
)

// Predict scores the vector with the named model and ranks the classes by probability.
// The most probable class is returned as the prediction, regardless of its confidence.
func (m *Manager) Predict(vector []float64, name string) (Prediction, error) {
	k := storage.NewKey(name)
	prediction, err := m.predict(vector, k.String())
	m.metrics.Predicted(k.String(), err)
	if err != nil {
		log.Error().Err(err).Str("model", k.String()).Msg("could not predict")
		return Prediction{}, err
	}
	log.Info().
		Str("model", k.String()).
		Str("prediction", prediction.Prediction).
		Float64("confidence", prediction.Confidence).
		Msg("predicted")
	return prediction, nil
}

func (m *Manager) predict(vector []float64, name string) (Prediction, error) {
	if len(vector) == 0 {
		return Prediction{}, fmt.Errorf("empty vector: %w", InvalidVectorErr)
	}

	classifier, err := m.store.Load(name)
	if err != nil {
		return Prediction{}, err
	}

	metadata, err := m.store.LoadMetadata(name)
	if err != nil {
		log.Warn().Err(err).Str("model", name).Msg("could not load metadata")
		metadata = Metadata{}
	}

	if f, ok := classifier.(featured); ok && f.Features() != len(vector) {
		return Prediction{}, fmt.Errorf("model expects %d features but got %d: %w", f.Features(), len(vector), InvalidVectorErr)
	}

	probabilities, err := classifier.Probabilities(vector)
	if err != nil {
		return Prediction{}, fmt.Errorf("could not compute probabilities: %w", err)
	}

	ranking := Rank(classifier.Classes(), probabilities)
	if len(ranking) == 0 {
		return Prediction{}, fmt.Errorf("model '%s' has no classes: %w", name, ModelNotFoundErr)
	}

	return Prediction{
		Prediction:    ranking[0].Label,
		Confidence:    ranking[0].Probability,
		Probabilities: probabilities,
		Ranking:       ranking,
		Metadata:      metadata,
	}, nil
}

// Rank sorts the classes by descending probability.
// Ties keep the order of the given classes.
func Rank(classes []string, probabilities map[string]float64) []Ranked {
	ranking := make([]Ranked, 0, len(classes))
	for _, c := range classes {
		ranking = append(ranking, Ranked{
			Label:       c,
			Probability: probabilities[c],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Probability > ranking[j].Probability
	})
	return ranking
}
