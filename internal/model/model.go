package model

import (
	"github.com/drakos74/free-gesture/internal/math/ml"
)

// Classifier scores a feature vector against its classes.
type Classifier interface {
	// Probabilities returns the probability of each class label for the given vector.
	Probabilities(vector []float64) (map[string]float64, error)
	// Classes returns the class labels in the classifier's internal order.
	Classes() []string
}

// featured is implemented by classifiers that know their expected input length.
type featured interface {
	Features() int
}

// Metadata describes a trained model.
type Metadata struct {
	Version           string         `json:"version,omitempty"`
	Accuracy          float64        `json:"accuracy"`
	CrossValMean      float64        `json:"cross_val_mean"`
	CrossValStd       float64        `json:"cross_val_std"`
	NSamples          int            `json:"n_samples"`
	NSamplesPerClass  map[string]int `json:"n_samples_per_class"`
	Report            ml.Report      `json:"classification_report"`
	FeatureImportance []float64      `json:"feature_importance"`
	Classes           []string       `json:"classes"`
	OOBScore          *float64       `json:"oob_score"`
	TrainingDate      string         `json:"training_date"`
	Balanced          bool           `json:"balanced"`
	NFeatures         int            `json:"n_features"`
}

// IsEmpty reports whether the metadata is missing.
func (m Metadata) IsEmpty() bool {
	return m.TrainingDate == "" && len(m.Classes) == 0
}

// Ranked is a class label with its probability.
type Ranked struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Prediction is the outcome of scoring a feature vector.
type Prediction struct {
	Prediction    string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Ranking       []Ranked           `json:"all_predictions"`
	Metadata      Metadata           `json:"metadata"`
}
