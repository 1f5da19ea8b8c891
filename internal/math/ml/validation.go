package ml

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// CrossValidate trains a new forest for each of the k stratified folds
// and returns the accuracy on each held out fold.
// k is reduced to the size of the smallest class, cross validation needs at least 2 folds.
func CrossValidate(d *Dataset, cfg ForestConfig, k int, rnd *rand.Rand) ([]float64, error) {
	for _, c := range d.Counts() {
		if c < k {
			k = c
		}
	}
	if k < 2 {
		return nil, fmt.Errorf("not enough samples per class for cross validation: %d folds", k)
	}

	folds := StratifiedFolds(d, k, rnd)
	scores := make([]float64, 0, k)
	for i, fold := range folds {
		train := d.Subset(Complement(d.Len(), fold))
		test := d.Subset(fold)

		forest := NewForest(cfg)
		if err := forest.Train(train, rnd); err != nil {
			return nil, fmt.Errorf("could not train fold %d: %w", i, err)
		}
		predictions, err := forest.PredictAll(test)
		if err != nil {
			return nil, fmt.Errorf("could not score fold %d: %w", i, err)
		}
		scores = append(scores, Accuracy(test.Y, predictions))
	}
	return scores, nil
}

// MeanStd returns the mean and the population standard deviation of the scores.
func MeanStd(scores []float64) (float64, float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	mean := stat.Mean(scores, nil)
	variance := stat.MomentAbout(2, scores, mean, nil)
	return mean, math.Sqrt(variance)
}
