// Package sample collects the labeled feature vectors used for training.
package sample

// Sample is a labeled feature vector.
type Sample struct {
	Vector []float64 `json:"vector"`
	Label  string    `json:"label"`
}

// Summary describes the collected samples.
type Summary struct {
	Total    int            `json:"total_samples"`
	PerLabel map[string]int `json:"samples_per_class"`
}

// Store is an in-memory, append-only collection of samples.
// It is not safe for concurrent use, callers need to serialize access.
type Store struct {
	samples []Sample
}

// NewStore creates an empty sample store.
func NewStore() *Store {
	return &Store{
		samples: make([]Sample, 0),
	}
}

// Add appends the sample and returns the new total.
// No validation takes place at this stage.
func (s *Store) Add(vector []float64, label string) int {
	s.samples = append(s.samples, Sample{
		Vector: vector,
		Label:  label,
	})
	return len(s.samples)
}

// Clear removes all samples and returns how many were removed.
func (s *Store) Clear() int {
	n := len(s.samples)
	s.samples = make([]Sample, 0)
	return n
}

// Summary returns the total count and the count per label.
func (s *Store) Summary() Summary {
	summary := Summary{
		Total:    len(s.samples),
		PerLabel: make(map[string]int),
	}
	for _, sample := range s.samples {
		summary.PerLabel[sample.Label]++
	}
	return summary
}

// Samples returns a copy of the collected samples.
func (s *Store) Samples() []Sample {
	samples := make([]Sample, len(s.samples))
	copy(samples, s.samples)
	return samples
}

func (s *Store) Len() int {
	return len(s.samples)
}

// Split separates the vectors from the labels.
func Split(samples []Sample) ([][]float64, []string) {
	x := make([][]float64, len(samples))
	y := make([]string, len(samples))
	for i, s := range samples {
		x[i] = s.Vector
		y[i] = s.Label
	}
	return x, y
}
