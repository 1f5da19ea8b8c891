// Package features turns detected hand landmarks into feature vectors.
// Decoding images and detecting the landmarks is left to an external vision model.
package features

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	// Landmarks is the number of landmarks of a detected hand.
	Landmarks = 21
	ThumbTip  = 4
	IndexTip  = 8

	// Size is the length of the feature vector of a fully detected hand.
	Size = Landmarks*4 + 1

	// visible is the visibility above which a landmark counts as visible.
	visible = 0.5
)

// Landmark is a normalized hand landmark.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Hand is a single detected hand.
type Hand struct {
	Landmarks []Landmark `json:"landmarks"`
}

// Vector flattens the landmarks as x,y,z,visibility
// and appends the distance between the thumb tip and the index tip.
// A hand without landmarks results in an empty vector.
func (h Hand) Vector() []float64 {
	v := make([]float64, 0, len(h.Landmarks)*4+1)
	for _, l := range h.Landmarks {
		v = append(v, l.X, l.Y, l.Z, l.Visibility)
	}
	if len(h.Landmarks) > IndexTip {
		v = append(v, distance(h.Landmarks[ThumbTip], h.Landmarks[IndexTip]))
	}
	return v
}

// Confidence is the share of visible landmarks.
func (h Hand) Confidence() float64 {
	if len(h.Landmarks) == 0 {
		return 0
	}
	n := 0
	for _, l := range h.Landmarks {
		if l.Visibility > visible {
			n++
		}
	}
	return float64(n) / float64(len(h.Landmarks))
}

func distance(a, b Landmark) float64 {
	return floats.Distance([]float64{a.X, a.Y, a.Z}, []float64{b.X, b.Y, b.Z}, 2)
}

// Source produces the feature vector for an image.
// An empty vector means there was no usable detection.
type Source interface {
	Extract(ctx context.Context, image []byte) ([]float64, error)
}

// Detector finds the hands on an image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Hand, error)
}

// HandSource extracts the features of the most visible hand found by the detector.
type HandSource struct {
	detector Detector
}

func NewHandSource(detector Detector) *HandSource {
	return &HandSource{detector: detector}
}

func (s *HandSource) Extract(ctx context.Context, image []byte) ([]float64, error) {
	hands, err := s.detector.Detect(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("could not detect hands: %w", err)
	}
	hand, ok := Best(hands)
	if !ok {
		return []float64{}, nil
	}
	return hand.Vector(), nil
}

// Best returns the hand with the highest confidence, the first one on ties.
func Best(hands []Hand) (Hand, bool) {
	if len(hands) == 0 {
		return Hand{}, false
	}
	best := 0
	confidence := 0.0
	for i, h := range hands {
		if c := h.Confidence(); c > confidence {
			confidence = c
			best = i
		}
	}
	return hands[best], true
}
