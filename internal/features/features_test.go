package features

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hand(visibility float64) Hand {
	h := Hand{Landmarks: make([]Landmark, Landmarks)}
	for i := range h.Landmarks {
		h.Landmarks[i] = Landmark{
			X:          float64(i) / 100,
			Y:          float64(i) / 50,
			Z:          0,
			Visibility: visibility,
		}
	}
	return h
}

func TestHand_Vector(t *testing.T) {

	h := hand(0.9)
	v := h.Vector()
	require.Len(t, v, Size)

	assert.Equal(t, []float64{0.01, 0.02, 0, 0.9}, v[4:8])

	// thumb tip (4) to index tip (8)
	expected := math.Sqrt(math.Pow(0.04, 2) + math.Pow(0.08, 2))
	assert.InDelta(t, expected, v[Size-1], 1e-9)

	assert.Empty(t, Hand{}.Vector())

	// not enough landmarks for the distance
	partial := Hand{Landmarks: h.Landmarks[:3]}
	assert.Len(t, partial.Vector(), 12)
}

func TestHand_Confidence(t *testing.T) {

	assert.Equal(t, 1.0, hand(0.9).Confidence())
	assert.Equal(t, 0.0, hand(0.5).Confidence())
	assert.Equal(t, 0.0, Hand{}.Confidence())
}

type detector struct {
	hands []Hand
	err   error
}

func (d detector) Detect(ctx context.Context, image []byte) ([]Hand, error) {
	return d.hands, d.err
}

func TestHandSource_Extract(t *testing.T) {

	type test struct {
		detector detector
		size     int
		err      bool
	}

	tests := map[string]test{
		"no-hand": {
			detector: detector{},
			size:     0,
		},
		"one-hand": {
			detector: detector{hands: []Hand{hand(0.9)}},
			size:     Size,
		},
		"most-visible": {
			detector: detector{hands: []Hand{{Landmarks: hand(0.2).Landmarks[:5]}, hand(0.9)}},
			size:     Size,
		},
		"error": {
			detector: detector{err: errors.New("model unavailable")},
			err:      true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := NewHandSource(tt.detector).Extract(context.Background(), []byte("image"))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, v, tt.size)
		})
	}
}
