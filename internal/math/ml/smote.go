package ml

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultNeighbours is the number of nearest neighbours used for interpolation.
const DefaultNeighbours = 5

// SmoteNotApplicableErr signals the dataset cannot be oversampled,
// e.g. when a class has a single sample and therefore no neighbours.
var SmoteNotApplicableErr = errors.New("smote not applicable")

// Smote is a synthetic minority oversampler.
// Each minority class is grown up to the size of the majority class
// by interpolating between a sample and one of its nearest neighbours of the same class.
type Smote struct {
	neighbours int
	rnd        *rand.Rand
}

func NewSmote(neighbours int, seed int64) *Smote {
	if neighbours <= 0 {
		neighbours = DefaultNeighbours
	}
	return &Smote{
		neighbours: neighbours,
		rnd:        rand.New(rand.NewSource(seed)),
	}
}

// Resample returns a new dataset with the original samples followed by the synthetic ones.
// The original dataset is left untouched.
func (s *Smote) Resample(d *Dataset) (*Dataset, error) {
	groups := d.ByClass()
	majority := 0
	for c, group := range groups {
		if len(group) < 2 {
			return nil, fmt.Errorf("class '%s' has %d samples: %w", d.Classes[c], len(group), SmoteNotApplicableErr)
		}
		if len(group) > majority {
			majority = len(group)
		}
	}

	x := make([][]float64, d.Len(), d.Len()*2)
	copy(x, d.X)
	y := make([]int, d.Len(), d.Len()*2)
	copy(y, d.Y)

	for c, group := range groups {
		missing := majority - len(group)
		if missing == 0 {
			continue
		}
		k := s.neighbours
		if k > len(group)-1 {
			k = len(group) - 1
		}
		neighbours := make(map[int][]int, len(group))
		for i := 0; i < missing; i++ {
			idx := group[s.rnd.Intn(len(group))]
			nn, ok := neighbours[idx]
			if !ok {
				nn = nearest(d.X, idx, group, k)
				neighbours[idx] = nn
			}
			other := nn[s.rnd.Intn(len(nn))]
			x = append(x, interpolate(d.X[idx], d.X[other], s.rnd.Float64()))
			y = append(y, c)
		}
	}

	return &Dataset{
		X:       x,
		Y:       y,
		Classes: d.Classes,
	}, nil
}

// nearest returns the k closest samples of the group to the sample at idx.
func nearest(x [][]float64, idx int, group []int, k int) []int {
	type candidate struct {
		idx      int
		distance float64
	}
	candidates := make([]candidate, 0, len(group)-1)
	for _, other := range group {
		if other == idx {
			continue
		}
		candidates = append(candidates, candidate{
			idx:      other,
			distance: floats.Distance(x[idx], x[other], 2),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	nn := make([]int, k)
	for i := 0; i < k; i++ {
		nn[i] = candidates[i].idx
	}
	return nn
}

func interpolate(a, b []float64, gap float64) []float64 {
	v := make([]float64, len(a))
	copy(v, b)
	// v = a + gap * (b - a)
	floats.Sub(v, a)
	floats.Scale(gap, v)
	floats.Add(v, a)
	return v
}
