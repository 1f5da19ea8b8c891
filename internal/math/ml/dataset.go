package ml

import (
	"fmt"
	"math"
	"sort"
)

// Dataset is a labeled set of feature vectors with the labels encoded
// as indexes into the sorted list of class labels.
type Dataset struct {
	X       [][]float64
	Y       []int
	Classes []string
}

// NewDataset encodes the given labels and validates the vectors share the same length
// and hold only finite values.
func NewDataset(x [][]float64, labels []string) (*Dataset, error) {
	if len(x) != len(labels) {
		return nil, fmt.Errorf("vectors and labels do not align [ %d | %d ]", len(x), len(labels))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	n := len(x[0])
	if n == 0 {
		return nil, fmt.Errorf("empty feature vector at index 0")
	}
	for i, v := range x {
		if len(v) != n {
			return nil, fmt.Errorf("inconsistent feature vector length at index %d: %d instead of %d", i, len(v), n)
		}
		for j, f := range v {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("invalid value %v at index %d feature %d", f, i, j)
			}
		}
	}

	classes := Unique(labels)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = index[l]
	}

	return &Dataset{
		X:       x,
		Y:       y,
		Classes: classes,
	}, nil
}

// Unique returns the sorted distinct labels.
func Unique(labels []string) []string {
	set := make(map[string]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return classes
}

func (d *Dataset) Len() int {
	return len(d.X)
}

// Features is the length of every feature vector.
func (d *Dataset) Features() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Counts returns the number of samples per class index.
func (d *Dataset) Counts() []int {
	counts := make([]int, len(d.Classes))
	for _, y := range d.Y {
		counts[y]++
	}
	return counts
}

// CountsByLabel returns the number of samples per class label.
func (d *Dataset) CountsByLabel() map[string]int {
	counts := make(map[string]int, len(d.Classes))
	for i, c := range d.Counts() {
		counts[d.Classes[i]] = c
	}
	return counts
}

// Subset creates a new dataset with the samples at the given indexes.
// Vectors are shared, not copied.
func (d *Dataset) Subset(indexes []int) *Dataset {
	x := make([][]float64, len(indexes))
	y := make([]int, len(indexes))
	for i, idx := range indexes {
		x[i] = d.X[idx]
		y[i] = d.Y[idx]
	}
	return &Dataset{
		X:       x,
		Y:       y,
		Classes: d.Classes,
	}
}

// ByClass groups the sample indexes per class index.
func (d *Dataset) ByClass() [][]int {
	groups := make([][]int, len(d.Classes))
	for i, y := range d.Y {
		groups[y] = append(groups[y], i)
	}
	return groups
}
