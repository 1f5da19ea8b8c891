package ml

import (
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit splits the dataset into a train and test set,
// keeping the class proportions in both.
// Every class keeps at least one sample in the train set.
func StratifiedSplit(d *Dataset, testSize float64, rnd *rand.Rand) (train, test *Dataset) {
	trainIdx := make([]int, 0, d.Len())
	testIdx := make([]int, 0)
	for _, group := range d.ByClass() {
		if len(group) == 0 {
			continue
		}
		idx := shuffled(group, rnd)
		n := int(math.Round(float64(len(idx)) * testSize))
		if n >= len(idx) {
			n = len(idx) - 1
		}
		testIdx = append(testIdx, idx[:n]...)
		trainIdx = append(trainIdx, idx[n:]...)
	}
	// we need at least one sample to score against
	if len(testIdx) == 0 && testSize > 0 {
		largest := largestClass(d, trainIdx)
		for i, idx := range trainIdx {
			if d.Y[idx] == largest {
				testIdx = append(testIdx, idx)
				trainIdx = append(trainIdx[:i], trainIdx[i+1:]...)
				break
			}
		}
	}
	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return d.Subset(trainIdx), d.Subset(testIdx)
}

// StratifiedFolds distributes the sample indexes of each class round-robin into k folds.
func StratifiedFolds(d *Dataset, k int, rnd *rand.Rand) [][]int {
	folds := make([][]int, k)
	f := 0
	for _, group := range d.ByClass() {
		for _, idx := range shuffled(group, rnd) {
			folds[f] = append(folds[f], idx)
			f = (f + 1) % k
		}
	}
	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds
}

// Complement returns all dataset indexes not contained in the given fold.
func Complement(n int, fold []int) []int {
	skip := make(map[int]struct{}, len(fold))
	for _, idx := range fold {
		skip[idx] = struct{}{}
	}
	rest := make([]int, 0, n-len(fold))
	for i := 0; i < n; i++ {
		if _, ok := skip[i]; !ok {
			rest = append(rest, i)
		}
	}
	return rest
}

func shuffled(idx []int, rnd *rand.Rand) []int {
	s := make([]int, len(idx))
	copy(s, idx)
	rnd.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
	return s
}

func largestClass(d *Dataset, indexes []int) int {
	counts := make([]int, len(d.Classes))
	for _, idx := range indexes {
		counts[d.Y[idx]]++
	}
	c := 0
	for i, n := range counts {
		if n > counts[c] {
			c = i
		}
	}
	return c
}
