package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// ForestConfig defines the hyperparameters of the bagged random forest.
// Trees is the total number of trees, spread evenly over the bags.
type ForestConfig struct {
	Trees           int  `json:"trees"`
	Bags            int  `json:"bags"`
	MaxDepth        int  `json:"max_depth"`
	MinSamplesSplit int  `json:"min_samples_split"`
	MinSamplesLeaf  int  `json:"min_samples_leaf"`
	ClassBalanced   bool `json:"class_balanced"`
	Bootstrap       bool `json:"bootstrap"`
	OOB             bool `json:"oob_score"`
}

// DefaultForestConfig returns the default forest set up.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:           300,
		Bags:            10,
		MaxDepth:        15,
		MinSamplesSplit: 3,
		MinSamplesLeaf:  1,
		ClassBalanced:   true,
		Bootstrap:       true,
		OOB:             true,
	}
}

// leafSize translates the split constraints into the leaf size of the trees.
func (cfg ForestConfig) leafSize() int {
	l := cfg.MinSamplesSplit - 1
	if cfg.MinSamplesLeaf > l {
		l = cfg.MinSamplesLeaf
	}
	if l < 1 {
		l = 1
	}
	return l
}

// trees distributes the total number of trees over the bags.
func (cfg ForestConfig) trees() []int {
	bags := cfg.Bags
	if bags <= 0 {
		bags = 1
	}
	total := cfg.Trees
	if total <= 0 {
		total = DefaultForestConfig().Trees
	}
	if bags > total {
		bags = total
	}
	trees := make([]int, bags)
	for i := range trees {
		trees[i] = total / bags
		if i < total%bags {
			trees[i]++
		}
	}
	return trees
}

// Forest is a bagged ensemble of random forests.
// Each bag is trained on its own bootstrap sample, which allows for an out-of-bag estimate.
// All fields are exported so that the trained forest can be persisted as json.
type Forest struct {
	Config     ForestConfig           `json:"config"`
	Labels     []string               `json:"classes"`
	NFeatures  int                    `json:"features"`
	Bags       []*randomforest.Forest `json:"bags"`
	Importance []float64              `json:"feature_importance"`
	OOBScore   *float64               `json:"oob_score"`
}

// NewForest creates an untrained forest.
func NewForest(cfg ForestConfig) *Forest {
	return &Forest{
		Config: cfg,
	}
}

// Train fits the forest on the given dataset.
// rnd drives the bootstrap sampling of the bags.
func (f *Forest) Train(d *Dataset, rnd *rand.Rand) error {
	if d.Len() == 0 {
		return fmt.Errorf("cannot train on empty dataset")
	}
	f.Labels = d.Classes
	f.NFeatures = d.Features()
	f.Bags = make([]*randomforest.Forest, 0)
	f.Importance = make([]float64, f.NFeatures)
	f.OOBScore = nil

	k := len(d.Classes)
	n := d.Len()
	cumulative := f.cumulativeWeights(d)

	oobVotes := make([][]float64, n)
	oobCount := make([]int, n)

	for b, trees := range f.Config.trees() {
		sample := make([]int, n)
		inBag := make([]bool, n)
		for i := 0; i < n; i++ {
			idx := i
			if f.Config.Bootstrap {
				idx = draw(cumulative, rnd)
			}
			sample[i] = idx
			inBag[idx] = true
		}

		x := make([][]float64, n)
		y := make([]int, n)
		for i, idx := range sample {
			x[i] = d.X[idx]
			y[i] = d.Y[idx]
		}

		bag := &randomforest.Forest{
			MaxDepth: f.Config.MaxDepth,
			LeafSize: f.Config.leafSize(),
		}
		bag.Data = randomforest.ForestData{X: x, Class: y}
		bag.Train(trees)
		if len(bag.FeatureImportance) == f.NFeatures {
			floats.Add(f.Importance, bag.FeatureImportance)
		}
		// the training data is not needed for voting
		bag.Data = randomforest.ForestData{}
		sanitize(bag)
		f.Bags = append(f.Bags, bag)

		if f.Config.OOB && f.Config.Bootstrap {
			for i := 0; i < n; i++ {
				if inBag[i] {
					continue
				}
				if oobVotes[i] == nil {
					oobVotes[i] = make([]float64, k)
				}
				floats.Add(oobVotes[i], vote(bag, d.X[i], k))
				oobCount[i]++
			}
		}
		log.Debug().Int("bag", b).Int("trees", trees).Int("samples", n).Msg("trained forest bag")
	}

	if sum := floats.Sum(f.Importance); sum > 0 {
		floats.Scale(1/sum, f.Importance)
	}

	if f.Config.OOB && f.Config.Bootstrap {
		total := 0
		correct := 0
		for i := 0; i < n; i++ {
			if oobCount[i] == 0 {
				continue
			}
			total++
			if floats.MaxIdx(oobVotes[i]) == d.Y[i] {
				correct++
			}
		}
		if total > 0 {
			score := float64(correct) / float64(total)
			f.OOBScore = &score
		}
	}

	return nil
}

// cumulativeWeights returns the cumulative sampling weights of the samples.
// For class balanced forests every class has the same total weight.
func (f *Forest) cumulativeWeights(d *Dataset) []float64 {
	counts := d.Counts()
	weights := make([]float64, d.Len())
	for i, y := range d.Y {
		if f.Config.ClassBalanced {
			weights[i] = float64(d.Len()) / float64(len(counts)*counts[y])
		} else {
			weights[i] = 1
		}
	}
	floats.CumSum(weights, weights)
	return weights
}

// draw picks an index with probability proportional to its weight.
func draw(cumulative []float64, rnd *rand.Rand) int {
	total := cumulative[len(cumulative)-1]
	r := rnd.Float64() * total
	idx := sort.SearchFloat64s(cumulative, r)
	if idx >= len(cumulative) {
		idx = len(cumulative) - 1
	}
	return idx
}

// sanitize replaces the NaN values the trees are left with.
// A tree whose bootstrap drew every row has no validation rows (0/0),
// and a split over constant columns produces an empty leaf (0/0 per class).
// Empty leaves vote with the distribution of their parent instead.
func sanitize(bag *randomforest.Forest) {
	uniform := make([]float64, bag.Classes)
	for c := range uniform {
		uniform[c] = 1 / float64(bag.Classes)
	}
	for i := range bag.Trees {
		tree := &bag.Trees[i]
		if math.IsNaN(tree.Validation) {
			tree.Validation = 0
		}
		clean(&tree.Root, uniform)
	}
}

func clean(branch *randomforest.Branch, parent []float64) {
	if branch == nil {
		return
	}
	if branch.IsLeaf {
		if branch.Size == 0 || !finite(branch.LeafValue) {
			branch.LeafValue = append([]float64{}, parent...)
		}
		return
	}
	d := distribution(branch, len(parent))
	if d == nil {
		d = parent
	}
	clean(branch.Branch0, d)
	clean(branch.Branch1, d)
}

// distribution returns the class distribution of the samples that reached the branch,
// nil if none of its leaves holds any.
func distribution(branch *randomforest.Branch, k int) []float64 {
	d := make([]float64, k)
	var walk func(b *randomforest.Branch)
	walk = func(b *randomforest.Branch) {
		if b == nil {
			return
		}
		if !b.IsLeaf {
			walk(b.Branch0)
			walk(b.Branch1)
			return
		}
		if b.Size == 0 || !finite(b.LeafValue) {
			return
		}
		for c := 0; c < k && c < len(b.LeafValue); c++ {
			d[c] += b.LeafValue[c] * float64(b.Size)
		}
	}
	walk(branch)
	sum := floats.Sum(d)
	if sum <= 0 {
		return nil
	}
	floats.Scale(1/sum, d)
	return d
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// vote returns the class distribution of a single bag padded to k classes,
// a bag trained without the highest classes returns a shorter slice.
func vote(bag *randomforest.Forest, x []float64, k int) []float64 {
	v := make([]float64, k)
	copy(v, bag.Vote(x))
	for i := range v {
		if math.IsNaN(v[i]) {
			v[i] = 0
		}
	}
	return v
}

// Distribution returns the class probabilities for the given vector,
// ordered as the class labels.
func (f *Forest) Distribution(x []float64) ([]float64, error) {
	if len(f.Bags) == 0 {
		return nil, fmt.Errorf("forest is not trained")
	}
	if len(x) != f.NFeatures {
		return nil, fmt.Errorf("expected %d features but got %d", f.NFeatures, len(x))
	}
	k := len(f.Labels)
	p := make([]float64, k)
	for _, bag := range f.Bags {
		floats.Add(p, vote(bag, x, k))
	}
	sum := floats.Sum(p)
	if sum <= 0 {
		for i := range p {
			p[i] = 1 / float64(k)
		}
		return p, nil
	}
	floats.Scale(1/sum, p)
	return p, nil
}

// Probabilities returns the probability for each class label.
func (f *Forest) Probabilities(x []float64) (map[string]float64, error) {
	p, err := f.Distribution(x)
	if err != nil {
		return nil, err
	}
	probabilities := make(map[string]float64, len(p))
	for i, label := range f.Labels {
		probabilities[label] = p[i]
	}
	return probabilities, nil
}

// Classes returns the sorted class labels.
func (f *Forest) Classes() []string {
	return f.Labels
}

// Features returns the expected feature vector length.
func (f *Forest) Features() int {
	return f.NFeatures
}

// Predict returns the index of the most probable class.
func (f *Forest) Predict(x []float64) (int, error) {
	p, err := f.Distribution(x)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(p), nil
}

// PredictAll returns the predicted class indexes for the whole dataset.
func (f *Forest) PredictAll(d *Dataset) ([]int, error) {
	predictions := make([]int, d.Len())
	for i, x := range d.X {
		p, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("could not predict sample %d: %w", i, err)
		}
		predictions[i] = p
	}
	return predictions, nil
}
