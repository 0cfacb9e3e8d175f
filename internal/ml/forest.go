package ml

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

const defaultTrees = 100

type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

type decisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *decisionTree) leaf(x []float64) []float64 {
	n := 0
	for t.Nodes[n].Left >= 0 {
		node := t.Nodes[n]
		if x[node.Feature] <= node.Threshold {
			n = node.Left
		} else {
			n = node.Right
		}
	}
	return t.Nodes[n].Value
}

// Forest is a bagged ensemble of CART trees. NumClasses is zero for regression;
// for classification targets are class indices and leaves hold class frequencies.
type Forest struct {
	NumClasses  int            `json:"num_classes"`
	NumFeatures int            `json:"num_features"`
	Trees       []decisionTree `json:"trees"`
}

// ForestConfig controls forest fitting.
type ForestConfig struct {
	Trees       int
	MaxFeatures int // 0 means every feature at every split
	Seed        uint64
}

// FitRegressor fits a regression forest using every feature at each split.
func FitRegressor(x [][]float64, y []float64) (*Forest, error) {
	return fitForest(x, y, 0, ForestConfig{Trees: defaultTrees, Seed: Seed})
}

func fitClassifierForest(x [][]float64, classes []int, numClasses int) (*Forest, error) {
	y := make([]float64, len(classes))
	for i, c := range classes {
		y[i] = float64(c)
	}
	p := 0
	if len(x) > 0 {
		p = len(x[0])
	}
	maxFeatures := int(math.Sqrt(float64(p)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	return fitForest(x, y, numClasses, ForestConfig{Trees: defaultTrees, MaxFeatures: maxFeatures, Seed: Seed})
}

func fitForest(x [][]float64, y []float64, numClasses int, cfg ForestConfig) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("forest needs matching non-empty inputs, got %d rows and %d targets", len(x), len(y))
	}
	p := len(x[0])
	if cfg.MaxFeatures <= 0 || cfg.MaxFeatures > p {
		cfg.MaxFeatures = p
	}
	rng := newRand(cfg.Seed)
	f := &Forest{NumClasses: numClasses, NumFeatures: p, Trees: make([]decisionTree, cfg.Trees)}
	n := len(x)
	for t := 0; t < cfg.Trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		b := &treeBuilder{x: x, y: y, numClasses: numClasses, maxFeatures: cfg.MaxFeatures, rng: rng}
		b.build(sample)
		f.Trees[t] = decisionTree{Nodes: b.nodes}
	}
	return f, nil
}

// PredictRow returns the mean prediction for regression or the winning class index.
func (f *Forest) PredictRow(x []float64) float64 {
	if f.NumClasses == 0 {
		sum := 0.0
		for i := range f.Trees {
			sum += f.Trees[i].leaf(x)[0]
		}
		return sum / float64(len(f.Trees))
	}
	probs := make([]float64, f.NumClasses)
	for i := range f.Trees {
		for c, p := range f.Trees[i].leaf(x) {
			probs[c] += p
		}
	}
	return float64(argmax(probs))
}

func (f *Forest) predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.PredictRow(row)
	}
	return out
}

func (f *Forest) validate(p, numClasses int) error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	if f.NumFeatures != p || f.NumClasses != numClasses {
		return fmt.Errorf("forest shape (%d features, %d classes) does not match model (%d, %d)", f.NumFeatures, f.NumClasses, p, numClasses)
	}
	width := 1
	if numClasses > 0 {
		width = numClasses
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left < 0 {
				if len(n.Value) != width {
					return fmt.Errorf("tree %d node %d has %d outputs, expected %d", ti, ni, len(n.Value), width)
				}
				continue
			}
			if n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) || n.Feature < 0 || n.Feature >= p {
				return fmt.Errorf("tree %d node %d is malformed", ti, ni)
			}
		}
	}
	return nil
}

type treeBuilder struct {
	x           [][]float64
	y           []float64
	numClasses  int
	maxFeatures int
	rng         *rand.Rand
	nodes       []treeNode
}

func (b *treeBuilder) build(idx []int) int {
	n := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Left: -1, Right: -1, Value: b.leafValue(idx)})
	if len(idx) < 2 || b.pure(idx) {
		return n
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return n
	}
	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.build(left)
	r := b.build(right)
	b.nodes[n].Feature = feature
	b.nodes[n].Threshold = threshold
	b.nodes[n].Left = l
	b.nodes[n].Right = r
	return n
}

func (b *treeBuilder) leafValue(idx []int) []float64 {
	if b.numClasses == 0 {
		sum := 0.0
		for _, i := range idx {
			sum += b.y[i]
		}
		return []float64{sum / float64(len(idx))}
	}
	freq := make([]float64, b.numClasses)
	for _, i := range idx {
		freq[int(b.y[i])]++
	}
	for c := range freq {
		freq[c] /= float64(len(idx))
	}
	return freq
}

func (b *treeBuilder) pure(idx []int) bool {
	first := b.y[idx[0]]
	for _, i := range idx[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

func (b *treeBuilder) featureOrder() []int {
	p := len(b.x[0])
	if b.maxFeatures >= p {
		all := make([]int, p)
		for j := range all {
			all[j] = j
		}
		return all
	}
	return b.rng.Perm(p)
}

// bestSplit finds the threshold with the lowest weighted impurity (sum of
// squared errors for regression, Gini for classification). Features are drawn
// in random order until maxFeatures non-constant ones have been examined.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	bestCost := math.Inf(1)
	sorted := make([]int, len(idx))
	visited := 0
	for _, f := range b.featureOrder() {
		if visited >= b.maxFeatures {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool { return b.x[sorted[i]][f] < b.x[sorted[j]][f] })
		if b.x[sorted[0]][f] == b.x[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		acc := newSplitAccumulator(b, sorted)
		for k := 0; k < len(sorted)-1; k++ {
			acc.moveLeft(sorted[k])
			lo, hi := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			if cost := acc.cost(); cost < bestCost {
				bestCost = cost
				feature = f
				threshold = lo + (hi-lo)/2
				if threshold == hi {
					threshold = lo
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

type splitAccumulator struct {
	b                     *treeBuilder
	nLeft, nRight         float64
	sumLeft, sumRight     float64
	sqLeft, sqRight       float64
	countLeft, countRight []float64
}

func newSplitAccumulator(b *treeBuilder, idx []int) *splitAccumulator {
	a := &splitAccumulator{b: b, nRight: float64(len(idx))}
	if b.numClasses > 0 {
		a.countLeft = make([]float64, b.numClasses)
		a.countRight = make([]float64, b.numClasses)
		for _, i := range idx {
			a.countRight[int(b.y[i])]++
		}
		return a
	}
	for _, i := range idx {
		a.sumRight += b.y[i]
		a.sqRight += b.y[i] * b.y[i]
	}
	return a
}

func (a *splitAccumulator) moveLeft(i int) {
	y := a.b.y[i]
	a.nLeft++
	a.nRight--
	if a.b.numClasses > 0 {
		a.countLeft[int(y)]++
		a.countRight[int(y)]--
		return
	}
	a.sumLeft += y
	a.sumRight -= y
	a.sqLeft += y * y
	a.sqRight -= y * y
}

func (a *splitAccumulator) cost() float64 {
	if a.b.numClasses > 0 {
		return a.nLeft*gini(a.countLeft, a.nLeft) + a.nRight*gini(a.countRight, a.nRight)
	}
	sseLeft := a.sqLeft - a.sumLeft*a.sumLeft/a.nLeft
	sseRight := a.sqRight - a.sumRight*a.sumRight/a.nRight
	return sseLeft + sseRight
}

func gini(counts []float64, n float64) float64 {
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
