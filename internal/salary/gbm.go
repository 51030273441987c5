// Package salary trains and serves the salary prediction model: a
// gradient-boosted ensemble of shallow regression trees over the one-hot
// feature vectors, with a univariate least-squares baseline for comparison.
package salary

import "sort"

// GBMParams controls ensemble training.
type GBMParams struct {
	Trees        int     `json:"trees"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	MinLeaf      int     `json:"min_leaf"`
}

// DefaultParams are sensible for datasets in the hundreds of records.
func DefaultParams() GBMParams {
	return GBMParams{
		Trees:        100,
		LearningRate: 0.1,
		MaxDepth:     3,
		MinLeaf:      2,
	}
}

// Node is one split or leaf in a regression tree. Leaves have Left == -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// GBM is the trained ensemble. Prediction starts at the base value and
// adds each tree's contribution scaled by the learning rate.
type GBM struct {
	Base         float64 `json:"base"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`
}

func (g *GBM) predict(x []float64) float64 {
	out := g.Base
	for i := range g.Trees {
		out += g.LearningRate * g.Trees[i].predict(x)
	}
	return out
}

func trainGBM(xs [][]float64, ys []float64, p GBMParams) *GBM {
	g := &GBM{
		Base:         mean(ys),
		LearningRate: p.LearningRate,
	}

	residuals := make([]float64, len(ys))
	preds := make([]float64, len(ys))
	for i := range ys {
		preds[i] = g.Base
	}

	idx := make([]int, len(ys))
	for i := range idx {
		idx[i] = i
	}

	for round := 0; round < p.Trees; round++ {
		for i := range ys {
			residuals[i] = ys[i] - preds[i]
		}

		tree := fitTree(xs, residuals, idx, p)
		g.Trees = append(g.Trees, tree)

		for i := range xs {
			preds[i] += g.LearningRate * tree.predict(xs[i])
		}
	}
	return g
}

// fitTree grows a single tree on the residuals by greedy variance
// reduction, depth-limited per GBMParams.
func fitTree(xs [][]float64, residuals []float64, idx []int, p GBMParams) Tree {
	t := Tree{}
	t.grow(xs, residuals, idx, 0, p)
	return t
}

// grow appends the subtree for idx and returns its root node index.
func (t *Tree) grow(xs [][]float64, residuals []float64, idx []int, depth int, p GBMParams) int {
	if depth >= p.MaxDepth || len(idx) < 2*p.MinLeaf {
		return t.leaf(meanAt(residuals, idx))
	}

	feat, threshold, ok := bestSplit(xs, residuals, idx, p.MinLeaf)
	if !ok {
		return t.leaf(meanAt(residuals, idx))
	}

	var left, right []int
	for _, i := range idx {
		if xs[i][feat] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	pos := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: feat, Threshold: threshold})
	l := t.grow(xs, residuals, left, depth+1, p)
	r := t.grow(xs, residuals, right, depth+1, p)
	t.Nodes[pos].Left = l
	t.Nodes[pos].Right = r
	return pos
}

func (t *Tree) leaf(value float64) int {
	t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1, Value: value})
	return len(t.Nodes) - 1
}

// bestSplit scans every feature and every midpoint between distinct
// observed values for the split minimizing the summed squared error of
// the two children. Returns ok=false when no split satisfies minLeaf.
func bestSplit(xs [][]float64, residuals []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	nFeatures := len(xs[idx[0]])
	best := sse(residuals, idx)
	improved := false

	for f := 0; f < nFeatures; f++ {
		for _, thr := range candidateThresholds(xs, idx, f) {
			var lSum, rSum float64
			var lN, rN int
			for _, i := range idx {
				if xs[i][f] <= thr {
					lSum += residuals[i]
					lN++
				} else {
					rSum += residuals[i]
					rN++
				}
			}
			if lN < minLeaf || rN < minLeaf {
				continue
			}

			lMean := lSum / float64(lN)
			rMean := rSum / float64(rN)
			var cost float64
			for _, i := range idx {
				var d float64
				if xs[i][f] <= thr {
					d = residuals[i] - lMean
				} else {
					d = residuals[i] - rMean
				}
				cost += d * d
			}
			if cost < best {
				best = cost
				feature = f
				threshold = thr
				improved = true
			}
		}
	}
	return feature, threshold, improved
}

func candidateThresholds(xs [][]float64, idx []int, f int) []float64 {
	seen := map[float64]struct{}{}
	var values []float64
	for _, i := range idx {
		v := xs[i][f]
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return nil
	}

	// Midpoints between consecutive distinct values.
	sort.Float64s(values)
	thresholds := make([]float64, 0, len(values)-1)
	for i := 0; i+1 < len(values); i++ {
		thresholds = append(thresholds, (values[i]+values[i+1])/2)
	}
	return thresholds
}

func sse(residuals []float64, idx []int) float64 {
	m := meanAt(residuals, idx)
	var total float64
	for _, i := range idx {
		d := residuals[i] - m
		total += d * d
	}
	return total
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func meanAt(vs []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += vs[i]
	}
	return sum / float64(len(idx))
}
