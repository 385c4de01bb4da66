package tree

import (
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/YuminosukeSato/scitab/core/labels"
)

// builder grows a tree top-down on one training set. It is used for a single
// Fit call and discarded afterwards.
type builder struct {
	X [][]string
	y []string

	criterion       Criterion
	maxDepth        int
	minSamplesSplit int
	defaultClass    string

	// importances accumulates gain weighted by node size per feature.
	importances []float64
}

func newBuilder(X [][]string, y []string, nFeatures int, c Criterion, maxDepth, minSamplesSplit int, defaultClass string) *builder {
	return &builder{
		X:               X,
		y:               y,
		criterion:       c,
		maxDepth:        maxDepth,
		minSamplesSplit: minSamplesSplit,
		defaultClass:    defaultClass,
		importances:     make([]float64, nFeatures),
	}
}

// attributeSet returns the ordered set {0, ..., n-1}.
func attributeSet(n int) *treeset.Set {
	set := treeset.NewWithIntComparator()
	for i := 0; i < n; i++ {
		set.Add(i)
	}
	return set
}

// build returns the subtree for the rows in idx using only the attributes in
// attrs. attrs is not modified.
func (b *builder) build(idx []int, attrs *treeset.Set, level int) Node {
	if labels.AllSame(b.y, idx) {
		class := b.defaultClass
		if len(idx) > 0 {
			class = b.y[idx[0]]
		}
		return &Leaf{Class: class, Samples: len(idx)}
	}

	majority := &Leaf{Class: labels.MajorityAt(b.y, idx), Samples: len(idx)}
	if attrs.Empty() {
		return majority
	}
	if b.maxDepth > 0 && level >= b.maxDepth {
		return majority
	}
	if len(idx) < b.minSamplesSplit {
		return majority
	}

	best, bestGain := -1, 0.0
	for _, a := range attrs.Values() {
		attr := a.(int)
		g := gain(b.criterion, b.X, b.y, idx, attr)
		if best < 0 || g > bestGain+gainTolerance {
			best, bestGain = attr, g
		}
	}
	if bestGain <= gainTolerance {
		return majority
	}

	b.importances[best] += bestGain * float64(len(idx))

	remaining := treeset.NewWithIntComparator(attrs.Values()...)
	remaining.Remove(best)

	values, groups := partition(b.X, idx, best)
	branches := make(map[string]Node, len(values))
	for _, v := range values {
		branches[v] = b.branch(groups[v], remaining, level+1)
	}

	return &Decision{
		Feature:  best,
		Branches: branches,
		Gain:     bestGain,
		Samples:  len(idx),
	}
}

// branch builds the child for one value bucket. partition only returns values
// observed in idx, so part is never empty when called from build; an empty
// bucket still gets a default-class leaf.
func (b *builder) branch(part []int, attrs *treeset.Set, level int) Node {
	if len(part) == 0 {
		return &Leaf{Class: b.defaultClass}
	}
	return b.build(part, attrs, level)
}

// normalizedImportances returns the accumulated importances scaled to sum to 1.
// A tree without splits yields all zeros.
func (b *builder) normalizedImportances() []float64 {
	out := make([]float64, len(b.importances))
	total := 0.0
	for _, v := range b.importances {
		total += v
	}
	if total == 0 {
		return out
	}
	for i, v := range b.importances {
		out[i] = v / total
	}
	return out
}
