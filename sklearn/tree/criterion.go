package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scitab/core/labels"
)

// Criterion selects the impurity measure used to score candidate splits.
type Criterion string

const (
	// CriterionEntropy is Shannon entropy in bits (ID3 information gain).
	CriterionEntropy Criterion = "entropy"
	// CriterionGini is Gini impurity.
	CriterionGini Criterion = "gini"
)

func (c Criterion) valid() bool {
	return c == CriterionEntropy || c == CriterionGini
}

// gainTolerance is the margin below which two gains are considered equal and a
// gain is considered zero.
const gainTolerance = 1e-12

// Entropy returns the Shannon entropy of y in bits. It is 0 for a pure (or
// empty) label set and at most log2 of the number of distinct labels.
func Entropy(y []string) float64 {
	return entropyOf(labels.Counts(y), len(y))
}

// InformationGain returns the reduction in entropy of y obtained by
// partitioning the rows of X on attribute attr. It returns 0 when len(X) !=
// len(y) or when attr is out of range for some row.
func InformationGain(X [][]string, y []string, attr int) float64 {
	if len(X) != len(y) || attr < 0 {
		return 0
	}
	for _, row := range X {
		if attr >= len(row) {
			return 0
		}
	}
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	return gain(CriterionEntropy, X, y, idx, attr)
}

// probabilities returns the label frequencies in ascending label order so the
// floating point sums are reproducible.
func probabilities(counts map[string]int, n int) []float64 {
	p := make([]float64, 0, len(counts))
	for _, k := range labels.SortedKeys(counts) {
		p = append(p, float64(counts[k])/float64(n))
	}
	return p
}

func entropyOf(counts map[string]int, n int) float64 {
	if n == 0 || len(counts) < 2 {
		return 0
	}
	// stat.Entropy は自然対数なのでビットに変換する
	return stat.Entropy(probabilities(counts, n)) / math.Ln2
}

func giniOf(counts map[string]int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range probabilities(counts, n) {
		sum += p * p
	}
	return 1 - sum
}

func impurity(c Criterion, y []string, idx []int) float64 {
	counts := labels.CountsAt(y, idx)
	if c == CriterionGini {
		return giniOf(counts, len(idx))
	}
	return entropyOf(counts, len(idx))
}

// partition groups idx by the value of attribute attr. Values are returned in
// ascending order; each group keeps the relative order of idx.
func partition(X [][]string, idx []int, attr int) (values []string, groups map[string][]int) {
	groups = make(map[string][]int)
	for _, i := range idx {
		v := X[i][attr]
		groups[v] = append(groups[v], i)
	}
	values = make([]string, 0, len(groups))
	for v := range groups {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, groups
}

// gain is the impurity of idx minus the size-weighted impurity of its
// partitions on attr.
func gain(c Criterion, X [][]string, y []string, idx []int, attr int) float64 {
	if len(idx) == 0 {
		return 0
	}
	values, groups := partition(X, idx, attr)
	weighted := 0.0
	for _, v := range values {
		part := groups[v]
		weighted += float64(len(part)) / float64(len(idx)) * impurity(c, y, part)
	}
	return impurity(c, y, idx) - weighted
}
