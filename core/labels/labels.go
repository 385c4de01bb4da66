// Package labels implements the class-label tallies shared by every learner:
// counting, the sorted class set, and the majority vote with its tie-break.
//
// Ties between equally frequent labels always resolve to the lexicographically
// smallest label, so every learner built on this package is deterministic.
package labels

import (
	"sort"

	"github.com/samber/lo"
)

// Counts tallies how often each label occurs in y.
func Counts(y []string) map[string]int {
	return lo.CountValues(y)
}

// CountsAt tallies the labels of y at the given row indices.
func CountsAt(y []string, idx []int) map[string]int {
	counts := make(map[string]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

// Classes returns the distinct labels of y in ascending order.
func Classes(y []string) []string {
	classes := lo.Uniq(y)
	sort.Strings(classes)
	return classes
}

// SortedKeys returns the keys of counts in ascending order.
func SortedKeys(counts map[string]int) []string {
	keys := lo.Keys(counts)
	sort.Strings(keys)
	return keys
}

// MajorityOf returns the most frequent label in counts and its count.
// It returns ("", 0) for an empty tally.
func MajorityOf(counts map[string]int) (label string, count int) {
	for _, k := range SortedKeys(counts) {
		if c := counts[k]; c > count {
			label, count = k, c
		}
	}
	return label, count
}

// Majority returns the most frequent label of y.
func Majority(y []string) string {
	label, _ := MajorityOf(Counts(y))
	return label
}

// MajorityAt returns the most frequent label of y among the rows in idx.
func MajorityAt(y []string, idx []int) string {
	label, _ := MajorityOf(CountsAt(y, idx))
	return label
}

// AllSame reports whether every row in idx carries the same label.
// An empty idx is considered pure.
func AllSame(y []string, idx []int) bool {
	for _, i := range idx {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
