package tree

import (
	"sort"
)

// Node is a tree node: either *Leaf or *Decision. The set is closed; callers
// switch on the concrete type.
type Node interface {
	// NSamples is the number of training rows that reached the node.
	NSamples() int
	node()
}

// Leaf is a terminal node predicting a single class.
type Leaf struct {
	Class   string
	Samples int
}

// Decision branches on the value of one attribute. Each child is owned
// exclusively by its parent.
type Decision struct {
	Feature  int
	Branches map[string]Node
	// Gain is the impurity decrease achieved by the split.
	Gain    float64
	Samples int
}

func (l *Leaf) NSamples() int     { return l.Samples }
func (d *Decision) NSamples() int { return d.Samples }

func (*Leaf) node()     {}
func (*Decision) node() {}

// Values returns the branch values in ascending order.
func (d *Decision) Values() []string {
	values := make([]string, 0, len(d.Branches))
	for v := range d.Branches {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// depth returns the number of decision levels below n. A lone leaf has depth 0.
func depth(n Node) int {
	d, ok := n.(*Decision)
	if !ok {
		return 0
	}
	deepest := 0
	for _, child := range d.Branches {
		if cd := depth(child); cd > deepest {
			deepest = cd
		}
	}
	return deepest + 1
}

func countLeaves(n Node) int {
	switch n := n.(type) {
	case *Leaf:
		return 1
	case *Decision:
		total := 0
		for _, child := range n.Branches {
			total += countLeaves(child)
		}
		return total
	}
	return 0
}

// walk visits n and its descendants depth-first with branch values in
// ascending order. path holds the features of the ancestors of each visited
// node.
func walk(n Node, path []int, visit func(n Node, path []int)) {
	visit(n, path)
	if d, ok := n.(*Decision); ok {
		childPath := append(append([]int(nil), path...), d.Feature)
		for _, v := range d.Values() {
			walk(d.Branches[v], childPath, visit)
		}
	}
}
