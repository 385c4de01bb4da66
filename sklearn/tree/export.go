package tree

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/list"

	"github.com/YuminosukeSato/scitab/pkg/errors"
)

// ExportText renders the fitted tree as an indented list, one line per
// branch, with branch values in ascending order:
//
//	├─ Outlook = Overcast: Yes
//	├─ Outlook = Rain
//	│  ├─ Wind = Strong: No
//	│  ╰─ Wind = Weak: Yes
//	╰─ Outlook = Sunny: No
//
// featureNames overrides the names given by WithFeatureNames; when neither is
// set attributes are shown as feature_0, feature_1, ...
func (dt *DecisionTreeClassifier) ExportText(featureNames []string) (string, error) {
	if err := dt.state.RequireFitted("ExportText"); err != nil {
		return "", err
	}
	if featureNames == nil {
		featureNames = dt.featureNames
	}
	if featureNames != nil && len(featureNames) != dt.nFeatures_ {
		return "", errors.NewDimensionError("DecisionTreeClassifier.ExportText", dt.nFeatures_, len(featureNames), 1)
	}
	name := func(feature int) string {
		if featureNames == nil {
			return fmt.Sprintf("feature_%d", feature)
		}
		return featureNames[feature]
	}

	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	appendNode(l, dt.Root(), name)
	return l.Render(), nil
}

func appendNode(l list.Writer, n Node, name func(int) string) {
	switch n := n.(type) {
	case *Leaf:
		l.AppendItem(fmt.Sprintf("class: %s", n.Class))
	case *Decision:
		for _, v := range n.Values() {
			child := n.Branches[v]
			if leaf, ok := child.(*Leaf); ok {
				l.AppendItem(fmt.Sprintf("%s = %s: %s", name(n.Feature), v, leaf.Class))
				continue
			}
			l.AppendItem(fmt.Sprintf("%s = %s", name(n.Feature), v))
			l.Indent()
			appendNode(l, child, name)
			l.UnIndent()
		}
	}
}
