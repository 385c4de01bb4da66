// Package metrics provides evaluation metrics for classifiers with string
// class labels.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitab/pkg/errors"
)

func checkPair(op string, yTrue, yPred []string) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty label slice")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// AccuracyScore は予測ラベルと正解ラベルの一致率を計算する
func AccuracyScore(yTrue, yPred []string) (float64, error) {
	if err := checkPair("AccuracyScore", yTrue, yPred); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// unionLabels returns the labels occurring in either slice in ascending order.
func unionLabels(yTrue, yPred []string) []string {
	all := lo.Uniq(append(append([]string(nil), yTrue...), yPred...))
	sort.Strings(all)
	return all
}

// ConfusionMatrix は混同行列。行が正解ラベル、列が予測ラベル
type ConfusionMatrix struct {
	// Labels are the row and column labels in ascending order.
	Labels []string
	// Counts[i][j] is the number of rows with true label Labels[i] predicted
	// as Labels[j].
	Counts *mat.Dense

	index map[string]int
}

// NewConfusionMatrix tallies yTrue against yPred over the union of their labels.
func NewConfusionMatrix(yTrue, yPred []string) (*ConfusionMatrix, error) {
	if err := checkPair("NewConfusionMatrix", yTrue, yPred); err != nil {
		return nil, err
	}
	labels := unionLabels(yTrue, yPred)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	counts := mat.NewDense(len(labels), len(labels), nil)
	for i := range yTrue {
		r, c := index[yTrue[i]], index[yPred[i]]
		counts.Set(r, c, counts.At(r, c)+1)
	}
	return &ConfusionMatrix{Labels: labels, Counts: counts, index: index}, nil
}

// Count returns how many rows labeled trueLabel were predicted as predLabel.
func (cm *ConfusionMatrix) Count(trueLabel, predLabel string) int {
	r, ok1 := cm.index[trueLabel]
	c, ok2 := cm.index[predLabel]
	if !ok1 || !ok2 {
		return 0
	}
	return int(cm.Counts.At(r, c))
}

// String renders the matrix as a text table.
func (cm *ConfusionMatrix) String() string {
	t := table.NewWriter()
	header := table.Row{"true \\ pred"}
	for _, l := range cm.Labels {
		header = append(header, l)
	}
	t.AppendHeader(header)
	for i, l := range cm.Labels {
		row := table.Row{l}
		for j := range cm.Labels {
			row = append(row, int(cm.Counts.At(i, j)))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// LabelScores は1クラス分の適合率・再現率・F1
type LabelScores struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// PrecisionRecallFScore returns per-label precision, recall, F1 and support in
// ascending label order. Ratios with a zero denominator are reported as 0 and
// raise an UndefinedMetricWarning.
func PrecisionRecallFScore(yTrue, yPred []string) ([]LabelScores, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	n := len(cm.Labels)
	scores := make([]LabelScores, n)
	for k, label := range cm.Labels {
		tp := cm.Counts.At(k, k)
		predicted := mat.Sum(cm.Counts.ColView(k))
		actual := mat.Sum(cm.Counts.RowView(k))

		s := LabelScores{Label: label, Support: int(actual)}
		if predicted == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("precision", fmt.Sprintf("no predicted samples for label %q", label), 0))
		}
		s.Precision = errors.SafeDivide(tp, predicted)
		if actual == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall", fmt.Sprintf("no true samples for label %q", label), 0))
		}
		s.Recall = errors.SafeDivide(tp, actual)
		s.F1 = errors.SafeDivide(2*s.Precision*s.Recall, s.Precision+s.Recall)
		scores[k] = s
	}
	return scores, nil
}

// ClassificationReport renders PrecisionRecallFScore and the overall accuracy
// as a text table.
func ClassificationReport(yTrue, yPred []string) (string, error) {
	scores, err := PrecisionRecallFScore(yTrue, yPred)
	if err != nil {
		return "", err
	}
	acc, err := AccuracyScore(yTrue, yPred)
	if err != nil {
		return "", err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"label", "precision", "recall", "f1-score", "support"})
	for _, s := range scores {
		t.AppendRow(table.Row{s.Label, fmt.Sprintf("%.2f", s.Precision), fmt.Sprintf("%.2f", s.Recall), fmt.Sprintf("%.2f", s.F1), s.Support})
	}
	t.AppendFooter(table.Row{"accuracy", "", "", fmt.Sprintf("%.2f", acc), len(yTrue)})
	return strings.TrimRight(t.Render(), "\n"), nil
}
