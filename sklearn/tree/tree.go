// Package tree implements an ID3 decision-tree classifier over categorical
// attributes.
//
// The tree is grown by recursively choosing the attribute with the highest
// information gain, branching on each value observed for it, and never reusing
// an attribute on the same root-to-leaf path. Rows whose values were not seen
// during training are answered with the training set's majority class.
package tree

import (
	"context"
	"time"

	"github.com/YuminosukeSato/scitab/core/labels"
	"github.com/YuminosukeSato/scitab/core/model"
	"github.com/YuminosukeSato/scitab/metrics"
	"github.com/YuminosukeSato/scitab/pkg/errors"
	"github.com/YuminosukeSato/scitab/pkg/log"
)

const modelName = "DecisionTreeClassifier"

var (
	_ model.ClassifierWithScore = (*DecisionTreeClassifier)(nil)
	_ model.ParameterGetter     = (*DecisionTreeClassifier)(nil)
	_ model.ParameterSetter     = (*DecisionTreeClassifier)(nil)
)

// DecisionTreeClassifier は名義属性の決定木分類器 (ID3)
type DecisionTreeClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	criterion       Criterion
	maxDepth        int // 0 以下は無制限
	minSamplesSplit int
	featureNames    []string
	logger          log.Logger

	// 学習済みパラメータ
	root                Node
	defaultClass_       string
	classes_            []string
	nClasses_           int
	nFeatures_          int
	featureImportances_ []float64
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the split criterion. The default, CriterionEntropy,
// yields classic ID3.
func WithCriterion(c Criterion) Option {
	return func(dt *DecisionTreeClassifier) { dt.criterion = c }
}

// WithMaxDepth limits the number of decision levels. Values <= 0 mean no limit.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of rows a node needs to be split.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesSplit = n }
}

// WithFeatureNames sets the attribute names used by ExportText.
func WithFeatureNames(names ...string) Option {
	return func(dt *DecisionTreeClassifier) { dt.featureNames = append([]string(nil), names...) }
}

// WithLogger overrides the logger obtained from log.GetLoggerWithName("tree").
func WithLogger(l log.Logger) Option {
	return func(dt *DecisionTreeClassifier) { dt.logger = l }
}

// NewDecisionTreeClassifier creates an unfitted tree. Before Fit the root is an
// empty Leaf and the default class is "".
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(modelName),
		criterion:       CriterionEntropy,
		maxDepth:        0,
		minSamplesSplit: 2,
		root:            &Leaf{},
	}
	for _, opt := range opts {
		opt(dt)
	}
	if dt.logger == nil {
		dt.logger = log.GetLoggerWithName("tree")
	}
	dt.logger = dt.logger.With(log.ModelNameKey, modelName)
	return dt
}

// Fit grows the tree on X and y, replacing any previously fitted tree.
//
// X must be non-empty with rows of equal length and len(X) == len(y).
func (dt *DecisionTreeClassifier) Fit(X [][]string, y []string) (err error) {
	defer errors.Recover(&err, modelName+".Fit")
	start := time.Now()

	if err := dt.validateParams(); err != nil {
		return err
	}
	nFeatures, err := model.ValidateCategorical(modelName+".Fit", X, y)
	if err != nil {
		return err
	}

	defaultClass := labels.Majority(y)
	b := newBuilder(X, y, nFeatures, dt.criterion, dt.maxDepth, dt.minSamplesSplit, defaultClass)
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	root := b.build(idx, attributeSet(nFeatures), 0)

	_ = dt.state.WithStateMut(func() error {
		dt.root = root
		dt.defaultClass_ = defaultClass
		dt.classes_ = labels.Classes(y)
		dt.nClasses_ = len(dt.classes_)
		dt.nFeatures_ = nFeatures
		dt.featureImportances_ = b.normalizedImportances()
		return nil
	})
	dt.state.SetFitted(nFeatures, len(y))

	if dt.logger.Enabled(context.Background(), log.LevelDebug) {
		dt.logger.Debug("fit completed",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, len(y),
			log.FeaturesKey, nFeatures,
			log.ClassesKey, dt.nClasses_,
			log.TreeDepthKey, depth(root),
			log.TreeLeavesKey, countLeaves(root),
			log.DefaultClassKey, defaultClass,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// Predict returns one label per row of X, in order. Rows that cannot be routed
// to a leaf (unseen value or row too short) receive the default class.
func (dt *DecisionTreeClassifier) Predict(X [][]string) ([]string, error) {
	if err := dt.state.RequireFitted("Predict"); err != nil {
		return nil, err
	}

	preds := make([]string, len(X))
	fallbacks := 0
	_ = dt.state.WithState(func() error {
		for i, row := range X {
			label, ok := predictOne(dt.root, row)
			if !ok {
				label = dt.defaultClass_
				fallbacks++
			}
			preds[i] = label
		}
		return nil
	})

	dt.logger.Debug("predict completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(preds),
		log.FallbacksKey, fallbacks,
	)
	return preds, nil
}

// predictOne walks the tree for row. ok is false when the walk falls off the
// tree.
func predictOne(n Node, row []string) (label string, ok bool) {
	for {
		switch cur := n.(type) {
		case *Leaf:
			return cur.Class, true
		case *Decision:
			if cur.Feature >= len(row) {
				return "", false
			}
			child, found := cur.Branches[row[cur.Feature]]
			if !found {
				return "", false
			}
			n = child
		default:
			return "", false
		}
	}
}

// Score returns the accuracy of Predict(X) against y.
func (dt *DecisionTreeClassifier) Score(X [][]string, y []string) (float64, error) {
	preds, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, preds)
}

// Root returns the fitted tree. The returned nodes must not be modified.
func (dt *DecisionTreeClassifier) Root() Node {
	var root Node
	_ = dt.state.WithState(func() error {
		root = dt.root
		return nil
	})
	return root
}

// DefaultClass returns the training-set majority label ("" before Fit).
func (dt *DecisionTreeClassifier) DefaultClass() string {
	var class string
	_ = dt.state.WithState(func() error {
		class = dt.defaultClass_
		return nil
	})
	return class
}

// Classes returns the distinct training labels in ascending order.
func (dt *DecisionTreeClassifier) Classes() []string {
	var classes []string
	_ = dt.state.WithState(func() error {
		classes = append([]string(nil), dt.classes_...)
		return nil
	})
	return classes
}

// NFeatures returns the number of attributes seen during Fit.
func (dt *DecisionTreeClassifier) NFeatures() int {
	var n int
	_ = dt.state.WithState(func() error {
		n = dt.nFeatures_
		return nil
	})
	return n
}

// GetDepth returns the number of decision levels of the fitted tree.
func (dt *DecisionTreeClassifier) GetDepth() int {
	return depth(dt.Root())
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	return countLeaves(dt.Root())
}

// GetFeatureImportances returns, per attribute, its share of the total
// sample-weighted gain. The values sum to 1 unless the tree has no splits.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	var importances []float64
	_ = dt.state.WithState(func() error {
		importances = append([]float64(nil), dt.featureImportances_...)
		return nil
	})
	return importances
}

// GetParams returns the hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         string(dt.criterion),
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"feature_names":     append([]string(nil), dt.featureNames...),
	}
}

// SetParams updates hyperparameters. It does not refit the model. On error
// the model is left unchanged.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	next := *dt
	for key, value := range params {
		switch key {
		case "criterion":
			switch v := value.(type) {
			case string:
				next.criterion = Criterion(v)
			case Criterion:
				next.criterion = v
			default:
				return errors.NewValidationError(key, "must be a string", value)
			}
		case "max_depth":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			next.maxDepth = v
		case "min_samples_split":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			next.minSamplesSplit = v
		case "feature_names":
			v, ok := value.([]string)
			if !ok {
				return errors.NewValidationError(key, "must be a []string", value)
			}
			next.featureNames = append([]string(nil), v...)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	if err := next.validateParams(); err != nil {
		return err
	}
	dt.criterion = next.criterion
	dt.maxDepth = next.maxDepth
	dt.minSamplesSplit = next.minSamplesSplit
	dt.featureNames = next.featureNames
	return nil
}

func (dt *DecisionTreeClassifier) validateParams() error {
	if !dt.criterion.valid() {
		return errors.NewValidationError("criterion", "must be \"entropy\" or \"gini\"", dt.criterion)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}
	return nil
}
