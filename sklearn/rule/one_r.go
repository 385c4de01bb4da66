// Package rule implements single-rule classifiers.
package rule

import (
	"github.com/samber/lo"

	"github.com/YuminosukeSato/scitab/core/labels"
	"github.com/YuminosukeSato/scitab/core/model"
	"github.com/YuminosukeSato/scitab/metrics"
	"github.com/YuminosukeSato/scitab/pkg/errors"
	"github.com/YuminosukeSato/scitab/pkg/log"
)

const modelName = "OneR"

var (
	_ model.ClassifierWithScore = (*OneR)(nil)
	_ model.ParameterGetter     = (*OneR)(nil)
	_ model.ParameterSetter     = (*OneR)(nil)
)

// OneR は1つの属性だけで予測する単一ルール分類器
//
// 各属性について「値 → その値で最も多いクラス」の表を作り、訓練データでの
// 誤分類数が最小の属性を採用する。同数の場合は添字の小さい属性を選ぶ。
type OneR struct {
	state  *model.StateManager
	logger log.Logger

	bestFeature_  int
	rules_        map[string]string
	errors_       int
	defaultClass_ string
}

// OneROption configures a OneR classifier.
type OneROption func(*OneR)

// WithLogger overrides the logger obtained from log.GetLoggerWithName("rule").
func WithLogger(l log.Logger) OneROption {
	return func(o *OneR) { o.logger = l }
}

// NewOneR creates an unfitted OneR classifier.
func NewOneR(opts ...OneROption) *OneR {
	o := &OneR{
		state: model.NewStateManager(modelName),
		rules_: map[string]string{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("rule")
	}
	o.logger = o.logger.With(log.ModelNameKey, modelName)
	return o
}

// oneRule builds the value -> majority label table for attribute attr and
// counts the training rows it misclassifies.
func oneRule(X [][]string, y []string, attr int) (rules map[string]string, nErrors int) {
	byValue := lo.GroupBy(lo.Range(len(y)), func(i int) string { return X[i][attr] })
	rules = make(map[string]string, len(byValue))
	for value, idx := range byValue {
		label, count := labels.MajorityOf(labels.CountsAt(y, idx))
		rules[value] = label
		nErrors += len(idx) - count
	}
	return rules, nErrors
}

// Fit selects the attribute whose rule table makes the fewest training errors.
func (o *OneR) Fit(X [][]string, y []string) (err error) {
	defer errors.Recover(&err, modelName+".Fit")

	nFeatures, err := model.ValidateCategorical(modelName+".Fit", X, y)
	if err != nil {
		return err
	}

	best, bestErrors := -1, 0
	bestRules := map[string]string{}
	for attr := 0; attr < nFeatures; attr++ {
		rules, nErrors := oneRule(X, y, attr)
		if best < 0 || nErrors < bestErrors {
			best, bestErrors, bestRules = attr, nErrors, rules
		}
	}
	defaultClass := labels.Majority(y)
	if best < 0 {
		// 属性がない場合は常にデフォルトクラスを返す
		best = 0
		bestErrors = len(y) - labels.Counts(y)[defaultClass]
	}

	_ = o.state.WithStateMut(func() error {
		o.bestFeature_ = best
		o.rules_ = bestRules
		o.errors_ = bestErrors
		o.defaultClass_ = defaultClass
		return nil
	})
	o.state.SetFitted(nFeatures, len(y))

	o.logger.Debug("fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(y),
		log.FeaturesKey, nFeatures,
		log.SelectedFeatureKey, best,
		log.DefaultClassKey, defaultClass,
	)
	return nil
}

// Predict looks up each row's value of the selected attribute. Unseen values
// and rows too short to hold the attribute get the default class.
func (o *OneR) Predict(X [][]string) ([]string, error) {
	if err := o.state.RequireFitted("Predict"); err != nil {
		return nil, err
	}
	preds := make([]string, len(X))
	fallbacks := 0
	_ = o.state.WithState(func() error {
		for i, row := range X {
			label, ok := "", false
			if o.bestFeature_ < len(row) {
				label, ok = o.rules_[row[o.bestFeature_]]
			}
			if !ok {
				label = o.defaultClass_
				fallbacks++
			}
			preds[i] = label
		}
		return nil
	})
	o.logger.Debug("predict completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(preds),
		log.FallbacksKey, fallbacks,
	)
	return preds, nil
}

// Score returns the accuracy of Predict(X) against y.
func (o *OneR) Score(X [][]string, y []string) (float64, error) {
	preds, err := o.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, preds)
}

// BestFeature returns the index of the selected attribute.
func (o *OneR) BestFeature() int {
	return o.bestFeature_
}

// Rules returns a copy of the value -> label table of the selected attribute.
func (o *OneR) Rules() map[string]string {
	return lo.Assign(o.rules_)
}

// Errors returns the number of training rows the selected rule misclassifies.
func (o *OneR) Errors() int {
	return o.errors_
}

// DefaultClass returns the training-set majority label.
func (o *OneR) DefaultClass() string {
	return o.defaultClass_
}

// GetParams returns the hyperparameters. OneR has none.
func (o *OneR) GetParams() map[string]interface{} {
	return map[string]interface{}{}
}

// SetParams rejects every key: OneR has no hyperparameters.
func (o *OneR) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		return errors.NewValidationError(key, "unknown parameter", value)
	}
	return nil
}
