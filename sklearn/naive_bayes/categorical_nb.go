// Package naive_bayes implements a Naive Bayes classifier for categorical
// attributes.
package naive_bayes

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitab/core/labels"
	"github.com/YuminosukeSato/scitab/core/model"
	"github.com/YuminosukeSato/scitab/metrics"
	"github.com/YuminosukeSato/scitab/pkg/errors"
	"github.com/YuminosukeSato/scitab/pkg/log"
)

const modelName = "CategoricalNB"

var (
	_ model.ClassifierWithScore = (*CategoricalNB)(nil)
	_ model.ParameterGetter     = (*CategoricalNB)(nil)
	_ model.ParameterSetter     = (*CategoricalNB)(nil)
)

// CategoricalNB はカテゴリカル特徴量のためのナイーブベイズ分類器
//
// P(value | class) は加算スムージング付きの相対頻度
//
//	(count(attr=value, class) + alpha) / (count(class) + alpha * |values(attr)|)
//
// で推定する。alpha=1 がラプラス・スムージング。
type CategoricalNB struct {
	state  *model.StateManager
	alpha  float64
	logger log.Logger

	// 学習済みパラメータ
	classes_       []string                    // 昇順
	classCount_    map[string]int              // クラスごとのサンプル数
	featureCount_  []map[string]map[string]int // [attr][class][value]
	featureValues_ []map[string]struct{}       // [attr] 観測された値
	nSamples_      int
	nFeatures_     int
}

// Option configures a CategoricalNB.
type Option func(*CategoricalNB)

// WithAlpha sets the additive smoothing parameter (default 1).
func WithAlpha(alpha float64) Option {
	return func(nb *CategoricalNB) { nb.alpha = alpha }
}

// WithLogger overrides the logger obtained from log.GetLoggerWithName("naive_bayes").
func WithLogger(l log.Logger) Option {
	return func(nb *CategoricalNB) { nb.logger = l }
}

// NewCategoricalNB creates an unfitted classifier.
func NewCategoricalNB(opts ...Option) *CategoricalNB {
	nb := &CategoricalNB{
		state: model.NewStateManager(modelName),
		alpha: 1.0,
	}
	for _, opt := range opts {
		opt(nb)
	}
	if nb.logger == nil {
		nb.logger = log.GetLoggerWithName("naive_bayes")
	}
	nb.logger = nb.logger.With(log.ModelNameKey, modelName)
	return nb
}

// Fit counts class and attribute-value frequencies, discarding earlier state.
func (nb *CategoricalNB) Fit(X [][]string, y []string) (err error) {
	defer errors.Recover(&err, modelName+".Fit")

	if err := nb.validateParams(); err != nil {
		return err
	}
	nFeatures, err := model.ValidateCategorical(modelName+".Fit", X, y)
	if err != nil {
		return err
	}

	_ = nb.state.WithStateMut(func() error {
		nb.reset(nFeatures)
		nb.accumulate(X, y)
		return nil
	})
	nb.state.SetFitted(nFeatures, nb.nSamples_)
	nb.logFit("fit completed", len(y))
	return nil
}

// PartialFit adds X and y to the counts of an already fitted model, or fits
// from scratch if the model is unfitted. Rows must match the width seen before.
func (nb *CategoricalNB) PartialFit(X [][]string, y []string) (err error) {
	defer errors.Recover(&err, modelName+".PartialFit")

	if !nb.state.IsFitted() {
		return nb.Fit(X, y)
	}
	nFeatures, err := model.ValidateCategorical(modelName+".PartialFit", X, y)
	if err != nil {
		return err
	}
	if nFeatures != nb.nFeatures_ {
		return errors.NewDimensionError(modelName+".PartialFit", nb.nFeatures_, nFeatures, 1)
	}

	_ = nb.state.WithStateMut(func() error {
		nb.accumulate(X, y)
		return nil
	})
	nb.state.SetFitted(nFeatures, nb.nSamples_)
	nb.logFit("partial fit completed", len(y))
	return nil
}

func (nb *CategoricalNB) reset(nFeatures int) {
	nb.classCount_ = make(map[string]int)
	nb.featureCount_ = make([]map[string]map[string]int, nFeatures)
	nb.featureValues_ = make([]map[string]struct{}, nFeatures)
	for i := 0; i < nFeatures; i++ {
		nb.featureCount_[i] = make(map[string]map[string]int)
		nb.featureValues_[i] = make(map[string]struct{})
	}
	nb.nSamples_ = 0
	nb.nFeatures_ = nFeatures
}

func (nb *CategoricalNB) accumulate(X [][]string, y []string) {
	for c, n := range labels.Counts(y) {
		nb.classCount_[c] += n
	}
	for r, row := range X {
		class := y[r]
		for i, value := range row {
			nb.featureValues_[i][value] = struct{}{}
			if nb.featureCount_[i][class] == nil {
				nb.featureCount_[i][class] = make(map[string]int)
			}
			nb.featureCount_[i][class][value]++
		}
	}
	nb.nSamples_ += len(y)
	nb.classes_ = labels.SortedKeys(nb.classCount_)
}

func (nb *CategoricalNB) logFit(msg string, n int) {
	nb.logger.Debug(msg,
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, nb.nFeatures_,
		log.ClassesKey, len(nb.classes_),
	)
}

// jointLogLikelihood returns log P(class) + Σ log P(value | class) for each
// class in ascending order. Attributes missing from a short row contribute
// nothing and positions beyond the trained width are ignored.
func (nb *CategoricalNB) jointLogLikelihood(row []string) []float64 {
	width := len(row)
	if width > nb.nFeatures_ {
		width = nb.nFeatures_
	}
	scores := make([]float64, len(nb.classes_))
	for k, class := range nb.classes_ {
		classCount := float64(nb.classCount_[class])
		score := math.Log(classCount / float64(nb.nSamples_))
		for i := 0; i < width; i++ {
			count := float64(nb.featureCount_[i][class][row[i]])
			distinct := float64(len(nb.featureValues_[i]))
			score += math.Log((count + nb.alpha) / (classCount + nb.alpha*distinct))
		}
		scores[k] = score
	}
	return scores
}

// Predict returns the class with the highest posterior for each row. Ties go
// to the class that sorts first.
func (nb *CategoricalNB) Predict(X [][]string) ([]string, error) {
	if err := nb.state.RequireFitted("Predict"); err != nil {
		return nil, err
	}
	preds := make([]string, len(X))
	_ = nb.state.WithState(func() error {
		for i, row := range X {
			preds[i] = nb.classes_[floats.MaxIdx(nb.jointLogLikelihood(row))]
		}
		return nil
	})
	nb.logger.Debug("predict completed", log.OperationKey, log.OperationPredict, log.PredsKey, len(preds))
	return preds, nil
}

// Score returns the accuracy of Predict(X) against y.
func (nb *CategoricalNB) Score(X [][]string, y []string) (float64, error) {
	preds, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, preds)
}

// DecisionFunction returns the unnormalised log posterior of every class
// (columns in Classes() order) for every row.
func (nb *CategoricalNB) DecisionFunction(X [][]string) (*mat.Dense, error) {
	if err := nb.state.RequireFitted("DecisionFunction"); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, errors.NewValueError(modelName+".DecisionFunction", "empty input")
	}
	var out *mat.Dense
	_ = nb.state.WithState(func() error {
		out = mat.NewDense(len(X), len(nb.classes_), nil)
		for i, row := range X {
			out.SetRow(i, nb.jointLogLikelihood(row))
		}
		return nil
	})
	return out, nil
}

// PredictProba returns normalised class probabilities, one row per sample.
func (nb *CategoricalNB) PredictProba(X [][]string) (*mat.Dense, error) {
	jll, err := nb.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, _ := jll.Dims()
	for i := 0; i < r; i++ {
		row := jll.RawRowView(i)
		norm := floats.LogSumExp(row)
		for j := range row {
			row[j] = math.Exp(row[j] - norm)
		}
	}
	return jll, nil
}

// Classes returns the training labels in ascending order.
func (nb *CategoricalNB) Classes() []string {
	return append([]string(nil), nb.classes_...)
}

// ClassLogPrior returns log P(class) in Classes() order.
func (nb *CategoricalNB) ClassLogPrior() []float64 {
	return lo.Map(nb.classes_, func(c string, _ int) float64 {
		return math.Log(float64(nb.classCount_[c]) / float64(nb.nSamples_))
	})
}

// NSamplesSeen returns the number of rows counted so far.
func (nb *CategoricalNB) NSamplesSeen() int {
	return nb.nSamples_
}

// GetParams returns the hyperparameters.
func (nb *CategoricalNB) GetParams() map[string]interface{} {
	return map[string]interface{}{"alpha": nb.alpha}
}

// SetParams updates hyperparameters. It does not refit the model. On error
// the model is left unchanged.
func (nb *CategoricalNB) SetParams(params map[string]interface{}) error {
	next := *nb
	for key, value := range params {
		switch key {
		case "alpha":
			switch v := value.(type) {
			case float64:
				next.alpha = v
			case int:
				next.alpha = float64(v)
			default:
				return errors.NewValidationError(key, "must be a number", value)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	if err := next.validateParams(); err != nil {
		return err
	}
	nb.alpha = next.alpha
	return nil
}

func (nb *CategoricalNB) validateParams() error {
	if !(nb.alpha > 0) || math.IsInf(nb.alpha, 0) {
		return errors.NewValidationError("alpha", "must be a positive finite number", nb.alpha)
	}
	return nil
}
