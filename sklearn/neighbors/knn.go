// Package neighbors implements a k-nearest-neighbor classifier on numeric
// features with Euclidean distance.
package neighbors

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitab/core/labels"
	"github.com/YuminosukeSato/scitab/core/model"
	"github.com/YuminosukeSato/scitab/metrics"
	"github.com/YuminosukeSato/scitab/pkg/errors"
	"github.com/YuminosukeSato/scitab/pkg/log"
)

const modelName = "KNeighborsClassifier"

var (
	_ model.NumericClassifier = (*KNeighborsClassifier)(nil)
	_ model.ParameterGetter   = (*KNeighborsClassifier)(nil)
	_ model.ParameterSetter   = (*KNeighborsClassifier)(nil)
)

// KNeighborsClassifier はk近傍法による分類器
//
// 訓練データをそのまま保持し、予測時に全訓練点とのユークリッド距離を計算して
// 近い順に k 個の多数決を取る。票数が同じクラスは、最も近い近傍点を持つ
// クラスが勝つ。距離が等しい点は訓練データの順序を保つ。
type KNeighborsClassifier struct {
	state  *model.StateManager
	k      int
	scaler model.Transformer
	logger log.Logger

	xTrain_  *mat.Dense
	scaler_  model.Transformer // Fit 時に学習したスケーラ
	yTrain_  []string
	classes_ []string
	kUsed_   int
}

// Option configures a KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// WithK sets the number of neighbors (default 3).
func WithK(k int) Option {
	return func(c *KNeighborsClassifier) { c.k = k }
}

// WithScaler fits t on the training matrix and applies it to every matrix
// passed to Predict and KNeighbors. The fitted model keeps using t until the
// next Fit, so t must not be refit elsewhere in the meantime.
func WithScaler(t model.Transformer) Option {
	return func(c *KNeighborsClassifier) { c.scaler = t }
}

// WithLogger overrides the logger obtained from log.GetLoggerWithName("neighbors").
func WithLogger(l log.Logger) Option {
	return func(c *KNeighborsClassifier) { c.logger = l }
}

// NewKNeighborsClassifier creates an unfitted classifier.
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	c := &KNeighborsClassifier{
		state: model.NewStateManager(modelName),
		k:     3,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("neighbors")
	}
	c.logger = c.logger.With(log.ModelNameKey, modelName)
	return c
}

// Fit stores a copy of the training matrix and labels. If k exceeds the
// number of samples it is capped and a ParameterAdjustmentWarning is raised.
func (c *KNeighborsClassifier) Fit(X mat.Matrix, y []string) (err error) {
	defer errors.Recover(&err, modelName+".Fit")

	if err := c.validateParams(); err != nil {
		return err
	}
	nSamples, nFeatures, err := model.ValidateNumeric(modelName+".Fit", X, y)
	if err != nil {
		return err
	}

	scaler := c.scaler
	train := mat.DenseCopyOf(X)
	if scaler != nil {
		scaled, err := scaler.FitTransform(X)
		if err != nil {
			return errors.Wrap(err, "scaling training data")
		}
		train = mat.DenseCopyOf(scaled)
	}

	kUsed := c.k
	if kUsed > nSamples {
		kUsed = nSamples
		errors.Warn(errors.NewParameterAdjustmentWarning(modelName, "n_neighbors", c.k, kUsed,
			"k exceeds the number of training samples"))
	}

	_ = c.state.WithStateMut(func() error {
		c.xTrain_ = train
		c.scaler_ = scaler
		c.yTrain_ = append([]string(nil), y...)
		c.classes_ = labels.Classes(y)
		c.kUsed_ = kUsed
		return nil
	})
	c.state.SetFitted(nFeatures, nSamples)

	c.logger.Debug("fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(c.classes_),
		log.NeighborsKey, kUsed,
	)
	return nil
}

// prepare checks X against the fitted width and applies the scaler fitted
// together with the training matrix.
func (c *KNeighborsClassifier) prepare(op string, X mat.Matrix) (mat.Matrix, error) {
	if err := c.state.RequireFitted(op); err != nil {
		return nil, err
	}
	nFeatures, _ := c.state.GetDimensions()
	r, cols := X.Dims()
	if cols != nFeatures {
		return nil, errors.NewDimensionError(modelName+"."+op, nFeatures, cols, 1)
	}
	if err := errors.CheckMatrix(modelName+"."+op, X, r, cols); err != nil {
		return nil, err
	}
	var scaler model.Transformer
	_ = c.state.WithState(func() error {
		scaler = c.scaler_
		return nil
	})
	if scaler == nil {
		return X, nil
	}
	return scaler.Transform(X)
}

type neighbor struct {
	index    int
	distance float64
}

// nearest returns the kUsed_ training points closest to x, nearest first.
// Equal distances keep training order.
func (c *KNeighborsClassifier) nearest(x []float64) []neighbor {
	n, _ := c.xTrain_.Dims()
	all := make([]neighbor, n)
	for i := 0; i < n; i++ {
		all[i] = neighbor{index: i, distance: floats.Distance(x, c.xTrain_.RawRowView(i), 2)}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].distance < all[b].distance })
	return all[:c.kUsed_]
}

// vote returns the most common label among ns. A tie goes to the label whose
// first occurrence in ns comes earliest, i.e. the one with the nearest member.
func (c *KNeighborsClassifier) vote(ns []neighbor) string {
	counts := make(map[string]int, len(ns))
	var order []string
	for _, nb := range ns {
		label := c.yTrain_[nb.index]
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	best := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[best] {
			best = label
		}
	}
	return best
}

// Predict returns the majority label among the k nearest training points for
// every row of X.
func (c *KNeighborsClassifier) Predict(X mat.Matrix) ([]string, error) {
	Xp, err := c.prepare("Predict", X)
	if err != nil {
		return nil, err
	}
	r, cols := Xp.Dims()
	preds := make([]string, r)
	row := make([]float64, cols)
	_ = c.state.WithState(func() error {
		for i := 0; i < r; i++ {
			mat.Row(row, i, Xp)
			preds[i] = c.vote(c.nearest(row))
		}
		return nil
	})
	c.logger.Debug("predict completed", log.OperationKey, log.OperationPredict, log.PredsKey, r)
	return preds, nil
}

// KNeighbors returns, per row of X, the indices of its k nearest training
// points and their distances, nearest first.
func (c *KNeighborsClassifier) KNeighbors(X mat.Matrix) (indices [][]int, distances [][]float64, err error) {
	Xp, err := c.prepare("KNeighbors", X)
	if err != nil {
		return nil, nil, err
	}
	r, cols := Xp.Dims()
	indices = make([][]int, r)
	distances = make([][]float64, r)
	row := make([]float64, cols)
	_ = c.state.WithState(func() error {
		for i := 0; i < r; i++ {
			mat.Row(row, i, Xp)
			for _, nb := range c.nearest(row) {
				indices[i] = append(indices[i], nb.index)
				distances[i] = append(distances[i], nb.distance)
			}
		}
		return nil
	})
	return indices, distances, nil
}

// Score returns the accuracy of Predict(X) against y.
func (c *KNeighborsClassifier) Score(X mat.Matrix, y []string) (float64, error) {
	preds, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, preds)
}

// Classes returns the training labels in ascending order.
func (c *KNeighborsClassifier) Classes() []string {
	return append([]string(nil), c.classes_...)
}

// NNeighbors returns the number of neighbors actually used, which may be
// smaller than the configured k.
func (c *KNeighborsClassifier) NNeighbors() int {
	return c.kUsed_
}

// GetParams returns the hyperparameters.
func (c *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": c.k,
		"scaler":      c.scaler,
	}
}

// SetParams updates hyperparameters. It does not refit the model: a new
// scaler takes effect at the next Fit. On error the model is left unchanged.
func (c *KNeighborsClassifier) SetParams(params map[string]interface{}) error {
	next := *c
	for key, value := range params {
		switch key {
		case "n_neighbors":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			next.k = v
		case "scaler":
			if value == nil {
				next.scaler = nil
				continue
			}
			v, ok := value.(model.Transformer)
			if !ok {
				return errors.NewValidationError(key, "must implement model.Transformer", value)
			}
			next.scaler = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	if err := next.validateParams(); err != nil {
		return err
	}
	c.k = next.k
	c.scaler = next.scaler
	return nil
}

func (c *KNeighborsClassifier) validateParams() error {
	if c.k < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", c.k)
	}
	return nil
}
