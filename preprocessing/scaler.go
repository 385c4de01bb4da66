// Package preprocessing provides feature scalers for numeric inputs.
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scitab/core/model"
	"github.com/YuminosukeSato/scitab/pkg/errors"
)

// constantEpsilon is the spread below which a column is treated as constant.
const constantEpsilon = 1e-8

// StandardScaler はデータを平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	withMean bool
	withStd  bool

	mean_  []float64
	scale_ []float64
}

// NewStandardScaler creates a scaler. withMean subtracts the column mean,
// withStd divides by the population standard deviation.
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager("StandardScaler"),
		withMean: withMean,
		withStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから各列の平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("StandardScaler.Fit", X, r, c); err != nil {
		return err
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m, std := stat.PopMeanStdDev(col, nil)
		if s.withMean {
			mean[j] = m
		}
		scale[j] = 1
		if s.withStd && std >= constantEpsilon {
			scale[j] = std
		}
	}

	s.mean_, s.scale_ = mean, scale
	s.state.SetFitted(c, r)
	return nil
}

// Transform standardises X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("Transform"); err != nil {
		return nil, err
	}
	return applyColumns("StandardScaler.Transform", X, len(s.mean_), func(j int, v float64) float64 {
		return (v - s.mean_[j]) / s.scale_[j]
	})
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("InverseTransform"); err != nil {
		return nil, err
	}
	return applyColumns("StandardScaler.InverseTransform", X, len(s.mean_), func(j int, v float64) float64 {
		return v*s.scale_[j] + s.mean_[j]
	})
}

// Mean returns the fitted column means (zeros when withMean is false).
func (s *StandardScaler) Mean() []float64 { return append([]float64(nil), s.mean_...) }

// Scale returns the fitted column scales.
func (s *StandardScaler) Scale() []float64 { return append([]float64(nil), s.scale_...) }

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	nFeatures, _ := s.state.GetDimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.withMean, s.withStd, nFeatures)
}

// MinMaxScaler は各列を指定した範囲（デフォルト[0,1]）に線形変換する
type MinMaxScaler struct {
	state *model.StateManager

	featureRange [2]float64

	dataMin_ []float64
	dataMax_ []float64
	scale_   []float64
}

// NewMinMaxScaler creates a scaler mapping each column onto featureRange.
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		state:        model.NewStateManager("MinMaxScaler"),
		featureRange: featureRange,
	}
}

// NewMinMaxScalerDefault はデフォルト設定([0,1]範囲)でMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit は訓練データから各列の最小値・最大値を計算する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if m.featureRange[0] >= m.featureRange[1] {
		return errors.NewValidationError("feature_range", "minimum must be smaller than maximum", m.featureRange)
	}
	if err := errors.CheckMatrix("MinMaxScaler.Fit", X, r, c); err != nil {
		return err
	}

	m.dataMin_ = make([]float64, c)
	m.dataMax_ = make([]float64, c)
	m.scale_ = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m.dataMin_[j] = floats.Min(col)
		m.dataMax_[j] = floats.Max(col)
		m.scale_[j] = m.dataMax_[j] - m.dataMin_[j]
		if m.scale_[j] < constantEpsilon {
			// 定数列はスケール1として扱う
			m.scale_[j] = 1
		}
	}
	m.state.SetFitted(c, r)
	return nil
}

// Transform scales X with the fitted minima and ranges.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("Transform"); err != nil {
		return nil, err
	}
	width := m.featureRange[1] - m.featureRange[0]
	return applyColumns("MinMaxScaler.Transform", X, len(m.scale_), func(j int, v float64) float64 {
		return (v-m.dataMin_[j])/m.scale_[j]*width + m.featureRange[0]
	})
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps scaled data back onto the original range.
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("InverseTransform"); err != nil {
		return nil, err
	}
	width := m.featureRange[1] - m.featureRange[0]
	return applyColumns("MinMaxScaler.InverseTransform", X, len(m.scale_), func(j int, v float64) float64 {
		return (v-m.featureRange[0])/width*m.scale_[j] + m.dataMin_[j]
	})
}

// GetParams はスケーラーのパラメータを取得する
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{"feature_range": m.featureRange}
}

// applyColumns returns f applied element-wise to X, checking its width first.
func applyColumns(op string, X mat.Matrix, nFeatures int, f func(j int, v float64) float64) (mat.Matrix, error) {
	r, c := X.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 { return f(j, v) }, X)
	return out, nil
}

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*MinMaxScaler)(nil)
)
