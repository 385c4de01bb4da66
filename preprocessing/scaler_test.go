package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitab/pkg/errors"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})

	s := NewStandardScalerDefault()
	out, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{2.5, 10}, s.Mean())
	assert.InDelta(t, math.Sqrt(1.25), s.Scale()[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale()[1], "constant column keeps unit scale")

	col := mat.Col(nil, 0, out)
	assert.InDelta(t, 0.0, col[0]+col[1]+col[2]+col[3], 1e-12)
	assert.Equal(t, 0.0, out.At(2, 1))

	back, err := s.InverseTransform(out)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))

	assert.Contains(t, s.String(), "n_features=2")
}

func TestStandardScalerWithoutMean(t *testing.T) {
	s := NewStandardScaler(false, true)
	require.NoError(t, s.Fit(mat.NewDense(2, 1, []float64{1, 3})))

	assert.Equal(t, []float64{0}, s.Mean())
	assert.Equal(t, []float64{1}, s.Scale())
	assert.Equal(t, map[string]interface{}{"with_mean": false, "with_std": true}, s.GetParams())
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScalerDefault()
	assert.Contains(t, s.String(), "with_mean=true")

	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	err = s.Fit(mat.NewDense(1, 2, []float64{1, math.Inf(1)}))
	var num *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &num))
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 5,
		5, 5,
		10, 5,
	})

	m := NewMinMaxScalerDefault()
	out, err := m.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.5, 1}, mat.Col(nil, 0, out))
	assert.Equal(t, []float64{0, 0, 0}, mat.Col(nil, 1, out))

	back, err := m.InverseTransform(out)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))

	wide := NewMinMaxScaler([2]float64{-1, 1})
	out, err = wide.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, mat.Col(nil, 0, out))

	var verr *errors.ValidationError
	assert.True(t, errors.As(NewMinMaxScaler([2]float64{1, 1}).Fit(X), &verr))
}
