package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitab/pkg/errors"
)

// ValidateCategorical checks a categorical training set and returns its width.
//
// X must be non-empty, have one label per row, and every row must have the
// same number of attributes as the first. Zero-width rows are allowed: such a
// dataset can only produce a majority leaf.
func ValidateCategorical(op string, X [][]string, y []string) (nFeatures int, err error) {
	if len(X) == 0 || len(y) == 0 {
		return 0, errors.NewModelError(op, "empty training set", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return 0, errors.NewDimensionError(op, len(X), len(y), 0)
	}
	nFeatures = len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return 0, errors.NewInputShapeError("training", i, nFeatures, len(row))
		}
	}
	return nFeatures, nil
}

// ValidateNumeric checks a numeric training matrix against its labels and
// rejects NaN or Inf entries.
func ValidateNumeric(op string, X mat.Matrix, y []string) (nSamples, nFeatures int, err error) {
	if X == nil || len(y) == 0 {
		return 0, 0, errors.NewModelError(op, "empty training set", errors.ErrEmptyData)
	}
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.NewModelError(op, "empty training set", errors.ErrEmptyData)
	}
	if nSamples != len(y) {
		return 0, 0, errors.NewDimensionError(op, nSamples, len(y), 0)
	}
	if err := errors.CheckMatrix(op, X, nSamples, nFeatures); err != nil {
		return 0, 0, err
	}
	return nSamples, nFeatures, nil
}
