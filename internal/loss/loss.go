// Package loss provides loss functions used to report training progress.
// The network's weight update does not go through them.
package loss

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Loss measures how far a prediction is from its target.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue *matrix.Matrix) (float32, error)
}

func checkShape(name string, yPred, yTrue *matrix.Matrix) error {
	if !matrix.SameShape(yPred, yTrue) {
		return errors.Wrapf(matrix.ErrShapeMismatch, "%s: prediction %dx%d, target %dx%d",
			name, yPred.Rows(), yPred.Cols(), yTrue.Rows(), yTrue.Cols())
	}
	return nil
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue *matrix.Matrix) (float32, error) {
	if err := checkShape("MSE", yPred, yTrue); err != nil {
		return 0, err
	}
	n := yPred.Rows() * yPred.Cols()
	if n == 0 {
		return 0, nil
	}

	diff, err := matrix.Subtract(yPred, yTrue)
	if err != nil {
		return 0, err
	}
	sq, err := matrix.Multiply(diff, diff)
	if err != nil {
		return 0, err
	}
	return sq.Sum() / float32(n), nil
}

// CrossEntropy loss for classification over a probability vector.
type CrossEntropy struct{}

// Forward computes cross entropy: -sum(y_true * log(y_pred + eps)) / n
func (c CrossEntropy) Forward(yPred, yTrue *matrix.Matrix) (float32, error) {
	if err := checkShape("CrossEntropy", yPred, yTrue); err != nil {
		return 0, err
	}
	n := yPred.Rows() * yPred.Cols()
	if n == 0 {
		return 0, nil
	}

	const eps = 1e-10
	var sum float32
	for i := 0; i < yPred.Rows(); i++ {
		for j := 0; j < yPred.Cols(); j++ {
			// Clip prediction to avoid log(0)
			pred := yPred.At(i, j)
			if pred < eps {
				pred = eps
			}
			sum -= yTrue.At(i, j) * math32.Log(pred)
		}
	}
	return sum / float32(n), nil
}
