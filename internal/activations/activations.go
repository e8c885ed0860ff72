// Package activations provides the activation functions used by the network.
package activations

import (
	"github.com/chewxy/math32"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float32) float32

	// Derivative computes f'(x) from the activated value y = f(x).
	Derivative(y float32) float32
}

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes 1 / (1 + e^-x)
func (s Sigmoid) Activate(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Derivative computes y * (1 - y) where y = sigmoid(x)
func (s Sigmoid) Derivative(y float32) float32 {
	return y * (1 - y)
}

// Prime applies a's derivative to every cell of m, which must hold outputs
// of a.
func Prime(a Activation, m *matrix.Matrix) *matrix.Matrix {
	return m.Apply(a.Derivative)
}

// SigmoidPrime returns m ⊙ (1 - m). The matrix must hold sigmoid outputs,
// not pre-activations.
func SigmoidPrime(m *matrix.Matrix) *matrix.Matrix {
	return Prime(Sigmoid{}, m)
}

// Softmax returns exp(cell) / sum(exp(all cells)). The sum runs over the
// whole matrix, so the result is only a distribution when m is a vector.
func Softmax(m *matrix.Matrix) *matrix.Matrix {
	if m.Rows() == 0 || m.Cols() == 0 {
		return m.Copy()
	}

	// Shift by the max for numerical stability
	maxVal := m.Max()
	exp := m.Apply(func(x float32) float32 { return math32.Exp(x - maxVal) })
	return exp.Scale(1 / exp.Sum())
}
