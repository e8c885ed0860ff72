// Package activations provides unit tests for activation functions.
package activations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// TestSigmoid tests Sigmoid activation.
func TestSigmoid(t *testing.T) {
	sigmoid := Sigmoid{}

	tests := []struct {
		input    float32
		expected float32
	}{
		{float32(math.Inf(-1)), 0.0}, // -inf -> 0
		{-2.0, float32(1 / (1 + math.Exp(2)))},
		{-1.0, float32(1 / (1 + math.Exp(1)))},
		{0.0, 0.5}, // Zero -> 0.5
		{1.0, float32(1 / (1 + math.Exp(-1)))},
		{2.0, float32(1 / (1 + math.Exp(-2)))},
		{float32(math.Inf(1)), 1.0}, // +inf -> 1
	}

	for _, tt := range tests {
		output := sigmoid.Activate(tt.input)
		if float32(math.Abs(float64(output-tt.expected))) > 1e-6 {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

// TestSigmoidDerivative tests Sigmoid derivative in terms of its output.
func TestSigmoidDerivative(t *testing.T) {
	sigmoid := Sigmoid{}

	tests := []struct {
		output   float32
		expected float32
	}{
		{0.5, 0.25},
		{0.0, 0.0},
		{1.0, 0.0},
		{0.9, 0.09},
	}

	for _, tt := range tests {
		got := sigmoid.Derivative(tt.output)
		if float32(math.Abs(float64(got-tt.expected))) > 1e-6 {
			t.Errorf("Sigmoid.Derivative(%v) = %v, want %v", tt.output, got, tt.expected)
		}
	}
}

// TestSigmoidPrime tests the matrix derivative at the midpoint.
func TestSigmoidPrime(t *testing.T) {
	m := matrix.New(3, 2)
	m.Fill(0.5)

	got := SigmoidPrime(m)
	want := matrix.New(3, 2)
	want.Fill(0.25)

	assert.True(t, matrix.Equal(got, want), "got %v", got)
	assert.Equal(t, float32(0.5), m.At(0, 0), "input must not be mutated")
}

// TestSigmoidPrimeMatchesActivation tests that applying SigmoidPrime to
// sigmoid outputs matches the analytic derivative.
func TestSigmoidPrimeMatchesActivation(t *testing.T) {
	pre := matrix.NewColumn(-3, -0.5, 0, 0.5, 3)
	out := pre.Apply(Sigmoid{}.Activate)
	got := SigmoidPrime(out)

	for i := 0; i < pre.Rows(); i++ {
		s := 1 / (1 + math.Exp(-float64(pre.At(i, 0))))
		want := s * (1 - s)
		assert.InDelta(t, want, float64(got.At(i, 0)), 1e-6)
	}
}

// TestPrime tests that Prime applies the derivative of any Activation value.
func TestPrime(t *testing.T) {
	var act Activation = Sigmoid{}
	m := matrix.NewColumn(0.5, 0.9, 0)

	got := Prime(act, m)
	assert.True(t, matrix.Equal(got, SigmoidPrime(m)))
	assert.InDelta(t, 0.09, float64(got.At(1, 0)), 1e-6)
}

// TestSoftmax tests normalization over the whole matrix.
func TestSoftmax(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float32
	}{
		{"column", [][]float32{{1}, {2}, {3}}},
		{"row", [][]float32{{0.5, -1, 2, 0}}},
		{"square", [][]float32{{1, 2}, {3, 4}}},
		{"large", [][]float32{{100}, {101}, {99}}},
		{"equal", [][]float32{{7}, {7}, {7}, {7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := matrix.NewFromRows(tt.rows)
			require.NoError(t, err)

			got := Softmax(m)
			require.Equal(t, m.Rows(), got.Rows())
			require.Equal(t, m.Cols(), got.Cols())

			cells := make([]float64, 0, m.Rows()*m.Cols())
			for i := 0; i < got.Rows(); i++ {
				for j := 0; j < got.Cols(); j++ {
					v := got.At(i, j)
					assert.Greater(t, v, float32(0))
					assert.Less(t, v, float32(1))
					cells = append(cells, float64(v))
				}
			}
			assert.InDelta(t, 1.0, floats.Sum(cells), 1e-5)
		})
	}
}

// TestSoftmaxValues tests against the closed form.
func TestSoftmaxValues(t *testing.T) {
	got := Softmax(matrix.NewColumn(1, 2, 3))

	total := math.Exp(1) + math.Exp(2) + math.Exp(3)
	for i, x := range []float64{1, 2, 3} {
		assert.InDelta(t, math.Exp(x)/total, float64(got.At(i, 0)), 1e-6)
	}
}

// TestSoftmaxPreservesOrder tests that softmax keeps the arg-max.
func TestSoftmaxPreservesOrder(t *testing.T) {
	m := matrix.NewColumn(0.1, 0.9, 0.2)

	before, err := m.Argmax()
	require.NoError(t, err)
	after, err := Softmax(m).Argmax()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestSoftmaxEmpty tests the degenerate shape.
func TestSoftmaxEmpty(t *testing.T) {
	got := Softmax(matrix.New(0, 1))
	assert.Equal(t, 0, got.Rows())
}
