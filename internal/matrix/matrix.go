// Package matrix provides a dense float32 matrix, the only numeric primitive
// used by the network.
package matrix

import (
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Matrix is a dense rows×cols table of float32 stored in row-major order.
// The shape is fixed at creation; operations that change it return a new
// Matrix.
type Matrix struct {
	rows int
	cols int
	data []float32
}

// New returns an all-zero matrix of the given shape. Zero-sized shapes are
// legal. Negative dimensions panic.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: negative dimensions %dx%d", rows, cols))
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

// NewFromRows builds a matrix from a rectangular table. Every row must have
// the same length.
func NewFromRows(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has %d columns, want %d", i, len(row), cols)
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// NewColumn returns a len(values)×1 column vector.
func NewColumn(values ...float32) *Matrix {
	m := New(len(values), 1)
	copy(m.data, values)
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the cell at row i, column j.
func (m *Matrix) At(i, j int) float32 {
	return m.data[m.index(i, j)]
}

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float32) {
	m.data[m.index(i, j)] = v
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float32 {
	row := make([]float32, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row
}

func (m *Matrix) index(i, j int) int {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range for %dx%d", i, j, m.rows, m.cols))
	}
	return i*m.cols + j
}

// SameShape reports whether a and b have identical dimensions.
func SameShape(a, b *Matrix) bool {
	return a.rows == b.rows && a.cols == b.cols
}

// Fill sets every cell to value.
func (m *Matrix) Fill(value float32) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Copy returns a deep copy of m.
func (m *Matrix) Copy() *Matrix {
	c := New(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

// Add returns a + b.
func Add(a, b *Matrix) (*Matrix, error) {
	return elementwise("add", a, b, func(x, y float32) float32 { return x + y })
}

// Subtract returns a - b.
func Subtract(a, b *Matrix) (*Matrix, error) {
	return elementwise("subtract", a, b, func(x, y float32) float32 { return x - y })
}

// Multiply returns the Hadamard product a ⊙ b.
func Multiply(a, b *Matrix) (*Matrix, error) {
	return elementwise("multiply", a, b, func(x, y float32) float32 { return x * y })
}

func elementwise(op string, a, b *Matrix, f func(x, y float32) float32) (*Matrix, error) {
	if !SameShape(a, b) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s %dx%d and %dx%d", op, a.rows, a.cols, b.rows, b.cols)
	}
	out := New(a.rows, a.cols)
	for i := range out.data {
		out.data[i] = f(a.data[i], b.data[i])
	}
	return out, nil
}

// Dot returns the matrix product a·b of shape a.rows×b.cols.
func Dot(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, errors.Wrapf(ErrShapeMismatch, "dot %dx%d and %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := New(a.rows, b.cols)
	// i-k-j order walks both b and out along rows.
	for i := 0; i < a.rows; i++ {
		outRow := out.data[i*out.cols : (i+1)*out.cols]
		for k := 0; k < a.cols; k++ {
			v := a.data[i*a.cols+k]
			bRow := b.data[k*b.cols : (k+1)*b.cols]
			for j, bv := range bRow {
				outRow[j] += v * bv
			}
		}
	}
	return out, nil
}

// Scale returns m with every cell multiplied by n.
func (m *Matrix) Scale(n float32) *Matrix {
	return m.Apply(func(x float32) float32 { return x * n })
}

// AddScalar returns m with n added to every cell.
func (m *Matrix) AddScalar(n float32) *Matrix {
	return m.Apply(func(x float32) float32 { return x + n })
}

// T returns the transpose of m.
func (m *Matrix) T() *Matrix {
	out := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*out.cols+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Apply returns a new matrix with f applied to every cell.
func (m *Matrix) Apply(f func(float32) float32) *Matrix {
	out := New(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i] = f(v)
	}
	return out
}

// Flatten reshapes m in row-major order. Axis 0 yields a column vector,
// axis 1 a row vector.
func (m *Matrix) Flatten(axis int) (*Matrix, error) {
	n := m.rows * m.cols
	var out *Matrix
	switch axis {
	case 0:
		out = New(n, 1)
	case 1:
		out = New(1, n)
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "flatten axis %d, must be 0 or 1", axis)
	}
	copy(out.data, m.data)
	return out, nil
}

// Argmax returns the row index of the largest value in a single-column
// matrix. The running maximum starts at zero with index 0 and only a strictly
// greater value replaces it, so ties keep the lowest index and a column with
// no positive value yields 0.
func (m *Matrix) Argmax() (int, error) {
	if m.cols != 1 {
		return 0, errors.Wrapf(ErrShapeMismatch, "argmax needs a single column, got %dx%d", m.rows, m.cols)
	}
	var best float32
	idx := 0
	for i, v := range m.data {
		if v > best {
			best = v
			idx = i
		}
	}
	return idx, nil
}

// Sum returns the sum of every cell.
func (m *Matrix) Sum() float32 {
	var s float32
	for _, v := range m.data {
		s += v
	}
	return s
}

// Max returns the largest cell. It returns -Inf for an empty matrix.
func (m *Matrix) Max() float32 {
	best := math32.Inf(-1)
	for _, v := range m.data {
		if v > best {
			best = v
		}
	}
	return best
}

// Equal reports whether a and b have the same shape and identical cells.
func Equal(a, b *Matrix) bool {
	return EqualApprox(a, b, 0)
}

// EqualApprox reports whether a and b have the same shape and every pair of
// cells differs by at most tol.
func EqualApprox(a, b *Matrix, tol float32) bool {
	if !SameShape(a, b) {
		return false
	}
	for i := range a.data {
		if math32.Abs(a.data[i]-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// String renders m one row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	_ = m.Encode(&sb)
	return sb.String()
}

// Print draws m as a picture: non-zero cells as ◼ and zero cells as blanks.
// Columns are drawn as lines, so a row-major image appears transposed.
func (m *Matrix) Print(w io.Writer) error {
	var sb strings.Builder
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			if m.data[i*m.cols+j] == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteString("◼")
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
