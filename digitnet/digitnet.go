// Package digitnet re-exports the matrix, network and dataset types so
// callers outside this module can train and score digit classifiers.
package digitnet

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/loss"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

// Re-export common types for easier access
type (
	Matrix     = matrix.Matrix
	Network    = net.Network
	Descriptor = net.Descriptor
	Option     = net.Option
	Callback   = net.Callback
	Sample     = dataset.Sample
	Loss       = loss.Loss
)

// Errors
var (
	ErrShapeMismatch   = matrix.ErrShapeMismatch
	ErrInvalidArgument = matrix.ErrInvalidArgument
	ErrIO              = matrix.ErrIO
	ErrParse           = matrix.ErrParse
)

// Matrices
func NewMatrix(rows, cols int) *Matrix {
	return matrix.New(rows, cols)
}

func NewMatrixFromRows(rows [][]float32) (*Matrix, error) {
	return matrix.NewFromRows(rows)
}

func NewColumn(values ...float32) *Matrix {
	return matrix.NewColumn(values...)
}

func Dot(a, b *Matrix) (*Matrix, error) {
	return matrix.Dot(a, b)
}

// Activations
var Sigmoid = activations.Sigmoid{}

func SigmoidPrime(m *Matrix) *Matrix {
	return activations.SigmoidPrime(m)
}

func Softmax(m *Matrix) *Matrix {
	return activations.Softmax(m)
}

// Losses
var (
	MSE          = loss.MSE{}
	CrossEntropy = loss.CrossEntropy{}
)

// Network creation
func New(input, hidden, output int, learningRate float32, opts ...Option) (*Network, error) {
	return net.New(input, hidden, output, learningRate, opts...)
}

func WithSource(src rand.Source) Option {
	return net.WithSource(src)
}

func WithCallbacks(cbs ...Callback) Option {
	return net.WithCallbacks(cbs...)
}

// Callbacks
func Logger(log *zap.SugaredLogger, interval int) Callback {
	return net.NewLogger(log, interval)
}

func CSVLogger(filename string, append bool, interval int, log *zap.SugaredLogger) Callback {
	return net.NewCSVLogger(filename, append, interval, log)
}

func Checkpoint(dir string, interval int, log *zap.SugaredLogger) Callback {
	return net.NewCheckpoint(dir, interval, log)
}

// Datasets
func LoadCSV(path string, side, limit int) ([]Sample, error) {
	return dataset.LoadCSV(path, side, limit)
}

func Normalize(samples []Sample, maxValue float32) {
	dataset.Normalize(samples, maxValue)
}

// Model Persistence
func Load(dir string, opts ...Option) (*Network, error) {
	return net.Load(dir, opts...)
}
