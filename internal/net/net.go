// Package net provides a feedforward network with a single hidden layer,
// trained one sample at a time by gradient descent.
package net

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/loss"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Network is an input→hidden→output network with sigmoid activations.
// It is not safe for concurrent use.
type Network struct {
	inputSize    int
	hiddenSize   int
	outputSize   int
	learningRate float32

	// hiddenWeights is hidden×input, outputWeights is output×hidden.
	hiddenWeights *matrix.Matrix
	outputWeights *matrix.Matrix

	act       activations.Activation
	loss      loss.Loss
	src       rand.Source
	callbacks []Callback
}

// Option configures a Network.
type Option func(*Network)

// WithSource sets the random source used to initialize weights.
func WithSource(src rand.Source) Option {
	return func(n *Network) { n.src = src }
}

// WithCallbacks registers progress callbacks fired by TrainSamples and Score.
func WithCallbacks(cbs ...Callback) Option {
	return func(n *Network) { n.callbacks = append(n.callbacks, cbs...) }
}

// New creates a network with randomly initialized weights. Each weight
// matrix is drawn from [-1/sqrt(fanIn), 1/sqrt(fanIn)].
func New(input, hidden, output int, learningRate float32, opts ...Option) (*Network, error) {
	if input <= 0 || hidden <= 0 || output <= 0 {
		return nil, errors.Wrapf(matrix.ErrInvalidArgument, "layer sizes %d-%d-%d must be positive", input, hidden, output)
	}
	if !(learningRate > 0) {
		return nil, errors.Wrapf(matrix.ErrInvalidArgument, "learning rate %v must be positive", learningRate)
	}

	n := &Network{
		inputSize:     input,
		hiddenSize:    hidden,
		outputSize:    output,
		learningRate:  learningRate,
		hiddenWeights: matrix.New(hidden, input),
		outputWeights: matrix.New(output, hidden),
		act:           activations.Sigmoid{},
		loss:          loss.MSE{},
	}
	for _, opt := range opts {
		opt(n)
	}

	if err := n.hiddenWeights.Randomize(input, n.src); err != nil {
		return nil, err
	}
	if err := n.outputWeights.Randomize(hidden, n.src); err != nil {
		return nil, err
	}
	return n, nil
}

// InputSize returns the number of inputs.
func (n *Network) InputSize() int { return n.inputSize }

// HiddenSize returns the number of hidden units.
func (n *Network) HiddenSize() int { return n.hiddenSize }

// OutputSize returns the number of outputs.
func (n *Network) OutputSize() int { return n.outputSize }

// LearningRate returns the gradient descent step size.
func (n *Network) LearningRate() float32 { return n.learningRate }

// HiddenWeights returns a copy of the hidden×input weight matrix.
func (n *Network) HiddenWeights() *matrix.Matrix { return n.hiddenWeights.Copy() }

// OutputWeights returns a copy of the output×hidden weight matrix.
func (n *Network) OutputWeights() *matrix.Matrix { return n.outputWeights.Copy() }

// SetWeights replaces both weight matrices with copies of hidden and output.
func (n *Network) SetWeights(hidden, output *matrix.Matrix) error {
	if hidden.Rows() != n.hiddenSize || hidden.Cols() != n.inputSize {
		return errors.Wrapf(matrix.ErrShapeMismatch, "hidden weights %dx%d, want %dx%d",
			hidden.Rows(), hidden.Cols(), n.hiddenSize, n.inputSize)
	}
	if output.Rows() != n.outputSize || output.Cols() != n.hiddenSize {
		return errors.Wrapf(matrix.ErrShapeMismatch, "output weights %dx%d, want %dx%d",
			output.Rows(), output.Cols(), n.outputSize, n.hiddenSize)
	}
	n.hiddenWeights = hidden.Copy()
	n.outputWeights = output.Copy()
	return nil
}

// Forward runs x (input×1) through both layers and returns the activated
// hidden and output columns.
func (n *Network) Forward(x *matrix.Matrix) (hiddenOut, outputOut *matrix.Matrix, err error) {
	hiddenIn, err := matrix.Dot(n.hiddenWeights, x)
	if err != nil {
		return nil, nil, errors.Wrap(err, "hidden layer")
	}
	hiddenOut = hiddenIn.Apply(n.act.Activate)

	outputIn, err := matrix.Dot(n.outputWeights, hiddenOut)
	if err != nil {
		return nil, nil, errors.Wrap(err, "output layer")
	}
	outputOut = outputIn.Apply(n.act.Activate)
	return hiddenOut, outputOut, nil
}

// Predict returns the softmax of the network's output for x.
func (n *Network) Predict(x *matrix.Matrix) (*matrix.Matrix, error) {
	_, out, err := n.Forward(x)
	if err != nil {
		return nil, err
	}
	return activations.Softmax(out), nil
}

// Train performs one gradient descent step on a single sample: x is the
// input column and y the one-hot target column. It returns the sample's loss
// before the update. On error the weights are left unchanged.
func (n *Network) Train(x, y *matrix.Matrix) (float32, error) {
	hiddenOut, outputOut, err := n.Forward(x)
	if err != nil {
		return 0, err
	}

	outputErr, err := matrix.Subtract(y, outputOut)
	if err != nil {
		return 0, errors.Wrap(err, "output error")
	}
	// Uses the output weights from before this step.
	hiddenErr, err := matrix.Dot(n.outputWeights.T(), outputErr)
	if err != nil {
		return 0, errors.Wrap(err, "hidden error")
	}

	outputDelta, err := n.delta(outputErr, outputOut, hiddenOut)
	if err != nil {
		return 0, errors.Wrap(err, "output delta")
	}
	hiddenDelta, err := n.delta(hiddenErr, hiddenOut, x)
	if err != nil {
		return 0, errors.Wrap(err, "hidden delta")
	}

	newOutput, err := matrix.Add(n.outputWeights, outputDelta)
	if err != nil {
		return 0, err
	}
	newHidden, err := matrix.Add(n.hiddenWeights, hiddenDelta)
	if err != nil {
		return 0, err
	}

	l, err := n.loss.Forward(outputOut, y)
	if err != nil {
		return 0, err
	}

	n.outputWeights = newOutput
	n.hiddenWeights = newHidden
	return l, nil
}

// delta computes learningRate * ((layerErr ⊙ act'(out)) · inᵀ).
func (n *Network) delta(layerErr, out, in *matrix.Matrix) (*matrix.Matrix, error) {
	grad, err := matrix.Multiply(layerErr, activations.Prime(n.act, out))
	if err != nil {
		return nil, err
	}
	d, err := matrix.Dot(grad, in.T())
	if err != nil {
		return nil, err
	}
	return d.Scale(n.learningRate), nil
}

// Summary writes the network's shape and learning rate.
func (n *Network) Summary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "input: %d\nhidden: %d\noutput: %d\nlearning rate: %v\n",
		n.inputSize, n.hiddenSize, n.outputSize, n.learningRate)
	return err
}
