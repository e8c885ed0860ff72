package net

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// File names inside a saved network directory.
const (
	DescriptorFile    = "network"
	HiddenWeightsFile = "hidden"
	OutputWeightsFile = "output"
)

// Descriptor holds the hyperparameters needed to rebuild a network.
type Descriptor struct {
	InputSize    int
	HiddenSize   int
	OutputSize   int
	LearningRate float32
}

// Descriptor returns the network's hyperparameters.
func (n *Network) Descriptor() Descriptor {
	return Descriptor{
		InputSize:    n.inputSize,
		HiddenSize:   n.hiddenSize,
		OutputSize:   n.outputSize,
		LearningRate: n.learningRate,
	}
}

// Encode writes d as four newline-terminated lines: input size, hidden
// size, output size and learning rate.
func (d Descriptor) Encode(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d\n%d\n%d\n%s\n",
		d.InputSize, d.HiddenSize, d.OutputSize,
		strconv.FormatFloat(float64(d.LearningRate), 'g', -1, 32))
	if err != nil {
		return errors.Wrap(matrix.ErrIO, err.Error())
	}
	return nil
}

// DecodeDescriptor reads a descriptor written by Descriptor.Encode.
func DecodeDescriptor(r io.Reader) (Descriptor, error) {
	var d Descriptor
	scanner := bufio.NewScanner(r)
	next := func(field string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", errors.Wrapf(matrix.ErrIO, "read %s: %v", field, err)
			}
			return "", errors.Wrapf(matrix.ErrIO, "missing %s", field)
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	sizes := []struct {
		name string
		dst  *int
	}{
		{"input size", &d.InputSize},
		{"hidden size", &d.HiddenSize},
		{"output size", &d.OutputSize},
	}
	for _, s := range sizes {
		line, err := next(s.name)
		if err != nil {
			return Descriptor{}, err
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return Descriptor{}, errors.Wrapf(matrix.ErrParse, "%s %q", s.name, line)
		}
		*s.dst = v
	}

	line, err := next("learning rate")
	if err != nil {
		return Descriptor{}, err
	}
	lr, err := strconv.ParseFloat(line, 32)
	if err != nil {
		return Descriptor{}, errors.Wrapf(matrix.ErrParse, "learning rate %q", line)
	}
	d.LearningRate = float32(lr)
	return d, nil
}

// Save writes the descriptor and both weight matrices into dir, creating it
// if needed.
func (n *Network) Save(dir string) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(matrix.ErrIO, "create %s: %v", dir, err)
	}

	path := filepath.Join(dir, DescriptorFile)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(matrix.ErrIO, "create %s: %v", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrapf(matrix.ErrIO, "close %s: %v", path, cerr))
		}
	}()
	if err := n.Descriptor().Encode(f); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}

	if err := n.hiddenWeights.Save(filepath.Join(dir, HiddenWeightsFile)); err != nil {
		return err
	}
	return n.outputWeights.Save(filepath.Join(dir, OutputWeightsFile))
}

// Load rebuilds a network saved by Save. The network is created with fresh
// random weights which are then overwritten from the weight files.
func Load(dir string, opts ...Option) (*Network, error) {
	path := filepath.Join(dir, DescriptorFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(matrix.ErrIO, "open %s: %v", path, err)
	}
	d, err := DecodeDescriptor(f)
	f.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}

	n, err := New(d.InputSize, d.HiddenSize, d.OutputSize, d.LearningRate, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if err := n.hiddenWeights.Load(filepath.Join(dir, HiddenWeightsFile)); err != nil {
		return nil, err
	}
	if err := n.outputWeights.Load(filepath.Join(dir, OutputWeightsFile)); err != nil {
		return nil, err
	}
	return n, nil
}
