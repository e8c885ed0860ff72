package net

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// TrainSamples trains on the first count samples in order, one update per
// sample. It stops at the first failing sample.
func (n *Network) TrainSamples(samples []dataset.Sample, count int) error {
	if err := checkCount(samples, count); err != nil {
		return err
	}

	for _, cb := range n.callbacks {
		cb.OnTrainBegin(count, n)
	}
	defer func() {
		for _, cb := range n.callbacks {
			cb.OnTrainEnd(n)
		}
	}()

	for i := 0; i < count; i++ {
		x, y, err := n.encode(samples[i])
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		l, err := n.Train(x, y)
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		for _, cb := range n.callbacks {
			cb.OnSampleEnd(i, l, n)
		}
	}
	return nil
}

// Score predicts the first count samples and returns the fraction whose
// arg-max matches the label.
func (n *Network) Score(samples []dataset.Sample, count int) (float32, error) {
	if err := checkCount(samples, count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, errors.Wrap(matrix.ErrInvalidArgument, "score needs at least one sample")
	}

	correct := 0
	for i := 0; i < count; i++ {
		predicted, err := n.Classify(samples[i].Image)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		if predicted == samples[i].Label {
			correct++
		}
		for _, cb := range n.callbacks {
			cb.OnScoreSample(i, predicted, samples[i].Label, n)
		}
	}

	accuracy := float32(correct) / float32(count)
	for _, cb := range n.callbacks {
		cb.OnScoreEnd(accuracy, n)
	}
	return accuracy, nil
}

// Classify flattens img to a column and returns the index of the most
// probable class.
func (n *Network) Classify(img *matrix.Matrix) (int, error) {
	x, err := img.Flatten(0)
	if err != nil {
		return 0, err
	}
	probs, err := n.Predict(x)
	if err != nil {
		return 0, err
	}
	return probs.Argmax()
}

// encode returns the sample's input column and one-hot target column.
func (n *Network) encode(s dataset.Sample) (x, y *matrix.Matrix, err error) {
	if s.Label < 0 || s.Label >= n.outputSize {
		return nil, nil, errors.Wrapf(matrix.ErrInvalidArgument, "label %d outside [0, %d)", s.Label, n.outputSize)
	}
	x, err = s.Image.Flatten(0)
	if err != nil {
		return nil, nil, err
	}
	y = matrix.New(n.outputSize, 1)
	y.Set(s.Label, 0, 1)
	return x, y, nil
}

func checkCount(samples []dataset.Sample, count int) error {
	if count < 0 || count > len(samples) {
		return errors.Wrapf(matrix.ErrInvalidArgument, "count %d outside [0, %d]", count, len(samples))
	}
	return nil
}
