package net

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/logging"
	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

func trainingSet(t *testing.T, size int) []dataset.Sample {
	t.Helper()
	samples := make([]dataset.Sample, size)
	for i := range samples {
		img := matrix.New(2, 2)
		img.Set(i%2, 0, 1)
		samples[i] = dataset.Sample{Label: i % 2, Image: img}
	}
	return samples
}

func TestLoggerCallback(t *testing.T) {
	log, logs := logging.NewObservedTestLogger(t)
	n := newTestNetwork(t, 4, 3, 2, 0.1)
	n.callbacks = append(n.callbacks, NewLogger(log, 5))

	samples := trainingSet(t, 10)
	require.NoError(t, n.TrainSamples(samples, 10))
	_, err := n.Score(samples, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("training started").Len())
	assert.Equal(t, 2, logs.FilterMessage("training").Len(), "samples 0 and 5")
	assert.Equal(t, 2, logs.FilterMessage("scoring").Len())

	finished := logs.FilterMessage("training finished").All()
	require.Len(t, finished, 1)
	assert.EqualValues(t, 10, finished[0].ContextMap()["samples"])

	require.Equal(t, 1, logs.FilterMessage("scoring finished").Len())
}

func TestCSVLogger(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "progress.csv")
	log, _ := logging.NewObservedTestLogger(t)
	n := newTestNetwork(t, 4, 3, 2, 0.1)
	n.callbacks = append(n.callbacks, NewCSVLogger(filename, false, 2, log))

	require.NoError(t, n.TrainSamples(trainingSet(t, 5), 5))

	file, err := os.Open(filename)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header + samples 0, 2, 4")
	assert.Equal(t, []string{"sample", "loss", "time_seconds"}, records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "4", records[3][0])
}

func TestCSVLoggerAppend(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "progress.csv")
	log, _ := logging.NewObservedTestLogger(t)
	n := newTestNetwork(t, 4, 3, 2, 0.1)
	n.callbacks = append(n.callbacks, NewCSVLogger(filename, true, 1, log))

	require.NoError(t, n.TrainSamples(trainingSet(t, 2), 2))
	require.NoError(t, n.TrainSamples(trainingSet(t, 2), 2))

	file, err := os.Open(filename)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 5, "one header + four samples")
}

func TestCheckpoint(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	log, logs := logging.NewObservedTestLogger(t)
	n := newTestNetwork(t, 4, 3, 2, 0.1)
	n.callbacks = append(n.callbacks, NewCheckpoint(dir, 3, log))

	require.NoError(t, n.TrainSamples(trainingSet(t, 7), 7))
	assert.Equal(t, 3, logs.FilterMessage("checkpoint saved").Len(), "after 3, 6 and at the end")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, matrix.EqualApprox(n.OutputWeights(), loaded.OutputWeights(), 1e-7))
}
