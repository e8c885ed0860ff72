package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

// writeDigits writes a CSV of 2x2 images where label 0 lights the top row
// and label 1 the bottom row.
func writeDigits(t *testing.T, path string, rows int) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("label,p0,p1,p2,p3\n")
	for i := 0; i < rows; i++ {
		if i%2 == 0 {
			sb.WriteString("0,255,255,0,0\n")
		} else {
			sb.WriteString("1,0,0,255,255\n")
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
}

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run(append([]string{"digitnet"}, args...)))
	return out.String()
}

func TestRunTrainAndScore(t *testing.T) {
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	modelDir := filepath.Join(dir, "model")
	csvLog := filepath.Join(dir, "loss.csv")
	writeDigits(t, trainPath, 400)
	writeDigits(t, testPath, 10)

	args := []string{
		"--model", modelDir,
		"--train", trainPath,
		"--test", testPath,
		"--train-count", "400",
		"--test-count", "10",
		"--input", "4",
		"--hidden", "6",
		"--output", "2",
		"--side", "2",
		"--learning-rate", "0.5",
		"--normalize",
		"--seed", "42",
		"--log-every", "100",
		"--csv-log", csvLog,
	}
	out := runApp(t, args...)

	assert.Contains(t, out, "input: 4\nhidden: 6\noutput: 2\n")
	assert.Contains(t, out, "Score: ")
	assert.FileExists(t, filepath.Join(modelDir, net.DescriptorFile))
	assert.FileExists(t, csvLog)

	// A second run scores the saved network without training.
	saved, err := net.Load(modelDir)
	require.NoError(t, err)
	want, err := saved.Score(mustLoad(t, testPath), 10)
	require.NoError(t, err)

	out = runApp(t, "--model", modelDir, "--test", testPath, "--test-count", "10",
		"--train-count", "0", "--input", "4", "--side", "2", "--output", "2", "--normalize", "--show", "1")
	assert.Contains(t, out, fmt.Sprintf("Score: %v\n", want))
	assert.Contains(t, out, "label 0, predicted ")
	assert.Contains(t, out, "◼")
}

func TestRunInvalidConfig(t *testing.T) {
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"digitnet", "--hidden", "0"})
	require.Error(t, err)

	err = app.Run([]string{"digitnet", "--side", "5"})
	require.Error(t, err)
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	testPath := filepath.Join(dir, "test.csv")
	writeDigits(t, testPath, 4)

	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
model_dir: ""
train_count: 0
test_path: %q
test_count: 4
input_size: 4
hidden_size: 3
output_size: 2
image_side: 2
seed: 1
show: 1
`, testPath)), 0o644))

	out := runApp(t, "--config", cfgPath)
	assert.Contains(t, out, "hidden: 3\n")
	assert.Contains(t, out, "Score: ")
	assert.Equal(t, 1, strings.Count(out, "label "), "show comes from the file")

	out = runApp(t, "--config", cfgPath, "--show", "0")
	assert.NotContains(t, out, "label ", "flags override the file")
}

func mustLoad(t *testing.T, path string) []dataset.Sample {
	t.Helper()
	samples, err := dataset.LoadCSV(path, 2, 10)
	require.NoError(t, err)
	dataset.Normalize(samples, maxPixel)
	return samples
}
