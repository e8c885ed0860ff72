// Package config holds the knobs for a training and scoring run.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// defaultLogEvery is the progress interval used when none is configured.
const defaultLogEvery = 1000

// Config captures the runtime knobs for a run.
type Config struct {
	ModelDir        string  `yaml:"model_dir"`
	TrainPath       string  `yaml:"train_path"`
	TestPath        string  `yaml:"test_path"`
	TrainCount      int     `yaml:"train_count"`
	TestCount       int     `yaml:"test_count"`
	InputSize       int     `yaml:"input_size"`
	HiddenSize      int     `yaml:"hidden_size"`
	OutputSize      int     `yaml:"output_size"`
	LearningRate    float32 `yaml:"learning_rate"`
	ImageSide       int     `yaml:"image_side"`
	Normalize       bool    `yaml:"normalize"`
	Seed            uint64  `yaml:"seed"`
	LogEvery        int     `yaml:"log_every"`
	CheckpointEvery int     `yaml:"checkpoint_every"`
	CSVLog          string  `yaml:"csv_log"`
	Show            int     `yaml:"show"`
	Debug           bool    `yaml:"debug"`
}

// Default returns the configuration of a plain MNIST run.
func Default() *Config {
	return &Config{
		ModelDir:     "./model",
		TrainPath:    "./mnist_train.csv",
		TestPath:     "./mnist_test.csv",
		TrainCount:   50000,
		TestCount:    500,
		InputSize:    784,
		HiddenSize:   300,
		OutputSize:   10,
		LearningRate: 0.0001,
		ImageSide:    28,
		LogEvery:     defaultLogEvery,
	}
}

// Load reads a YAML file over Default and validates the result. Keys absent
// from the file keep their default values, and a log_every of zero or less
// falls back to the default interval.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = defaultLogEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.InputSize <= 0 || c.HiddenSize <= 0 || c.OutputSize <= 0 {
		return errors.Errorf("layer sizes must be > 0 (got %d/%d/%d)", c.InputSize, c.HiddenSize, c.OutputSize)
	}
	if !(c.LearningRate > 0) {
		return errors.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.ImageSide <= 0 {
		return errors.Errorf("image_side must be > 0 (got %d)", c.ImageSide)
	}
	if c.ImageSide*c.ImageSide != c.InputSize {
		return errors.Errorf("image_side %d gives %d pixels, input_size is %d", c.ImageSide, c.ImageSide*c.ImageSide, c.InputSize)
	}
	if c.TrainCount < 0 || c.TestCount < 0 {
		return errors.Errorf("sample counts must be >= 0 (got train %d, test %d)", c.TrainCount, c.TestCount)
	}
	if c.TrainPath == "" && c.TestPath == "" {
		return errors.New("at least one of train_path and test_path must be set")
	}
	if c.LogEvery <= 0 {
		return errors.Errorf("log_every must be > 0 (got %d)", c.LogEvery)
	}
	if c.CheckpointEvery < 0 {
		return errors.Errorf("checkpoint_every must be >= 0 (got %d)", c.CheckpointEvery)
	}
	if c.Show < 0 {
		return errors.Errorf("show must be >= 0 (got %d)", c.Show)
	}
	return nil
}
