// Package main trains a digit classifier on a labeled CSV and scores it on a
// second one.
package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/logging"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

const (
	// Flags.
	flagConfig          = "config"
	flagModel           = "model"
	flagTrain           = "train"
	flagTest            = "test"
	flagTrainCount      = "train-count"
	flagTestCount       = "test-count"
	flagInput           = "input"
	flagHidden          = "hidden"
	flagOutput          = "output"
	flagLearningRate    = "learning-rate"
	flagSide            = "side"
	flagNormalize       = "normalize"
	flagSeed            = "seed"
	flagLogEvery        = "log-every"
	flagCheckpointEvery = "checkpoint-every"
	flagCSVLog          = "csv-log"
	flagShow            = "show"
	flagDebug           = "debug"

	// Largest pixel value in the MNIST CSV exports.
	maxPixel = 255
)

var app = &cli.App{
	Name:  "digitnet",
	Usage: "train and score a one-hidden-layer digit classifier",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load run configuration from YAML `FILE`",
			EnvVars: []string{"DIGITNET_CONFIG"},
		},
		&cli.StringFlag{
			Name:    flagModel,
			Usage:   "network `DIR`, loaded when present and saved after training",
			EnvVars: []string{"DIGITNET_MODEL"},
		},
		&cli.StringFlag{
			Name:    flagTrain,
			Usage:   "training CSV `FILE`",
			EnvVars: []string{"DIGITNET_TRAIN"},
		},
		&cli.StringFlag{
			Name:    flagTest,
			Usage:   "test CSV `FILE`",
			EnvVars: []string{"DIGITNET_TEST"},
		},
		&cli.IntFlag{Name: flagTrainCount, Usage: "training samples to use, 0 skips training"},
		&cli.IntFlag{Name: flagTestCount, Usage: "test samples to score, 0 skips scoring"},
		&cli.IntFlag{Name: flagInput, Usage: "input layer size"},
		&cli.IntFlag{Name: flagHidden, Usage: "hidden layer size"},
		&cli.IntFlag{Name: flagOutput, Usage: "output layer size"},
		&cli.Float64Flag{Name: flagLearningRate, Usage: "learning rate"},
		&cli.IntFlag{Name: flagSide, Usage: "image side in pixels"},
		&cli.BoolFlag{Name: flagNormalize, Usage: "scale pixels from [0, 255] into [0, 1]"},
		&cli.Uint64Flag{Name: flagSeed, Usage: "weight initialization seed, 0 picks a random one"},
		&cli.IntFlag{Name: flagLogEvery, Usage: "log progress every `N` samples"},
		&cli.IntFlag{Name: flagCheckpointEvery, Usage: "save the network every `N` samples, 0 disables"},
		&cli.StringFlag{Name: flagCSVLog, Usage: "write per-sample loss to CSV `FILE`"},
		&cli.IntFlag{Name: flagShow, Usage: "print the first `N` test images with their predictions"},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
			EnvVars: []string{"DIGITNET_DEBUG"},
		},
	},
	Action: runAction,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the run configuration from defaults, the optional YAML
// file and any flags set on the command line, in that order.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(flagModel) {
		cfg.ModelDir = c.String(flagModel)
	}
	if c.IsSet(flagTrain) {
		cfg.TrainPath = c.String(flagTrain)
	}
	if c.IsSet(flagTest) {
		cfg.TestPath = c.String(flagTest)
	}
	if c.IsSet(flagTrainCount) {
		cfg.TrainCount = c.Int(flagTrainCount)
	}
	if c.IsSet(flagTestCount) {
		cfg.TestCount = c.Int(flagTestCount)
	}
	if c.IsSet(flagInput) {
		cfg.InputSize = c.Int(flagInput)
	}
	if c.IsSet(flagHidden) {
		cfg.HiddenSize = c.Int(flagHidden)
	}
	if c.IsSet(flagOutput) {
		cfg.OutputSize = c.Int(flagOutput)
	}
	if c.IsSet(flagLearningRate) {
		cfg.LearningRate = float32(c.Float64(flagLearningRate))
	}
	if c.IsSet(flagSide) {
		cfg.ImageSide = c.Int(flagSide)
	}
	if c.IsSet(flagNormalize) {
		cfg.Normalize = c.Bool(flagNormalize)
	}
	if c.IsSet(flagSeed) {
		cfg.Seed = c.Uint64(flagSeed)
	}
	if c.IsSet(flagLogEvery) {
		cfg.LogEvery = c.Int(flagLogEvery)
	}
	if c.IsSet(flagCheckpointEvery) {
		cfg.CheckpointEvery = c.Int(flagCheckpointEvery)
	}
	if c.IsSet(flagCSVLog) {
		cfg.CSVLog = c.String(flagCSVLog)
	}
	if c.IsSet(flagShow) {
		cfg.Show = c.Int(flagShow)
	}
	if c.IsSet(flagDebug) {
		cfg.Debug = c.Bool(flagDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger("digitnet", cfg.Debug)
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer logger.Sync() //nolint:errcheck

	n, err := openNetwork(cfg, logger)
	if err != nil {
		return err
	}
	if err := n.Summary(c.App.Writer); err != nil {
		return err
	}

	if cfg.TrainCount > 0 && cfg.TrainPath != "" {
		if err := train(cfg, n, logger); err != nil {
			return err
		}
	}

	if cfg.TestCount > 0 && cfg.TestPath != "" {
		acc, err := score(c.App.Writer, cfg, n, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Score: %v\n", acc)
	}
	return nil
}

// openNetwork loads the network saved in cfg.ModelDir, or creates a new one
// when the directory holds no descriptor.
func openNetwork(cfg *config.Config, logger *zap.SugaredLogger) (*net.Network, error) {
	callbacks := []net.Callback{net.NewLogger(logger, cfg.LogEvery)}
	if cfg.CSVLog != "" {
		callbacks = append(callbacks, net.NewCSVLogger(cfg.CSVLog, false, cfg.LogEvery, logger))
	}
	if cfg.CheckpointEvery > 0 && cfg.ModelDir != "" {
		callbacks = append(callbacks, net.NewCheckpoint(cfg.ModelDir, cfg.CheckpointEvery, logger))
	}

	opts := []net.Option{net.WithCallbacks(callbacks...)}
	if cfg.Seed != 0 {
		opts = append(opts, net.WithSource(rand.NewPCG(cfg.Seed, cfg.Seed)))
	}

	if cfg.ModelDir != "" {
		if _, err := os.Stat(filepath.Join(cfg.ModelDir, net.DescriptorFile)); err == nil {
			logger.Infow("loading network", "dir", cfg.ModelDir)
			return net.Load(cfg.ModelDir, opts...)
		}
	}

	logger.Infow("creating network",
		"input", cfg.InputSize,
		"hidden", cfg.HiddenSize,
		"output", cfg.OutputSize,
		"learning_rate", cfg.LearningRate)
	return net.New(cfg.InputSize, cfg.HiddenSize, cfg.OutputSize, cfg.LearningRate, opts...)
}

func loadSamples(cfg *config.Config, path string, limit int, logger *zap.SugaredLogger) ([]dataset.Sample, error) {
	logger.Infow("loading samples", "file", path, "limit", limit)
	samples, err := dataset.LoadCSV(path, cfg.ImageSide, limit)
	if err != nil {
		return nil, err
	}
	if cfg.Normalize {
		dataset.Normalize(samples, maxPixel)
	}
	return samples, nil
}

func train(cfg *config.Config, n *net.Network, logger *zap.SugaredLogger) error {
	samples, err := loadSamples(cfg, cfg.TrainPath, cfg.TrainCount, logger)
	if err != nil {
		return err
	}
	if err := n.TrainSamples(samples, cfg.TrainCount); err != nil {
		return errors.Wrap(err, "train")
	}
	if cfg.ModelDir == "" {
		return nil
	}
	if err := n.Save(cfg.ModelDir); err != nil {
		return errors.Wrap(err, "save network")
	}
	logger.Infow("network saved", "dir", cfg.ModelDir)
	return nil
}

func score(w io.Writer, cfg *config.Config, n *net.Network, logger *zap.SugaredLogger) (float32, error) {
	samples, err := loadSamples(cfg, cfg.TestPath, cfg.TestCount, logger)
	if err != nil {
		return 0, err
	}

	for i := 0; i < cfg.Show && i < len(samples); i++ {
		predicted, err := n.Classify(samples[i].Image)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(w, "label %d, predicted %d\n", samples[i].Label, predicted)
		if err := samples[i].Image.Print(w); err != nil {
			return 0, err
		}
	}

	acc, err := n.Score(samples, cfg.TestCount)
	if err != nil {
		return 0, errors.Wrap(err, "score")
	}
	return acc, nil
}
