package net

import (
	"go.uber.org/zap"
)

// Callback receives progress events from TrainSamples and Score. Callbacks
// run synchronously on the training goroutine.
type Callback interface {
	OnTrainBegin(total int, n *Network)
	OnTrainEnd(n *Network)
	OnSampleEnd(index int, loss float32, n *Network)
	OnScoreSample(index, predicted, label int, n *Network)
	OnScoreEnd(accuracy float32, n *Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(total int, n *Network)                    {}
func (c BaseCallback) OnTrainEnd(n *Network)                                 {}
func (c BaseCallback) OnSampleEnd(index int, loss float32, n *Network)       {}
func (c BaseCallback) OnScoreSample(index, predicted, label int, n *Network) {}
func (c BaseCallback) OnScoreEnd(accuracy float32, n *Network)               {}

// Logger logs training and scoring progress every Interval samples.
type Logger struct {
	BaseCallback
	Log      *zap.SugaredLogger
	Interval int

	total   int
	sumLoss float32
	seen    int
}

// NewLogger creates a Logger writing to log.
func NewLogger(log *zap.SugaredLogger, interval int) *Logger {
	return &Logger{Log: log, Interval: interval}
}

func (c *Logger) OnTrainBegin(total int, n *Network) {
	c.total = total
	c.sumLoss = 0
	c.seen = 0
	c.Log.Infow("training started",
		"samples", total,
		"input", n.InputSize(),
		"hidden", n.HiddenSize(),
		"output", n.OutputSize(),
		"learning_rate", n.LearningRate())
}

func (c *Logger) OnSampleEnd(index int, loss float32, n *Network) {
	c.sumLoss += loss
	c.seen++
	if c.Interval > 0 && index%c.Interval == 0 {
		c.Log.Infow("training", "sample", index, "of", c.total, "loss", loss, "mean_loss", c.sumLoss/float32(c.seen))
	}
}

func (c *Logger) OnTrainEnd(n *Network) {
	mean := float32(0)
	if c.seen > 0 {
		mean = c.sumLoss / float32(c.seen)
	}
	c.Log.Infow("training finished", "samples", c.seen, "mean_loss", mean)
}

func (c *Logger) OnScoreSample(index, predicted, label int, n *Network) {
	if c.Interval > 0 && index%c.Interval == 0 {
		c.Log.Debugw("scoring", "sample", index, "predicted", predicted, "label", label)
	}
}

func (c *Logger) OnScoreEnd(accuracy float32, n *Network) {
	c.Log.Infow("scoring finished", "accuracy", accuracy)
}

// Checkpoint saves the network to Dir every Interval samples and when
// training ends. Save failures are logged and training continues.
type Checkpoint struct {
	BaseCallback
	Dir      string
	Interval int
	Log      *zap.SugaredLogger
}

// NewCheckpoint creates a Checkpoint saving into dir.
func NewCheckpoint(dir string, interval int, log *zap.SugaredLogger) *Checkpoint {
	return &Checkpoint{Dir: dir, Interval: interval, Log: log}
}

func (c *Checkpoint) OnSampleEnd(index int, loss float32, n *Network) {
	if c.Interval > 0 && (index+1)%c.Interval == 0 {
		c.save(n, index+1)
	}
}

func (c *Checkpoint) OnTrainEnd(n *Network) {
	c.save(n, -1)
}

func (c *Checkpoint) save(n *Network, samples int) {
	if err := n.Save(c.Dir); err != nil {
		c.Log.Errorw("checkpoint failed", "dir", c.Dir, "error", err)
		return
	}
	c.Log.Debugw("checkpoint saved", "dir", c.Dir, "samples", samples)
}
