package net

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// CSVLogger logs per-sample training loss to a CSV file.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool
	Interval int
	Log      *zap.SugaredLogger

	file   *os.File
	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a new CSVLogger writing every interval-th sample.
func NewCSVLogger(filename string, append bool, interval int, log *zap.SugaredLogger) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
		Interval: interval,
		Log:      log,
	}
}

func (c *CSVLogger) OnTrainBegin(total int, n *Network) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		c.Log.Errorw("csv logger: open failed", "file", c.Filename, "error", err)
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.write([]string{"sample", "loss", "time_seconds"})
	}
}

func (c *CSVLogger) OnSampleEnd(index int, loss float32, n *Network) {
	if c.writer == nil {
		return
	}
	if c.Interval > 1 && index%c.Interval != 0 {
		return
	}

	elapsed := time.Since(c.start).Seconds()
	c.write([]string{
		strconv.Itoa(index),
		fmt.Sprintf("%.6f", loss),
		fmt.Sprintf("%.2f", elapsed),
	})
}

func (c *CSVLogger) OnTrainEnd(n *Network) {
	if c.file != nil {
		c.writer.Flush()
		if err := c.file.Close(); err != nil {
			c.Log.Errorw("csv logger: close failed", "file", c.Filename, "error", err)
		}
		c.file = nil
		c.writer = nil
	}
}

func (c *CSVLogger) write(record []string) {
	if err := c.writer.Write(record); err != nil {
		c.Log.Errorw("csv logger: write failed", "file", c.Filename, "error", err)
	}
	c.writer.Flush()
}
