// Package dataset loads labeled square images from CSV files.
//
// Each file starts with a header line that is skipped. Every following row is
// label,p0,p1,...,pN with N+1 = side*side pixel intensities in row-major order.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/digitnet/internal/matrix"
)

// Sample is a labeled image.
type Sample struct {
	Label int
	Image *matrix.Matrix
}

// LoadCSV reads at most limit samples of side×side images from the named
// file. A limit <= 0 reads every row.
func LoadCSV(path string, side, limit int) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(matrix.ErrIO, "open %s: %v", path, err)
	}
	defer file.Close()

	samples, err := ReadCSV(file, side, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return samples, nil
}

// ReadCSV reads samples from r. See LoadCSV.
func ReadCSV(r io.Reader, side, limit int) ([]Sample, error) {
	if side <= 0 {
		return nil, errors.Wrapf(matrix.ErrInvalidArgument, "image side %d", side)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(matrix.ErrIO, "csv file is empty")
		}
		return nil, errors.Wrapf(matrix.ErrIO, "read header: %v", err)
	}

	pixels := side * side
	var samples []Sample
	for row := 1; limit <= 0 || len(samples) < limit; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(matrix.ErrIO, "row %d: %v", row, err)
		}
		if len(record) != pixels+1 {
			return nil, errors.Wrapf(matrix.ErrIO, "row %d has %d columns, want %d", row, len(record), pixels+1)
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, errors.Wrapf(matrix.ErrParse, "row %d label %q", row, record[0])
		}
		if label < 0 {
			return nil, errors.Wrapf(matrix.ErrParse, "row %d negative label %d", row, label)
		}

		img := matrix.New(side, side)
		for j, field := range record[1:] {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(matrix.ErrParse, "row %d col %d: %q", row, j+1, field)
			}
			img.Set(j/side, j%side, float32(v))
		}
		samples = append(samples, Sample{Label: label, Image: img})
	}

	if limit > 0 && len(samples) < limit {
		return nil, errors.Wrapf(matrix.ErrIO, "file has %d samples, want %d", len(samples), limit)
	}
	return samples, nil
}

// Normalize replaces every image with a copy scaled by 1/maxValue, mapping
// intensities in [0, maxValue] onto [0, 1].
func Normalize(samples []Sample, maxValue float32) {
	if maxValue == 0 {
		return
	}
	for i := range samples {
		samples[i].Image = samples[i].Image.Scale(1 / maxValue)
	}
}
