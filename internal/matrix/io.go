package matrix

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Encode writes m as text: one line per row, cells separated by a single
// space. The format carries no shape header.
func (m *Matrix) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 16)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return errors.Wrap(ErrIO, err.Error())
				}
			}
			buf = strconv.AppendFloat(buf[:0], float64(m.data[i*m.cols+j]), 'g', -1, 32)
			if _, err := bw.Write(buf); err != nil {
				return errors.Wrap(ErrIO, err.Error())
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(ErrIO, err.Error())
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Decode reads text written by Encode into m. The receiver's shape decides
// how many rows and values are expected; any surplus or shortfall is
// reported as ErrIO and a bad token as ErrParse. Blank lines are ignored,
// except for a matrix with no columns, where each line is an empty row.
func (m *Matrix) Decode(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	data := make([]float32, 0, len(m.data))
	row := 0
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 && m.cols > 0 {
			continue
		}
		if row >= m.rows {
			return errors.Wrapf(ErrIO, "more than %d rows", m.rows)
		}
		if len(fields) != m.cols {
			return errors.Wrapf(ErrIO, "row %d has %d values, want %d", row, len(fields), m.cols)
		}
		for j, field := range fields {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return errors.Wrapf(ErrParse, "row %d col %d: %q", row, j, field)
			}
			data = append(data, float32(v))
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	if row != m.rows {
		return errors.Wrapf(ErrIO, "read %d rows, want %d", row, m.rows)
	}
	copy(m.data, data)
	return nil
}

// Save writes m to the named file, truncating it.
func (m *Matrix) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrIO, "create %s: %v", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrapf(ErrIO, "close %s: %v", path, cerr))
		}
	}()
	if err := m.Encode(f); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// Load reads the named file into m, which must already have the shape of
// the stored data.
func (m *Matrix) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrIO, "open %s: %v", path, err)
	}
	defer f.Close()

	if err := m.Decode(f); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}
