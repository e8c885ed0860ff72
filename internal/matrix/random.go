package matrix

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Randomize fills m with values drawn independently and uniformly from
// [-1/sqrt(n), 1/sqrt(n)], where n is the fan-in of the layer the matrix
// feeds. A nil src draws from the global math/rand/v2 source.
func (m *Matrix) Randomize(n int, src rand.Source) error {
	if n <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "randomize fan-in %d, must be positive", n)
	}
	bound := 1 / math.Sqrt(float64(n))
	dist := distuv.Uniform{
		Min: -bound,
		Max: bound,
		Src: src,
	}
	for i := range m.data {
		m.data[i] = float32(dist.Rand())
	}
	return nil
}
