package metric

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is matched by every DimensionMismatchError.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionMismatchError reports operands of different lengths.
type DimensionMismatchError struct {
	Left  int
	Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %d != %d", e.Left, e.Right)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// Euclidean returns the straight-line distance between p and q. Both must
// have the same number of coordinates.
func Euclidean(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, &DimensionMismatchError{Left: len(p), Right: len(q)}
	}

	// Neumaier summation keeps the rounding error independent of len(p).
	var sum, comp float64
	for i := range p {
		diff := p[i] - q[i]
		sq := diff * diff
		t := sum + sq
		if math.Abs(sum) >= sq {
			comp += (sum - t) + sq
		} else {
			comp += (sq - t) + sum
		}
		sum = t
	}
	return math.Sqrt(sum + comp), nil
}

// EuclideanMetric is Euclidean with the bktree.Metric signature.
func EuclideanMetric(p, q []float64) (float64, error) {
	return Euclidean(p, q)
}
