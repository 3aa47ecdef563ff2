package ixurl

import (
	"math"
	"slices"

	"github.com/AnyUserName/ixurl/internal/validate"
)

// Ladder bounds. MaxWidth is a hard ceiling of the image service.
const (
	DefaultBegin     = 100
	DefaultEnd       = 8192
	DefaultTolerance = 0.08
	MaxWidth         = 8192
)

// Ladder describes a geometric progression of srcset widths from Begin to
// End where consecutive widths differ by about 2*Tolerance.
type Ladder struct {
	Begin     int
	End       int
	Tolerance float64
}

// DefaultLadder is the ladder used when no other is given.
var DefaultLadder = Ladder{Begin: DefaultBegin, End: DefaultEnd, Tolerance: DefaultTolerance}

// defaultTargetWidths is DefaultLadder precomputed. Other client libraries
// ship the same table, so the common case never depends on float rounding.
var defaultTargetWidths = []int{
	100, 116, 135, 156, 181, 210, 244, 283,
	328, 380, 441, 512, 594, 689, 799, 927,
	1075, 1247, 1446, 1678, 1946, 2257, 2619,
	3038, 3524, 4087, 4741, 5500, 6380, 7401, 8192,
}

// IsDefault reports whether l is DefaultLadder.
func (l Ladder) IsDefault() bool { return l == DefaultLadder }

// Validate checks the range and tolerance.
func (l Ladder) Validate() error {
	if err := validate.Range(l.Begin, l.End); err != nil {
		return err
	}
	return validate.Tolerance(l.Tolerance)
}

// Widths returns the ladder's rungs in increasing order.
func (l Ladder) Widths() ([]int, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.IsDefault() {
		return slices.Clone(defaultTargetWidths), nil
	}
	if l.Begin == l.End {
		return []int{l.Begin}, nil
	}
	if l.Begin == 0 {
		return nil, &ValidationError{Field: "begin", Value: 0, Reason: "a ladder cannot grow from a zero width"}
	}

	step := 1 + 2*l.Tolerance
	end := float64(l.End)

	var widths []int
	for w := float64(l.Begin); w < end && w < MaxWidth; w *= step {
		// Small widths can round to the same rung twice.
		rung := int(math.Round(w))
		if n := len(widths); n > 0 && widths[n-1] == rung {
			continue
		}
		widths = append(widths, rung)
	}
	if len(widths) == 0 {
		widths = append(widths, l.Begin)
	}
	if widths[len(widths)-1] < l.End {
		widths = append(widths, l.End)
	}
	return widths, nil
}

// GenerateTargetWidths returns the widths of DefaultLadder, or of the
// given ladder when one is passed.
func GenerateTargetWidths(l ...Ladder) ([]int, error) {
	if len(l) == 0 {
		return DefaultLadder.Widths()
	}
	return l[0].Widths()
}
