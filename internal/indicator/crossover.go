package indicator

import (
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// Crossovers marks the indices where the predicate a > b changed value
// relative to the previous index. Index 0 never appears: it has no
// predecessor, so its flag is undefined rather than false.
type Crossovers struct {
	// Indices are the input indices covered, 1..n-1.
	Indices []int
	// Flags[k] is the crossover flag of Indices[k].
	Flags []bool
}

// DetectCrossovers compares two aligned numeric series and flags every
// index whose a[i] > b[i] differs from a[i-1] > b[i-1].
func DetectCrossovers(a, b []float64) (Crossovers, error) {
	if len(a) != len(b) {
		return Crossovers{}, errors.Newf(errors.ErrCodeLengthMismatch,
			"crossover series lengths differ: %d != %d", len(a), len(b))
	}

	if len(a) < 2 {
		return Crossovers{Indices: []int{}, Flags: []bool{}}, nil
	}

	indices := make([]int, 0, len(a)-1)
	flags := make([]bool, 0, len(a)-1)
	previous := a[0] > b[0]

	for i := 1; i < len(a); i++ {
		position := a[i] > b[i]
		indices = append(indices, i)
		flags = append(flags, position != previous)
		previous = position
	}

	return Crossovers{Indices: indices, Flags: flags}, nil
}

// DetectSeriesCrossovers runs DetectCrossovers over two indicator columns.
func DetectSeriesCrossovers(a, b Series) (Crossovers, error) {
	return DetectCrossovers(a.Float64s(), b.Float64s())
}

// Len returns the number of defined flags.
func (c Crossovers) Len() int {
	return len(c.Flags)
}

// At returns the flag of input index i. ok is false for index 0 and for
// indices outside the series.
func (c Crossovers) At(i int) (flag bool, ok bool) {
	if len(c.Indices) == 0 {
		return false, false
	}

	k := i - c.Indices[0]
	if k < 0 || k >= len(c.Flags) {
		return false, false
	}

	return c.Flags[k], true
}

// Crossed reports whether input index i is a crossover.
func (c Crossovers) Crossed(i int) bool {
	flag, ok := c.At(i)

	return ok && flag
}

// Events returns the input indices whose flag is true.
func (c Crossovers) Events() []int {
	events := []int{}

	for k, flag := range c.Flags {
		if flag {
			events = append(events, c.Indices[k])
		}
	}

	return events
}
