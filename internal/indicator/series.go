package indicator

import (
	"github.com/moznion/go-optional"
)

// Series is one indicator column aligned with a candle window. Indices
// inside the warm-up period hold optional.None.
type Series struct {
	Name   string
	Period int
	Values []optional.Option[float64]
}

// Len returns the number of values in the series.
func (s Series) Len() int {
	return len(s.Values)
}

// At returns the value at index i, or None when i is out of range or still warming up.
func (s Series) At(i int) optional.Option[float64] {
	if i < 0 || i >= len(s.Values) {
		return optional.None[float64]()
	}

	return s.Values[i]
}

// IsReady reports whether the value at index i is defined.
func (s Series) IsReady(i int) bool {
	return s.At(i).IsSome()
}

// Float64s flattens the series, writing 0.0 for warm-up indices. This is the
// numeric view the crossover predicate and the exported tables use.
func (s Series) Float64s() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v.TakeOr(0)
	}

	return out
}
