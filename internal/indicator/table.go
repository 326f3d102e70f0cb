package indicator

import (
	"sort"

	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// IndicatorTable is a candle window annotated with indicator columns.
// A table is never mutated once built; WithSeries returns a new table.
type IndicatorTable struct {
	Candles []types.Candle
	series  map[string]Series
	order   []string
}

// NewIndicatorTable wraps a candle window with no indicator columns.
func NewIndicatorTable(candles []types.Candle) IndicatorTable {
	return IndicatorTable{
		Candles: candles,
		series:  map[string]Series{},
		order:   []string{},
	}
}

// Len returns the number of rows.
func (t IndicatorTable) Len() int {
	return len(t.Candles)
}

// WithSeries returns a copy of the table with the series added (or replaced) as a column.
func (t IndicatorTable) WithSeries(s Series) (IndicatorTable, error) {
	if s.Len() != len(t.Candles) {
		return IndicatorTable{}, errors.Newf(errors.ErrCodeLengthMismatch,
			"column %s has %d values for %d candles", s.Name, s.Len(), len(t.Candles))
	}

	next := IndicatorTable{
		Candles: t.Candles,
		series:  make(map[string]Series, len(t.series)+1),
		order:   make([]string, 0, len(t.order)+1),
	}

	for _, name := range t.order {
		if name == s.Name {
			continue
		}

		next.series[name] = t.series[name]
		next.order = append(next.order, name)
	}

	next.series[s.Name] = s
	next.order = append(next.order, s.Name)

	return next, nil
}

// Series returns an indicator column by name.
func (t IndicatorTable) Series(name string) (Series, bool) {
	s, ok := t.series[name]

	return s, ok
}

// SeriesNames lists the indicator columns in insertion order.
func (t IndicatorTable) SeriesNames() []string {
	return append([]string(nil), t.order...)
}

// SeriesByPeriod returns the indicator columns sorted by ascending period.
func (t IndicatorTable) SeriesByPeriod() []Series {
	out := make([]Series, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.series[name])
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Period < out[j].Period })

	return out
}

// Column returns any numeric column, candle fields included, with warm-up
// values flattened to 0.0.
func (t IndicatorTable) Column(name string) ([]float64, error) {
	var pick func(types.Candle) float64

	switch name {
	case ColumnOpen:
		pick = func(c types.Candle) float64 { return c.Open }
	case ColumnHigh:
		pick = func(c types.Candle) float64 { return c.High }
	case ColumnLow:
		pick = func(c types.Candle) float64 { return c.Low }
	case ColumnClose:
		pick = func(c types.Candle) float64 { return c.Close }
	case ColumnVolume:
		pick = func(c types.Candle) float64 { return c.Volume }
	default:
		s, ok := t.series[name]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeColumnNotFound, "column %s not found", name)
		}

		return s.Float64s(), nil
	}

	values := make([]float64, len(t.Candles))
	for i, c := range t.Candles {
		values[i] = pick(c)
	}

	return values, nil
}

// ColumnCrossovers detects crossovers between any two columns, e.g. close vs ema_50.
func (t IndicatorTable) ColumnCrossovers(columnA, columnB string) (Crossovers, error) {
	a, err := t.Column(columnA)
	if err != nil {
		return Crossovers{}, err
	}

	b, err := t.Column(columnB)
	if err != nil {
		return Crossovers{}, err
	}

	return DetectCrossovers(a, b)
}
