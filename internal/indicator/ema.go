package indicator

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// NewEMAWithPeriod creates an EMA indicator for the given period.
func NewEMAWithPeriod(period int) (*EMA, error) {
	ema := &EMA{}
	if err := ema.Config(period); err != nil {
		return nil, err
	}

	return ema, nil
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Period returns the configured period.
func (e *EMA) Period() int {
	return e.period
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	e.period = period

	return nil
}

// Compute calculates the EMA column for the candles.
func (e *EMA) Compute(candles []types.Candle) (Series, error) {
	return ComputeEMA(candles, e.period)
}

// ColumnName returns the table column name of an EMA with the given period.
func ColumnName(period int) string {
	return fmt.Sprintf("ema_%d", period)
}

// ComputeEMA calculates the EMA of the candle closes. The series is aligned with the input.
func ComputeEMA(candles []types.Candle, period int) (Series, error) {
	values, err := ComputeEMAFromCloses(types.Closes(candles), period)
	if err != nil {
		return Series{}, err
	}

	return Series{
		Name:   ColumnName(period),
		Period: period,
		Values: values,
	}, nil
}

// ComputeEMAFromCloses calculates an EMA series over closes.
//
// Indices below period are None. Index period holds the simple mean of
// closes[0:period]; every later index applies
// ema[i] = close[i]*m + ema[i-1]*(1-m) with m = 2/(period+1).
func ComputeEMAFromCloses(closes []float64, period int) ([]optional.Option[float64], error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if period >= len(closes) {
		return nil, errors.NewInsufficientDataErrorf(period+1, len(closes), "",
			"not enough candles to seed %s", ColumnName(period))
	}

	state := NewEMAState(period)
	values := make([]optional.Option[float64], len(closes))

	for i, c := range closes {
		values[i] = state.Update(c)
	}

	return values, nil
}

// EMAState is the incremental form of the EMA recurrence. Feeding it the
// same closes in order yields exactly the values of ComputeEMAFromCloses.
type EMAState struct {
	period     int
	multiplier float64
	count      int
	sum        float64
	last       float64
}

// NewEMAState creates an incremental EMA. The period must be positive.
func NewEMAState(period int) *EMAState {
	return &EMAState{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

// Update consumes the next close and returns the EMA at its index.
func (s *EMAState) Update(close float64) optional.Option[float64] {
	index := s.count
	s.count++

	switch {
	case index < s.period:
		s.sum += close

		return optional.None[float64]()
	case index == s.period:
		// the seed ignores the close at this index
		s.last = s.sum / float64(s.period)
	default:
		s.last = close*s.multiplier + s.last*(1-s.multiplier)
	}

	return optional.Some(s.last)
}

// Last returns the most recent EMA value, None while warming up.
func (s *EMAState) Last() optional.Option[float64] {
	if s.count <= s.period {
		return optional.None[float64]()
	}

	return optional.Some(s.last)
}

// Count returns the number of closes consumed.
func (s *EMAState) Count() int {
	return s.count
}
