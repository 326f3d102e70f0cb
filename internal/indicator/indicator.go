package indicator

import (
	"github.com/rxtech-lab/ema-cross/internal/types"
)

// Indicator interface defines methods that any column-producing indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters
	Config(params ...any) error
	// Compute returns one value per candle, aligned index-for-index
	Compute(candles []types.Candle) (Series, error)
}
