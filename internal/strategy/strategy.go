package strategy

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ema-cross/internal/indicator"
	"github.com/rxtech-lab/ema-cross/internal/types"
)

// Strategy turns a window of closed candles into trade signals.
// Implementations hold no state between calls: every Evaluate recomputes the
// whole window.
type Strategy interface {
	// Name returns the name of the strategy
	Name() string
	// Evaluate runs the full pipeline over the window
	Evaluate(ctx context.Context, candles []types.Candle) (Result, error)
}

// Result is everything one pipeline run produced.
type Result struct {
	// Table holds the candles with every indicator column.
	Table indicator.IndicatorTable
	// Crossovers are the flags of the two EMA columns, index 0 excluded.
	Crossovers indicator.Crossovers
	// Signals are all signals inside the window, oldest first.
	Signals []types.TradeSignal
	// Latest is the signal at the last index of the window, if any.
	Latest optional.Option[types.TradeSignal]
	// LatestCrossed reports a crossover at the last index, even when it
	// fell inside the warm-up period and produced no signal.
	LatestCrossed bool
}

// SignalAt returns the signal emitted at index i, if any.
func (r Result) SignalAt(i int) optional.Option[types.TradeSignal] {
	for _, s := range r.Signals {
		if s.Index == i {
			return optional.Some(s)
		}
	}

	return optional.None[types.TradeSignal]()
}
