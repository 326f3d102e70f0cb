package trading

import (
	"context"

	"github.com/rxtech-lab/ema-cross/internal/types"
)

// OrderExecutor submits pending stop-entry orders to a broker.
type OrderExecutor interface {
	// PlaceStopOrder submits a validated stop order
	PlaceStopOrder(ctx context.Context, order types.StopOrder) error
}

// PositionSizer turns a signal's entry and stop distance into an order volume.
type PositionSizer interface {
	// Size returns the volume to trade for the signal
	Size(signal types.TradeSignal) (float64, error)
}
