package trading

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/internal/utils"
)

// PricePrecision is the number of decimals sent to the broker for every price level.
const PricePrecision = 4

// BuildStopOrder formats a signal into a pending order: levels rounded to
// PricePrecision, order type taken from the rounded levels. The signal
// direction is not consulted; a bearish signal whose entry sits above the
// stop loss becomes a buy stop. The order is validated, so a signal with a
// non-positive level is rejected here instead of at the broker.
func BuildStopOrder(signal types.TradeSignal, volume float64, comment string, now time.Time) (types.StopOrder, error) {
	stopPrice := utils.RoundToDecimalPrecision(signal.StopPrice, PricePrecision)
	stopLoss := utils.RoundToDecimalPrecision(signal.StopLoss, PricePrecision)

	order := types.StopOrder{
		ID:         uuid.New().String(),
		Symbol:     signal.Symbol,
		Type:       types.StopOrderTypeForLevels(stopPrice, stopLoss),
		Volume:     volume,
		StopPrice:  stopPrice,
		StopLoss:   stopLoss,
		TakeProfit: utils.RoundToDecimalPrecision(signal.TakeProfit, PricePrecision),
		Comment:    comment,
		CreatedAt:  now,
		Status:     types.OrderStatusPending,
	}

	if err := order.Validate(); err != nil {
		order.Status = types.OrderStatusRejected

		return order, err
	}

	return order, nil
}
