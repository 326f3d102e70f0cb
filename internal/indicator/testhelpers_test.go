package indicator

import (
	"time"

	"github.com/rxtech-lab/ema-cross/internal/types"
)

var baseTime = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

// candlesFromCloses builds bullish candles (open one below close) with a
// half point upper wick and a one and a half point lower wick.
func candlesFromCloses(closes ...float64) []types.Candle {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{
			Symbol: "EURUSD",
			Time:   baseTime.Add(time.Duration(i) * time.Minute),
			Open:   c - 1,
			High:   c + 0.5,
			Low:    c - 1.5,
			Close:  c,
			Volume: 100,
		}
	}

	return candles
}
