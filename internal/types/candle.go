package types

import "time"

// Candle is one OHLC observation for a fixed interval.
type Candle struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// IsBullish reports whether the candle closed strictly above its open.
// A doji (open == close) is not bullish.
func (c Candle) IsBullish() bool {
	return c.Open < c.Close
}

// Closes extracts the close prices of the candles in order.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	return closes
}
