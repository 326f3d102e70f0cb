package types

import (
	"math"
	"time"
)

// Direction is the side of the pending entry a signal asks for.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// TradeSignal carries the price levels of a stop-entry order derived
// from a crossover. The direction is decided once, when the preceding
// candle is classified, and travels with the signal.
type TradeSignal struct {
	// Index is the position of the signal candle inside the evaluated window.
	Index int `yaml:"index" json:"index"`
	// Time is the open time of the signal candle.
	Time   time.Time `yaml:"time" json:"time"`
	Symbol string    `yaml:"symbol" json:"symbol"`

	Direction  Direction `yaml:"direction" json:"direction"`
	StopLoss   float64   `yaml:"stop_loss" json:"stop_loss"`
	StopPrice  float64   `yaml:"stop_price" json:"stop_price"`
	TakeProfit float64   `yaml:"take_profit" json:"take_profit"`
}

// Risk returns the distance between entry and stop loss.
func (s TradeSignal) Risk() float64 {
	return math.Abs(s.StopPrice - s.StopLoss)
}
