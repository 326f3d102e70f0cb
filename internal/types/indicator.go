package types

type IndicatorType string

const (
	IndicatorTypeEMA       IndicatorType = "ema"
	IndicatorTypeCrossover IndicatorType = "crossover"
)
