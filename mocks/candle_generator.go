package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/ema-cross/internal/types"
)

// CandleGenerator generates random-walk candles for tests and benchmarks.
type CandleGenerator struct {
	rng *rand.Rand
}

// NewCandleGenerator creates a generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewCandleGenerator(seed int64) *CandleGenerator {
	return &CandleGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	Symbol    string
	StartTime time.Time
	// Interval is the open time distance between two candles
	Interval time.Duration
	Count    int
	// InitialPrice is the open of the first candle
	InitialPrice float64
	// Volatility is the standard deviation of the close-to-close return
	Volatility float64
	// Trend is the total drift spread across the series
	Trend      float64
	VolumeBase float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "EURUSD",
		StartTime:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:     time.Minute,
		Count:        2000,
		InitialPrice: 1.1,
		Volatility:   0.0005,
		Trend:        0.0,
		VolumeBase:   1000,
	}
}

// Generate creates candles following a geometric Brownian motion. Each
// candle opens at the previous close.
func (g *CandleGenerator) Generate(config GeneratorConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	price := config.InitialPrice
	openTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := 0.0
		if config.Count > 0 {
			drift = config.Trend / float64(config.Count)
		}

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		candles[i] = types.Candle{
			Symbol: config.Symbol,
			Time:   openTime,
			Open:   roundToDecimals(open, 5),
			High:   roundToDecimals(high, 5),
			Low:    roundToDecimals(low, 5),
			Close:  roundToDecimals(closePrice, 5),
			Volume: roundToDecimals(config.VolumeBase*(0.7+g.rng.Float64()*0.6), 2),
		}

		price = closePrice
		openTime = openTime.Add(config.Interval)
	}

	return candles
}

// GenerateMultiSymbol generates one series per symbol with slightly varied
// initial price and volatility.
func (g *CandleGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) map[string][]types.Candle {
	out := make(map[string][]types.Candle, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)
		out[symbol] = g.Generate(config)
	}

	return out
}

// CandlesFromCloses builds one-minute candles with the given closes. Each
// candle is bullish, opening one unit below its close, with the high half
// a unit above the close and the low half a unit below the open.
func CandlesFromCloses(symbol string, start time.Time, closes ...float64) []types.Candle {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{
			Symbol: symbol,
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   c - 1,
			High:   c + 0.5,
			Low:    c - 1.5,
			Close:  c,
			Volume: 100,
		}
	}

	return candles
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
