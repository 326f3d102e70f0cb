package strategy

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ema-cross/internal/indicator"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds the two EMA periods compared by the strategy. Either may be
// the slower one.
type Config struct {
	EMAOne int `yaml:"ema_one" json:"ema_one" jsonschema:"title=EMA One,description=Period of the first EMA,minimum=1" validate:"gt=0"`
	EMATwo int `yaml:"ema_two" json:"ema_two" jsonschema:"title=EMA Two,description=Period of the second EMA. Must differ from ema_one,minimum=1" validate:"gt=0,nefield=EMAOne"`
}

// Validate rejects non-positive or equal periods.
func (c Config) Validate() error {
	if c.EMAOne == c.EMATwo {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "ema periods must differ, both are %d", c.EMAOne)
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid ema cross config", err)
	}

	return nil
}

// SlowPeriod returns the larger of the two periods.
func (c Config) SlowPeriod() int {
	return max(c.EMAOne, c.EMATwo)
}

// EMACross emits stop-entry signals when two EMAs cross.
//
// On a crossover at index i the candle i-1 is inspected. A bullish candle
// (open < close) gives a BUY with the entry at its high; anything else,
// doji included, gives a SELL with the entry at its low. The stop loss is
// the slower EMA at i-1 and the take profit mirrors the stop distance
// around the entry.
type EMACross struct {
	config Config
	logger *logger.Logger
}

// NewEMACross validates the config and creates the strategy.
func NewEMACross(config Config, log *logger.Logger) (*EMACross, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &EMACross{
		config: config,
		logger: log,
	}, nil
}

// Name returns the name of the strategy.
func (s *EMACross) Name() string {
	return fmt.Sprintf("EMA_Cross_%d_%d", s.config.EMAOne, s.config.EMATwo)
}

// Config returns the strategy periods.
func (s *EMACross) Config() Config {
	return s.config
}

// Evaluate computes both EMAs, their crossovers and the signals of the window.
func (s *EMACross) Evaluate(ctx context.Context, candles []types.Candle) (Result, error) {
	if err := s.config.Validate(); err != nil {
		return Result{}, err
	}

	slow := s.config.SlowPeriod()
	if len(candles) <= slow {
		symbol := ""
		if len(candles) > 0 {
			symbol = candles[0].Symbol
		}

		return Result{}, errors.NewInsufficientDataErrorf(slow+1, len(candles), symbol,
			"not enough candles to seed %s", indicator.ColumnName(slow))
	}

	var emaOne, emaTwo indicator.Series

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		emaOne, err = indicator.ComputeEMA(candles, s.config.EMAOne)

		return err
	})
	group.Go(func() error {
		var err error
		emaTwo, err = indicator.ComputeEMA(candles, s.config.EMATwo)

		return err
	})

	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	crossovers, err := indicator.DetectSeriesCrossovers(emaOne, emaTwo)
	if err != nil {
		return Result{}, err
	}

	table := indicator.NewIndicatorTable(candles)
	for _, series := range []indicator.Series{emaOne, emaTwo} {
		table, err = table.WithSeries(series)
		if err != nil {
			return Result{}, err
		}
	}

	signals, err := DeriveSignals(candles, emaOne, emaTwo, crossovers)
	if err != nil {
		return Result{}, err
	}

	last := len(candles) - 1
	result := Result{
		Table:         table,
		Crossovers:    crossovers,
		Signals:       signals,
		Latest:        optional.None[types.TradeSignal](),
		LatestCrossed: crossovers.Crossed(last),
	}

	if n := len(signals); n > 0 && signals[n-1].Index == last {
		result.Latest = optional.Some(signals[n-1])
	}

	s.logger.Debug("Evaluated window",
		zap.String("strategy", s.Name()),
		zap.String("symbol", candles[last].Symbol),
		zap.Int("candles", len(candles)),
		zap.Int("signals", len(signals)),
		zap.Bool("latest_crossed", result.LatestCrossed),
	)

	return result, nil
}

// DeriveSignals emits one signal for every crossover at an index past the
// warm-up of both EMAs. The slower EMA is the stop-loss reference no matter
// which argument carries it.
func DeriveSignals(candles []types.Candle, emaA, emaB indicator.Series, crossovers indicator.Crossovers) ([]types.TradeSignal, error) {
	if emaA.Period == emaB.Period {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "ema periods must differ, both are %d", emaA.Period)
	}

	if emaA.Len() != len(candles) || emaB.Len() != len(candles) {
		return nil, errors.Newf(errors.ErrCodeLengthMismatch,
			"ema columns (%d, %d) are not aligned with %d candles", emaA.Len(), emaB.Len(), len(candles))
	}

	reference := emaA
	if emaB.Period > emaA.Period {
		reference = emaB
	}

	signals := []types.TradeSignal{}

	for i := reference.Period + 1; i < len(candles); i++ {
		if !crossovers.Crossed(i) {
			continue
		}

		stopLoss, err := reference.At(i - 1).Take()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err,
				"%s is undefined at index %d", reference.Name, i-1)
		}

		signals = append(signals, deriveSignal(candles, i, stopLoss))
	}

	return signals, nil
}

func deriveSignal(candles []types.Candle, i int, stopLoss float64) types.TradeSignal {
	previous := candles[i-1]
	signal := types.TradeSignal{
		Index:    i,
		Time:     candles[i].Time,
		Symbol:   candles[i].Symbol,
		StopLoss: stopLoss,
	}

	if previous.IsBullish() {
		signal.Direction = types.DirectionBuy
		signal.StopPrice = previous.High
		distance := signal.StopPrice - signal.StopLoss
		signal.TakeProfit = signal.StopPrice + distance
	} else {
		signal.Direction = types.DirectionSell
		signal.StopPrice = previous.Low
		distance := signal.StopLoss - signal.StopPrice
		signal.TakeProfit = signal.StopPrice - distance
	}

	return signal
}
