package runner

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/marketdata"
	"github.com/rxtech-lab/ema-cross/internal/metrics"
	"github.com/rxtech-lab/ema-cross/internal/strategy"
	"github.com/rxtech-lab/ema-cross/internal/trading"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"go.uber.org/zap"
)

// TableSink persists an evaluated window.
type TableSink interface {
	// Write stores the result and returns where it was written
	Write(ctx context.Context, symbol, comment string, result strategy.Result) (string, error)
}

// Config is what the runner evaluates on every cycle.
type Config struct {
	Symbols      []string        `validate:"required,min=1,dive,required"`
	Timeframe    types.Timeframe `validate:"required"`
	CandleCount  int             `validate:"gt=0,lte=50000"`
	Comment      string
	PollInterval time.Duration `validate:"gt=0"`
}

// Dependencies are the collaborators of a Runner. Tables, Metrics, Health
// and Logger are optional.
type Dependencies struct {
	Provider marketdata.Provider   `validate:"required"`
	Strategy strategy.Strategy     `validate:"required"`
	Sizer    trading.PositionSizer `validate:"required"`
	Executor trading.OrderExecutor `validate:"required"`
	Tables   TableSink             `validate:"-"`
	Metrics  *metrics.Metrics      `validate:"-"`
	Health   *metrics.HealthStatus `validate:"-"`
	Logger   *logger.Logger        `validate:"-"`
	Now      func() time.Time      `validate:"-"`
}

// SymbolReport is the outcome of one symbol in one cycle.
type SymbolReport struct {
	Symbol  string
	Candles int
	// Crossed reports a crossover at the latest candle.
	Crossed   bool
	Signal    optional.Option[types.TradeSignal]
	Order     optional.Option[types.StopOrder]
	TablePath string
	// Err is the failure that stopped the symbol, if any.
	Err error
}

// CycleReport is the outcome of one pass over every symbol.
type CycleReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Symbols    []SymbolReport
}

// Failures returns the number of symbols that failed.
func (r CycleReport) Failures() int {
	failures := 0

	for _, s := range r.Symbols {
		if s.Err != nil {
			failures++
		}
	}

	return failures
}

// Orders returns the orders placed during the cycle.
func (r CycleReport) Orders() []types.StopOrder {
	orders := []types.StopOrder{}

	for _, s := range r.Symbols {
		if s.Err == nil && s.Order.IsSome() {
			orders = append(orders, s.Order.Unwrap())
		}
	}

	return orders
}

// Runner polls the market data provider and turns the crossover at the latest
// closed candle into a pending stop order.
type Runner struct {
	config  Config
	deps    Dependencies
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRunner validates the config and the dependencies and creates the runner.
func NewRunner(config Config, deps Dependencies) (*Runner, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid runner config", err)
	}

	if config.Timeframe.Duration() == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", config.Timeframe)
	}

	if err := validate.Struct(deps); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "missing runner dependency", err)
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	m := deps.Metrics
	if m == nil {
		m = metrics.NewMetrics()
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	if config.Comment == "" {
		config.Comment = deps.Strategy.Name()
	}

	return &Runner{
		config:  config,
		deps:    deps,
		logger:  log,
		metrics: m,
		now:     now,
	}, nil
}

// Comment returns the comment attached to orders and table file names.
func (r *Runner) Comment() string {
	return r.config.Comment
}

// RunOnce evaluates every symbol once. A failing symbol is logged, counted
// and reported but never stops the cycle; only a cancelled context does.
func (r *Runner) RunOnce(ctx context.Context) CycleReport {
	report := CycleReport{StartedAt: r.now()}

	for _, symbol := range r.config.Symbols {
		if ctx.Err() != nil {
			break
		}

		report.Symbols = append(report.Symbols, r.runSymbol(ctx, symbol))
	}

	report.FinishedAt = r.now()

	r.metrics.CyclesTotal.Inc()
	r.metrics.LastCycleUnixTime.Set(float64(report.FinishedAt.Unix()))

	if r.deps.Health != nil {
		r.deps.Health.RecordCycle(report.FinishedAt, len(report.Symbols), report.Failures())
	}

	r.logger.Info("Cycle finished",
		zap.Int("symbols", len(report.Symbols)),
		zap.Int("failures", report.Failures()),
		zap.Int("orders", len(report.Orders())),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report
}

// Run calls RunOnce immediately and then on every poll interval until ctx
// is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.logger.Info("Runner started",
		zap.Strings("symbols", r.config.Symbols),
		zap.String("timeframe", string(r.config.Timeframe)),
		zap.Duration("poll_interval", r.config.PollInterval),
		zap.String("strategy", r.deps.Strategy.Name()),
	)

	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Runner stopped")

			return nil
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// Scan evaluates every symbol and writes its table regardless of crossovers.
// No order is placed.
func (r *Runner) Scan(ctx context.Context) CycleReport {
	report := CycleReport{StartedAt: r.now()}

	for _, symbol := range r.config.Symbols {
		if ctx.Err() != nil {
			break
		}

		item := SymbolReport{Symbol: symbol}

		result, err := r.evaluate(ctx, symbol, &item)
		if err == nil && r.deps.Tables != nil {
			item.TablePath, err = r.persist(ctx, symbol, result)
		}

		item.Err = err
		report.Symbols = append(report.Symbols, item)
	}

	report.FinishedAt = r.now()

	return report
}

func (r *Runner) runSymbol(ctx context.Context, symbol string) SymbolReport {
	item := SymbolReport{Symbol: symbol}

	result, err := r.evaluate(ctx, symbol, &item)
	if err != nil {
		item.Err = err

		return item
	}

	if !result.LatestCrossed {
		return item
	}

	r.metrics.CrossoversTotal.WithLabelValues(symbol).Inc()

	if r.deps.Tables != nil {
		// a failed table write is counted but does not block the order
		item.TablePath, _ = r.persist(ctx, symbol, result)
	}

	if result.Latest.IsNone() {
		r.logger.Debug("Crossover without signal", zap.String("symbol", symbol))

		return item
	}

	signal := result.Latest.Unwrap()
	item.Signal = optional.Some(signal)
	r.metrics.SignalsTotal.WithLabelValues(symbol, string(signal.Direction)).Inc()

	r.logger.Info("Signal",
		zap.String("symbol", symbol),
		zap.String("direction", string(signal.Direction)),
		zap.Time("time", signal.Time),
		zap.Float64("stop_price", signal.StopPrice),
		zap.Float64("stop_loss", signal.StopLoss),
		zap.Float64("take_profit", signal.TakeProfit),
	)

	volume, err := r.deps.Sizer.Size(signal)
	if err != nil {
		item.Err = r.fail(metrics.StageSize, symbol, err)

		return item
	}

	order, err := trading.BuildStopOrder(signal, volume, r.config.Comment, r.now())
	if err != nil {
		r.metrics.OrdersTotal.WithLabelValues(symbol, string(types.OrderStatusRejected)).Inc()
		item.Order = optional.Some(order)
		item.Err = r.fail(metrics.StageOrder, symbol, err)

		return item
	}

	if order.Type != types.StopOrderTypeFor(signal.Direction) {
		r.logger.Warn("Signal direction disagrees with its levels",
			zap.String("symbol", symbol),
			zap.String("direction", string(signal.Direction)),
			zap.String("order_type", string(order.Type)),
			zap.Float64("stop_price", order.StopPrice),
			zap.Float64("stop_loss", order.StopLoss),
		)
	}

	if err := r.deps.Executor.PlaceStopOrder(ctx, order); err != nil {
		order.Status = types.OrderStatusRejected
		r.metrics.OrdersTotal.WithLabelValues(symbol, string(order.Status)).Inc()
		item.Order = optional.Some(order)
		item.Err = r.fail(metrics.StageOrder, symbol, err)

		return item
	}

	r.metrics.OrdersTotal.WithLabelValues(symbol, string(order.Status)).Inc()
	item.Order = optional.Some(order)

	return item
}

func (r *Runner) evaluate(ctx context.Context, symbol string, item *SymbolReport) (strategy.Result, error) {
	fetchStart := time.Now()

	candles, err := r.deps.Provider.GetCandles(ctx, symbol, r.config.Timeframe, r.config.CandleCount)
	r.metrics.FetchDur.Observe(time.Since(fetchStart).Seconds())

	if err != nil {
		return strategy.Result{}, r.fail(metrics.StageFetch, symbol, err)
	}

	item.Candles = len(candles)

	evalStart := time.Now()

	result, err := r.deps.Strategy.Evaluate(ctx, candles)
	r.metrics.EvaluationDur.Observe(time.Since(evalStart).Seconds())

	if err != nil {
		return strategy.Result{}, r.fail(metrics.StageEvaluate, symbol, err)
	}

	r.metrics.EvaluationsTotal.WithLabelValues(symbol).Inc()
	item.Crossed = result.LatestCrossed

	return result, nil
}

func (r *Runner) persist(ctx context.Context, symbol string, result strategy.Result) (string, error) {
	path, err := r.deps.Tables.Write(ctx, symbol, r.config.Comment, result)
	if err != nil {
		return "", r.fail(metrics.StagePersist, symbol, err)
	}

	r.logger.Info("Indicator table written", zap.String("symbol", symbol), zap.String("path", path))

	return path, nil
}

func (r *Runner) fail(stage, symbol string, err error) error {
	r.metrics.FailuresTotal.WithLabelValues(stage).Inc()
	r.logger.Error("Symbol failed",
		zap.String("symbol", symbol),
		zap.String("stage", stage),
		zap.Int("code", int(errors.GetCode(err))),
		zap.Error(err),
	)

	return err
}
