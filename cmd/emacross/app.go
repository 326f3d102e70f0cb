package main

import (
	"github.com/rxtech-lab/ema-cross/internal/config"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/marketdata"
	"github.com/rxtech-lab/ema-cross/internal/metrics"
	"github.com/rxtech-lab/ema-cross/internal/runner"
	"github.com/rxtech-lab/ema-cross/internal/strategy"
	"github.com/rxtech-lab/ema-cross/internal/trading"
	"github.com/rxtech-lab/ema-cross/internal/writer"
	"go.uber.org/zap"
)

// app holds everything a command needs, built from the settings file.
type app struct {
	settings config.Settings
	logger   *logger.Logger
	provider marketdata.Provider
	executor *trading.PaperExecutor
	metrics  *metrics.Metrics
	health   *metrics.HealthStatus
	runner   *runner.Runner
}

type closer interface {
	Close() error
}

type loggerSetter interface {
	SetLogger(log *logger.Logger)
}

func newApp(settings config.Settings, log *logger.Logger) (*app, error) {
	timeframe, err := settings.TimeframeValue()
	if err != nil {
		return nil, err
	}

	provider, err := marketdata.NewProvider(settings.Provider)
	if err != nil {
		return nil, err
	}

	if setter, ok := provider.(loggerSetter); ok {
		setter.SetLogger(log)
	}

	a := &app{
		settings: settings,
		logger:   log,
		provider: provider,
		metrics:  metrics.NewMetrics(),
		health:   metrics.NewHealthStatus(settings.PollInterval),
	}

	emaCross, err := strategy.NewEMACross(settings.Strategy, log)
	if err != nil {
		a.Close()

		return nil, err
	}

	sizer, err := trading.NewRiskPositionSizer(settings.Sizing)
	if err != nil {
		a.Close()

		return nil, err
	}

	a.executor, err = trading.NewPaperExecutor(log)
	if err != nil {
		a.Close()

		return nil, err
	}

	tables, err := writer.NewTableWriter(settings.OutputDir, settings.OutputFormat, log)
	if err != nil {
		a.Close()

		return nil, err
	}

	a.runner, err = runner.NewRunner(runner.Config{
		Symbols:      settings.Symbols,
		Timeframe:    timeframe,
		CandleCount:  settings.CandleCount,
		Comment:      settings.OrderComment(emaCross.Name()),
		PollInterval: settings.PollInterval,
	}, runner.Dependencies{
		Provider: provider,
		Strategy: emaCross,
		Sizer:    sizer,
		Executor: a.executor,
		Tables:   tables,
		Metrics:  a.metrics,
		Health:   a.health,
		Logger:   log,
	})
	if err != nil {
		a.Close()

		return nil, err
	}

	return a, nil
}

// Close releases the provider and the paper order book.
func (a *app) Close() {
	if c, ok := a.provider.(closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Warn("Failed to close market data provider", zap.Error(err))
		}
	}

	if err := a.executor.Close(); err != nil {
		a.logger.Warn("Failed to close paper executor", zap.Error(err))
	}
}
