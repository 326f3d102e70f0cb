package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/ema-cross/internal/marketdata Provider
//go:generate mockgen -destination=./mock_trading.go -package=mocks github.com/rxtech-lab/ema-cross/internal/trading OrderExecutor,PositionSizer
//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/ema-cross/internal/strategy Strategy
//go:generate mockgen -destination=./mock_table_sink.go -package=mocks github.com/rxtech-lab/ema-cross/internal/runner TableSink
