package binance_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/ema-cross/e2e/binance/mockserver"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/marketdata"
	"github.com/rxtech-lab/ema-cross/internal/metrics"
	"github.com/rxtech-lab/ema-cross/internal/runner"
	"github.com/rxtech-lab/ema-cross/internal/strategy"
	"github.com/rxtech-lab/ema-cross/internal/trading"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/internal/writer"
	"github.com/rxtech-lab/ema-cross/mocks"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
	server   *mockserver.MockBinanceServer
	executor *trading.PaperExecutor
	metrics  *metrics.Metrics
	outDir   string
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	// nine closed candles then one opened a second ago and still forming
	start := time.Now().UTC().Add(-9*time.Minute - time.Second)
	crossing := mocks.CandlesFromCloses("BTCUSDT", start, 10, 10, 10, 12, 14, 16, 18, 20, 12, 15)
	flat := mocks.CandlesFromCloses("ETHUSDT", start, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10)

	suite.server = mockserver.NewMockBinanceServer()
	suite.server.SetCandles("BTCUSDT", crossing)
	suite.server.SetCandles("ETHUSDT", flat)
	suite.Require().NoError(suite.server.Start(":0"))

	executor, err := trading.NewPaperExecutor(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.executor = executor
	suite.metrics = metrics.NewMetrics()
	suite.outDir = suite.T().TempDir()
}

func (suite *PipelineTestSuite) TearDownTest() {
	suite.executor.Close()
	suite.server.Stop()
}

func (suite *PipelineTestSuite) newRunner(symbols ...string) *runner.Runner {
	log := logger.NewNopLogger()

	provider, err := marketdata.NewProvider(marketdata.ProviderConfig{
		Type:           marketdata.ProviderBinance,
		BinanceBaseURL: suite.server.BaseURL(),
	})
	suite.Require().NoError(err)

	emaCross, err := strategy.NewEMACross(strategy.Config{EMAOne: 2, EMATwo: 3}, log)
	suite.Require().NoError(err)

	sizer, err := trading.NewRiskPositionSizer(trading.RiskPositionSizer{
		Balance:      1000,
		RiskFraction: 0.01,
		ContractSize: 1,
		LotStep:      0.1,
	})
	suite.Require().NoError(err)

	tables, err := writer.NewTableWriter(suite.outDir, types.FileFormatCSV, log)
	suite.Require().NoError(err)

	r, err := runner.NewRunner(runner.Config{
		Symbols:      symbols,
		Timeframe:    types.TimeframeOneMinute,
		CandleCount:  9,
		PollInterval: time.Minute,
	}, runner.Dependencies{
		Provider: provider,
		Strategy: emaCross,
		Sizer:    sizer,
		Executor: suite.executor,
		Tables:   tables,
		Metrics:  suite.metrics,
		Logger:   log,
	})
	suite.Require().NoError(err)

	return r
}

func (suite *PipelineTestSuite) TestCrossoverPlacesBuyStop() {
	report := suite.newRunner("BTCUSDT", "ETHUSDT").RunOnce(context.Background())
	suite.Require().Len(report.Symbols, 2)
	suite.Equal(0, report.Failures())

	btc := report.Symbols[0]
	suite.True(btc.Crossed)
	suite.Equal(9, btc.Candles)
	suite.FileExists(btc.TablePath)

	eth := report.Symbols[1]
	suite.False(eth.Crossed)
	suite.True(eth.Order.IsNone())

	orders, err := suite.executor.Orders(context.Background(), "BTCUSDT")
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)

	order := orders[0]
	suite.Equal(types.OrderTypeBuyStop, order.Type)
	suite.Equal(types.OrderStatusPending, order.Status)
	suite.Equal("EMA_Cross_2_3", order.Comment)
	suite.InDelta(20.5, order.StopPrice, 1e-9)
	suite.InDelta(18, order.StopLoss, 1e-9)
	suite.InDelta(23, order.TakeProfit, 1e-9)
	// 1000 * 0.01 / 2.5
	suite.InDelta(4, order.Volume, 1e-9)

	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.SignalsTotal.WithLabelValues("BTCUSDT", string(types.DirectionBuy))))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.OrdersTotal.WithLabelValues("BTCUSDT", string(types.OrderStatusPending))))

	// one page per symbol, one extra kline requested for the forming candle
	for _, request := range suite.server.Requests() {
		suite.Equal("1m", request.Interval)
		suite.Equal(10, request.Limit)
	}
}

func (suite *PipelineTestSuite) TestExchangeFailureDoesNotStopCycle() {
	suite.server.SetFailure("BTCUSDT", http.StatusTooManyRequests)

	report := suite.newRunner("BTCUSDT", "ETHUSDT", "XRPUSDT").RunOnce(context.Background())
	suite.Require().Len(report.Symbols, 3)
	suite.Equal(2, report.Failures())

	suite.True(errors.HasCode(report.Symbols[0].Err, errors.ErrCodeMarketDataFetchFailed))
	suite.NoError(report.Symbols[1].Err)
	suite.True(errors.HasCode(report.Symbols[2].Err, errors.ErrCodeMarketDataFetchFailed))

	suite.Equal(2.0, testutil.ToFloat64(suite.metrics.FailuresTotal.WithLabelValues(metrics.StageFetch)))

	orders, err := suite.executor.Orders(context.Background(), "")
	suite.Require().NoError(err)
	suite.Empty(orders)
}
