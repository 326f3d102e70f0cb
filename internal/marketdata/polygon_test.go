package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/types"
	emaerrors "github.com/rxtech-lab/ema-cross/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAggsIterator struct {
	aggs []models.Agg
	pos  int
	err  error
}

func (f *fakeAggsIterator) Next() bool {
	if f.pos >= len(f.aggs) {
		return false
	}

	f.pos++

	return true
}

func (f *fakeAggsIterator) Item() models.Agg {
	return f.aggs[f.pos-1]
}

func (f *fakeAggsIterator) Err() error {
	return f.err
}

type fakePolygonAPI struct {
	aggs   []models.Agg
	err    error
	params *models.ListAggsParams
	iter   *fakeAggsIterator
}

// ListAggs returns the aggregates newest first, as a descending query does.
func (f *fakePolygonAPI) ListAggs(_ context.Context, params *models.ListAggsParams) PolygonAggsIterator {
	f.params = params
	desc := make([]models.Agg, len(f.aggs))

	for i, agg := range f.aggs {
		desc[len(f.aggs)-1-i] = agg
	}

	f.iter = &fakeAggsIterator{aggs: desc, err: f.err}

	return f.iter
}

var polygonBase = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

func hourlyAggs(n int) []models.Agg {
	aggs := make([]models.Agg, n)
	for i := 0; i < n; i++ {
		aggs[i] = models.Agg{
			Timestamp: models.Millis(polygonBase.Add(time.Duration(i) * time.Hour)),
			Open:      float64(150 + i),
			High:      float64(151 + i),
			Low:       float64(149 + i),
			Close:     float64(150+i) + 0.5,
			Volume:    1000,
		}
	}

	return aggs
}

type PolygonProviderTestSuite struct {
	suite.Suite
	api      *fakePolygonAPI
	now      time.Time
	provider *PolygonProvider
}

func TestPolygonProviderSuite(t *testing.T) {
	suite.Run(t, new(PolygonProviderTestSuite))
}

func (suite *PolygonProviderTestSuite) SetupTest() {
	suite.api = &fakePolygonAPI{aggs: hourlyAggs(6)}
	// the bar opened at index 5 is still forming
	suite.now = polygonBase.Add(5*time.Hour + 20*time.Minute)
	suite.provider = NewPolygonProviderWithAPI(suite.api, func() time.Time { return suite.now })
}

func (suite *PolygonProviderTestSuite) TestNewPolygonProvider() {
	_, err := NewPolygonProvider("")
	suite.Error(err)
	suite.Equal(emaerrors.ErrCodeInvalidConfiguration, emaerrors.GetCode(err))

	provider, err := NewPolygonProvider("test-key")
	suite.NoError(err)
	suite.NotNil(provider)
}

func (suite *PolygonProviderTestSuite) TestGetCandles() {
	candles, err := suite.provider.GetCandles(context.Background(), "AAPL", types.TimeframeOneHour, 3)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 3)

	suite.Equal(polygonBase.Add(2*time.Hour), candles[0].Time)
	suite.Equal(polygonBase.Add(4*time.Hour), candles[2].Time)
	suite.Equal("AAPL", candles[2].Symbol)
	suite.Equal(154.0, candles[2].Open)
	suite.Equal(155.0, candles[2].High)
	suite.Equal(153.0, candles[2].Low)
	suite.Equal(154.5, candles[2].Close)

	params := suite.api.params
	suite.Require().NotNil(params)
	suite.Equal("AAPL", params.Ticker)
	suite.Equal(1, params.Multiplier)
	suite.Equal(models.Hour, params.Timespan)
	suite.Equal(models.Millis(suite.now), params.To)
	suite.Equal(models.Millis(suite.now.Add(-9*time.Hour-intradaySlack)), params.From)
	suite.Require().NotNil(params.Order)
	suite.Equal(models.Desc, *params.Order)

	// the iterator is abandoned once enough bars are read
	suite.Equal(4, suite.api.iter.pos)
}

func (suite *PolygonProviderTestSuite) TestGetCandlesFewerThanRequested() {
	core, logs := observer.New(zapcore.DebugLevel)
	suite.provider.SetLogger(&logger.Logger{Logger: zap.New(core)})

	candles, err := suite.provider.GetCandles(context.Background(), "AAPL", types.TimeframeOneHour, 100)
	suite.Require().NoError(err)
	suite.Len(candles, 5)
	suite.Equal(polygonBase, candles[0].Time)

	entries := logs.FilterMessage("Polygon returned fewer candles than requested").All()
	suite.Require().Len(entries, 1)
	suite.Equal(int64(100), entries[0].ContextMap()["requested"])
	suite.Equal(int64(5), entries[0].ContextMap()["returned"])
}

func (suite *PolygonProviderTestSuite) TestGetCandlesFullResultDoesNotLog() {
	core, logs := observer.New(zapcore.DebugLevel)
	suite.provider.SetLogger(&logger.Logger{Logger: zap.New(core)})

	_, err := suite.provider.GetCandles(context.Background(), "AAPL", types.TimeframeOneHour, 3)
	suite.Require().NoError(err)
	suite.Equal(0, logs.Len())
}

func (suite *PolygonProviderTestSuite) TestPolygonFromCoversWeekend() {
	// Monday 14:30 UTC, before the US open
	monday := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	lastFriday := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		width  time.Duration
		count  int
		expect time.Time
	}{
		{
			name:   "one minute bars reach back past the weekend",
			width:  time.Minute,
			count:  100,
			expect: monday.Add(-300*time.Minute - intradaySlack),
		},
		{
			name:   "daily bars get no slack",
			width:  24 * time.Hour,
			count:  10,
			expect: monday.Add(-30 * 24 * time.Hour),
		},
		{
			name:   "window past the epoch is clamped",
			width:  7 * 24 * time.Hour,
			count:  MaxCandles,
			expect: time.Unix(0, 0),
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			from := polygonFrom(monday, tc.width, tc.count)
			suite.True(from.Equal(tc.expect), "got %s", from)
		})
	}

	suite.True(polygonFrom(monday, time.Minute, 100).Before(lastFriday))
}

func (suite *PolygonProviderTestSuite) TestGetCandlesIteratorError() {
	suite.api.err = errors.New("unauthorized")

	_, err := suite.provider.GetCandles(context.Background(), "AAPL", types.TimeframeOneHour, 3)
	suite.Error(err)
	suite.Equal(emaerrors.ErrCodeMarketDataFetchFailed, emaerrors.GetCode(err))
}

func (suite *PolygonProviderTestSuite) TestGetCandlesLongLookbackClampsToEpoch() {
	_, err := suite.provider.GetCandles(context.Background(), "AAPL", types.TimeframeOneWeek, MaxCandles)
	suite.Require().NoError(err)
	suite.Equal(models.Millis(time.Unix(0, 0)), suite.api.params.From)
	suite.Equal(models.Week, suite.api.params.Timespan)
}

func (suite *PolygonProviderTestSuite) TestPolygonTimespan() {
	tests := []struct {
		timeframe  types.Timeframe
		multiplier int
		timespan   models.Timespan
	}{
		{types.TimeframeOneMinute, 1, models.Minute},
		{types.TimeframeFiveMinutes, 5, models.Minute},
		{types.TimeframeFifteenMinutes, 15, models.Minute},
		{types.TimeframeThirtyMinutes, 30, models.Minute},
		{types.TimeframeOneHour, 1, models.Hour},
		{types.TimeframeFourHours, 4, models.Hour},
		{types.TimeframeOneDay, 1, models.Day},
		{types.TimeframeOneWeek, 1, models.Week},
	}

	for _, tc := range tests {
		suite.Run(string(tc.timeframe), func() {
			multiplier, timespan, err := polygonTimespan(tc.timeframe)
			suite.NoError(err)
			suite.Equal(tc.multiplier, multiplier)
			suite.Equal(tc.timespan, timespan)
		})
	}

	_, _, err := polygonTimespan("3m")
	suite.Error(err)
}
