package marketdata

import (
	"context"
	"slices"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"go.uber.org/zap"
)

// intradaySlack is added to intraday lookbacks so a window spanning a weekend
// or a market holiday still holds enough bars.
const intradaySlack = 4 * 24 * time.Hour

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the Polygon client used to fetch aggregates.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params)
}

// PolygonProvider fetches aggregate bars from Polygon.io.
type PolygonProvider struct {
	client PolygonAPIClient
	now    func() time.Time
	logger *logger.Logger
}

// NewPolygonProvider creates a new Polygon provider.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return NewPolygonProviderWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}, time.Now), nil
}

// NewPolygonProviderWithAPI creates a provider with a custom API client and clock.
func NewPolygonProviderWithAPI(client PolygonAPIClient, now func() time.Time) *PolygonProvider {
	if now == nil {
		now = time.Now
	}

	return &PolygonProvider{client: client, now: now, logger: logger.NewNopLogger()}
}

// SetLogger sets the logger used for request diagnostics.
func (p *PolygonProvider) SetLogger(log *logger.Logger) {
	if log != nil {
		p.logger = log
	}
}

// GetCandles requests the aggregates newest first and stops after count closed bars.
func (p *PolygonProvider) GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, count int) ([]types.Candle, error) {
	if err := validateRequest(symbol, timeframe, count); err != nil {
		return nil, err
	}

	multiplier, timespan, err := polygonTimespan(timeframe)
	if err != nil {
		return nil, err
	}

	now := p.now()
	width := timeframe.Duration()

	from := polygonFrom(now, width, count)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(from),
		To:         models.Millis(now),
	}.WithOrder(models.Desc).WithLimit(MaxCandles)

	iter := p.client.ListAggs(ctx, params)
	candles := make([]types.Candle, 0, count)

	for len(candles) < count && iter.Next() {
		agg := iter.Item()
		openTime := time.Time(agg.Timestamp)

		if openTime.Add(width).After(now) {
			continue
		}

		candles = append(candles, types.Candle{
			Symbol: symbol,
			Time:   openTime.UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "error iterating polygon aggregates for %s", symbol)
	}

	if len(candles) < count {
		p.logger.Debug("Polygon returned fewer candles than requested",
			zap.String("symbol", symbol),
			zap.String("timeframe", string(timeframe)),
			zap.Int("requested", count),
			zap.Int("returned", len(candles)),
			zap.Time("from", from),
		)
	}

	slices.Reverse(candles)

	return candles, nil
}

// polygonFrom returns the start of the request window. Markets are closed part
// of the time, so the window covers three times count bars, plus intradaySlack
// for timeframes under a day. The result never precedes the Unix epoch.
func polygonFrom(now time.Time, width time.Duration, count int) time.Time {
	epoch := time.Unix(0, 0)

	slack := time.Duration(0)
	if width < 24*time.Hour {
		slack = intradaySlack
	}

	available := now.Sub(epoch) - slack
	if available <= 0 || time.Duration(count) >= available/3/width {
		return epoch
	}

	return now.Add(-time.Duration(count)*width*3 - slack)
}

// polygonTimespan converts a timeframe to the multiplier and timespan pair Polygon expects.
func polygonTimespan(timeframe types.Timeframe) (int, models.Timespan, error) {
	switch timeframe {
	case types.TimeframeOneMinute:
		return 1, models.Minute, nil
	case types.TimeframeFiveMinutes:
		return 5, models.Minute, nil
	case types.TimeframeFifteenMinutes:
		return 15, models.Minute, nil
	case types.TimeframeThirtyMinutes:
		return 30, models.Minute, nil
	case types.TimeframeOneHour:
		return 1, models.Hour, nil
	case types.TimeframeFourHours:
		return 4, models.Hour, nil
	case types.TimeframeOneDay:
		return 1, models.Day, nil
	case types.TimeframeOneWeek:
		return 1, models.Week, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for Polygon: %s", timeframe)
	}
}
