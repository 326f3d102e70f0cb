package marketdata

import (
	"context"
	"slices"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// binancePageLimit is the maximum number of klines Binance returns per request.
const binancePageLimit = 1000

// BinanceAPIClient is the part of the Binance client used to fetch klines.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

// BinanceKlinesService is the builder returned by BinanceAPIClient.NewKlinesService.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service = w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service = w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service = w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Limit(limit int) BinanceKlinesService {
	w.service = w.service.Limit(limit)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceProvider fetches klines from the Binance spot REST API.
type BinanceProvider struct {
	client BinanceAPIClient
	now    func() time.Time
}

// NewBinanceProvider creates a provider backed by the public Binance client.
// Klines are public market data so both credentials may be empty. An empty
// baseURL keeps the production endpoint.
func NewBinanceProvider(apiKey, secretKey, baseURL string) *BinanceProvider {
	client := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return NewBinanceProviderWithAPI(&binanceClientWrapper{client: client}, time.Now)
}

// NewBinanceProviderWithAPI creates a provider with a custom API client and clock.
func NewBinanceProviderWithAPI(client BinanceAPIClient, now func() time.Time) *BinanceProvider {
	if now == nil {
		now = time.Now
	}

	return &BinanceProvider{client: client, now: now}
}

// GetCandles pages backwards from now until count closed klines are collected
// or the exchange has no older data.
func (p *BinanceProvider) GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, count int) ([]types.Candle, error) {
	if err := validateRequest(symbol, timeframe, count); err != nil {
		return nil, err
	}

	nowMillis := p.now().UnixMilli()
	endTime := nowMillis
	candles := make([]types.Candle, 0, count)

	for len(candles) < count {
		// one extra on the first page for the forming kline
		limit := min(binancePageLimit, count-len(candles)+1)

		klines, err := p.client.NewKlinesService().
			Symbol(symbol).
			Interval(string(timeframe)).
			EndTime(endTime).
			Limit(limit).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines from Binance", symbol)
		}

		if len(klines) == 0 {
			break
		}

		page, err := klinesToCandles(symbol, klines, nowMillis)
		if err != nil {
			return nil, err
		}

		// pages arrive oldest first; walk them newest first so older pages append
		slices.Reverse(page)
		candles = append(candles, page...)

		if len(klines) < limit {
			break
		}

		endTime = klines[0].OpenTime - 1
	}

	if len(candles) > count {
		candles = candles[:count]
	}

	slices.Reverse(candles)

	return candles, nil
}

// klinesToCandles converts Binance klines and drops the ones not closed at nowMillis.
func klinesToCandles(symbol string, klines []*binance.Kline, nowMillis int64) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		if k.CloseTime > nowMillis {
			continue
		}

		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, symbol)
			}

			values[i] = v
		}

		candles = append(candles, types.Candle{
			Symbol: symbol,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return candles, nil
}
