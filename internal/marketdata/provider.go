package marketdata

import (
	"context"

	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// MaxCandles is the largest window a single GetCandles call may request.
const MaxCandles = 50000

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
	ProviderFile    ProviderType = "file"
)

// Provider returns the most recent closed candles for a symbol.
type Provider interface {
	// GetCandles returns up to count closed candles ordered oldest first.
	// The candle that is still forming is never included.
	GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, count int) ([]types.Candle, error)
}

// ProviderConfig holds what NewProvider needs to build any provider.
type ProviderConfig struct {
	Type           ProviderType     `yaml:"type" json:"type" jsonschema:"enum=binance,enum=polygon,enum=file" validate:"required,oneof=binance polygon file"`
	BinanceAPIKey  string           `yaml:"binance_api_key" json:"binance_api_key,omitempty"`
	BinanceSecret  string           `yaml:"binance_secret" json:"binance_secret,omitempty"`
	BinanceBaseURL string           `yaml:"binance_base_url" json:"binance_base_url,omitempty" jsonschema:"description=Overrides the Binance REST endpoint" validate:"omitempty,url"`
	PolygonAPIKey  string           `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" validate:"required_if=Type polygon"`
	DataDir        string           `yaml:"data_dir" json:"data_dir,omitempty" validate:"required_if=Type file"`
	FileFormat     types.FileFormat `yaml:"file_format" json:"file_format,omitempty" jsonschema:"enum=parquet,enum=csv"`
}

// NewProvider creates a market data provider based on the provider type.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderBinance:
		return NewBinanceProvider(config.BinanceAPIKey, config.BinanceSecret, config.BinanceBaseURL), nil
	case ProviderPolygon:
		provider, err := NewPolygonProvider(config.PolygonAPIKey)
		if err != nil {
			return nil, err
		}

		return provider, nil
	case ProviderFile:
		provider, err := NewFileProvider(config.DataDir, config.FileFormat)
		if err != nil {
			return nil, err
		}

		return provider, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}

func validateRequest(symbol string, timeframe types.Timeframe, count int) error {
	if symbol == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	if timeframe.Duration() == 0 {
		return errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", timeframe)
	}

	if count <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "candle count must be positive, got %d", count)
	}

	if count > MaxCandles {
		return errors.Newf(errors.ErrCodeInvalidParameter, "no more than %d candles can be retrieved, got %d", MaxCandles, count)
	}

	return nil
}
