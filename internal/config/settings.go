package config

import (
	"encoding/json"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/ema-cross/internal/marketdata"
	"github.com/rxtech-lab/ema-cross/internal/strategy"
	"github.com/rxtech-lab/ema-cross/internal/trading"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/internal/version"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeframe    = "M1"
	DefaultCandleCount  = 2000
	DefaultEMAOne       = 50
	DefaultEMATwo       = 200
	DefaultOutputDir    = "data"
	DefaultPollInterval = time.Minute
	DefaultLogLevel     = "info"
	DefaultMetricsAddr  = ":9090"

	EnvBinanceAPIKey = "BINANCE_API_KEY"
	EnvBinanceSecret = "BINANCE_SECRET_KEY"
	EnvPolygonAPIKey = "POLYGON_API_KEY"
)

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Serve /metrics while running"`
	Address string `yaml:"address" json:"address,omitempty" jsonschema:"title=Address,description=Listen address of the metrics server,default=:9090"`
}

// Settings is the content of the settings file.
type Settings struct {
	Version      string                    `yaml:"version" json:"version,omitempty" jsonschema:"title=Version,description=Minimum ema-cross version able to read this file"`
	Symbols      []string                  `yaml:"symbols" json:"symbols" jsonschema:"title=Symbols,description=Symbols evaluated on every cycle,minItems=1" validate:"required,min=1,dive,required"`
	Timeframe    string                    `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,description=Candle width (1m 5m 15m 30m 1h 4h 1d 1w or M1 M15 H1 H4 D1 W1 daily weekly),default=M1" validate:"required"`
	CandleCount  int                       `yaml:"candle_count" json:"candle_count" jsonschema:"title=Candle Count,description=Closed candles evaluated per cycle,minimum=1,maximum=50000,default=2000" validate:"gt=0,lte=50000"`
	Strategy     strategy.Config           `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy"`
	Comment      string                    `yaml:"comment" json:"comment,omitempty" jsonschema:"title=Comment,description=Order comment and table file suffix. Defaults to the strategy name"`
	OutputDir    string                    `yaml:"output_dir" json:"output_dir" jsonschema:"title=Output Directory,default=data" validate:"required"`
	OutputFormat types.FileFormat          `yaml:"output_format" json:"output_format,omitempty" jsonschema:"title=Output Format,enum=csv,enum=parquet,default=csv" validate:"omitempty,oneof=csv parquet"`
	PollInterval time.Duration             `yaml:"poll_interval" json:"poll_interval" jsonschema:"title=Poll Interval,description=Time between two cycles of the run command,default=1m" validate:"gt=0"`
	LogLevel     string                    `yaml:"log_level" json:"log_level,omitempty" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
	Provider     marketdata.ProviderConfig `yaml:"provider" json:"provider" jsonschema:"title=Market Data Provider"`
	Sizing       trading.RiskPositionSizer `yaml:"sizing" json:"sizing" jsonschema:"title=Position Sizing"`
	Metrics      MetricsConfig             `yaml:"metrics" json:"metrics,omitempty" jsonschema:"title=Metrics"`
}

// Default returns settings with every optional field filled in.
func Default() Settings {
	return Settings{
		Timeframe:    DefaultTimeframe,
		CandleCount:  DefaultCandleCount,
		Strategy:     strategy.Config{EMAOne: DefaultEMAOne, EMATwo: DefaultEMATwo},
		OutputDir:    DefaultOutputDir,
		OutputFormat: types.FileFormatCSV,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
		Provider:     marketdata.ProviderConfig{Type: marketdata.ProviderBinance},
		Sizing: trading.RiskPositionSizer{
			Balance:      10000,
			RiskFraction: 0.01,
			ContractSize: 1,
			LotStep:      0.01,
			MinLot:       0.01,
		},
		Metrics: MetricsConfig{Address: DefaultMetricsAddr},
	}
}

// Load reads, decodes and validates the settings file at path. Values
// missing from the file keep their defaults and credentials set in the
// environment override the file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrapf(errors.ErrCodeInvalidSettingsFile, err, "%s does not exist or cannot be read", path)
	}

	return Parse(data)
}

// Parse decodes and validates settings from YAML.
func Parse(data []byte) (Settings, error) {
	settings := Default()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidSettingsFile, "failed to parse settings", err)
	}

	settings.ApplyEnv()

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// ApplyEnv overrides provider credentials with the environment.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvBinanceAPIKey); v != "" {
		s.Provider.BinanceAPIKey = v
	}

	if v := os.Getenv(EnvBinanceSecret); v != "" {
		s.Provider.BinanceSecret = v
	}

	if v := os.Getenv(EnvPolygonAPIKey); v != "" {
		s.Provider.PolygonAPIKey = v
	}
}

// Validate validates every section of the settings.
func (s Settings) Validate() error {
	if err := version.CheckSettingsCompatibility(version.GetVersion(), s.Version); err != nil {
		return err
	}

	if err := validator.New().Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid settings", err)
	}

	if _, err := types.ParseTimeframe(s.Timeframe); err != nil {
		return err
	}

	if err := s.Strategy.Validate(); err != nil {
		return err
	}

	if s.CandleCount <= s.Strategy.SlowPeriod() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"candle_count %d must exceed the slower ema period %d", s.CandleCount, s.Strategy.SlowPeriod())
	}

	return nil
}

// TimeframeValue returns the parsed timeframe. Settings returned by Load are
// already validated so the error only matters for hand-built settings.
func (s Settings) TimeframeValue() (types.Timeframe, error) {
	return types.ParseTimeframe(s.Timeframe)
}

// OrderComment returns the configured comment or strategyName when none is set.
func (s Settings) OrderComment(strategyName string) string {
	if s.Comment != "" {
		return s.Comment
	}

	return strategyName
}

// GenerateSchema generates a JSON schema for the settings file.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|ms|s|m|h))+$`,
					Description: "Go duration, e.g. 30s or 1m",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&Settings{})
	schema.Title = "ema-cross-settings"
	schema.Description = "Settings file of the ema cross signal runner"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates the settings schema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnknown, "failed to marshal schema", err)
	}

	return string(schemaBytes), nil
}
