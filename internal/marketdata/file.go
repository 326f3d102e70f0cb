package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// FileProvider reads candles from <dataDir>/<symbol>.<format> files with
// the columns time, symbol, open, high, low, close, volume.
type FileProvider struct {
	db      *sql.DB
	dataDir string
	format  types.FileFormat
	sq      squirrel.StatementBuilderType
}

// NewFileProvider creates a provider reading Parquet (the default) or CSV files from dataDir.
func NewFileProvider(dataDir string, format types.FileFormat) (*FileProvider, error) {
	if format == "" {
		format = types.FileFormatParquet
	}

	if !format.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported file format: %s", format)
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "data directory %s is not accessible", dataDir)
	}

	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "%s is not a directory", dataDir)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	return &FileProvider{
		db:      db,
		dataDir: dataDir,
		format:  format,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Path returns the file the provider reads for symbol.
func (p *FileProvider) Path(symbol string) string {
	return filepath.Join(p.dataDir, fmt.Sprintf("%s.%s", symbol, p.format.Extension()))
}

// GetCandles returns the last count rows of the symbol's file. The timeframe
// is only validated: the file is expected to hold candles of that width.
func (p *FileProvider) GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, count int) ([]types.Candle, error) {
	if err := validateRequest(symbol, timeframe, count); err != nil {
		return nil, err
	}

	path := p.Path(symbol)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "no candle file for %s", symbol)
	}

	query, args, err := p.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From(p.source(path)).
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time DESC").
		Limit(uint64(count)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	candles := make([]types.Candle, 0, count)

	for rows.Next() {
		var (
			timestamp                      time.Time
			symbolResult                   string
			open, high, low, close, volume float64
		)

		if err := rows.Scan(&timestamp, &symbolResult, &open, &high, &low, &close, &volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan row", err)
		}

		candles = append(candles, types.Candle{
			Symbol: symbolResult,
			Time:   timestamp.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	slices.Reverse(candles)

	return candles, nil
}

// Close closes the database connection.
func (p *FileProvider) Close() error {
	return p.db.Close()
}

func (p *FileProvider) source(path string) string {
	escaped := strings.ReplaceAll(path, "'", "''")
	if p.format == types.FileFormatCSV {
		return fmt.Sprintf("read_csv_auto('%s')", escaped)
	}

	return fmt.Sprintf("read_parquet('%s')", escaped)
}
