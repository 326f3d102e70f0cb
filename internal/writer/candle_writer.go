package writer

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"go.uber.org/zap"
)

// CandleWriter buffers candles in DuckDB and exports them to a single file.
// The exported file has the columns time, symbol, open, high, low, close,
// volume, which is what the file market data provider reads back.
type CandleWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	format     types.FileFormat
	logger     *logger.Logger
	count      int
}

// NewCandleWriter creates a new CandleWriter exporting to outputPath.
func NewCandleWriter(outputPath string, format types.FileFormat, log *logger.Logger) *CandleWriter {
	if format == "" {
		format = types.FileFormatParquet
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CandleWriter{
		outputPath: outputPath,
		format:     format,
		logger:     log,
	}
}

// Initialize opens the database, creates the candle table, begins a
// transaction and prepares the insert statement.
func (w *CandleWriter) Initialize() (err error) {
	if !w.format.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported output format: %s", w.format)
	}

	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		w.tx = nil
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write appends one candle.
func (w *CandleWriter) Write(candle types.Candle) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(candle.Time, candle.Symbol, candle.Open, candle.High, candle.Low, candle.Close, candle.Volume)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert candle", err)
	}

	w.count++

	return nil
}

// WriteAll appends candles in order.
func (w *CandleWriter) WriteAll(candles []types.Candle) error {
	for _, candle := range candles {
		if err := w.Write(candle); err != nil {
			return err
		}
	}

	return nil
}

// Finalize commits the transaction and exports the candles, ordered by
// symbol and time, to the output file.
func (w *CandleWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	query := fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY symbol, time) TO '%s' (%s)`,
		escapePath(w.outputPath), copyOptions(w.format))
	if _, err := w.db.Exec(query); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export to %s", w.format)
	}

	w.logger.Info("Exported candles",
		zap.String("path", w.outputPath),
		zap.String("format", string(w.format)),
		zap.Int("count", w.count),
	)

	return w.outputPath, nil
}

// Close releases the statement, transaction and database connection.
func (w *CandleWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return errors.Newf(errors.ErrCodeMarketDataWriteFailed, "errors occurred during close: %s", strings.Join(closeErrors, "; "))
	}

	return nil
}

// OutputPath returns the configured output file path.
func (w *CandleWriter) OutputPath() string {
	return w.outputPath
}

func copyOptions(format types.FileFormat) string {
	if format == types.FileFormatCSV {
		return "FORMAT CSV, HEADER"
	}

	return "FORMAT PARQUET"
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
