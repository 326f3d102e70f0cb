package writer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/strategy"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"go.uber.org/zap"
)

const (
	ColumnEMACross   = "ema_cross"
	ColumnDirection  = "direction"
	ColumnStopLoss   = "stop_loss"
	ColumnStopPrice  = "stop_price"
	ColumnTakeProfit = "take_profit"

	insertBatchSize = 500
)

// TableWriter exports an evaluated window, one row per candle, for inspection.
type TableWriter struct {
	outputDir string
	format    types.FileFormat
	logger    *logger.Logger
	sq        squirrel.StatementBuilderType
}

// NewTableWriter creates a TableWriter that writes into outputDir.
func NewTableWriter(outputDir string, format types.FileFormat, log *logger.Logger) (*TableWriter, error) {
	if format == "" {
		format = types.FileFormatCSV
	}

	if !format.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported table format: %s", format)
	}

	if outputDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "output directory is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &TableWriter{
		outputDir: outputDir,
		format:    format,
		logger:    log,
		sq:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// FileName returns <symbol>-<comment>.<ext>.
func (w *TableWriter) FileName(symbol, comment string) string {
	return fmt.Sprintf("%s-%s.%s", symbol, comment, w.format.Extension())
}

// Columns returns the exported column names in file order.
func Columns(result strategy.Result) []string {
	columns := []string{"time", "symbol", "open", "high", "low", "close", "volume"}
	for _, s := range result.Table.SeriesByPeriod() {
		columns = append(columns, s.Name)
	}

	return append(columns, ColumnEMACross, ColumnDirection, ColumnStopLoss, ColumnStopPrice, ColumnTakeProfit)
}

// Write exports the result table to <outputDir>/<symbol>-<comment>.<ext> and
// returns the file path. Only rows with a crossover flag are exported, so the
// first candle of the window, which has no predecessor, is left out. Warm-up
// indicator values and levels of rows without a signal are written as 0.0,
// matching the numeric view used for crossovers.
func (w *TableWriter) Write(ctx context.Context, symbol, comment string, result strategy.Result) (string, error) {
	flagged := make([]int, 0, result.Table.Len())
	for i := range result.Table.Len() {
		if _, ok := result.Crossovers.At(i); ok {
			flagged = append(flagged, i)
		}
	}

	if len(flagged) == 0 {
		return "", errors.Newf(errors.ErrCodeTableWriteFailed, "no rows to write for %s", symbol)
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeTableWriteFailed, err, "failed to create output directory %s", w.outputDir)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTableWriteFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	series := result.Table.SeriesByPeriod()
	columns := Columns(result)

	definitions := []string{
		`"time" TIMESTAMP`, `"symbol" TEXT`, `"open" DOUBLE`, `"high" DOUBLE`,
		`"low" DOUBLE`, `"close" DOUBLE`, `"volume" DOUBLE`,
	}
	for _, s := range series {
		definitions = append(definitions, fmt.Sprintf("%q DOUBLE", s.Name))
	}

	definitions = append(definitions,
		fmt.Sprintf("%q BOOLEAN", ColumnEMACross),
		fmt.Sprintf("%q TEXT", ColumnDirection),
		fmt.Sprintf("%q DOUBLE", ColumnStopLoss),
		fmt.Sprintf("%q DOUBLE", ColumnStopPrice),
		fmt.Sprintf("%q DOUBLE", ColumnTakeProfit),
	)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE indicator_table (%s)", strings.Join(definitions, ", "))); err != nil {
		return "", errors.Wrap(errors.ErrCodeTableWriteFailed, "failed to create table", err)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}

	signals := make(map[int]types.TradeSignal, len(result.Signals))
	for _, s := range result.Signals {
		signals[s.Index] = s
	}

	flat := make([][]float64, len(series))
	for i, s := range series {
		flat[i] = s.Float64s()
	}

	candles := result.Table.Candles
	for start := 0; start < len(flagged); start += insertBatchSize {
		end := min(start+insertBatchSize, len(flagged))
		insert := w.sq.Insert("indicator_table").Columns(quoted...)

		for _, i := range flagged[start:end] {
			c := candles[i]
			row := []any{c.Time, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume}

			for k := range series {
				row = append(row, flat[k][i])
			}

			signal, hasSignal := signals[i]
			direction := ""

			if hasSignal {
				direction = string(signal.Direction)
			}

			row = append(row, result.Crossovers.Crossed(i), direction, signal.StopLoss, signal.StopPrice, signal.TakeProfit)
			insert = insert.Values(row...)
		}

		if _, err := insert.RunWith(db).ExecContext(ctx); err != nil {
			return "", errors.Wrap(errors.ErrCodeTableWriteFailed, "failed to insert rows", err)
		}
	}

	path := filepath.Join(w.outputDir, w.FileName(symbol, comment))

	query := fmt.Sprintf(`COPY indicator_table TO '%s' (%s)`, escapePath(path), copyOptions(w.format))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return "", errors.Wrapf(errors.ErrCodeTableWriteFailed, err, "failed to export table to %s", path)
	}

	w.logger.Debug("Indicator table written",
		zap.String("symbol", symbol),
		zap.String("path", path),
		zap.Int("rows", len(candles)),
	)

	return path, nil
}
