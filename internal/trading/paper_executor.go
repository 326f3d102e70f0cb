package trading

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"go.uber.org/zap"
)

// PaperExecutor records stop orders in an in-memory DuckDB table instead of
// sending them to a broker.
type PaperExecutor struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewPaperExecutor creates a new instance of PaperExecutor.
func NewPaperExecutor(log *logger.Logger) (*PaperExecutor, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			type TEXT,
			volume DOUBLE,
			stop_price DOUBLE,
			stop_loss DOUBLE,
			take_profit DOUBLE,
			comment TEXT,
			created_at TIMESTAMP,
			status TEXT
		)
	`)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create orders table: %w", err)
	}

	return &PaperExecutor{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// PlaceStopOrder implements OrderExecutor.
func (p *PaperExecutor) PlaceStopOrder(ctx context.Context, order types.StopOrder) error {
	if err := order.Validate(); err != nil {
		return err
	}

	_, err := p.sq.
		Insert("orders").
		Columns("id", "symbol", "type", "volume", "stop_price", "stop_loss", "take_profit", "comment", "created_at", "status").
		Values(order.ID, order.Symbol, string(order.Type), order.Volume, order.StopPrice, order.StopLoss,
			order.TakeProfit, order.Comment, order.CreatedAt, string(types.OrderStatusPending)).
		RunWith(p.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOrderFailed, "failed to record paper order", err)
	}

	p.logger.Info("Paper order placed",
		zap.String("id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("type", string(order.Type)),
		zap.Float64("volume", order.Volume),
		zap.Float64("stop_price", order.StopPrice),
		zap.Float64("stop_loss", order.StopLoss),
		zap.Float64("take_profit", order.TakeProfit),
	)

	return nil
}

// Orders returns the recorded orders, oldest first. An empty symbol returns all orders.
func (p *PaperExecutor) Orders(ctx context.Context, symbol string) ([]types.StopOrder, error) {
	query := p.sq.
		Select("id", "symbol", "type", "volume", "stop_price", "stop_loss", "take_profit", "comment", "created_at", "status").
		From("orders").
		OrderBy("created_at ASC", "id ASC")

	if symbol != "" {
		query = query.Where(squirrel.Eq{"symbol": symbol})
	}

	rows, err := query.RunWith(p.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query paper orders", err)
	}
	defer rows.Close()

	orders := []types.StopOrder{}

	for rows.Next() {
		var order types.StopOrder

		var orderType, status string

		if err := rows.Scan(&order.ID, &order.Symbol, &orderType, &order.Volume, &order.StopPrice,
			&order.StopLoss, &order.TakeProfit, &order.Comment, &order.CreatedAt, &status); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan paper order", err)
		}

		order.Type = types.StopOrderType(orderType)
		order.Status = types.OrderStatus(status)
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating paper orders", err)
	}

	return orders, nil
}

// Close closes the database connection.
func (p *PaperExecutor) Close() error {
	if p == nil || p.db == nil {
		return nil
	}

	return p.db.Close()
}
