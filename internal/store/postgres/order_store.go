package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates an OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderSelectCols = `id, broker_order_id, symbol, side, notional, qty,
	time_in_force, status, filled_qty, filled_avg_px, created_at, filled_at`

func scanOrderRows(rows pgx.Rows) ([]domain.OrderRecord, error) {
	var recs []domain.OrderRecord
	for rows.Next() {
		var r domain.OrderRecord
		if err := rows.Scan(
			&r.ID, &r.BrokerOrderID, &r.Symbol, &r.Side, &r.Notional, &r.Qty,
			&r.TimeInForce, &r.Status, &r.FilledQty, &r.FilledAvgPx,
			&r.CreatedAt, &r.FilledAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Create inserts a newly submitted order.
func (s *OrderStore) Create(ctx context.Context, rec domain.OrderRecord) error {
	const query = `
		INSERT INTO orders (
			id, broker_order_id, symbol, side, notional, qty,
			time_in_force, status, filled_qty, filled_avg_px,
			created_at, filled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.BrokerOrderID, rec.Symbol, rec.Side, rec.Notional, rec.Qty,
		rec.TimeInForce, rec.Status, rec.FilledQty, rec.FilledAvgPx,
		rec.CreatedAt, rec.FilledAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create order: %w", err)
	}
	return nil
}

// UpdateFill records a fill-state change reported by the trade-updates stream.
// The row is keyed by client order ID, which is the journal UUID.
func (s *OrderStore) UpdateFill(ctx context.Context, clientOrderID string, status domain.OrderStatus, filledQty, filledAvgPx float64, filledAt *time.Time) error {
	const query = `
		UPDATE orders
		SET status = $2, filled_qty = $3, filled_avg_px = $4, filled_at = $5
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, clientOrderID, status, filledQty, filledAvgPx, filledAt)
	if err != nil {
		return fmt.Errorf("postgres: update order fill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByClientID returns the order with the given client order ID.
func (s *OrderStore) GetByClientID(ctx context.Context, clientOrderID string) (domain.OrderRecord, error) {
	query := `SELECT ` + orderSelectCols + ` FROM orders WHERE id = $1`

	var r domain.OrderRecord
	err := s.pool.QueryRow(ctx, query, clientOrderID).Scan(
		&r.ID, &r.BrokerOrderID, &r.Symbol, &r.Side, &r.Notional, &r.Qty,
		&r.TimeInForce, &r.Status, &r.FilledQty, &r.FilledAvgPx,
		&r.CreatedAt, &r.FilledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("postgres: get order by client id: %w", err)
	}
	return r, nil
}

// ListRecent returns the most recent orders.
func (s *OrderStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	query := `SELECT ` + orderSelectCols + ` FROM orders ORDER BY created_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent orders: %w", err)
	}
	defer rows.Close()

	recs, err := scanOrderRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent orders: %w", err)
	}
	return recs, nil
}

var _ domain.OrderStore = (*OrderStore)(nil)
