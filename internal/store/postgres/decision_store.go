package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

// DecisionStore implements domain.DecisionStore using PostgreSQL.
type DecisionStore struct {
	pool *pgxpool.Pool
}

// NewDecisionStore creates a DecisionStore backed by the given connection pool.
func NewDecisionStore(pool *pgxpool.Pool) *DecisionStore {
	return &DecisionStore{pool: pool}
}

const decisionSelectCols = `id, symbol, action, prev_signal, position,
	outcome, order_id, detail, created_at`

func scanDecisionRows(rows pgx.Rows) ([]domain.DecisionRecord, error) {
	var recs []domain.DecisionRecord
	for rows.Next() {
		var r domain.DecisionRecord
		if err := rows.Scan(
			&r.ID, &r.Symbol, &r.Action, &r.Prev, &r.Position,
			&r.Outcome, &r.OrderID, &r.Detail, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Insert appends one decision to the journal.
func (s *DecisionStore) Insert(ctx context.Context, rec domain.DecisionRecord) error {
	const query = `
		INSERT INTO decisions (
			id, symbol, action, prev_signal, position,
			outcome, order_id, detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Symbol, rec.Action, rec.Prev, rec.Position,
		rec.Outcome, rec.OrderID, rec.Detail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert decision: %w", err)
	}
	return nil
}

// ListRecent returns the most recent decisions across all symbols.
func (s *DecisionStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.DecisionRecord, error) {
	query := `SELECT ` + decisionSelectCols + ` FROM decisions ORDER BY created_at DESC`
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
		return nil, fmt.Errorf("postgres: list recent decisions: %w", err)
	}
	defer rows.Close()

	recs, err := scanDecisionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent decisions: %w", err)
	}
	return recs, nil
}

// ListBySymbol returns the most recent decisions for one symbol.
func (s *DecisionStore) ListBySymbol(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.DecisionRecord, error) {
	query := `SELECT ` + decisionSelectCols + ` FROM decisions WHERE symbol = $1 ORDER BY created_at DESC`
	args := []any{symbol}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list decisions by symbol: %w", err)
	}
	defer rows.Close()

	recs, err := scanDecisionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan decisions by symbol: %w", err)
	}
	return recs, nil
}

// ListBefore returns decisions older than the cutoff in ascending order, for
// archiving. A limit of 0 means no limit.
func (s *DecisionStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.DecisionRecord, error) {
	query := `SELECT ` + decisionSelectCols + ` FROM decisions WHERE created_at < $1 ORDER BY created_at ASC`
	args := []any{cutoff}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list decisions before: %w", err)
	}
	defer rows.Close()
	return scanDecisionRows(rows)
}

// DeleteBefore deletes decisions older than the cutoff. Returns the number deleted.
func (s *DecisionStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM decisions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete decisions before: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.DecisionStore = (*DecisionStore)(nil)
