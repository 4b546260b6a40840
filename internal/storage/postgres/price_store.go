package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// PriceStore implements storage.PriceStore using PostgreSQL.
type PriceStore struct {
	pool *Pool
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(pool *Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// priceColumns are the insert columns for CopyFrom.
var priceColumns = []string{"timestamp", "item_id", "price", "side"}

// copySource adapts observations to pgx.CopyFromSource rows.
func copySource(obs []domain.PriceObservation) pgx.CopyFromSource {
	rows := make([][]any, len(obs))
	for i, o := range obs {
		rows[i] = []any{o.Timestamp, o.ItemID, o.Price, string(o.Side)}
	}
	return pgx.CopyFromRows(rows)
}

// BeginReplace opens a transaction that clears the prices table. The
// prior fact set stays visible to concurrent readers until Commit, so
// batch boundaries are never observable as partial states.
func (s *PriceStore) BeginReplace(ctx context.Context) (storage.ReplaceTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM prices`); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("clear prices: %w", err)
	}

	return &replaceTx{tx: tx}, nil
}

// replaceTx implements storage.ReplaceTx over a pgx transaction.
type replaceTx struct {
	tx     pgx.Tx
	closed bool
}

var _ storage.ReplaceTx = (*replaceTx)(nil)

// Append stages one batch of observations.
func (t *replaceTx) Append(ctx context.Context, obs []domain.PriceObservation) error {
	if t.closed {
		return storage.ErrTxClosed
	}
	if len(obs) == 0 {
		return nil
	}

	_, err := t.tx.CopyFrom(ctx, pgx.Identifier{"prices"}, priceColumns, copySource(obs))
	if err != nil {
		return fmt.Errorf("copy observations: %w", err)
	}
	return nil
}

// Commit atomically publishes the staged fact set.
func (t *replaceTx) Commit(ctx context.Context) error {
	if t.closed {
		return storage.ErrTxClosed
	}
	t.closed = true

	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Rollback discards all staged writes. Safe to call after Commit.
func (t *replaceTx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true

	if err := t.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback replace: %w", err)
	}
	return nil
}

// AppendBatch adds observations without clearing existing facts.
func (s *PriceStore) AppendBatch(ctx context.Context, obs []domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{"prices"}, priceColumns, copySource(obs))
	if err != nil {
		return fmt.Errorf("append observations: %w", err)
	}
	return nil
}

// HasTimestamp reports whether any observation exists at ts.
func (s *PriceStore) HasTimestamp(ctx context.Context, ts int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM prices WHERE timestamp = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, ts).Scan(&exists); err != nil {
		return false, fmt.Errorf("check timestamp: %w", err)
	}
	return exists, nil
}

// ObservationsBySide retrieves all observations of one side with
// timestamp <= until, ordered by timestamp ASC, item_id ASC.
func (s *PriceStore) ObservationsBySide(ctx context.Context, side domain.Side, until int64) ([]domain.PriceObservation, error) {
	query := `
		SELECT timestamp, item_id, price, side
		FROM prices
		WHERE side = $1 AND timestamp <= $2
		ORDER BY timestamp ASC, item_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(side), until)
	if err != nil {
		return nil, fmt.Errorf("get observations by side: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// ObservationsByItem retrieves both sides for one item within
// [from, until], ordered by timestamp ASC.
func (s *PriceStore) ObservationsByItem(ctx context.Context, itemID, from, until int64) ([]domain.PriceObservation, error) {
	query := `
		SELECT timestamp, item_id, price, side
		FROM prices
		WHERE item_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC, side ASC
	`

	rows, err := s.pool.Query(ctx, query, itemID, from, until)
	if err != nil {
		return nil, fmt.Errorf("get observations by item: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// IndexSeries returns the per-timestamp sum of one side's prices across
// all items within [from, until], ordered by timestamp ASC.
func (s *PriceStore) IndexSeries(ctx context.Context, side domain.Side, from, until int64) ([]domain.IndexPoint, error) {
	query := `
		SELECT timestamp, SUM(price), COUNT(*)
		FROM prices
		WHERE side = $1 AND timestamp >= $2 AND timestamp <= $3
		GROUP BY timestamp
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, string(side), from, until)
	if err != nil {
		return nil, fmt.Errorf("get index series: %w", err)
	}
	defer rows.Close()

	var points []domain.IndexPoint
	for rows.Next() {
		var p domain.IndexPoint
		if err := rows.Scan(&p.Timestamp, &p.Price, &p.Items); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}

	return points, nil
}

// LatestPrices returns each item's most recent observation of one side.
func (s *PriceStore) LatestPrices(ctx context.Context, side domain.Side) (map[int64]domain.PriceObservation, error) {
	query := `
		SELECT DISTINCT ON (item_id) timestamp, item_id, price, side
		FROM prices
		WHERE side = $1
		ORDER BY item_id ASC, timestamp DESC
	`

	rows, err := s.pool.Query(ctx, query, string(side))
	if err != nil {
		return nil, fmt.Errorf("get latest prices: %w", err)
	}
	defer rows.Close()

	latest := make(map[int64]domain.PriceObservation)
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		latest[o.ItemID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest price rows: %w", err)
	}

	return latest, nil
}

// Count returns the number of stored observations.
func (s *PriceStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}

// scanObservation scans the current row into a PriceObservation.
func scanObservation(rows pgx.Rows) (domain.PriceObservation, error) {
	var o domain.PriceObservation
	var sideStr string

	if err := rows.Scan(&o.Timestamp, &o.ItemID, &o.Price, &sideStr); err != nil {
		return o, fmt.Errorf("scan observation row: %w", err)
	}
	o.Side = domain.Side(sideStr)
	return o, nil
}

// scanObservations scans all rows into a slice of PriceObservation.
func scanObservations(rows pgx.Rows) ([]domain.PriceObservation, error) {
	var obs []domain.PriceObservation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}
	return obs, nil
}
