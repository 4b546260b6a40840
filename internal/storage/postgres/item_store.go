package postgres

import (
	"context"
	"fmt"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// ItemStore implements storage.ItemStore using PostgreSQL.
type ItemStore struct {
	pool *Pool
}

// NewItemStore creates a new ItemStore.
func NewItemStore(pool *Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ItemStore = (*ItemStore)(nil)

// InsertIfAbsent registers any names not yet present and returns the
// number of newly created items. Duplicate-insert attempts are absorbed
// by the uniqueness constraint rather than pre-checked, so concurrent
// registration cannot race.
func (s *ItemStore) InsertIfAbsent(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO items (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, names)
	if err != nil {
		return 0, fmt.Errorf("insert items: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// GetAll retrieves all items ordered by ID ASC.
func (s *ItemStore) GetAll(ctx context.Context) ([]domain.Item, error) {
	query := `SELECT id, name FROM items ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}

	return items, nil
}

// GetByID retrieves an item by ID. Returns ErrNotFound if not exists.
func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT id, name FROM items WHERE id = $1`

	var it domain.Item
	err := s.pool.QueryRow(ctx, query, id).Scan(&it.ID, &it.Name)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}
	return &it, nil
}

// IDsByName returns the canonical-name-to-ID mapping for all items.
func (s *ItemStore) IDsByName(ctx context.Context) (map[string]int64, error) {
	query := `SELECT id, name FROM items`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get item ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan item id row: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item id rows: %w", err)
	}

	return ids, nil
}
