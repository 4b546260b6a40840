package storage

import (
	"context"

	"game-market-tracker/internal/domain"
)

// ItemStore provides access to the item registry. Items are created
// lazily the first time a name is observed and never mutated or deleted.
type ItemStore interface {
	// InsertIfAbsent registers any names not yet present and returns the
	// number of newly created items. Existing items are left untouched,
	// so surrogate IDs are stable across runs.
	InsertIfAbsent(ctx context.Context, names []string) (int, error)

	// GetAll retrieves all items ordered by ID ASC.
	GetAll(ctx context.Context) ([]domain.Item, error)

	// GetByID retrieves an item by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Item, error)

	// IDsByName returns the canonical-name-to-ID mapping for all items.
	IDsByName(ctx context.Context) (map[string]int64, error)
}

// ReplaceTx stages a wholesale replacement of the price fact table.
// Until Commit, readers keep seeing the prior complete fact set; after
// Rollback the store is byte-for-byte unchanged.
type ReplaceTx interface {
	// Append stages one batch of observations.
	Append(ctx context.Context, obs []domain.PriceObservation) error

	// Commit atomically publishes the staged fact set.
	Commit(ctx context.Context) error

	// Rollback discards all staged writes. Safe to call after Commit.
	Rollback(ctx context.Context) error
}

// PriceStore provides access to the normalized price fact table.
type PriceStore interface {
	// BeginReplace opens a replace transaction whose staged state starts
	// empty. The prior fact set stays visible until Commit.
	BeginReplace(ctx context.Context) (ReplaceTx, error)

	// AppendBatch adds observations without clearing existing facts.
	// Used by incremental snapshot ingestion.
	AppendBatch(ctx context.Context, obs []domain.PriceObservation) error

	// HasTimestamp reports whether any observation exists at ts.
	HasTimestamp(ctx context.Context, ts int64) (bool, error)

	// ObservationsBySide retrieves all observations of one side with
	// timestamp <= until, ordered by timestamp ASC, item_id ASC.
	ObservationsBySide(ctx context.Context, side domain.Side, until int64) ([]domain.PriceObservation, error)

	// ObservationsByItem retrieves both sides for one item within
	// [from, until], ordered by timestamp ASC.
	ObservationsByItem(ctx context.Context, itemID, from, until int64) ([]domain.PriceObservation, error)

	// IndexSeries returns the per-timestamp sum of one side's prices
	// across all items within [from, until], ordered by timestamp ASC.
	IndexSeries(ctx context.Context, side domain.Side, from, until int64) ([]domain.IndexPoint, error)

	// LatestPrices returns each item's most recent observation of one
	// side. Items with no observations are absent from the map.
	LatestPrices(ctx context.Context, side domain.Side) (map[int64]domain.PriceObservation, error)

	// Count returns the number of stored observations.
	Count(ctx context.Context) (int64, error)
}

// RawQuoteSource reads the external raw store: two wide time-series
// tables (ask, bid), one price column per item. The raw store is
// append-only input; this interface never writes to it.
type RawQuoteSource interface {
	// ItemNames returns the distinct non-timestamp column names across
	// both tables. The set is rediscovered on every call since tracked
	// items grow over time.
	ItemNames(ctx context.Context) ([]string, error)

	// ScanQuotes streams every present, non-null price cell of both
	// tables as a RawQuote. Scanning stops at the first error returned
	// by fn.
	ScanQuotes(ctx context.Context, fn func(domain.RawQuote) error) error
}
