// Package syncer normalizes the raw wide-table quote store into the
// relational market store. Each cycle registers newly observed items
// incrementally and replaces the price fact table wholesale.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// Sync cycle failures, by failure site. Retrying a failed cycle is
// always safe: the normalized store keeps its pre-sync state.
var (
	// ErrSourceRead reports an unreachable or malformed raw store.
	ErrSourceRead = errors.New("raw store read failed")

	// ErrSyncIntegrity reports a write failure mid-cycle; the whole
	// replacement was rolled back.
	ErrSyncIntegrity = errors.New("sync cycle rolled back")

	// ErrSyncInProgress reports an overlapping Run attempt. Cycles
	// never interleave; the caller may retry after the current one.
	ErrSyncInProgress = errors.New("sync cycle already in progress")
)

// DefaultBatchSize bounds memory per staged write batch. Batch
// boundaries are invisible to readers; the replacement commits as one
// transaction.
const DefaultBatchSize = 1000

// Options configures an Engine.
type Options struct {
	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine runs sync cycles. It is the sole writer to the normalized
// store; a cycle runs to completion or fails before another begins.
type Engine struct {
	source    storage.RawQuoteSource
	items     storage.ItemStore
	prices    storage.PriceStore
	batchSize int
	logger    *slog.Logger

	running sync.Mutex
}

// New creates a sync engine.
func New(source storage.RawQuoteSource, items storage.ItemStore, prices storage.PriceStore, opts Options) *Engine {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		source:    source,
		items:     items,
		prices:    prices,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Result summarizes one completed sync cycle.
type Result struct {
	CycleID      string // correlates log lines of one cycle
	Items        int    // registered items after the cycle
	NewItems     int    // items created this cycle
	Observations int    // fact rows in the new snapshot
}

// Run executes one sync cycle: register unseen item names, then
// atomically replace the price fact table from a full scan of the raw
// store. Idempotent against an unchanged raw store. A concurrent Run
// returns ErrSyncInProgress.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if !e.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.running.Unlock()

	cycleID := uuid.NewString()
	log := e.logger.With("cycle_id", cycleID)
	log.Info("sync cycle started")

	names, err := e.source.ItemNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: discover item columns: %w", ErrSourceRead, err)
	}

	newItems, err := e.items.InsertIfAbsent(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("%w: register items: %w", ErrSyncIntegrity, err)
	}
	log.Info("item registry synced", "columns", len(names), "new_items", newItems)

	ids, err := e.items.IDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load item ids: %w", ErrSyncIntegrity, err)
	}

	count, err := e.replaceFacts(ctx, ids)
	if err != nil {
		return nil, err
	}
	log.Info("sync cycle finished", "observations", count)

	return &Result{
		CycleID:      cycleID,
		Items:        len(ids),
		NewItems:     newItems,
		Observations: count,
	}, nil
}

// replaceFacts streams the raw store into a replace transaction in
// fixed-size batches and commits it as one atomic swap.
func (e *Engine) replaceFacts(ctx context.Context, ids map[string]int64) (int, error) {
	tx, err := e.prices.BeginReplace(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin replace: %w", ErrSyncIntegrity, err)
	}

	count := 0
	batch := make([]domain.PriceObservation, 0, e.batchSize)

	err = e.source.ScanQuotes(ctx, func(q domain.RawQuote) error {
		itemID, ok := ids[q.ItemName]
		if !ok {
			// A column appeared between discovery and scan; the raw
			// store changed under the cycle.
			return fmt.Errorf("%w: item %q not registered", ErrSourceRead, q.ItemName)
		}

		batch = append(batch, domain.PriceObservation{
			Timestamp: q.Timestamp,
			ItemID:    itemID,
			Price:     q.Price,
			Side:      q.Side,
		})
		count++

		if len(batch) < e.batchSize {
			return nil
		}
		if err := tx.Append(ctx, batch); err != nil {
			return fmt.Errorf("%w: append batch: %w", ErrSyncIntegrity, err)
		}
		batch = batch[:0]
		return nil
	})
	if err == nil && len(batch) > 0 {
		if aerr := tx.Append(ctx, batch); aerr != nil {
			err = fmt.Errorf("%w: append final batch: %w", ErrSyncIntegrity, aerr)
		}
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, ErrSyncIntegrity) || errors.Is(err, ErrSourceRead) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: scan raw store: %w", ErrSourceRead, err)
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return 0, fmt.Errorf("%w: commit: %w", ErrSyncIntegrity, err)
	}
	return count, nil
}
