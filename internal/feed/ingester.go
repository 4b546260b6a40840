package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

const defaultBatchSize = 1000

// Ingester appends one snapshot worth of observations to the price
// store, registering any items it has not seen before.
type Ingester struct {
	source    SnapshotFetcher
	items     storage.ItemStore
	prices    storage.PriceStore
	batchSize int
	logger    *slog.Logger
}

// IngesterOptions tunes an Ingester.
type IngesterOptions struct {
	BatchSize int
	Logger    *slog.Logger
}

// NewIngester creates an ingester over the given stores.
func NewIngester(source SnapshotFetcher, items storage.ItemStore, prices storage.PriceStore, opts IngesterOptions) *Ingester {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Ingester{
		source:    source,
		items:     items,
		prices:    prices,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
	}
}

// IngestResult reports what a single ingest run did.
type IngestResult struct {
	Timestamp    int64
	Skipped      bool
	NewItems     int
	Observations int
}

// Run fetches the latest snapshot and appends its quotes. A snapshot
// whose timestamp is already present is skipped, so repeated runs
// against a slow-moving feed do not duplicate facts.
func (in *Ingester) Run(ctx context.Context) (*IngestResult, error) {
	snap, err := in.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := in.prices.HasTimestamp(ctx, snap.Time)
	if err != nil {
		return nil, fmt.Errorf("check snapshot timestamp: %w", err)
	}
	if exists {
		in.logger.Info("snapshot already ingested", "timestamp", snap.Time)
		return &IngestResult{Timestamp: snap.Time, Skipped: true}, nil
	}

	names := make([]string, 0, len(snap.Quotes))
	for name := range snap.Quotes {
		names = append(names, name)
	}
	sort.Strings(names)

	created, err := in.items.InsertIfAbsent(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("register items: %w", err)
	}
	ids, err := in.items.IDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("load item ids: %w", err)
	}

	obs := make([]domain.PriceObservation, 0, 2*len(names))
	for _, name := range names {
		id, ok := ids[name]
		if !ok {
			return nil, fmt.Errorf("item %q missing after registration", name)
		}
		pair := snap.Quotes[name]
		if pair.Ask >= 0 {
			obs = append(obs, domain.PriceObservation{
				Timestamp: snap.Time, ItemID: id, Price: pair.Ask, Side: domain.SideAsk,
			})
		}
		if pair.Bid >= 0 {
			obs = append(obs, domain.PriceObservation{
				Timestamp: snap.Time, ItemID: id, Price: pair.Bid, Side: domain.SideBid,
			})
		}
	}

	for start := 0; start < len(obs); start += in.batchSize {
		end := start + in.batchSize
		if end > len(obs) {
			end = len(obs)
		}
		if err := in.prices.AppendBatch(ctx, obs[start:end]); err != nil {
			return nil, fmt.Errorf("append snapshot batch: %w", err)
		}
	}

	in.logger.Info("snapshot ingested",
		"timestamp", snap.Time,
		"new_items", created,
		"observations", len(obs))

	return &IngestResult{
		Timestamp:    snap.Time,
		NewItems:     created,
		Observations: len(obs),
	}, nil
}
