package memory

import (
	"context"
	"sort"
	"sync"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore.
// Replacement is staged off to the side and swapped in on Commit, so
// readers never observe a partially replaced fact set.
type PriceStore struct {
	mu  sync.RWMutex
	obs []domain.PriceObservation
}

// NewPriceStore creates a new in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// BeginReplace opens a replace transaction whose staged state starts
// empty. The prior fact set stays visible until Commit.
func (s *PriceStore) BeginReplace(_ context.Context) (storage.ReplaceTx, error) {
	return &replaceTx{store: s}, nil
}

// replaceTx stages observations until Commit swaps them in.
type replaceTx struct {
	store  *PriceStore
	staged []domain.PriceObservation
	closed bool
}

var _ storage.ReplaceTx = (*replaceTx)(nil)

// Append stages one batch of observations.
func (t *replaceTx) Append(_ context.Context, obs []domain.PriceObservation) error {
	if t.closed {
		return storage.ErrTxClosed
	}
	t.staged = append(t.staged, obs...)
	return nil
}

// Commit atomically publishes the staged fact set.
func (t *replaceTx) Commit(_ context.Context) error {
	if t.closed {
		return storage.ErrTxClosed
	}
	t.closed = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.obs = t.staged
	t.staged = nil
	return nil
}

// Rollback discards all staged writes. Safe to call after Commit.
func (t *replaceTx) Rollback(_ context.Context) error {
	t.closed = true
	t.staged = nil
	return nil
}

// AppendBatch adds observations without clearing existing facts.
func (s *PriceStore) AppendBatch(_ context.Context, obs []domain.PriceObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = append(s.obs, obs...)
	return nil
}

// HasTimestamp reports whether any observation exists at ts.
func (s *PriceStore) HasTimestamp(_ context.Context, ts int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.obs {
		if o.Timestamp == ts {
			return true, nil
		}
	}
	return false, nil
}

// ObservationsBySide retrieves all observations of one side with
// timestamp <= until, ordered by timestamp ASC, item_id ASC.
func (s *PriceStore) ObservationsBySide(_ context.Context, side domain.Side, until int64) ([]domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PriceObservation
	for _, o := range s.obs {
		if o.Side == side && o.Timestamp <= until {
			result = append(result, o)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ItemID < result[j].ItemID
	})

	return result, nil
}

// ObservationsByItem retrieves both sides for one item within
// [from, until], ordered by timestamp ASC.
func (s *PriceStore) ObservationsByItem(_ context.Context, itemID, from, until int64) ([]domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PriceObservation
	for _, o := range s.obs {
		if o.ItemID == itemID && o.Timestamp >= from && o.Timestamp <= until {
			result = append(result, o)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].Side < result[j].Side
	})

	return result, nil
}

// IndexSeries returns the per-timestamp sum of one side's prices across
// all items within [from, until], ordered by timestamp ASC.
func (s *PriceStore) IndexSeries(_ context.Context, side domain.Side, from, until int64) ([]domain.IndexPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[int64]*domain.IndexPoint)
	for _, o := range s.obs {
		if o.Side != side || o.Timestamp < from || o.Timestamp > until {
			continue
		}
		p, ok := sums[o.Timestamp]
		if !ok {
			p = &domain.IndexPoint{Timestamp: o.Timestamp}
			sums[o.Timestamp] = p
		}
		p.Price += o.Price
		p.Items++
	}

	points := make([]domain.IndexPoint, 0, len(sums))
	for _, p := range sums {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	return points, nil
}

// LatestPrices returns each item's most recent observation of one side.
func (s *PriceStore) LatestPrices(_ context.Context, side domain.Side) (map[int64]domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[int64]domain.PriceObservation)
	for _, o := range s.obs {
		if o.Side != side {
			continue
		}
		if cur, ok := latest[o.ItemID]; !ok || o.Timestamp > cur.Timestamp {
			latest[o.ItemID] = o
		}
	}
	return latest, nil
}

// Count returns the number of stored observations.
func (s *PriceStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.obs)), nil
}

// All returns a copy of the full fact set, ordered by timestamp ASC,
// item_id ASC, side ASC. Test helper for idempotence checks.
func (s *PriceStore) All() []domain.PriceObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.PriceObservation, len(s.obs))
	copy(result, s.obs)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		if result[i].ItemID != result[j].ItemID {
			return result[i].ItemID < result[j].ItemID
		}
		return result[i].Side < result[j].Side
	})
	return result
}
