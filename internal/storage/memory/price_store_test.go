package memory

import (
	"context"
	"errors"
	"testing"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

func seedPrices(t *testing.T, store *PriceStore) {
	t.Helper()
	err := store.AppendBatch(context.Background(), []domain.PriceObservation{
		{Timestamp: 1000, ItemID: 1, Price: 10, Side: domain.SideAsk},
		{Timestamp: 1000, ItemID: 2, Price: 50, Side: domain.SideAsk},
		{Timestamp: 1000, ItemID: 1, Price: 9, Side: domain.SideBid},
		{Timestamp: 2000, ItemID: 1, Price: 12, Side: domain.SideAsk},
		{Timestamp: 2000, ItemID: 2, Price: 48, Side: domain.SideAsk},
		{Timestamp: 3000, ItemID: 1, Price: 11, Side: domain.SideAsk},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestPriceStore_ReplaceCommitSwapsAtomically(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	tx, err := store.BeginReplace(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	staged := []domain.PriceObservation{
		{Timestamp: 5000, ItemID: 1, Price: 20, Side: domain.SideAsk},
	}
	if err := tx.Append(ctx, staged); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Old facts stay visible until Commit.
	if n, _ := store.Count(ctx); n != 6 {
		t.Errorf("expected 6 facts before commit, got %d", n)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	all := store.All()
	if len(all) != 1 || all[0].Timestamp != 5000 {
		t.Errorf("expected only the staged fact after commit, got %+v", all)
	}
}

func TestPriceStore_ReplaceRollbackKeepsOldFacts(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	tx, err := store.BeginReplace(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.Append(ctx, []domain.PriceObservation{{Timestamp: 5000, ItemID: 1, Price: 20, Side: domain.SideAsk}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if n, _ := store.Count(ctx); n != 6 {
		t.Errorf("expected 6 facts after rollback, got %d", n)
	}
	if err := tx.Append(ctx, nil); !errors.Is(err, storage.ErrTxClosed) {
		t.Errorf("expected ErrTxClosed after rollback, got %v", err)
	}
}

func TestPriceStore_HasTimestamp(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	ok, err := store.HasTimestamp(ctx, 2000)
	if err != nil || !ok {
		t.Errorf("expected timestamp 2000 present, got ok=%v err=%v", ok, err)
	}
	ok, err = store.HasTimestamp(ctx, 2500)
	if err != nil || ok {
		t.Errorf("expected timestamp 2500 absent, got ok=%v err=%v", ok, err)
	}
}

func TestPriceStore_ObservationsBySide(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	obs, err := store.ObservationsBySide(ctx, domain.SideAsk, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 4 {
		t.Fatalf("expected 4 ask observations up to 2000, got %d", len(obs))
	}
	// Ordered by timestamp then item id; bid rows filtered out.
	want := []struct {
		ts   int64
		item int64
	}{{1000, 1}, {1000, 2}, {2000, 1}, {2000, 2}}
	for i, w := range want {
		if obs[i].Timestamp != w.ts || obs[i].ItemID != w.item {
			t.Errorf("position %d: expected (%d, %d), got (%d, %d)",
				i, w.ts, w.item, obs[i].Timestamp, obs[i].ItemID)
		}
		if obs[i].Side != domain.SideAsk {
			t.Errorf("position %d: unexpected side %s", i, obs[i].Side)
		}
	}
}

func TestPriceStore_ObservationsByItem(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	obs, err := store.ObservationsByItem(ctx, 1, 1000, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("expected 3 observations for item 1 in [1000, 2000], got %d", len(obs))
	}
	// Both sides included; ask sorts before bid at equal timestamps.
	if obs[0].Side != domain.SideAsk || obs[1].Side != domain.SideBid {
		t.Errorf("expected ask then bid at ts 1000, got %s then %s", obs[0].Side, obs[1].Side)
	}
	if obs[2].Timestamp != 2000 {
		t.Errorf("expected last observation at 2000, got %d", obs[2].Timestamp)
	}
}

func TestPriceStore_IndexSeries(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	points, err := store.IndexSeries(ctx, domain.SideAsk, 0, 2500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 index points, got %d", len(points))
	}
	if points[0].Timestamp != 1000 || points[0].Price != 60 || points[0].Items != 2 {
		t.Errorf("unexpected first point %+v", points[0])
	}
	if points[1].Timestamp != 2000 || points[1].Price != 60 || points[1].Items != 2 {
		t.Errorf("unexpected second point %+v", points[1])
	}
}

func TestPriceStore_LatestPrices(t *testing.T) {
	store := NewPriceStore()
	ctx := context.Background()
	seedPrices(t, store)

	latest, err := store.LatestPrices(ctx, domain.SideAsk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected latest prices for 2 items, got %d", len(latest))
	}
	if latest[1].Timestamp != 3000 || latest[1].Price != 11 {
		t.Errorf("unexpected latest for item 1: %+v", latest[1])
	}
	if latest[2].Timestamp != 2000 || latest[2].Price != 48 {
		t.Errorf("unexpected latest for item 2: %+v", latest[2])
	}
}
