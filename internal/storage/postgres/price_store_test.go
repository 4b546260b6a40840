package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage/postgres"
)

// seedStores registers two items and returns their ids keyed by name.
func seedStores(t *testing.T, pool *postgres.Pool) map[string]int64 {
	t.Helper()
	ctx := context.Background()

	items := postgres.NewItemStore(pool)
	_, err := items.InsertIfAbsent(ctx, []string{"rune-sword", "dragon-shield"})
	require.NoError(t, err)

	ids, err := items.IDsByName(ctx)
	require.NoError(t, err)
	return ids
}

func TestPriceStore_AppendBatchAndCount(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ids := seedStores(t, pool)
	store := postgres.NewPriceStore(pool)
	ctx := context.Background()

	err := store.AppendBatch(ctx, []domain.PriceObservation{
		{Timestamp: 1000, ItemID: ids["rune-sword"], Price: 10, Side: domain.SideAsk},
		{Timestamp: 1000, ItemID: ids["rune-sword"], Price: 9, Side: domain.SideBid},
		{Timestamp: 2000, ItemID: ids["dragon-shield"], Price: 95, Side: domain.SideAsk},
	})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	exists, err := store.HasTimestamp(ctx, 1000)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.HasTimestamp(ctx, 1500)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPriceStore_ReplaceCommit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ids := seedStores(t, pool)
	store := postgres.NewPriceStore(pool)
	ctx := context.Background()

	require.NoError(t, store.AppendBatch(ctx, []domain.PriceObservation{
		{Timestamp: 1000, ItemID: ids["rune-sword"], Price: 10, Side: domain.SideAsk},
	}))

	tx, err := store.BeginReplace(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Append(ctx, []domain.PriceObservation{
		{Timestamp: 2000, ItemID: ids["rune-sword"], Price: 11, Side: domain.SideAsk},
		{Timestamp: 2000, ItemID: ids["dragon-shield"], Price: 96, Side: domain.SideAsk},
	}))
	require.NoError(t, tx.Commit(ctx))

	// The old snapshot is gone; only the replacement remains.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	exists, err := store.HasTimestamp(ctx, 1000)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPriceStore_ReplaceRollback(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ids := seedStores(t, pool)
	store := postgres.NewPriceStore(pool)
	ctx := context.Background()

	require.NoError(t, store.AppendBatch(ctx, []domain.PriceObservation{
		{Timestamp: 1000, ItemID: ids["rune-sword"], Price: 10, Side: domain.SideAsk},
	}))

	tx, err := store.BeginReplace(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Append(ctx, []domain.PriceObservation{
		{Timestamp: 2000, ItemID: ids["rune-sword"], Price: 11, Side: domain.SideAsk},
	}))
	require.NoError(t, tx.Rollback(ctx))

	// Pre-replace facts are intact.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	exists, err := store.HasTimestamp(ctx, 1000)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPriceStore_Queries(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ids := seedStores(t, pool)
	store := postgres.NewPriceStore(pool)
	ctx := context.Background()
	sword, shield := ids["rune-sword"], ids["dragon-shield"]

	require.NoError(t, store.AppendBatch(ctx, []domain.PriceObservation{
		{Timestamp: 1000, ItemID: sword, Price: 10, Side: domain.SideAsk},
		{Timestamp: 1000, ItemID: shield, Price: 90, Side: domain.SideAsk},
		{Timestamp: 1000, ItemID: sword, Price: 9, Side: domain.SideBid},
		{Timestamp: 2000, ItemID: sword, Price: 12, Side: domain.SideAsk},
		{Timestamp: 2000, ItemID: shield, Price: 94, Side: domain.SideAsk},
		{Timestamp: 3000, ItemID: sword, Price: 11, Side: domain.SideAsk},
	}))

	t.Run("ObservationsBySide", func(t *testing.T) {
		obs, err := store.ObservationsBySide(ctx, domain.SideAsk, 2000)
		require.NoError(t, err)
		require.Len(t, obs, 4)
		assert.Equal(t, int64(1000), obs[0].Timestamp)
		assert.Equal(t, int64(2000), obs[3].Timestamp)
		for _, o := range obs {
			assert.Equal(t, domain.SideAsk, o.Side)
		}
	})

	t.Run("ObservationsByItem", func(t *testing.T) {
		obs, err := store.ObservationsByItem(ctx, sword, 1000, 2000)
		require.NoError(t, err)
		require.Len(t, obs, 3)
		// Both sides at 1000 come before the 2000 observation.
		assert.Equal(t, domain.SideAsk, obs[0].Side)
		assert.Equal(t, domain.SideBid, obs[1].Side)
		assert.Equal(t, int64(2000), obs[2].Timestamp)
	})

	t.Run("IndexSeries", func(t *testing.T) {
		points, err := store.IndexSeries(ctx, domain.SideAsk, 0, 2500)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, float64(100), points[0].Price)
		assert.Equal(t, 2, points[0].Items)
		assert.Equal(t, float64(106), points[1].Price)
	})

	t.Run("LatestPrices", func(t *testing.T) {
		latest, err := store.LatestPrices(ctx, domain.SideAsk)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, float64(11), latest[sword].Price)
		assert.Equal(t, int64(3000), latest[sword].Timestamp)
		assert.Equal(t, float64(94), latest[shield].Price)
	})
}
