// Package stats computes percentage-change leaderboards over lookback
// windows from the normalized price facts.
package stats

import (
	"math"
	"sort"
	"time"

	"game-market-tracker/internal/domain"
)

// ComputeChangeRanking ranks items by percentage price change over one
// lookback window. For each item the reference price is the latest
// observation at or before now-window and the current price the latest
// at or before now.
//
// Items missing either price, absent from names, or with a reference
// price of zero are excluded rather than reported as 0% or an error;
// partial results are preferred over request failure. Ties in change
// percentage are broken by ascending item ID so repeated calls on
// unchanged data produce identical order.
//
// obs must hold a single side's observations ordered by timestamp ASC.
func ComputeChangeRanking(obs []domain.PriceObservation, names map[int64]string, window time.Duration, now time.Time) domain.ChangeRanking {
	refTs := now.Add(-window).Unix()
	nowTs := now.Unix()

	reference := make(map[int64]float64)
	current := make(map[int64]float64)
	for _, o := range obs {
		if o.Timestamp > nowTs {
			continue
		}
		current[o.ItemID] = o.Price
		if o.Timestamp <= refTs {
			reference[o.ItemID] = o.Price
		}
	}

	var entries []domain.ChangeEntry
	for itemID, cur := range current {
		ref, ok := reference[itemID]
		if !ok || ref == 0 {
			continue
		}
		name, known := names[itemID]
		if !known {
			continue
		}
		entries = append(entries, domain.ChangeEntry{
			ItemID:           itemID,
			Name:             name,
			OldPrice:         ref,
			CurrentPrice:     cur,
			ChangePercentage: (cur - ref) / ref * 100,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		ai := math.Abs(entries[i].ChangePercentage)
		aj := math.Abs(entries[j].ChangePercentage)
		if ai != aj {
			return ai > aj
		}
		return entries[i].ItemID < entries[j].ItemID
	})

	ranking := domain.ChangeRanking{}
	for _, e := range entries {
		switch {
		case e.ChangePercentage > 0:
			ranking.Gainers = append(ranking.Gainers, e)
		case e.ChangePercentage < 0:
			ranking.Losers = append(ranking.Losers, e)
		}
	}
	return ranking
}
