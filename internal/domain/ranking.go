package domain

// ChangeEntry is one item's percentage price change over a lookback window.
type ChangeEntry struct {
	ItemID           int64   `json:"item_id"`
	Name             string  `json:"name"`
	OldPrice         float64 `json:"old_price"`
	CurrentPrice     float64 `json:"current_price"`
	ChangePercentage float64 `json:"change_percentage"`
}

// ChangeRanking partitions rankable items into gainers and losers,
// each ordered by descending absolute change percentage. Items with no
// reference or current price in range, or a reference price of zero,
// are excluded rather than reported as zero change.
type ChangeRanking struct {
	Gainers []ChangeEntry `json:"gainers"`
	Losers  []ChangeEntry `json:"losers"`
}
