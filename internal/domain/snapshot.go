package domain

// NoQuote is the sentinel the market API uses for a side with no
// standing orders. Quotes carrying it are skipped, not stored as -1.
const NoQuote = -1

// QuotePair holds both sides of an item's quote in a live snapshot.
type QuotePair struct {
	Ask float64 `json:"ask"`
	Bid float64 `json:"bid"`
}

// MarketSnapshot is one point-in-time quote set fetched from the
// market API, keyed by canonical item name.
type MarketSnapshot struct {
	Time   int64                `json:"time"`
	Quotes map[string]QuotePair `json:"market"`
}
