package domain

import "fmt"

// Side identifies which side of the order book a quote belongs to.
type Side string

// Quote sides stored in the prices table.
const (
	SideAsk Side = "ask"
	SideBid Side = "bid"
)

// ParseSide validates a side string.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideAsk, SideBid:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// PriceObservation is one observed quote in the normalized store.
// The full set is replaced wholesale on every sync cycle.
type PriceObservation struct {
	Timestamp int64   `json:"timestamp"` // Unix seconds
	ItemID    int64   `json:"item_id"`
	Price     float64 `json:"price"` // always >= 0
	Side      Side    `json:"side"`
}

// RawQuote is one present, non-null cell of the raw wide tables,
// pivoted into (timestamp, item, price, side) form. Absent cells
// never produce a RawQuote.
type RawQuote struct {
	Timestamp int64
	ItemName  string
	Price     float64
	Side      Side
}

// IndexPoint is one sample of the market index: the sum of one side's
// prices across all items observed at a single timestamp.
type IndexPoint struct {
	Timestamp int64   // Unix seconds
	Price     float64 // summed price over items
	Items     int     // number of items contributing
}
