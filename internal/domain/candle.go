package domain

// Candle is an OHLC summary of index activity within one time bucket.
// Derived per request, never persisted.
type Candle struct {
	BucketStart int64   `json:"bucket_start"` // Unix seconds, inclusive
	BucketEnd   int64   `json:"bucket_end"`   // Unix seconds, exclusive
	Open        float64 `json:"open"`         // earliest observation in bucket
	Close       float64 `json:"close"`        // latest observation in bucket
	Low         float64 `json:"low"`
	High        float64 `json:"high"`
	Volume      int     `json:"volume"` // observation count

	// MovingAverages maps window size to the trailing mean of close.
	// A nil value means the window has insufficient history; it is
	// never defaulted to zero.
	MovingAverages map[int]*float64 `json:"moving_averages"`
}
