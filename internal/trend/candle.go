// Package trend derives OHLC candlesticks and moving averages from the
// market index series. All computation is pure and deterministic for a
// fixed input and fixed parameters.
package trend

import (
	"time"

	"game-market-tracker/internal/domain"
)

// BuildCandles partitions index points into time buckets by truncating
// each timestamp to the bucket boundary. Within a bucket: open is the
// earliest point's price, close the latest, low/high the extremes, and
// volume the point count.
//
// Gap policy: buckets with no observations are omitted, not forward
// filled. Candles come out ordered by bucket start ascending.
//
// Points must be ordered by timestamp ASC; the bucket duration must be
// positive.
func BuildCandles(points []domain.IndexPoint, bucket time.Duration) []domain.Candle {
	bucketSecs := int64(bucket / time.Second)
	if bucketSecs <= 0 || len(points) == 0 {
		return nil
	}

	var candles []domain.Candle
	var cur *domain.Candle

	for _, p := range points {
		start := p.Timestamp - mod(p.Timestamp, bucketSecs)

		if cur == nil || cur.BucketStart != start {
			if cur != nil {
				candles = append(candles, *cur)
			}
			cur = &domain.Candle{
				BucketStart: start,
				BucketEnd:   start + bucketSecs,
				Open:        p.Price,
				Close:       p.Price,
				Low:         p.Price,
				High:        p.Price,
				Volume:      1,
			}
			continue
		}

		cur.Close = p.Price // latest in bucket
		if p.Price < cur.Low {
			cur.Low = p.Price
		}
		if p.Price > cur.High {
			cur.High = p.Price
		}
		cur.Volume++
	}

	if cur != nil {
		candles = append(candles, *cur)
	}

	return candles
}

// mod is the floored modulo, keeping bucket starts aligned for
// pre-epoch timestamps as well.
func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
