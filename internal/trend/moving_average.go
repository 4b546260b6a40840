package trend

import "game-market-tracker/internal/domain"

// ApplyMovingAverages attaches trailing moving averages of the close
// price to each candle, one per requested window size. Candle i's MA-w
// is the arithmetic mean of close over candles [i-w+1, i]; candles with
// fewer than w predecessors get a nil value, never zero.
//
// Windows of size <= 0 are ignored. The candle slice is modified in
// place and returned for convenience.
func ApplyMovingAverages(candles []domain.Candle, windows []int) []domain.Candle {
	for i := range candles {
		if candles[i].MovingAverages == nil {
			candles[i].MovingAverages = make(map[int]*float64, len(windows))
		}
	}

	for _, w := range windows {
		if w <= 0 {
			continue
		}
		var sum float64
		for i := range candles {
			sum += candles[i].Close
			if i >= w {
				sum -= candles[i-w].Close
			}
			if i >= w-1 {
				ma := sum / float64(w)
				candles[i].MovingAverages[w] = &ma
			} else {
				candles[i].MovingAverages[w] = nil
			}
		}
	}

	return candles
}
