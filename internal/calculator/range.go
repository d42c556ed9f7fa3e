package calculator

import (
	"errors"
	"math"

	"StockTracker/internal/model"
)

// Calculate52WeekRange scans the most recent 252 trading days and returns the high and low.
func Calculate52WeekRange(dailyBars []model.OHLCV) (high, low float64, err error) {
	if len(dailyBars) == 0 {
		return 0, 0, errors.New("no daily bars provided")
	}
	n := len(dailyBars)
	start := n - 252
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if dailyBars[i].High > high {
			high = dailyBars[i].High
		}
		if dailyBars[i].Low < low {
			low = dailyBars[i].Low
		}
	}
	return high, low, nil
}

// PercentDiff returns how far value sits above (positive) or below base, in percent,
// rounded to two decimals.
func PercentDiff(value, base float64) (float64, error) {
	if base == 0 {
		return 0, errors.New("base must be non-zero")
	}
	return Round2((value - base) / base * 100), nil
}
