package calculator

import (
	"errors"
	"math"

	"StockTracker/internal/model"

	talib "github.com/markcheno/go-talib"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateDMA returns the period-day moving average of daily closes, rounded to cents.
// With fewer bars than period it averages what is available.
func CalculateDMA(dailyBars []model.OHLCV, period int) (float64, error) {
	if len(dailyBars) == 0 {
		return 0, errors.New("no daily bars provided")
	}
	closes := extractCloses(dailyBars)
	if len(closes) < period {
		period = len(closes)
	}
	sma, err := CalculateSMA(closes, period)
	if err != nil {
		return 0, err
	}
	return Round2(sma), nil
}

// EMASeries returns the exponential moving average for every close. Values before
// index period-1 are zero because the average is not defined there yet.
func EMASeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < period {
		return nil, errors.New("not enough data for EMA calculation")
	}
	return talib.Ema(closes, period), nil
}

// ChangePercent returns the percentage move from the first to the last close,
// rounded to two decimals. Fewer than two closes (or a zero base) yields 0.
func ChangePercent(closes []float64) float64 {
	if len(closes) < 2 || closes[0] == 0 {
		return 0
	}
	first, last := closes[0], closes[len(closes)-1]
	return Round2((last - first) * 100 / first)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
