package indicators

import (
	"errors"
	"math"

	"github.com/tradingagents/advisor/pkg/types"
)

// DefaultATRPeriod is the conventional 14-period lookback.
const DefaultATRPeriod = 14

// ATR calculates the Average True Range of the last period candles as a
// simple average of true ranges. The series must contain at least period+1
// candles so that every true range has a preceding close.
func ATR(data []types.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("ATR period must be positive")
	}
	if len(data) < period+1 {
		return 0, errors.New("insufficient data points for ATR calculation")
	}

	sum := 0.0
	for i := len(data) - period; i < len(data); i++ {
		sum += trueRange(data[i], data[i-1].Close)
	}
	return sum / float64(period), nil
}

// trueRange is the greatest of the candle range and the gaps from the
// previous close.
func trueRange(candle types.OHLCV, prevClose float64) float64 {
	tr := candle.High - candle.Low
	tr = math.Max(tr, math.Abs(candle.High-prevClose))
	tr = math.Max(tr, math.Abs(candle.Low-prevClose))
	return tr
}
