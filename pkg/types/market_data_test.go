package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloses(t *testing.T) {
	data := []OHLCV{
		{Open: 99, High: 101, Low: 98, Close: 100},
		{Open: 100, High: 103, Low: 99, Close: 102},
		{Open: 102, High: 102, Low: 100, Close: 101},
	}
	assert.Equal(t, []float64{100, 102, 101}, Closes(data))
	assert.Empty(t, Closes(nil))
}

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns([]float64{100, 110, 99})
	assert.InDeltaSlice(t, []float64{0.10, -0.10}, returns, 1e-9)
}

func TestDailyReturns_SkipsNonPositivePrices(t *testing.T) {
	returns := DailyReturns([]float64{100, 0, 110, 121})
	// the point after the zero is dropped, the rest survive
	assert.InDeltaSlice(t, []float64{-1.0, 0.10}, returns, 1e-9)
}

func TestDailyReturns_TooShort(t *testing.T) {
	assert.Nil(t, DailyReturns([]float64{100}))
	assert.Nil(t, DailyReturns(nil))
}
