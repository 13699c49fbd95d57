package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/shopspring/decimal"
)

func TestPriceSeriesTrailing(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]PricePoint, 0, 6)
	for idx := range 6 {
		points = append(points, PricePoint{
			Timestamp: start.AddDate(0, 0, idx),
			Price:     decimal.NewFromInt(int64(idx)),
		})
	}

	series := PriceSeries{Name: "Solana", Points: points}
	assert.Equal(t, series.Len(), 6)

	// Ensure the trailing observations are returned in order.
	trailing := series.Trailing(4)
	assert.Equal(t, trailing.Len(), 4)
	assert.Equal(t, trailing.Name, "Solana")
	assert.True(t, trailing.Points[0].Price.Equal(decimal.NewFromInt(2)))
	assert.True(t, trailing.Points[3].Price.Equal(decimal.NewFromInt(5)))

	// Ensure requesting more observations than available returns the full series.
	full := series.Trailing(10)
	assert.Equal(t, full.Len(), 6)
}
