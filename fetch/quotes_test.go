package fetch

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

func TestParseQuotes(t *testing.T) {
	// Ensure quotes are ordered oldest to newest with exact prices.
	quotes := gjson.Parse(`[
		{"timestamp":"2025-03-02T00:00:00.000Z","quote":{"USD":{"price":143.10000000000001}}},
		{"timestamp":"2025-03-01T00:00:00.000Z","quote":{"USD":{"price":140.5}}}
	]`).Array()

	series, err := ParseQuotes("Solana", quotes)
	assert.NoError(t, err)
	assert.Equal(t, series.Name, "Solana")
	assert.Equal(t, series.Len(), 2)
	assert.True(t, series.Points[0].Timestamp.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, series.Points[0].Price.Equal(decimal.New(1405, -1)))
	assert.True(t, series.Points[1].Price.Equal(decimal.New(14310000000000001, -14)))

	tests := []struct {
		name   string
		quotes string
	}{
		{
			name:   "missing price",
			quotes: `[{"timestamp":"2025-03-01T00:00:00.000Z","quote":{}}]`,
		},
		{
			name:   "non-numeric price",
			quotes: `[{"timestamp":"2025-03-01T00:00:00.000Z","quote":{"USD":{"price":"n/a"}}}]`,
		},
		{
			name:   "invalid timestamp",
			quotes: `[{"timestamp":"yesterday","quote":{"USD":{"price":1}}}]`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Ensure malformed quotes are rejected.
			_, err := ParseQuotes("Solana", gjson.Parse(test.quotes).Array())
			assert.Error(t, err)
		})
	}
}
