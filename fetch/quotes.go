package fetch

import (
	"fmt"
	"slices"
	"time"

	"github.com/dnldd/trend/shared"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// ParseQuotes parses daily quotes into a price series ordered from oldest to newest.
// Prices are parsed from their raw json text so they compare exactly.
func ParseQuotes(name string, quotes []gjson.Result) (shared.PriceSeries, error) {
	points := make([]shared.PricePoint, 0, len(quotes))

	for idx := range quotes {
		quote := quotes[idx]

		price := quote.Get("quote.USD.price")
		if !price.Exists() {
			return shared.PriceSeries{}, fmt.Errorf("quote %d has no usd price", idx)
		}

		value, err := decimal.NewFromString(price.Raw)
		if err != nil {
			return shared.PriceSeries{}, fmt.Errorf("parsing quote %d price '%s': %w", idx, price.Raw, err)
		}

		timestamp, err := time.Parse(time.RFC3339Nano, quote.Get("timestamp").String())
		if err != nil {
			return shared.PriceSeries{}, fmt.Errorf("parsing quote %d timestamp: %w", idx, err)
		}

		points = append(points, shared.PricePoint{
			Timestamp: timestamp.UTC(),
			Price:     value,
		})
	}

	slices.SortStableFunc(points, func(a, b shared.PricePoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return shared.PriceSeries{Name: name, Points: points}, nil
}
