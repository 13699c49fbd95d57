package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents a daily closing price observation.
type PricePoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// PriceSeries represents price observations ordered from oldest to newest.
type PriceSeries struct {
	// Name is the asset name reported by the provider, it may be empty.
	Name   string
	Points []PricePoint
}

// Len returns the number of observations in the series.
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// Trailing returns the series restricted to its most recent n observations.
func (s *PriceSeries) Trailing(n int) PriceSeries {
	if n >= len(s.Points) {
		return *s
	}

	return PriceSeries{
		Name:   s.Name,
		Points: s.Points[len(s.Points)-n:],
	}
}
