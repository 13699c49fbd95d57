package shared

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestNewExposureView(t *testing.T) {
	tests := []struct {
		name      string
		position  *Position
		wantLong  uint64
		wantShort uint64
	}{
		{
			name:      "absent position",
			position:  nil,
			wantLong:  0,
			wantShort: 0,
		},
		{
			name:      "zero sized position",
			position:  &Position{MarketIndex: 1, BaseAssetAmount: 0},
			wantLong:  0,
			wantShort: 0,
		},
		{
			name:      "long position",
			position:  &Position{MarketIndex: 1, BaseAssetAmount: 5_000_000},
			wantLong:  5_000_000,
			wantShort: 0,
		},
		{
			name:      "short position",
			position:  &Position{MarketIndex: 1, BaseAssetAmount: -7_000},
			wantLong:  0,
			wantShort: 7_000,
		},
		{
			name:      "smallest short position",
			position:  &Position{MarketIndex: 1, BaseAssetAmount: math.MinInt64},
			wantLong:  0,
			wantShort: uint64(math.MaxInt64) + 1,
		},
	}

	for _, test := range tests {
		view := NewExposureView(test.position)
		if view.Long != test.wantLong {
			t.Errorf("%s: expected long exposure %d, got %d", test.name, test.wantLong, view.Long)
		}
		if view.Short != test.wantShort {
			t.Errorf("%s: expected short exposure %d, got %d", test.name, test.wantShort, view.Short)
		}
		if view.Long != 0 && view.Short != 0 {
			t.Errorf("%s: expected at most one nonzero exposure, got %+v", test.name, view)
		}
	}
}

func TestExposureViewHolding(t *testing.T) {
	// Ensure a long exposure implies a long holding.
	view := NewExposureView(&Position{MarketIndex: 0, BaseAssetAmount: 42})
	assert.Equal(t, view.Holding(), NewLongHolding(42))

	// Ensure a short exposure is not treated as holding.
	view = NewExposureView(&Position{MarketIndex: 0, BaseAssetAmount: -42})
	assert.False(t, view.Holding().IsHolding())
}
