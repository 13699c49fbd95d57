package shared

// Position represents the venue's authoritative position for a market.
type Position struct {
	MarketIndex uint16
	// BaseAssetAmount is the signed position size in base precision, positive is long,
	// negative is short and zero is flat.
	BaseAssetAmount int64
}

// ExposureView represents the long and short exposure of a position.
type ExposureView struct {
	Long  uint64
	Short uint64
}

// magnitude returns the absolute value of the provided amount without overflowing.
func magnitude(amount int64) uint64 {
	if amount < 0 {
		return uint64(-(amount + 1)) + 1
	}

	return uint64(amount)
}

// NewExposureView derives the exposure view of the provided position. A nil position is flat.
func NewExposureView(pos *Position) ExposureView {
	var view ExposureView
	if pos == nil {
		return view
	}

	switch {
	case pos.BaseAssetAmount > 0:
		view.Long = magnitude(pos.BaseAssetAmount)
	case pos.BaseAssetAmount < 0:
		view.Short = magnitude(pos.BaseAssetAmount)
	}

	return view
}

// Holding returns the long-only holding implied by the exposure view.
func (v ExposureView) Holding() Holding {
	return NewLongHolding(v.Long)
}
