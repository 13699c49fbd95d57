package shared

import "fmt"

// HoldingState represents the holding state of a market.
type HoldingState int

const (
	Flat HoldingState = iota
	LongHeld
)

// String stringifies the provided holding state.
func (s HoldingState) String() string {
	switch s {
	case Flat:
		return "flat"
	case LongHeld:
		return "long"
	default:
		return "unknown"
	}
}

// Holding represents the single unit held in a market. A market is either flat or holds
// exactly one long unit of a known size, there is no scaling in or out.
type Holding struct {
	State  HoldingState
	Amount uint64
}

// NewFlatHolding initializes a flat holding.
func NewFlatHolding() Holding {
	return Holding{State: Flat}
}

// NewLongHolding initializes a long holding of the provided amount, a zero amount is flat.
func NewLongHolding(amount uint64) Holding {
	if amount == 0 {
		return NewFlatHolding()
	}

	return Holding{State: LongHeld, Amount: amount}
}

// IsHolding checks whether the holding is long.
func (h Holding) IsHolding() bool {
	return h.State == LongHeld
}

// String stringifies the provided holding.
func (h Holding) String() string {
	switch h.State {
	case LongHeld:
		return fmt.Sprintf("long(%d)", h.Amount)
	default:
		return h.State.String()
	}
}
