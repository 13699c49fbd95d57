package shared

import (
	"errors"
	"fmt"
)

const (
	// QuotePrecision is the fixed-point scale of quote currency amounts on the venue.
	QuotePrecision = uint64(1_000_000)
	// BasePrecision is the fixed-point scale of base asset amounts on the venue.
	BasePrecision = uint64(1_000_000_000)
)

// MarketConfig represents a configured perpetual market.
type MarketConfig struct {
	// Index is the market's unique index in the venue's market universe.
	Index uint16
	// Name is the human readable market name.
	Name string
	// PriceID is the identifier used to query price history for the market.
	PriceID string
	// TargetNotional is the quote currency size used for every entry.
	TargetNotional uint64
}

// Validate asserts the market config sane inputs.
func (m *MarketConfig) Validate() error {
	var errs error

	if m.Name == "" {
		errs = errors.Join(errs, fmt.Errorf("market %d name cannot be an empty string", m.Index))
	}
	if m.PriceID == "" {
		errs = errors.Join(errs, fmt.Errorf("market %d price id cannot be an empty string", m.Index))
	}
	if m.TargetNotional == 0 {
		errs = errors.Join(errs, fmt.Errorf("market %d target notional must be greater than zero", m.Index))
	}

	return errs
}

// MarketDescriptor represents the venue's view of a market.
type MarketDescriptor struct {
	Index  uint16
	Symbol string
}

// ProtocolParams represents the venue's fixed-point conventions.
type ProtocolParams struct {
	// QuotePrecision normalizes quote currency units.
	QuotePrecision uint64
	// BasePrecision normalizes base asset units.
	BasePrecision uint64
}

// DefaultProtocolParams returns the venue's protocol defined precisions.
func DefaultProtocolParams() ProtocolParams {
	return ProtocolParams{
		QuotePrecision: QuotePrecision,
		BasePrecision:  BasePrecision,
	}
}

// Validate asserts the protocol params sane inputs.
func (p *ProtocolParams) Validate() error {
	var errs error

	if p.QuotePrecision == 0 {
		errs = errors.Join(errs, fmt.Errorf("quote precision cannot be zero"))
	}
	if p.BasePrecision == 0 {
		errs = errors.Join(errs, fmt.Errorf("base precision cannot be zero"))
	}

	return errs
}
