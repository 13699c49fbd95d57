package market

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/dnldd/trend/shared"
)

// BaseAmount converts the provided quote currency notional into a base asset amount at the
// provided price. The division truncates, remainders are discarded.
func BaseAmount(notional uint64, price *big.Int, params shared.ProtocolParams) (uint64, error) {
	if price == nil || price.Sign() <= 0 {
		return 0, fmt.Errorf("%w: non-positive price", shared.ErrNoOracleData)
	}

	amount := new(big.Int).SetUint64(notional)
	amount.Mul(amount, new(big.Int).SetUint64(params.QuotePrecision))
	amount.Mul(amount, new(big.Int).SetUint64(params.BasePrecision))
	amount.Quo(amount, price)

	if !amount.IsUint64() {
		return 0, fmt.Errorf("base amount %s overflows", amount.String())
	}

	return amount.Uint64(), nil
}

// SizerConfig represents the order sizer configuration.
type SizerConfig struct {
	// Oracle reads current oracle prices.
	Oracle shared.OracleReader
	// Params represents the venue's fixed-point conventions.
	Params shared.ProtocolParams
}

// Validate asserts the config sane inputs.
func (cfg *SizerConfig) Validate() error {
	var errs error

	if cfg.Oracle == nil {
		errs = errors.Join(errs, fmt.Errorf("oracle cannot be nil"))
	}

	err := cfg.Params.Validate()
	if err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

// Sizer converts quote currency notionals into base asset amounts.
type Sizer struct {
	cfg *SizerConfig
}

// NewSizer initializes a new order sizer.
func NewSizer(cfg *SizerConfig) (*Sizer, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating sizer config: %w", err)
	}

	return &Sizer{cfg: cfg}, nil
}

// ToBaseAmount converts the provided notional into a base asset amount for the provided market
// using the current oracle price.
func (s *Sizer) ToBaseAmount(ctx context.Context, marketIndex uint16, notional uint64) (uint64, error) {
	price, ok, err := s.cfg.Oracle.OraclePrice(ctx, marketIndex)
	if err != nil {
		return 0, fmt.Errorf("%w: market %d: %w", shared.ErrNoOracleData, marketIndex, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: market %d", shared.ErrNoOracleData, marketIndex)
	}

	amount, err := BaseAmount(notional, price, s.cfg.Params)
	if err != nil {
		return 0, fmt.Errorf("sizing market %d: %w", marketIndex, err)
	}

	return amount, nil
}
