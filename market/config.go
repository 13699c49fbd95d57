package market

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dnldd/trend/shared"
)

const (
	// defaultTargetNotional is the default quote currency order size.
	defaultTargetNotional = 200
)

// DefaultConfigs returns the default set of traded perpetual markets.
func DefaultConfigs() []shared.MarketConfig {
	entries := []struct {
		index   uint16
		name    string
		priceID string
	}{
		{0, "SOL-PERP", "5426"},
		{1, "BTC-PERP", "1"},
		{2, "ETH-PERP", "1027"},
		{4, "1MBONK-PERP", "23095"},
		{7, "DOGE-PERP", "74"},
		{9, "SUI-PERP", "20947"},
		{10, "1MPEPE-PERP", "24478"},
		{13, "XRP-PERP", "52"},
		{16, "LINK-PERP", "1975"},
		{19, "TIA-PERP", "22861"},
		{24, "JUP-PERP", "29210"},
		{34, "POPCAT-PERP", "28782"},
		{51, "SEI-PERP", "23149"},
		{59, "HYPE-PERP", "32196"},
	}

	configs := make([]shared.MarketConfig, 0, len(entries))
	for _, entry := range entries {
		configs = append(configs, shared.MarketConfig{
			Index:          entry.index,
			Name:           entry.name,
			PriceID:        entry.priceID,
			TargetNotional: defaultTargetNotional,
		})
	}

	return configs
}

// ParseConfig parses a market config from an `index:name:priceid:notional` entry. The notional
// is optional and defaults to the default target notional.
func ParseConfig(entry string) (shared.MarketConfig, error) {
	parts := strings.Split(strings.TrimSpace(entry), ":")
	if len(parts) != 3 && len(parts) != 4 {
		return shared.MarketConfig{}, fmt.Errorf("malformed market entry '%s', expected index:name:priceid[:notional]", entry)
	}

	index, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return shared.MarketConfig{}, fmt.Errorf("parsing market index of '%s': %w", entry, err)
	}

	notional := uint64(defaultTargetNotional)
	if len(parts) == 4 {
		notional, err = strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			return shared.MarketConfig{}, fmt.Errorf("parsing target notional of '%s': %w", entry, err)
		}
	}

	cfg := shared.MarketConfig{
		Index:          uint16(index),
		Name:           parts[1],
		PriceID:        parts[2],
		TargetNotional: notional,
	}

	err = cfg.Validate()
	if err != nil {
		return shared.MarketConfig{}, err
	}

	return cfg, nil
}

// ParseConfigs parses the provided market entries, preserving their order.
func ParseConfigs(entries []string) ([]shared.MarketConfig, error) {
	configs := make([]shared.MarketConfig, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		cfg, err := ParseConfig(entry)
		if err != nil {
			return nil, err
		}

		configs = append(configs, cfg)
	}

	err := ValidateConfigs(configs)
	if err != nil {
		return nil, err
	}

	return configs, nil
}

// ValidateConfigs asserts the provided market configs are sane and each market appears at most once.
func ValidateConfigs(configs []shared.MarketConfig) error {
	var errs error

	if len(configs) == 0 {
		return fmt.Errorf("no markets provided")
	}

	seen := make(map[uint16]struct{}, len(configs))
	for idx := range configs {
		cfg := configs[idx]
		err := cfg.Validate()
		if err != nil {
			errs = errors.Join(errs, err)
		}

		_, ok := seen[cfg.Index]
		if ok {
			errs = errors.Join(errs, fmt.Errorf("duplicate market index %d", cfg.Index))
			continue
		}

		seen[cfg.Index] = struct{}{}
	}

	return errs
}

// Indices returns the market indices of the provided configs in order.
func Indices(configs []shared.MarketConfig) []uint16 {
	indices := make([]uint16, 0, len(configs))
	for idx := range configs {
		indices = append(indices, configs[idx].Index)
	}

	return indices
}
