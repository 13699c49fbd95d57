package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/trend/shared"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// WindowLength is the number of daily observations evaluated for a new high.
	WindowLength = 20
	// RecentLength is the number of most recent observations that must touch the window high
	// for a held position to be kept.
	RecentLength = 5
)

// Evaluation represents the outcome of evaluating a price window.
type Evaluation struct {
	Decision   shared.Decision
	WindowHigh decimal.Decimal
	Latest     decimal.Decimal
	LatestAt   time.Time
	IsNewHigh  bool
	// RecentHigh reports whether the window high occurs among the most recent observations.
	RecentHigh bool
}

// Evaluate derives a decision from the provided price series and holding status. Only the
// trailing window of the series is considered.
func Evaluate(series shared.PriceSeries, isHolding bool) (Evaluation, error) {
	if series.Len() < WindowLength {
		return Evaluation{}, fmt.Errorf("%w: expected %d observations, got %d",
			shared.ErrInsufficientHistory, WindowLength, series.Len())
	}

	window := series.Trailing(WindowLength).Points

	high := window[0].Price
	for idx := range window {
		if window[idx].Price.GreaterThan(high) {
			high = window[idx].Price
		}
	}

	latest := window[len(window)-1]

	// The recent check compares against the full window high, not a recomputed recent high.
	var recentHigh bool
	for _, point := range window[len(window)-RecentLength:] {
		if point.Price.Equal(high) {
			recentHigh = true
			break
		}
	}

	eval := Evaluation{
		Decision:   shared.Hold,
		WindowHigh: high,
		Latest:     latest.Price,
		LatestAt:   latest.Timestamp,
		IsNewHigh:  latest.Price.Equal(high),
		RecentHigh: recentHigh,
	}

	switch {
	case eval.IsNewHigh && !isHolding:
		eval.Decision = shared.EnterLong
	case !eval.RecentHigh && isHolding:
		eval.Decision = shared.ExitLong
	}

	return eval, nil
}

// TrendSignalConfig represents the trend signal configuration.
type TrendSignalConfig struct {
	// Fetcher fetches daily price history.
	Fetcher shared.PriceHistoryFetcher
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *TrendSignalConfig) Validate() error {
	var errs error

	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("price history fetcher cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// TrendSignal decides whether to enter or exit a long position on new window highs.
type TrendSignal struct {
	cfg *TrendSignalConfig
}

// NewTrendSignal initializes a new trend signal.
func NewTrendSignal(cfg *TrendSignalConfig) (*TrendSignal, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating trend signal config: %w", err)
	}

	return &TrendSignal{cfg: cfg}, nil
}

// Decide fetches the price window for the provided price id and derives a decision.
func (s *TrendSignal) Decide(ctx context.Context, priceID string, isHolding bool) (shared.Decision, error) {
	series, err := s.cfg.Fetcher.FetchDailyHistory(ctx, priceID, WindowLength)
	if err != nil {
		if !errors.Is(err, shared.ErrProvider) {
			err = fmt.Errorf("%w: %w", shared.ErrProvider, err)
		}
		return shared.Hold, fmt.Errorf("fetching price history for %s: %w", priceID, err)
	}

	eval, err := Evaluate(series, isHolding)
	if err != nil {
		return shared.Hold, fmt.Errorf("evaluating price history for %s: %w", priceID, err)
	}

	name := series.Name
	if name == "" {
		name = priceID
	}

	switch eval.Decision {
	case shared.EnterLong:
		s.cfg.Logger.Info().Msgf("buy signal: %s is making a new %d-day high of %s (as of %s)",
			name, WindowLength, eval.WindowHigh.String(), eval.LatestAt.Format(time.RFC3339))
	case shared.ExitLong:
		s.cfg.Logger.Info().Msgf("sell signal: %s is past %d days since its %d-day high of %s",
			name, RecentLength, WindowLength, eval.WindowHigh.String())
	default:
		s.cfg.Logger.Info().Msgf("hold: no action needed for %s", name)
	}

	return eval.Decision, nil
}
