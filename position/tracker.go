package position

import (
	"context"
	"errors"
	"fmt"

	"github.com/dnldd/trend/shared"
	"github.com/rs/zerolog"
)

// TrackerConfig represents the exposure tracker configuration.
type TrackerConfig struct {
	// Venue reads authoritative positions.
	Venue shared.PositionReader
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *TrackerConfig) Validate() error {
	var errs error

	if cfg.Venue == nil {
		errs = errors.Join(errs, fmt.Errorf("venue cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Tracker maintains the locally known open position per market. Markets without an entry are
// flat, a zero sized position is never stored.
//
// The tracker is not safe for concurrent use, it is owned by a single pass at a time.
type Tracker struct {
	cfg       *TrackerConfig
	positions map[uint16]shared.Position
}

// NewTracker initializes a new exposure tracker.
func NewTracker(cfg *TrackerConfig) (*Tracker, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating tracker config: %w", err)
	}

	return &Tracker{
		cfg:       cfg,
		positions: make(map[uint16]shared.Position),
	}, nil
}

// track updates the tracked entry of the provided market, absent or zero positions are removed.
func (t *Tracker) track(marketIndex uint16, pos shared.Position, ok bool) (shared.Position, bool) {
	if !ok || pos.BaseAssetAmount == 0 {
		delete(t.positions, marketIndex)
		return shared.Position{}, false
	}

	pos.MarketIndex = marketIndex
	t.positions[marketIndex] = pos

	return pos, true
}

// Refresh reads the venue position for the provided market and updates the tracked entry.
func (t *Tracker) Refresh(ctx context.Context, marketIndex uint16) (shared.Position, bool, error) {
	pos, ok, err := t.cfg.Venue.Position(ctx, marketIndex)
	if err != nil {
		return shared.Position{}, false, fmt.Errorf("%w: market %d: %w",
			shared.ErrPositionUnavailable, marketIndex, err)
	}

	pos, ok = t.track(marketIndex, pos, ok)
	return pos, ok, nil
}

// RefreshAll refreshes the tracked entries of all provided markets. Venues able to serve a
// position snapshot are read once for all markets.
func (t *Tracker) RefreshAll(ctx context.Context, marketIndices []uint16) error {
	t.cfg.Logger.Info().Msgf("updating positions for %d markets", len(marketIndices))

	snapshotter, ok := t.cfg.Venue.(shared.PositionSnapshotReader)
	if !ok {
		for _, idx := range marketIndices {
			_, _, err := t.Refresh(ctx, idx)
			if err != nil {
				return err
			}
		}

		return nil
	}

	positions, err := snapshotter.Positions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPositionUnavailable, err)
	}

	for _, idx := range marketIndices {
		pos, ok := positions[idx]
		t.track(idx, pos, ok)
	}

	return nil
}

// Position returns the tracked position for the provided market.
func (t *Tracker) Position(marketIndex uint16) (shared.Position, bool) {
	pos, ok := t.positions[marketIndex]
	return pos, ok
}

// ExposureView returns the exposure of the provided market, an untracked market is flat.
func (t *Tracker) ExposureView(marketIndex uint16) shared.ExposureView {
	pos, ok := t.positions[marketIndex]
	if !ok {
		return shared.NewExposureView(nil)
	}

	return shared.NewExposureView(&pos)
}
