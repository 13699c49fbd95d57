package position

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dnldd/trend/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

type venueMock struct {
	positions map[uint16]shared.Position
	errs      map[uint16]error
	calls     int
}

func (m *venueMock) Position(ctx context.Context, marketIndex uint16) (shared.Position, bool, error) {
	m.calls++
	if err := m.errs[marketIndex]; err != nil {
		return shared.Position{}, false, err
	}

	pos, ok := m.positions[marketIndex]
	return pos, ok, nil
}

type snapshotVenueMock struct {
	venueMock
	snapshots int
	err       error
}

func (m *snapshotVenueMock) Positions(ctx context.Context) (map[uint16]shared.Position, error) {
	m.snapshots++
	if m.err != nil {
		return nil, m.err
	}

	return m.positions, nil
}

func setupTracker(t *testing.T) (*Tracker, *venueMock) {
	venue := &venueMock{
		positions: make(map[uint16]shared.Position),
		errs:      make(map[uint16]error),
	}

	tracker, err := NewTracker(&TrackerConfig{
		Venue:  venue,
		Logger: &log.Logger,
	})
	assert.NoError(t, err)

	return tracker, venue
}

func TestTrackerConfigValidate(t *testing.T) {
	// Ensure an empty config reports every missing field.
	cfg := &TrackerConfig{}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "venue cannot be nil"))
	assert.True(t, strings.Contains(err.Error(), "logger cannot be nil"))

	_, err = NewTracker(cfg)
	assert.Error(t, err)
}

func TestTrackerRefresh(t *testing.T) {
	tracker, venue := setupTracker(t)
	ctx := context.Background()

	// Ensure an absent venue position leaves the market untracked.
	pos, ok, err := tracker.Refresh(ctx, 0)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, pos, shared.Position{})
	_, tracked := tracker.Position(0)
	assert.False(t, tracked)

	// Ensure a nonzero venue position is tracked.
	venue.positions[0] = shared.Position{MarketIndex: 0, BaseAssetAmount: 5_000_000}
	pos, ok, err = tracker.Refresh(ctx, 0)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pos.BaseAssetAmount, int64(5_000_000))

	view := tracker.ExposureView(0)
	assert.Equal(t, view.Long, uint64(5_000_000))
	assert.Equal(t, view.Short, uint64(0))

	// Ensure a zero sized venue position removes the tracked entry.
	venue.positions[0] = shared.Position{MarketIndex: 0, BaseAssetAmount: 0}
	_, ok, err = tracker.Refresh(ctx, 0)
	assert.NoError(t, err)
	assert.False(t, ok)
	_, tracked = tracker.Position(0)
	assert.False(t, tracked)
	assert.Equal(t, tracker.ExposureView(0), shared.ExposureView{})

	// Ensure a venue failure is reported as an unavailable position and leaves
	// the tracked entry untouched.
	venue.positions[1] = shared.Position{MarketIndex: 1, BaseAssetAmount: -300}
	_, _, err = tracker.Refresh(ctx, 1)
	assert.NoError(t, err)

	venue.errs[1] = errors.New("connection reset")
	_, _, err = tracker.Refresh(ctx, 1)
	assert.Error(t, err)
	assert.Equal(t, shared.KindOf(err), shared.PositionUnavailable)

	view = tracker.ExposureView(1)
	assert.Equal(t, view.Long, uint64(0))
	assert.Equal(t, view.Short, uint64(300))
}

func TestTrackerRefreshAll(t *testing.T) {
	tracker, venue := setupTracker(t)
	ctx := context.Background()

	venue.positions[0] = shared.Position{MarketIndex: 0, BaseAssetAmount: 10}
	venue.positions[2] = shared.Position{MarketIndex: 2, BaseAssetAmount: -20}

	// Ensure every provided market is refreshed once.
	err := tracker.RefreshAll(ctx, []uint16{0, 1, 2})
	assert.NoError(t, err)
	assert.Equal(t, venue.calls, 3)

	assert.Equal(t, tracker.ExposureView(0).Long, uint64(10))
	assert.Equal(t, tracker.ExposureView(1), shared.ExposureView{})
	assert.Equal(t, tracker.ExposureView(2).Short, uint64(20))

	// Ensure a venue failure stops the refresh.
	venue.errs[1] = errors.New("timeout")
	venue.calls = 0
	err = tracker.RefreshAll(ctx, []uint16{0, 1, 2})
	assert.Error(t, err)
	assert.Equal(t, venue.calls, 2)
}

func TestTrackerRefreshAllFromSnapshot(t *testing.T) {
	venue := &snapshotVenueMock{
		venueMock: venueMock{
			positions: map[uint16]shared.Position{
				0: {MarketIndex: 0, BaseAssetAmount: 10},
				2: {MarketIndex: 2, BaseAssetAmount: -20},
				5: {MarketIndex: 5, BaseAssetAmount: 0},
			},
			errs: make(map[uint16]error),
		},
	}

	tracker, err := NewTracker(&TrackerConfig{
		Venue:  venue,
		Logger: &log.Logger,
	})
	assert.NoError(t, err)
	ctx := context.Background()

	// Ensure the venue is read once for all markets.
	err = tracker.RefreshAll(ctx, []uint16{0, 1, 2, 5})
	assert.NoError(t, err)
	assert.Equal(t, venue.snapshots, 1)
	assert.Equal(t, venue.calls, 0)

	assert.Equal(t, tracker.ExposureView(0).Long, uint64(10))
	assert.Equal(t, tracker.ExposureView(1), shared.ExposureView{})
	assert.Equal(t, tracker.ExposureView(2).Short, uint64(20))
	_, tracked := tracker.Position(5)
	assert.False(t, tracked)

	// Ensure positions closed on the venue are untracked on the next refresh.
	delete(venue.positions, 0)
	err = tracker.RefreshAll(ctx, []uint16{0, 1, 2, 5})
	assert.NoError(t, err)
	assert.Equal(t, venue.snapshots, 2)
	_, tracked = tracker.Position(0)
	assert.False(t, tracked)

	// Ensure a snapshot failure is reported as an unavailable position.
	venue.err = errors.New("timeout")
	err = tracker.RefreshAll(ctx, []uint16{0, 1, 2})
	assert.Error(t, err)
	assert.Equal(t, shared.KindOf(err), shared.PositionUnavailable)
	assert.Equal(t, tracker.ExposureView(2).Short, uint64(20))
}
