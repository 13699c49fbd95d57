package shared

import (
	"context"
	"math/big"
)

// PriceHistoryFetcher defines the requirements for fetching daily price history.
type PriceHistoryFetcher interface {
	// FetchDailyHistory fetches the most recent daily closing prices for the provided price id,
	// ordered from oldest to newest.
	FetchDailyHistory(ctx context.Context, priceID string, windowLength int) (PriceSeries, error)
}

// PositionReader defines the requirements for reading venue positions.
type PositionReader interface {
	// Position returns the venue position for the provided market, the boolean is false
	// when the venue holds no position for the market.
	Position(ctx context.Context, marketIndex uint16) (Position, bool, error)
}

// PositionSnapshotReader defines the requirements for reading all venue positions at once.
type PositionSnapshotReader interface {
	// Positions returns the venue positions keyed by market index.
	Positions(ctx context.Context) (map[uint16]Position, error)
}

// MarketResolver defines the requirements for resolving venue market accounts.
type MarketResolver interface {
	// MarketDescriptor returns the venue descriptor for the provided market.
	MarketDescriptor(marketIndex uint16) (MarketDescriptor, bool)
}

// OracleReader defines the requirements for reading oracle prices.
type OracleReader interface {
	// OraclePrice returns the current oracle price for the provided market in price precision.
	OraclePrice(ctx context.Context, marketIndex uint16) (*big.Int, bool, error)
}

// OrderSubmitter defines the requirements for submitting orders.
type OrderSubmitter interface {
	// SubmitOrder submits the provided order intent as a market order and returns its id.
	SubmitOrder(ctx context.Context, intent OrderIntent) (string, error)
}

// Venue defines the requirements for a venue session.
type Venue interface {
	PositionReader
	PositionSnapshotReader
	MarketResolver
	OracleReader
	OrderSubmitter

	// Subscribe establishes the session and loads the market snapshot.
	Subscribe(ctx context.Context) error
	// IsConnected checks whether the session is subscribed.
	IsConnected() bool
	// Disconnect tears down the session.
	Disconnect() error
}
