package shared

import "fmt"

// OrderIntent represents an order to move a market position toward its target.
type OrderIntent struct {
	MarketIndex     uint16
	Direction       Direction
	BaseAssetAmount uint64
}

// String stringifies the provided order intent.
func (o OrderIntent) String() string {
	return fmt.Sprintf("%s %d on market %d", o.Direction.String(), o.BaseAssetAmount, o.MarketIndex)
}
