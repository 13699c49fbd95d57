package fetch

import (
	"context"
	"fmt"
	"os"

	"github.com/dnldd/trend/shared"
	"github.com/tidwall/gjson"
)

// FileSource serves daily quotes from a json file keyed by price id, each entry shaped like the
// CoinMarketCap historical quotes payload.
type FileSource struct {
	data gjson.Result
}

// Ensure the FileSource implements the PriceHistoryFetcher interface.
var _ shared.PriceHistoryFetcher = (*FileSource)(nil)

// NewFileSource loads the price history file with the provided path.
func NewFileSource(filepath string) (*FileSource, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading price history from file with path '%s': %v", filepath, err)
	}

	if !gjson.ValidBytes(readb) {
		return nil, fmt.Errorf("price history file '%s' is not valid json", filepath)
	}

	return &FileSource{data: gjson.ParseBytes(readb)}, nil
}

// FetchDailyHistory returns the most recent quotes for the provided price id.
func (f *FileSource) FetchDailyHistory(ctx context.Context, priceID string, windowLength int) (shared.PriceSeries, error) {
	entry := f.data.Get(priceID)
	if !entry.Exists() {
		return shared.PriceSeries{}, fmt.Errorf("%w: no price history for %s", shared.ErrProvider, priceID)
	}

	series, err := ParseQuotes(entry.Get("name").String(), entry.Get("quotes").Array())
	if err != nil {
		return shared.PriceSeries{}, fmt.Errorf("%w: parsing quotes for %s: %w", shared.ErrProvider, priceID, err)
	}

	return series.Trailing(windowLength), nil
}
