package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dnldd/trend/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the CoinMarketCap pro api base url.
	BaseURL = "https://pro-api.coinmarketcap.com"
	// historicalQuotesPath is the historical quotes endpoint path.
	historicalQuotesPath = "/v2/cryptocurrency/quotes/historical"
	// apiKeyHeader is the api key request header.
	apiKeyHeader = "X-CMC_PRO_API_KEY"
)

// CMCConfig represents the configuration for the CoinMarketCap client.
type CMCConfig struct {
	// APIKey is the CoinMarketCap API Key.
	APIKey string
	// BaseURL is the base url of the api.
	BaseURL string
}

// CMCClient represents the CoinMarketCap API client.
type CMCClient struct {
	cfg   *CMCConfig
	httpc *http.Client
	buf   *bytes.Buffer
}

// Ensure the CMCClient implements the PriceHistoryFetcher interface.
var _ shared.PriceHistoryFetcher = (*CMCClient)(nil)

// NewCMCClient instantiates a new CoinMarketCap client.
func NewCMCClient(cfg *CMCConfig) (*CMCClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cmc api key cannot be an empty string")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &CMCClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: time.Second * 10},
		buf:   bytes.NewBuffer(make([]byte, 0, 512)),
	}, nil
}

// formURL creates full urls including parameters for the api.
func (c *CMCClient) formURL(path string, params string) string {
	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// FetchDailyHistory fetches the most recent daily quotes for the provided CoinMarketCap id.
func (c *CMCClient) FetchDailyHistory(ctx context.Context, priceID string, windowLength int) (shared.PriceSeries, error) {
	params := url.Values{}
	params.Add("id", priceID)
	params.Add("count", strconv.Itoa(windowLength))
	params.Add("interval", "1d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.formURL(historicalQuotesPath, params.Encode()), nil)
	if err != nil {
		return shared.PriceSeries{}, fmt.Errorf("creating historical quotes request: %w", err)
	}

	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return shared.PriceSeries{}, fmt.Errorf("%w: fetching historical quotes for %s: %w", shared.ErrProvider, priceID, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return shared.PriceSeries{}, fmt.Errorf("%w: reading response body: %w", shared.ErrProvider, err)
	}

	if !gjson.ValidBytes(body) {
		return shared.PriceSeries{}, fmt.Errorf("%w: invalid json response (status %d) for %s",
			shared.ErrProvider, resp.StatusCode, priceID)
	}

	data := gjson.ParseBytes(body)

	if resp.StatusCode != http.StatusOK || data.Get("status.error_code").Int() != 0 {
		return shared.PriceSeries{}, fmt.Errorf("%w: status %d for %s: %s", shared.ErrProvider,
			resp.StatusCode, priceID, data.Get("status.error_message").String())
	}

	series, err := ParseQuotes(data.Get("data.name").String(), data.Get("data.quotes").Array())
	if err != nil {
		return shared.PriceSeries{}, fmt.Errorf("%w: parsing quotes for %s: %w", shared.ErrProvider, priceID, err)
	}

	return series, nil
}
