package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dnldd/trend/shared"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// Gateway paths.
	marketsPath   = "/v2/markets"
	positionsPath = "/v2/positions"
	oraclePath    = "/v2/oracle/"
	ordersPath    = "/v2/orders"

	// Request authentication headers.
	authorityHeader = "X-Authority"
	signatureHeader = "X-Signature"
)

// HealthChecker defines the requirements for checking the health of the chain rpc node.
type HealthChecker interface {
	// GetHealth returns the health of the rpc node.
	GetHealth(ctx context.Context) (string, error)
	// Close closes the rpc client.
	Close() error
}

// SessionConfig represents the venue session configuration.
type SessionConfig struct {
	// GatewayURL is the base url of the trading gateway.
	GatewayURL string
	// RPCEndpoint is the solana rpc endpoint.
	RPCEndpoint string
	// KeeperKey signs gateway requests.
	KeeperKey solana.PrivateKey
	// RPC checks the rpc node health, it defaults to a client for the rpc endpoint.
	RPC HealthChecker
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *SessionConfig) Validate() error {
	var errs error

	if cfg.GatewayURL == "" {
		errs = errors.Join(errs, fmt.Errorf("gateway url cannot be an empty string"))
	}
	if cfg.RPCEndpoint == "" && cfg.RPC == nil {
		errs = errors.Join(errs, fmt.Errorf("rpc endpoint cannot be an empty string"))
	}
	if len(cfg.KeeperKey) == 0 {
		errs = errors.Join(errs, fmt.Errorf("keeper key cannot be empty"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Session represents a venue session over the trading gateway.
type Session struct {
	cfg        *SessionConfig
	httpc      *http.Client
	rpc        HealthChecker
	authority  solana.PublicKey
	markets    map[uint16]shared.MarketDescriptor
	marketsMtx sync.RWMutex
	subscribed bool
}

// Ensure the Session implements the Venue interface.
var _ shared.Venue = (*Session)(nil)

// NewSession initializes a new venue session.
func NewSession(cfg *SessionConfig) (*Session, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating session config: %w", err)
	}

	rpcClient := cfg.RPC
	if rpcClient == nil {
		rpcClient = rpc.New(cfg.RPCEndpoint)
	}

	return &Session{
		cfg:       cfg,
		httpc:     &http.Client{Timeout: time.Second * 10},
		rpc:       rpcClient,
		authority: cfg.KeeperKey.PublicKey(),
		markets:   make(map[uint16]shared.MarketDescriptor),
	}, nil
}

// Authority returns the keeper public key.
func (s *Session) Authority() solana.PublicKey {
	return s.authority
}

// do performs the provided gateway request and returns the parsed response and status code.
func (s *Session) do(req *http.Request) (gjson.Result, int, error) {
	resp, err := s.httpc.Do(req)
	if err != nil {
		return gjson.Result{}, 0, fmt.Errorf("requesting %s: %w", req.URL.Path, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	if len(body) == 0 {
		return gjson.Result{}, resp.StatusCode, nil
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, resp.StatusCode, fmt.Errorf("invalid json response (status %d) from %s",
			resp.StatusCode, req.URL.Path)
	}

	return gjson.ParseBytes(body), resp.StatusCode, nil
}

// get performs a gateway get request.
func (s *Session) get(ctx context.Context, path string, params url.Values) (gjson.Result, int, error) {
	target := s.cfg.GatewayURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return gjson.Result{}, 0, fmt.Errorf("creating request: %w", err)
	}

	return s.do(req)
}

// Subscribe checks the rpc node health and loads the perp market snapshot.
func (s *Session) Subscribe(ctx context.Context) error {
	health, err := s.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("checking rpc health: %w", err)
	}
	if health != rpc.HealthOk {
		return fmt.Errorf("rpc node is unhealthy: %s", health)
	}

	data, status, err := s.get(ctx, marketsPath, nil)
	if err != nil {
		return fmt.Errorf("fetching markets: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("fetching markets: unexpected status %d: %s", status, data.Get("message").String())
	}

	perps := data.Get("perp").Array()
	if len(perps) == 0 {
		return fmt.Errorf("gateway returned no perp markets")
	}

	markets := make(map[uint16]shared.MarketDescriptor, len(perps))
	for _, perp := range perps {
		idx := perp.Get("marketIndex")
		if !idx.Exists() {
			continue
		}
		if idx.Type != gjson.Number || idx.Uint() > math.MaxUint16 || idx.Num != float64(idx.Uint()) {
			s.cfg.Logger.Error().Msgf("skipping perp market with invalid index %s", idx.Raw)
			continue
		}

		markets[uint16(idx.Uint())] = shared.MarketDescriptor{
			Index:  uint16(idx.Uint()),
			Symbol: perp.Get("symbol").String(),
		}
	}

	s.marketsMtx.Lock()
	s.markets = markets
	s.subscribed = true
	s.marketsMtx.Unlock()

	s.cfg.Logger.Info().Msgf("subscribed to %d perp markets as %s", len(markets), s.authority.String())

	return nil
}

// IsConnected checks whether the session is subscribed.
func (s *Session) IsConnected() bool {
	s.marketsMtx.RLock()
	defer s.marketsMtx.RUnlock()

	return s.subscribed
}

// MarketDescriptor returns the cached descriptor of the provided market.
func (s *Session) MarketDescriptor(marketIndex uint16) (shared.MarketDescriptor, bool) {
	s.marketsMtx.RLock()
	defer s.marketsMtx.RUnlock()

	desc, ok := s.markets[marketIndex]
	return desc, ok
}

// Positions returns the keeper's perp positions keyed by market index.
func (s *Session) Positions(ctx context.Context) (map[uint16]shared.Position, error) {
	params := url.Values{}
	params.Add("authority", s.authority.String())

	data, status, err := s.get(ctx, positionsPath, params)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching positions: unexpected status %d: %s",
			status, data.Get("message").String())
	}

	perps := data.Get("perp").Array()
	positions := make(map[uint16]shared.Position, len(perps))
	for _, perp := range perps {
		idx := perp.Get("marketIndex")
		if idx.Type != gjson.Number || idx.Uint() > math.MaxUint16 || idx.Num != float64(idx.Uint()) {
			return nil, fmt.Errorf("invalid position market index %s", idx.Raw)
		}

		amount, err := strconv.ParseInt(perp.Get("baseAssetAmount").String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing market %d base asset amount: %w", idx.Uint(), err)
		}

		marketIndex := uint16(idx.Uint())
		positions[marketIndex] = shared.Position{MarketIndex: marketIndex, BaseAssetAmount: amount}
	}

	return positions, nil
}

// Position returns the keeper's perp position for the provided market.
func (s *Session) Position(ctx context.Context, marketIndex uint16) (shared.Position, bool, error) {
	positions, err := s.Positions(ctx)
	if err != nil {
		return shared.Position{}, false, err
	}

	pos, ok := positions[marketIndex]
	return pos, ok, nil
}

// OraclePrice returns the current oracle price of the provided market.
func (s *Session) OraclePrice(ctx context.Context, marketIndex uint16) (*big.Int, bool, error) {
	data, status, err := s.get(ctx, oraclePath+strconv.Itoa(int(marketIndex)), nil)
	if err != nil {
		return nil, false, fmt.Errorf("fetching oracle price: %w", err)
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("fetching oracle price: unexpected status %d: %s",
			status, data.Get("message").String())
	}

	price, ok := new(big.Int).SetString(data.Get("price").String(), 10)
	if !ok {
		return nil, false, fmt.Errorf("parsing market %d oracle price '%s'", marketIndex, data.Get("price").String())
	}

	return price, true, nil
}

// order represents a gateway order.
type order struct {
	MarketIndex     uint16 `json:"marketIndex"`
	MarketType      string `json:"marketType"`
	OrderType       string `json:"orderType"`
	Direction       string `json:"direction"`
	BaseAssetAmount string `json:"baseAssetAmount"`
}

// SubmitOrder submits the provided intent as a perp market order.
func (s *Session) SubmitOrder(ctx context.Context, intent shared.OrderIntent) (string, error) {
	payload, err := json.Marshal(struct {
		Orders []order `json:"orders"`
	}{
		Orders: []order{{
			MarketIndex:     intent.MarketIndex,
			MarketType:      "perp",
			OrderType:       "market",
			Direction:       intent.Direction.String(),
			BaseAssetAmount: strconv.FormatUint(intent.BaseAssetAmount, 10),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding order: %w", shared.ErrSubmit, err)
	}

	sig, err := s.cfg.KeeperKey.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("%w: signing order: %w", shared.ErrSubmit, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL+ordersPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", shared.ErrSubmit, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authorityHeader, s.authority.String())
	req.Header.Set(signatureHeader, sig.String())

	data, status, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrSubmit, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d: %s", shared.ErrSubmit, status, data.Get("message").String())
	}

	tx := data.Get("tx").String()
	if tx == "" {
		return "", fmt.Errorf("%w: no transaction signature returned", shared.ErrSubmit)
	}

	return tx, nil
}

// Disconnect tears down the session, clearing the market snapshot.
func (s *Session) Disconnect() error {
	s.marketsMtx.Lock()
	s.markets = make(map[uint16]shared.MarketDescriptor)
	s.subscribed = false
	s.marketsMtx.Unlock()

	s.httpc.CloseIdleConnections()

	return nil
}

// Close closes the rpc client, the session cannot be subscribed afterwards.
func (s *Session) Close() error {
	err := s.Disconnect()
	if err != nil {
		return err
	}

	return s.rpc.Close()
}
