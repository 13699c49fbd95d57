package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/trend/market"
	"github.com/dnldd/trend/position"
	"github.com/dnldd/trend/shared"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultPaceDelay is the default delay between consecutive markets.
	DefaultPaceDelay = time.Second
)

// Signaler defines the requirements for deciding on a market.
type Signaler interface {
	// Decide derives a decision for the provided price id and holding status.
	Decide(ctx context.Context, priceID string, isHolding bool) (shared.Decision, error)
}

// Sizer defines the requirements for sizing orders.
type Sizer interface {
	// ToBaseAmount converts the provided notional into a base asset amount for the market.
	ToBaseAmount(ctx context.Context, marketIndex uint16, notional uint64) (uint64, error)
}

// Venue defines the venue requirements of the controller.
type Venue interface {
	shared.MarketResolver
	shared.OrderSubmitter
}

// MarketOutcome represents the outcome of processing a market in a pass.
type MarketOutcome struct {
	Market   shared.MarketConfig
	Holding  shared.Holding
	Decision shared.Decision
	Intent   *shared.OrderIntent
	OrderID  string
	Err      error
}

// ErrorKind returns the failure kind of the outcome.
func (o *MarketOutcome) ErrorKind() shared.ErrorKind {
	return shared.KindOf(o.Err)
}

// PassReport represents the outcomes of a pass.
type PassReport struct {
	ID        string
	StartedOn time.Time
	Outcomes  []MarketOutcome
}

// Intents returns the order intents emitted by the pass in market order.
func (r *PassReport) Intents() []shared.OrderIntent {
	intents := make([]shared.OrderIntent, 0, len(r.Outcomes))
	for idx := range r.Outcomes {
		if r.Outcomes[idx].Intent != nil {
			intents = append(intents, *r.Outcomes[idx].Intent)
		}
	}

	return intents
}

// ControllerConfig represents the position controller configuration.
type ControllerConfig struct {
	// Venue resolves market accounts and submits orders.
	Venue Venue
	// Tracker tracks market exposure.
	Tracker *position.Tracker
	// Signal decides on markets.
	Signal Signaler
	// Sizer sizes entry orders.
	Sizer Sizer
	// PaceDelay is the delay between consecutive markets.
	PaceDelay time.Duration
	// Wait blocks for the provided duration or until the context is done.
	Wait func(ctx context.Context, d time.Duration) error
	// PersistOutcome persists the provided market outcome, it is optional.
	PersistOutcome func(ctx context.Context, passID string, outcome *MarketOutcome) error
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ControllerConfig) Validate() error {
	var errs error

	if cfg.Venue == nil {
		errs = errors.Join(errs, fmt.Errorf("venue cannot be nil"))
	}
	if cfg.Tracker == nil {
		errs = errors.Join(errs, fmt.Errorf("tracker cannot be nil"))
	}
	if cfg.Signal == nil {
		errs = errors.Join(errs, fmt.Errorf("signal cannot be nil"))
	}
	if cfg.Sizer == nil {
		errs = errors.Join(errs, fmt.Errorf("sizer cannot be nil"))
	}
	if cfg.PaceDelay < 0 {
		errs = errors.Join(errs, fmt.Errorf("pace delay cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Sleep blocks for the provided duration or until the context is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Controller processes configured markets sequentially, moving each toward its target position.
type Controller struct {
	cfg *ControllerConfig
}

// NewController initializes a new position controller.
func NewController(cfg *ControllerConfig) (*Controller, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating controller config: %w", err)
	}

	if cfg.Wait == nil {
		cfg.Wait = Sleep
	}

	return &Controller{cfg: cfg}, nil
}

// intentFor returns the order intent for the provided decision and holding, if any.
func (c *Controller) intentFor(ctx context.Context, mkt *shared.MarketConfig, decision shared.Decision, holding shared.Holding) (*shared.OrderIntent, error) {
	switch {
	case decision == shared.EnterLong && !holding.IsHolding():
		amount, err := c.cfg.Sizer.ToBaseAmount(ctx, mkt.Index, mkt.TargetNotional)
		if err != nil {
			return nil, err
		}

		return &shared.OrderIntent{
			MarketIndex:     mkt.Index,
			Direction:       shared.Long,
			BaseAssetAmount: amount,
		}, nil

	case decision == shared.ExitLong && holding.IsHolding():
		// Exits always fully flatten the held amount, regardless of the target notional.
		return &shared.OrderIntent{
			MarketIndex:     mkt.Index,
			Direction:       shared.Short,
			BaseAssetAmount: holding.Amount,
		}, nil

	default:
		return nil, nil
	}
}

// processMarket evaluates the provided market and submits at most one order for it.
func (c *Controller) processMarket(ctx context.Context, mkt *shared.MarketConfig) MarketOutcome {
	holding := c.cfg.Tracker.ExposureView(mkt.Index).Holding()
	outcome := MarketOutcome{
		Market:   *mkt,
		Holding:  holding,
		Decision: shared.Hold,
	}

	decision, err := c.cfg.Signal.Decide(ctx, mkt.PriceID, holding.IsHolding())
	if err != nil {
		outcome.Err = fmt.Errorf("deciding on %s: %w", mkt.Name, err)
		return outcome
	}
	outcome.Decision = decision

	intent, err := c.intentFor(ctx, mkt, decision, holding)
	if err != nil {
		outcome.Err = fmt.Errorf("sizing %s: %w", mkt.Name, err)
		return outcome
	}
	if intent == nil {
		return outcome
	}
	outcome.Intent = intent

	orderID, err := c.cfg.Venue.SubmitOrder(ctx, *intent)
	if err != nil {
		if !errors.Is(err, shared.ErrSubmit) {
			err = fmt.Errorf("%w: %w", shared.ErrSubmit, err)
		}
		outcome.Err = fmt.Errorf("creating order for %s: %w", mkt.Name, err)
		return outcome
	}
	outcome.OrderID = orderID

	c.cfg.Logger.Info().Msgf("placed %s order (%s) for %s", intent.String(), orderID, mkt.Name)

	return outcome
}

// persist relays the provided outcome to the outcome persister when one is configured.
func (c *Controller) persist(ctx context.Context, passID string, outcome *MarketOutcome) {
	if c.cfg.PersistOutcome == nil {
		return
	}

	err := c.cfg.PersistOutcome(ctx, passID, outcome)
	if err != nil {
		c.cfg.Logger.Error().Msgf("persisting %s outcome: %v", outcome.Market.Name, err)
	}
}

// RunPass processes the provided markets in order. Positions are refreshed once for every
// market before any market is evaluated. Per-market failures are recorded in the report and
// the pass continues, an unresolvable market account or an unreadable position aborts the pass.
func (c *Controller) RunPass(ctx context.Context, markets []shared.MarketConfig) (*PassReport, error) {
	report := &PassReport{
		ID:        uuid.New().String(),
		StartedOn: time.Now().UTC(),
		Outcomes:  make([]MarketOutcome, 0, len(markets)),
	}

	err := c.cfg.Tracker.RefreshAll(ctx, market.Indices(markets))
	if err != nil {
		return report, fmt.Errorf("refreshing positions: %w", err)
	}

	for idx := range markets {
		mkt := &markets[idx]

		_, ok := c.cfg.Venue.MarketDescriptor(mkt.Index)
		if !ok {
			c.cfg.Logger.Error().Msgf("market account not found for market index %d", mkt.Index)
			return report, fmt.Errorf("%w: market index %d (%s)",
				shared.ErrUnknownMarketAccount, mkt.Index, mkt.Name)
		}

		outcome := c.processMarket(ctx, mkt)
		if outcome.Err != nil {
			c.cfg.Logger.Error().Msgf("%s (%s): %v", mkt.Name, outcome.ErrorKind().String(), outcome.Err)
		}

		report.Outcomes = append(report.Outcomes, outcome)
		c.persist(ctx, report.ID, &report.Outcomes[len(report.Outcomes)-1])

		if idx == len(markets)-1 {
			break
		}

		err := c.cfg.Wait(ctx, c.cfg.PaceDelay)
		if err != nil {
			return report, fmt.Errorf("pacing after %s: %w", mkt.Name, err)
		}
	}

	return report, nil
}
