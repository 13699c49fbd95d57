package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dnldd/trend/controller"
	"github.com/dnldd/trend/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// DefaultSchedule is the default pass schedule, daily at midnight UTC.
	DefaultSchedule = "0 0 * * *"
	// DefaultReadyRetryInterval is the default delay between venue readiness checks.
	DefaultReadyRetryInterval = time.Second
)

// PassRunner defines the requirements for running a pass over markets.
type PassRunner interface {
	// RunPass processes the provided markets in order.
	RunPass(ctx context.Context, markets []shared.MarketConfig) (*controller.PassReport, error)
}

// Ensure the controller implements the PassRunner interface.
var _ PassRunner = (*controller.Controller)(nil)

// BotConfig represents the configuration struct for the trend bot.
type BotConfig struct {
	// Markets represents the traded markets, processed in order.
	Markets []shared.MarketConfig
	// Venue represents the trading venue.
	Venue shared.Venue
	// Controller runs passes over the markets.
	Controller PassRunner
	// Schedule is the cron expression of scheduled passes, evaluated in UTC. Six field
	// expressions carry a leading seconds field.
	Schedule string
	// Once runs a single pass and returns instead of scheduling passes.
	Once bool
	// ReadyRetryInterval is the delay between venue readiness checks.
	ReadyRetryInterval time.Duration
	// Wait blocks for the provided duration or until the context is done.
	Wait func(ctx context.Context, d time.Duration) error
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *BotConfig) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for trend bot"))
	}
	if cfg.Venue == nil {
		errs = errors.Join(errs, fmt.Errorf("venue cannot be nil"))
	}
	if cfg.Controller == nil {
		errs = errors.Join(errs, fmt.Errorf("controller cannot be nil"))
	}
	if !cfg.Once && cfg.Schedule == "" {
		errs = errors.Join(errs, fmt.Errorf("schedule cannot be an empty string"))
	}
	if cfg.ReadyRetryInterval < 0 {
		errs = errors.Join(errs, fmt.Errorf("ready retry interval cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Bot represents the scheduled trend bot.
type Bot struct {
	cfg *BotConfig
}

// NewBot initializes a new trend bot.
func NewBot(cfg *BotConfig) (*Bot, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating bot config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if cfg.Wait == nil {
		cfg.Wait = controller.Sleep
	}
	if cfg.ReadyRetryInterval == 0 {
		cfg.ReadyRetryInterval = DefaultReadyRetryInterval
	}

	return &Bot{cfg: cfg}, nil
}

// awaitReady subscribes to the venue until it is connected or the context is done.
func (b *Bot) awaitReady(ctx context.Context) error {
	for {
		err := b.cfg.Venue.Subscribe(ctx)
		if err == nil && b.cfg.Venue.IsConnected() {
			return nil
		}
		if err != nil {
			b.cfg.Logger.Error().Msgf("subscribing to venue: %v", err)
		}

		b.cfg.Logger.Info().Msg("waiting for venue to be ready...")
		err = b.cfg.Wait(ctx, b.cfg.ReadyRetryInterval)
		if err != nil {
			return fmt.Errorf("awaiting venue readiness: %w", err)
		}
	}
}

// teardown disconnects from the venue.
func (b *Bot) teardown() {
	b.cfg.Logger.Info().Msg("tearing down trend bot...")
	err := b.cfg.Venue.Disconnect()
	if err != nil {
		b.cfg.Logger.Error().Msgf("disconnecting from venue: %v", err)
		return
	}

	b.cfg.Logger.Info().Msg("trend bot successfully torn down")
}

// RunOnce connects to the venue, runs a single pass over the configured markets and tears
// the venue session down.
func (b *Bot) RunOnce(ctx context.Context) (*controller.PassReport, error) {
	b.cfg.Logger.Info().Msgf("running trend bot pass over %d markets", len(b.cfg.Markets))

	err := b.awaitReady(ctx)
	if err != nil {
		b.teardown()
		return nil, err
	}

	report, err := b.cfg.Controller.RunPass(ctx, b.cfg.Markets)
	b.teardown()
	if err != nil {
		return report, fmt.Errorf("running pass: %w", err)
	}

	b.cfg.Logger.Info().Msgf("pass %s completed with %d order intents",
		report.ID, len(report.Intents()))

	return report, nil
}

// Run handles the lifecycle processes of the trend bot. Passes never overlap, a scheduled
// pass is skipped while the previous one is still running.
func (b *Bot) Run(ctx context.Context) error {
	if b.cfg.Once {
		_, err := b.RunOnce(ctx)
		return err
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	// Six field expressions carry a leading seconds field.
	cron := scheduler.Cron
	if len(strings.Fields(b.cfg.Schedule)) == 6 {
		cron = scheduler.CronWithSeconds
	}

	_, err := cron(b.cfg.Schedule).Do(func() {
		_, err := b.RunOnce(ctx)
		if err != nil {
			b.cfg.Logger.Error().Err(err).Msg("trend bot pass failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling passes: %w", err)
	}

	b.cfg.Logger.Info().Msgf("trend bot passes scheduled (%s UTC)", b.cfg.Schedule)
	scheduler.StartAsync()

	<-ctx.Done()
	scheduler.Stop()

	return nil
}
