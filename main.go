package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/trend/controller"
	"github.com/dnldd/trend/database"
	"github.com/dnldd/trend/engine"
	"github.com/dnldd/trend/fetch"
	"github.com/dnldd/trend/market"
	"github.com/dnldd/trend/position"
	"github.com/dnldd/trend/service"
	"github.com/dnldd/trend/shared"
	"github.com/dnldd/trend/venue"
	"github.com/rs/zerolog"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

// newFetcher creates the price history fetcher, offline price data takes precedence.
func newFetcher(cfg *Config) (shared.PriceHistoryFetcher, error) {
	if cfg.PriceDataFilepath != "" {
		return fetch.NewFileSource(cfg.PriceDataFilepath)
	}

	return fetch.NewCMCClient(&fetch.CMCConfig{APIKey: cfg.CMCAPIKey, BaseURL: fetch.BaseURL})
}

// newBot wires the trend bot components.
func newBot(ctx context.Context, cfg *Config, logger zerolog.Logger) (*service.Bot, *venue.Session, error) {
	markets := market.DefaultConfigs()
	if len(cfg.Markets) > 0 {
		var err error
		markets, err = market.ParseConfigs(cfg.Markets)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing markets: %w", err)
		}
	}

	keeperKey, err := venue.ParseKeeperKey(cfg.KeeperPrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing keeper key: %w", err)
	}

	sessionLogger := logger.With().Str("component", "venue").Logger()
	session, err := venue.NewSession(&venue.SessionConfig{
		GatewayURL:  cfg.GatewayURL,
		RPCEndpoint: cfg.Endpoint,
		KeeperKey:   keeperKey,
		Logger:      &sessionLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating venue session: %w", err)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating price history fetcher: %w", err)
	}

	trackerLogger := logger.With().Str("component", "tracker").Logger()
	tracker, err := position.NewTracker(&position.TrackerConfig{
		Venue:  session,
		Logger: &trackerLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating exposure tracker: %w", err)
	}

	signalLogger := logger.With().Str("component", "signal").Logger()
	trendSignal, err := engine.NewTrendSignal(&engine.TrendSignalConfig{
		Fetcher: fetcher,
		Logger:  &signalLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating trend signal: %w", err)
	}

	sizer, err := market.NewSizer(&market.SizerConfig{
		Oracle: session,
		Params: shared.DefaultProtocolParams(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating order sizer: %w", err)
	}

	var persistOutcome func(ctx context.Context, passID string, outcome *controller.MarketOutcome) error
	if cfg.JournalEndpoint != "" {
		journalLogger := logger.With().Str("component", "journal").Logger()
		journal, err := database.NewJournal(ctx, &database.JournalConfig{
			Endpoint: cfg.JournalEndpoint,
			User:     cfg.JournalUser,
			Pass:     cfg.JournalPass,
			Logger:   &journalLogger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating pass journal: %w", err)
		}
		persistOutcome = journal.PersistOutcome
	}

	controllerLogger := logger.With().Str("component", "controller").Logger()
	ctrl, err := controller.NewController(&controller.ControllerConfig{
		Venue:          session,
		Tracker:        tracker,
		Signal:         trendSignal,
		Sizer:          sizer,
		PaceDelay:      time.Duration(cfg.PaceDelayMs) * time.Millisecond,
		PersistOutcome: persistOutcome,
		Logger:         &controllerLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating position controller: %w", err)
	}

	bot, err := service.NewBot(&service.BotConfig{
		Markets:            markets,
		Venue:              session,
		Controller:         ctrl,
		Schedule:           cfg.Schedule,
		Once:               cfg.Once,
		ReadyRetryInterval: time.Duration(cfg.ReadyRetryMs) * time.Millisecond,
		Logger:             &logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating trend bot: %w", err)
	}

	return bot, session, nil
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config:%v", err)
		return
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Str("service", "trend").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot, session, err := newBot(ctx, &cfg, logger)
	if err != nil {
		logger.Error().Msgf("creating trend bot: %v", err)
		return
	}
	defer func() {
		err := session.Close()
		if err != nil {
			logger.Error().Msgf("closing venue session: %v", err)
		}
	}()

	go handleTermination(ctx, cancel)

	err = bot.Run(ctx)
	if err != nil {
		logger.Error().Msgf("running trend bot: %v", err)
	}
}
