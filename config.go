package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/dnldd/trend/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	defaultPaceDelayMs  = 1000
	defaultReadyRetryMs = 1000
	defaultLogLevel     = "info"
)

// Config is the configuration struct for the service.
type Config struct {
	// Endpoint is the solana rpc endpoint.
	Endpoint string
	// GatewayURL is the base url of the trading gateway.
	GatewayURL string
	// KeeperPrivateKey is the keeper signing key, comma separated bytes or base58.
	KeeperPrivateKey string
	// CMCAPIKey is the CoinMarketCap API Key.
	CMCAPIKey string
	// Markets represents the traded markets as index:name:priceid[:notional] entries.
	Markets []string
	// PriceDataFilepath is the filepath to offline price history, it replaces CoinMarketCap.
	PriceDataFilepath string
	// Schedule is the cron expression of scheduled passes.
	Schedule string
	// Once runs a single pass and exits.
	Once bool
	// PaceDelayMs is the delay between consecutive markets in milliseconds.
	PaceDelayMs int
	// ReadyRetryMs is the delay between venue readiness checks in milliseconds.
	ReadyRetryMs int
	// JournalEndpoint is the optional pass journal endpoint.
	JournalEndpoint string
	// JournalUser is the pass journal user.
	JournalUser string
	// JournalPass is the pass journal user pass.
	JournalPass string
	// LogLevel is the logging level.
	LogLevel string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Endpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("rpc endpoint cannot be an empty string"))
	}
	if cfg.GatewayURL == "" {
		errs = errors.Join(errs, fmt.Errorf("gateway url cannot be an empty string"))
	}
	if cfg.KeeperPrivateKey == "" {
		errs = errors.Join(errs, fmt.Errorf("keeper private key cannot be an empty string"))
	}
	if cfg.CMCAPIKey == "" && cfg.PriceDataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("cmc api key cannot be an empty string without a price data filepath"))
	}
	if !cfg.Once && cfg.Schedule == "" {
		errs = errors.Join(errs, fmt.Errorf("schedule cannot be an empty string"))
	}
	if cfg.PaceDelayMs < 0 {
		errs = errors.Join(errs, fmt.Errorf("pace delay cannot be negative"))
	}
	if cfg.ReadyRetryMs <= 0 {
		errs = errors.Join(errs, fmt.Errorf("ready retry interval must be positive"))
	}
	if cfg.JournalEndpoint == "" && cfg.JournalUser != "" {
		errs = errors.Join(errs, fmt.Errorf("journal user provided without a journal endpoint"))
	}

	_, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		errs = errors.Join(errs, fmt.Errorf("parsing log level: %w", err))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		def := *value.(*string)
		if defValue != "" {
			def = defValue
		}
		flag.StringVar(value.(*string), name, def, usage)
	case reflect.Bool:
		def := *value.(*bool)
		if defValue != "" {
			var err error
			def, err = strconv.ParseBool(defValue)
			if err != nil {
				return fmt.Errorf("%s: parsing env value '%s': %w", name, defValue, err)
			}
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		def := *value.(*int)
		if defValue != "" {
			var err error
			def, err = strconv.Atoi(defValue)
			if err != nil {
				return fmt.Errorf("%s: parsing env value '%s': %w", name, defValue, err)
			}
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	cfg.Schedule = service.DefaultSchedule
	cfg.PaceDelayMs = defaultPaceDelayMs
	cfg.ReadyRetryMs = defaultReadyRetryMs
	cfg.LogLevel = defaultLogLevel

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"endpoint", &cfg.Endpoint, "the solana rpc endpoint"},
		{"gatewayurl", &cfg.GatewayURL, "the trading gateway url"},
		{"keeperprivatekey", &cfg.KeeperPrivateKey, "the keeper private key"},
		{"cmcapikey", &cfg.CMCAPIKey, "the CoinMarketCap api key"},
		{"markets", &cfg.Markets, "the traded markets (index:name:priceid[:notional])"},
		{"pricedatafilepath", &cfg.PriceDataFilepath, "the offline price history filepath"},
		{"schedule", &cfg.Schedule, "the pass cron schedule (UTC)"},
		{"once", &cfg.Once, "run a single pass and exit"},
		{"pacedelayms", &cfg.PaceDelayMs, "the delay between markets in milliseconds"},
		{"readyretryms", &cfg.ReadyRetryMs, "the delay between venue readiness checks in milliseconds"},
		{"journalendpoint", &cfg.JournalEndpoint, "the pass journal endpoint"},
		{"journaluser", &cfg.JournalUser, "the pass journal user"},
		{"journalpass", &cfg.JournalPass, "the pass journal user pass"},
		{"loglevel", &cfg.LogLevel, "the logging level"},
	}
	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
