package main

import (
	"flag"
	"os"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Endpoint:         "https://api.mainnet-beta.solana.com",
		GatewayURL:       "http://localhost:8080",
		KeeperPrivateKey: "key",
		CMCAPIKey:        "apikey",
		Schedule:         "0 0 * * *",
		PaceDelayMs:      1000,
		ReadyRetryMs:     1000,
		LogLevel:         "info",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr []string
	}{
		{
			name:    "valid config",
			mutate:  func(cfg *Config) {},
			wantErr: nil,
		},
		{
			name: "offline price data without cmc api key",
			mutate: func(cfg *Config) {
				cfg.CMCAPIKey = ""
				cfg.PriceDataFilepath = "testdata/pricehistory.json"
			},
			wantErr: nil,
		},
		{
			name: "single pass without schedule",
			mutate: func(cfg *Config) {
				cfg.Once = true
				cfg.Schedule = ""
			},
			wantErr: nil,
		},
		{
			name: "missing venue inputs",
			mutate: func(cfg *Config) {
				cfg.Endpoint = ""
				cfg.GatewayURL = ""
				cfg.KeeperPrivateKey = ""
			},
			wantErr: []string{
				"rpc endpoint cannot be an empty string",
				"gateway url cannot be an empty string",
				"keeper private key cannot be an empty string",
			},
		},
		{
			name: "missing price history source",
			mutate: func(cfg *Config) {
				cfg.CMCAPIKey = ""
			},
			wantErr: []string{"cmc api key cannot be an empty string without a price data filepath"},
		},
		{
			name: "scheduled without schedule",
			mutate: func(cfg *Config) {
				cfg.Schedule = ""
			},
			wantErr: []string{"schedule cannot be an empty string"},
		},
		{
			name: "invalid delays",
			mutate: func(cfg *Config) {
				cfg.PaceDelayMs = -1
				cfg.ReadyRetryMs = 0
			},
			wantErr: []string{
				"pace delay cannot be negative",
				"ready retry interval must be positive",
			},
		},
		{
			name: "journal user without endpoint",
			mutate: func(cfg *Config) {
				cfg.JournalUser = "user"
			},
			wantErr: []string{"journal user provided without a journal endpoint"},
		},
		{
			name: "invalid log level",
			mutate: func(cfg *Config) {
				cfg.LogLevel = "loud"
			},
			wantErr: []string{"parsing log level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error(s) %v, got none", tt.wantErr)
					return
				}
				for _, want := range tt.wantErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// Save and restore original os.Args and environment
	origArgs := os.Args
	origEnv := os.Environ()
	defer func() {
		os.Args = origArgs
		for _, kv := range origEnv {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectInErr []string
		expectCfg   Config
	}{
		{
			name: "all from env",
			env: map[string]string{
				"endpoint":         "https://api.mainnet-beta.solana.com",
				"gatewayurl":       "http://localhost:8080",
				"keeperprivatekey": "key",
				"cmcapikey":        "apikey",
				"markets":          "0:SOL-PERP:5426,1:BTC-PERP:1",
				"pacedelayms":      "250",
				"once":             "true",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Markets:      []string{"0:SOL-PERP:5426", "1:BTC-PERP:1"},
				CMCAPIKey:    "apikey",
				Schedule:     "0 0 * * *",
				Once:         true,
				PaceDelayMs:  250,
				ReadyRetryMs: 1000,
				LogLevel:     "info",
			},
		},
		{
			name: "all from flags",
			env:  map[string]string{},
			args: []string{
				"cmd", "-endpoint=https://api.mainnet-beta.solana.com", "-gatewayurl=http://localhost:8080",
				"-keeperprivatekey=key", "-pricedatafilepath=testdata/pricehistory.json",
				"-schedule=30 1 * * *", "-loglevel=debug",
			},
			expectErr: false,
			expectCfg: Config{
				PriceDataFilepath: "testdata/pricehistory.json",
				Schedule:          "30 1 * * *",
				PaceDelayMs:       1000,
				ReadyRetryMs:      1000,
				LogLevel:          "debug",
			},
		},
		{
			name: "malformed pace delay from env",
			env: map[string]string{
				"endpoint":         "https://api.mainnet-beta.solana.com",
				"gatewayurl":       "http://localhost:8080",
				"keeperprivatekey": "key",
				"cmcapikey":        "apikey",
				"pacedelayms":      "1s",
			},
			args:        []string{"cmd"},
			expectErr:   true,
			expectInErr: []string{"pacedelayms: parsing env value '1s'"},
		},
		{
			name: "malformed once flag from env",
			env: map[string]string{
				"endpoint":         "https://api.mainnet-beta.solana.com",
				"gatewayurl":       "http://localhost:8080",
				"keeperprivatekey": "key",
				"cmcapikey":        "apikey",
				"once":             "yes",
			},
			args:        []string{"cmd"},
			expectErr:   true,
			expectInErr: []string{"once: parsing env value 'yes'"},
		},
		{
			name:      "missing venue inputs and price source",
			env:       map[string]string{},
			args:      []string{"cmd"},
			expectErr: true,
			expectInErr: []string{
				"rpc endpoint cannot be an empty string",
				"gateway url cannot be an empty string",
				"keeper private key cannot be an empty string",
				"cmc api key cannot be an empty string without a price data filepath",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Set environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Set command-line arguments
			os.Args = tt.args

			var cfg Config
			err := loadConfig(&cfg, "") // don't load .env file

			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, want := range tt.expectInErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(tt.expectCfg.Markets) != len(cfg.Markets) {
					t.Errorf("Markets: got %v, want %v", cfg.Markets, tt.expectCfg.Markets)
				}
				if tt.expectCfg.CMCAPIKey != "" && cfg.CMCAPIKey != tt.expectCfg.CMCAPIKey {
					t.Errorf("CMCAPIKey: got %v, want %v", cfg.CMCAPIKey, tt.expectCfg.CMCAPIKey)
				}
				if tt.expectCfg.PriceDataFilepath != cfg.PriceDataFilepath {
					t.Errorf("PriceDataFilepath: got %v, want %v", cfg.PriceDataFilepath, tt.expectCfg.PriceDataFilepath)
				}
				if cfg.Schedule != tt.expectCfg.Schedule {
					t.Errorf("Schedule: got %v, want %v", cfg.Schedule, tt.expectCfg.Schedule)
				}
				if cfg.Once != tt.expectCfg.Once {
					t.Errorf("Once: got %v, want %v", cfg.Once, tt.expectCfg.Once)
				}
				if cfg.PaceDelayMs != tt.expectCfg.PaceDelayMs {
					t.Errorf("PaceDelayMs: got %v, want %v", cfg.PaceDelayMs, tt.expectCfg.PaceDelayMs)
				}
				if cfg.ReadyRetryMs != tt.expectCfg.ReadyRetryMs {
					t.Errorf("ReadyRetryMs: got %v, want %v", cfg.ReadyRetryMs, tt.expectCfg.ReadyRetryMs)
				}
				if cfg.LogLevel != tt.expectCfg.LogLevel {
					t.Errorf("LogLevel: got %v, want %v", cfg.LogLevel, tt.expectCfg.LogLevel)
				}
			}

			// Clean up env
			for k := range tt.env {
				os.Unsetenv(k)
			}
		})
	}
}
