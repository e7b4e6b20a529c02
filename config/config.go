package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"valutahub/internal/pair"
)

type Config struct {
	Valutahub  ValutahubConfig  `yaml:"valutahub"`
	Currencies CurrenciesConfig `yaml:"currencies"`
	Sources    SourcesConfig    `yaml:"sources"`
	Request    RequestConfig    `yaml:"request"`
	Storage    StorageConfig    `yaml:"storage"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ValutahubConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type CurrenciesConfig struct {
	Base      string            `yaml:"base"`
	Fiat      []string          `yaml:"fiat"`
	Crypto    []string          `yaml:"crypto"`
	CryptoIDs map[string]string `yaml:"crypto_ids"`
}

type SourcesConfig struct {
	CoinGecko    ProviderConfig `yaml:"coingecko"`
	ExchangeRate ProviderConfig `yaml:"exchangerate"`
}

type ProviderConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type RequestConfig struct {
	TimeoutSeconds    int `yaml:"timeout_seconds"`
	MaxRetries        int `yaml:"max_retries"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type StorageConfig struct {
	DataDir        string `yaml:"data_dir"`
	RatesFile      string `yaml:"rates_file"`
	HistoryFile    string `yaml:"history_file"`
	UsersFile      string `yaml:"users_file"`
	PortfoliosFile string `yaml:"portfolios_file"`
	SessionFile    string `yaml:"session_file"`
}

type SchedulerConfig struct {
	IntervalSeconds    int `yaml:"interval_seconds"`
	StopTimeoutSeconds int `yaml:"stop_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func (r RequestConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

func (r RequestConfig) RetryDelay() time.Duration {
	return time.Duration(r.RetryDelaySeconds) * time.Second
}

func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

func (s SchedulerConfig) StopTimeout() time.Duration {
	return time.Duration(s.StopTimeoutSeconds) * time.Second
}

func (s StorageConfig) RatesPath() string      { return filepath.Join(s.DataDir, s.RatesFile) }
func (s StorageConfig) HistoryPath() string    { return filepath.Join(s.DataDir, s.HistoryFile) }
func (s StorageConfig) UsersPath() string      { return filepath.Join(s.DataDir, s.UsersFile) }
func (s StorageConfig) PortfoliosPath() string { return filepath.Join(s.DataDir, s.PortfoliosFile) }
func (s StorageConfig) SessionPath() string    { return filepath.Join(s.DataDir, s.SessionFile) }

// IsCrypto reports whether code belongs to the tracked crypto list.
func (c CurrenciesConfig) IsCrypto(code string) bool {
	for _, cc := range c.Crypto {
		if cc == code {
			return true
		}
	}
	return false
}

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Valutahub: ValutahubConfig{
			Name:    "valutahub",
			Version: "0.1.0",
		},
		Currencies: CurrenciesConfig{
			Base:   "USD",
			Fiat:   []string{"EUR", "GBP", "RUB", "CNY", "JPY"},
			Crypto: []string{"BTC", "ETH", "SOL"},
			CryptoIDs: map[string]string{
				"BTC": "bitcoin",
				"ETH": "ethereum",
				"SOL": "solana",
			},
		},
		Sources: SourcesConfig{
			CoinGecko: ProviderConfig{
				URL:    "https://api.coingecko.com/api/v3/simple/price",
				APIKey: "CG-SY7XWWzPzooW8A8JZYJ2RL93",
			},
			ExchangeRate: ProviderConfig{
				URL:    "https://v6.exchangerate-api.com/v6",
				APIKey: "2e717b403eb73c96f3612bc6",
			},
		},
		Request: RequestConfig{
			TimeoutSeconds:    10,
			MaxRetries:        3,
			RetryDelaySeconds: 2,
			RequestsPerSecond: 2,
			BurstSize:         1,
		},
		Storage: StorageConfig{
			DataDir:        "data",
			RatesFile:      "rates.json",
			HistoryFile:    "exchange_rates.json",
			UsersFile:      "users.json",
			PortfoliosFile: "portfolios.json",
			SessionFile:    ".session",
		},
		Scheduler: SchedulerConfig{
			IntervalSeconds:    3600,
			StopTimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "logs/valutahub.log",
			MaxAge: 7,
		},
	}
}

// LoadConfig reads a yaml configuration file on top of the defaults. An
// empty path, or a missing file, yields the defaults. API keys and the
// data directory are overridden from environment variables when set.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("EXCHANGERATE_API_KEY"); v != "" {
		config.Sources.ExchangeRate.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		config.Sources.CoinGecko.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("VALUTAHUB_DATA_DIR"); v != "" {
		config.Storage.DataDir = strings.TrimSpace(v)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Valutahub.Name == "" {
		return fmt.Errorf("valutahub.name is required")
	}

	if cfg.Valutahub.Version == "" {
		return fmt.Errorf("valutahub.version is required")
	}

	if err := pair.ValidateCode(cfg.Currencies.Base); err != nil {
		return fmt.Errorf("currencies.base: %w", err)
	}
	if len(cfg.Currencies.Fiat) == 0 && len(cfg.Currencies.Crypto) == 0 {
		return fmt.Errorf("at least one tracked currency is required")
	}

	fiat := make(map[string]bool, len(cfg.Currencies.Fiat))
	for _, code := range cfg.Currencies.Fiat {
		if err := pair.ValidateCode(code); err != nil {
			return fmt.Errorf("currencies.fiat: %w", err)
		}
		fiat[code] = true
	}
	// A code in both lists would make the update coordinator's category
	// split ambiguous, so it is rejected here rather than at runtime.
	for _, code := range cfg.Currencies.Crypto {
		if err := pair.ValidateCode(code); err != nil {
			return fmt.Errorf("currencies.crypto: %w", err)
		}
		if fiat[code] {
			return fmt.Errorf("currency %s appears in both the fiat and crypto lists", code)
		}
		if cfg.Currencies.CryptoIDs[code] == "" {
			return fmt.Errorf("currencies.crypto_ids is missing a provider id for %s", code)
		}
	}

	if cfg.Sources.CoinGecko.URL == "" {
		return fmt.Errorf("sources.coingecko.url is required")
	}
	if cfg.Sources.ExchangeRate.URL == "" {
		return fmt.Errorf("sources.exchangerate.url is required")
	}

	if cfg.Request.TimeoutSeconds <= 0 {
		return fmt.Errorf("request.timeout_seconds must be greater than 0")
	}
	if cfg.Request.MaxRetries <= 0 {
		return fmt.Errorf("request.max_retries must be greater than 0")
	}
	if cfg.Request.RetryDelaySeconds < 0 {
		return fmt.Errorf("request.retry_delay_seconds must not be negative")
	}
	if cfg.Request.RequestsPerSecond <= 0 {
		return fmt.Errorf("request.requests_per_second must be greater than 0")
	}
	if cfg.Request.BurstSize <= 0 {
		return fmt.Errorf("request.burst_size must be greater than 0")
	}

	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	if cfg.Storage.RatesFile == "" || cfg.Storage.HistoryFile == "" {
		return fmt.Errorf("storage.rates_file and storage.history_file are required")
	}

	if cfg.Scheduler.IntervalSeconds <= 0 {
		return fmt.Errorf("scheduler.interval_seconds must be greater than 0")
	}
	if cfg.Scheduler.StopTimeoutSeconds <= 0 {
		return fmt.Errorf("scheduler.stop_timeout_seconds must be greater than 0")
	}

	return nil
}
