// Package config loads StockLens configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

const (
	minTimeout = 5 * time.Second
	maxTimeout = 15 * time.Second
	maxRetries = 3
	maxCache   = time.Hour
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console | json
	} `yaml:"log"`
	DataSource struct {
		Provider   string        `yaml:"provider"` // yahoo | financego | rest | synthetic
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		WindowDays int           `yaml:"window_days"`
		Timeout    time.Duration `yaml:"timeout"`
		Retries    int           `yaml:"retries"`
		RateLimit  float64       `yaml:"rate_limit"`
	} `yaml:"data_source"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Sentiment struct {
		Mode    string        `yaml:"mode"` // http | static
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Retries int           `yaml:"retries"`
	} `yaml:"sentiment"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		WatchCron   string `yaml:"watch_cron"`
		WatchSymbol string `yaml:"watch_symbol"`
		SweepCron   string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	SentimentAPI struct {
		Addr       string `yaml:"addr"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"sentiment_api"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.DataSource.Provider = "yahoo"
	cfg.DataSource.WindowDays = 365
	cfg.DataSource.Timeout = 10 * time.Second
	cfg.DataSource.Retries = 1
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Hour
	cfg.Sentiment.Mode = "http"
	cfg.Sentiment.BaseURL = "http://127.0.0.1:8000"
	cfg.Sentiment.Timeout = 10 * time.Second
	cfg.Sentiment.Retries = 1
	cfg.Server.Addr = ":8080"
	cfg.Schedule.WatchSymbol = "2330.TW"
	cfg.Schedule.SweepCron = "0 */10 * * * *"
	cfg.SentimentAPI.Addr = ":8000"
	return cfg
}

// Load reads .env, then the YAML file over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":            &c.Log.Level,
		"LOG_FORMAT":           &c.Log.Format,
		"DATA_PROVIDER":        &c.DataSource.Provider,
		"DATA_BASE_URL":        &c.DataSource.BaseURL,
		"DATA_API_KEY":         &c.DataSource.APIKey,
		"SENTIMENT_MODE":       &c.Sentiment.Mode,
		"SENTIMENT_BASE_URL":   &c.Sentiment.BaseURL,
		"SERVER_ADDR":          &c.Server.Addr,
		"METRICS_ADDR":         &c.Metrics.Addr,
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"CRON_WATCH":           &c.Schedule.WatchCron,
		"WATCH_SYMBOL":         &c.Schedule.WatchSymbol,
		"SENTIMENT_API_ADDR":   &c.SentimentAPI.Addr,
		"SENTIMENT_API_SQLITE": &c.SentimentAPI.SQLitePath,
		"HTTPS_PROXY":          &c.Proxy,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WINDOW_DAYS: %w", err)
		}
		c.DataSource.WindowDays = n
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CACHE_ENABLED: %w", err)
		}
		c.Cache.Enabled = b
	}
	return nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error

	switch c.DataSource.Provider {
	case "yahoo", "financego", "synthetic":
	case "rest":
		if c.DataSource.BaseURL == "" {
			errs = append(errs, errors.New("data_source.base_url is required for the rest provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("data_source.provider %q is not one of yahoo, financego, rest, synthetic", c.DataSource.Provider))
	}
	if c.DataSource.WindowDays <= 0 {
		errs = append(errs, errors.New("data_source.window_days must be positive"))
	}
	if err := checkTimeout("data_source.timeout", c.DataSource.Timeout); err != nil {
		errs = append(errs, err)
	}
	if c.DataSource.Retries < 0 || c.DataSource.Retries > maxRetries {
		errs = append(errs, fmt.Errorf("data_source.retries must be between 0 and %d", maxRetries))
	}
	if c.DataSource.RateLimit < 0 {
		errs = append(errs, errors.New("data_source.rate_limit must not be negative"))
	}

	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.TTL > maxCache) {
		errs = append(errs, fmt.Errorf("cache.ttl must be in (0, %s]", maxCache))
	}

	switch c.Sentiment.Mode {
	case "static":
	case "http":
		if c.Sentiment.BaseURL == "" {
			errs = append(errs, errors.New("sentiment.base_url is required in http mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("sentiment.mode %q is not one of http, static", c.Sentiment.Mode))
	}
	if err := checkTimeout("sentiment.timeout", c.Sentiment.Timeout); err != nil {
		errs = append(errs, err)
	}
	if c.Sentiment.Retries < 0 || c.Sentiment.Retries > maxRetries {
		errs = append(errs, fmt.Errorf("sentiment.retries must be between 0 and %d", maxRetries))
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ValidateTelegram checks the settings the bot command needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

func checkTimeout(name string, d time.Duration) error {
	if d < minTimeout || d > maxTimeout {
		return fmt.Errorf("%s must be between %s and %s, got %s", name, minTimeout, maxTimeout, d)
	}
	return nil
}
