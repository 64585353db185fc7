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

// Config holds all application configuration.
type Config struct {
	Market struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"market"`
	DataSource struct {
		Provider    string        `yaml:"provider"` // yahoo, polygon, rest or mock
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Proxy       string        `yaml:"proxy"`
		RatePerSec  float64       `yaml:"rate_per_sec"`
		Burst       int           `yaml:"burst"`
		MaxFailures uint32        `yaml:"max_failures"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
		RedisAddr   string        `yaml:"redis_addr"`
	} `yaml:"data_source"`
	Screening struct {
		TickersFile string   `yaml:"tickers_file"`
		Tickers     []string `yaml:"tickers"`
		Selected    []string `yaml:"selected"` // subset of the list; empty means all
		Normal      []int    `yaml:"normal"`
		Inverted    []int    `yaml:"inverted"`
		StateFile   string   `yaml:"activation_state_file"`
		OutputDir   string   `yaml:"output_dir"`
		RawDump     bool     `yaml:"raw_dump"`
	} `yaml:"screening"`
	Schedule struct {
		ScreeningCron string `yaml:"screening_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	HTTP struct {
		Listen string `yaml:"listen"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("SCREENER_TIMEZONE", &c.Market.Timezone)
	str("DATA_PROVIDER", &c.DataSource.Provider)
	str("DATA_BASE_URL", &c.DataSource.BaseURL)
	str("DATA_API_KEY", &c.DataSource.APIKey)
	str("POLYGON_API_KEY", &c.DataSource.APIKey)
	str("HTTPS_PROXY", &c.DataSource.Proxy)
	str("REDIS_ADDR", &c.DataSource.RedisAddr)
	str("TICKERS_FILE", &c.Screening.TickersFile)
	str("OUTPUT_DIR", &c.Screening.OutputDir)
	str("CRON_SCREENING", &c.Schedule.ScreeningCron)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	str("HTTP_LISTEN", &c.HTTP.Listen)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("DATA_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DataSource.RatePerSec = f
		}
	}
	if v := os.Getenv("RAW_DUMP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Screening.RawDump = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Market.Timezone == "" {
		c.Market.Timezone = "America/New_York"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.RatePerSec == 0 {
		c.DataSource.RatePerSec = 2
	}
	if c.DataSource.Burst == 0 {
		c.DataSource.Burst = 1
	}
	if c.DataSource.MaxFailures == 0 {
		c.DataSource.MaxFailures = 5
	}
	if c.DataSource.CacheTTL == 0 {
		c.DataSource.CacheTTL = 10 * time.Minute
	}
	if c.Screening.StateFile == "" {
		c.Screening.StateFile = "data/activation.json"
	}
	if c.Screening.OutputDir == "" {
		c.Screening.OutputDir = "output"
	}
	if c.Schedule.ScreeningCron == "" {
		// weekdays after the post-market session closes
		c.Schedule.ScreeningCron = "0 5 20 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/screener.db"
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "pretty"
	}
}

// Location loads the market time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("market.timezone %q: %w", c.Market.Timezone, err)
	}
	return loc, nil
}

// Validate checks that required fields are set and consistent.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "polygon":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for polygon")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for rest")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.RatePerSec < 0 {
		return fmt.Errorf("data_source.rate_per_sec must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}

	normal := make(map[int]bool, len(c.Screening.Normal))
	for _, id := range c.Screening.Normal {
		normal[id] = true
	}
	for _, id := range c.Screening.Inverted {
		if normal[id] {
			return fmt.Errorf("screening: condition %d is listed as both normal and inverted", id)
		}
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
