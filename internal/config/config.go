package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Ticker is one entry of the tracked universe.
type Ticker struct {
	Symbol string `yaml:"symbol" toml:"symbol"`
	Name   string `yaml:"name" toml:"name"`
}

// Config holds all application configuration.
type Config struct {
	HTTP struct {
		Addr     string `yaml:"addr" toml:"addr"`
		TopLimit int    `yaml:"top_limit" toml:"top_limit"`
	} `yaml:"http" toml:"http"`
	Database struct {
		Driver string `yaml:"driver" toml:"driver"`
		DSN    string `yaml:"dsn" toml:"dsn"`
	} `yaml:"database" toml:"database"`
	DataSource struct {
		Provider   string `yaml:"provider" toml:"provider"`
		APIKey     string `yaml:"api_key" toml:"api_key"`
		DailyBars  int    `yaml:"daily_bars" toml:"daily_bars"`
		WeeklyBars int    `yaml:"weekly_bars" toml:"weekly_bars"`
	} `yaml:"data_source" toml:"data_source"`
	Cache struct {
		RedisAddr     string `yaml:"redis_addr" toml:"redis_addr"`
		RedisPassword string `yaml:"redis_password" toml:"redis_password"`
		RedisDB       int    `yaml:"redis_db" toml:"redis_db"`
		TTLSeconds    int    `yaml:"ttl_seconds" toml:"ttl_seconds"`
	} `yaml:"cache" toml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron" toml:"refresh_cron"`
		DigestCron  string `yaml:"digest_cron" toml:"digest_cron"`
	} `yaml:"schedule" toml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" toml:"bot_token"`
		ChatID   string `yaml:"chat_id" toml:"chat_id"`
	} `yaml:"telegram" toml:"telegram"`
	Tickers []Ticker `yaml:"tickers" toml:"tickers"`
	Proxy   string   `yaml:"proxy" toml:"proxy"`
}

// Load reads config from a YAML or TOML file (chosen by extension), loads a .env
// file from the working directory if present, then applies environment variable
// overrides and defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		log.Println("[INFO] .env found, loading variables")
		if err := godotenv.Load(); err != nil {
			log.Printf("[WARN] load .env: %v", err)
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		"HTTP_ADDR":          &c.HTTP.Addr,
		"DATABASE_DRIVER":    &c.Database.Driver,
		"DATABASE_DSN":       &c.Database.DSN,
		"DATA_PROVIDER":      &c.DataSource.Provider,
		"POLYGON_API_KEY":    &c.DataSource.APIKey,
		"REDIS_ADDR":         &c.Cache.RedisAddr,
		"REDIS_PASSWORD":     &c.Cache.RedisPassword,
		"REFRESH_CRON":       &c.Schedule.RefreshCron,
		"DIGEST_CRON":        &c.Schedule.DigestCron,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"HTTPS_PROXY":        &c.Proxy,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		} else {
			log.Printf("[WARN] ignoring REDIS_DB=%q: %v", v, err)
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.TopLimit == 0 {
		c.HTTP.TopLimit = 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/stocktracker.db"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.APIKey != "" {
			c.DataSource.Provider = "polygon"
		}
	}
	if c.DataSource.DailyBars == 0 {
		c.DataSource.DailyBars = 504
	}
	if c.DataSource.WeeklyBars == 0 {
		c.DataSource.WeeklyBars = 1040
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 900
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 16 * * 1-5"
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 0 17 * * 1-5"
	}
}

// CacheTTL returns the payload cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// TelegramEnabled reports whether digests can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "memory":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.Driver == "mysql" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for mysql")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "polygon":
		if c.DataSource.APIKey == "" {
			return errors.New("data_source.api_key is required for polygon")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.DailyBars < 200 {
		return fmt.Errorf("data_source.daily_bars must be at least 200, got %d", c.DataSource.DailyBars)
	}
	if c.DataSource.WeeklyBars <= 0 {
		return errors.New("data_source.weekly_bars must be positive")
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.New("cache.ttl_seconds must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	for i, t := range c.Tickers {
		if strings.TrimSpace(t.Symbol) == "" {
			return fmt.Errorf("tickers[%d].symbol is required", i)
		}
	}
	return nil
}
