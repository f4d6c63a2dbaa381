package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"MACross/internal/model"
	"MACross/internal/strategy"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Symbol  string `yaml:"symbol"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Start   string `yaml:"start"`
		End     string `yaml:"end"` // empty means today
	} `yaml:"data_source"`
	Strategy struct {
		ShortWindow int `yaml:"short_window"`
		LongWindow  int `yaml:"long_window"`
	} `yaml:"strategy"`
	Portfolio struct {
		LotSize        float64 `yaml:"lot_size"`
		InitialCapital float64 `yaml:"initial_capital"`
	} `yaml:"portfolio"`
	Cache struct {
		SQLitePath  string        `yaml:"sqlite_path"` // empty disables the cache
		ExpireAfter time.Duration `yaml:"expire_after"`
	} `yaml:"cache"`
	Chart struct {
		Output string `yaml:"output"` // empty disables the chart
	} `yaml:"chart"`
	Schedule struct {
		RunCron   string `yaml:"run_cron"`
		PurgeCron string `yaml:"purge_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error. Keys set
// explicitly to zero stay zero so Validate can reject them.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

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

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SYMBOL":             &c.DataSource.Symbol,
		"DATA_BASE_URL":      &c.DataSource.BaseURL,
		"DATA_API_KEY":       &c.DataSource.APIKey,
		"START_DATE":         &c.DataSource.Start,
		"END_DATE":           &c.DataSource.End,
		"CACHE_PATH":         &c.Cache.SQLitePath,
		"CHART_OUTPUT":       &c.Chart.Output,
		"CRON_RUN":           &c.Schedule.RunCron,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"LOG_LEVEL":          &c.Log.Level,
		"LOG_FORMAT":         &c.Log.Format,
		"HTTPS_PROXY":        &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SHORT_WINDOW": &c.Strategy.ShortWindow,
		"LONG_WINDOW":  &c.Strategy.LongWindow,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"LOT_SIZE":        &c.Portfolio.LotSize,
		"INITIAL_CAPITAL": &c.Portfolio.InitialCapital,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = f
		}
	}

	if v := os.Getenv("CACHE_EXPIRE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env CACHE_EXPIRE_AFTER: %w", err)
		}
		c.Cache.ExpireAfter = d
	}
	return nil
}

func defaultConfig() *Config {
	c := &Config{}
	c.DataSource.Symbol = "GE"
	c.DataSource.Start = "2009-01-01"
	c.Strategy.ShortWindow = 40
	c.Strategy.LongWindow = 100
	c.Portfolio.LotSize = 100
	c.Portfolio.InitialCapital = 100000
	c.Cache.ExpireAfter = 72 * time.Hour
	c.Schedule.RunCron = "0 30 22 * * 1-5"
	c.Schedule.PurgeCron = "0 0 3 * * *"
	c.Log.Level = "info"
	c.Log.Format = "console"
	return c
}

// StartDate parses data_source.start.
func (c *Config) StartDate() (time.Time, error) {
	return time.Parse(dateLayout, c.DataSource.Start)
}

// EndDate parses data_source.end. An empty value yields the zero time,
// which the collector treats as "now".
func (c *Config) EndDate() (time.Time, error) {
	if c.DataSource.End == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, c.DataSource.End)
}

// Validate checks that the run parameters are usable. Window and sizing
// problems wrap model.ErrConfiguration.
func (c *Config) Validate() error {
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("%w: data_source.symbol is required", model.ErrConfiguration)
	}
	if err := strategy.ValidateWindows(c.Strategy.ShortWindow, c.Strategy.LongWindow); err != nil {
		return err
	}
	if c.Portfolio.LotSize <= 0 {
		return fmt.Errorf("%w: portfolio.lot_size must be positive", model.ErrConfiguration)
	}
	if c.Portfolio.LotSize != math.Trunc(c.Portfolio.LotSize) {
		return fmt.Errorf("%w: portfolio.lot_size must be a whole number of shares", model.ErrConfiguration)
	}
	if c.Portfolio.InitialCapital <= 0 {
		return fmt.Errorf("%w: portfolio.initial_capital must be positive", model.ErrConfiguration)
	}
	start, err := c.StartDate()
	if err != nil {
		return fmt.Errorf("%w: data_source.start: %v", model.ErrConfiguration, err)
	}
	end, err := c.EndDate()
	if err != nil {
		return fmt.Errorf("%w: data_source.end: %v", model.ErrConfiguration, err)
	}
	if !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("%w: data_source.start must be before data_source.end", model.ErrConfiguration)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("%w: telegram.bot_token and telegram.chat_id must be set together", model.ErrConfiguration)
	}
	return nil
}
