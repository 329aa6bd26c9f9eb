package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxFetchWorkers is the hard cap on concurrent market-data fetches per aggregate.
const MaxFetchWorkers = 5

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		RateLimit       struct {
			Capacity      float64       `yaml:"capacity"`
			RefillPerSec  float64       `yaml:"refill_per_sec"`
			Idle          time.Duration `yaml:"idle"`
			PruneInterval time.Duration `yaml:"prune_interval"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	MarketData struct {
		APIKey        string        `yaml:"api_key"`
		BaseURL       string        `yaml:"base_url"`
		RateLimit     int           `yaml:"rate_limit"`
		Timeout       time.Duration `yaml:"timeout"`
		Retries       int           `yaml:"retries"`
		FetchTimeout  time.Duration `yaml:"fetch_timeout"`
		MaxWorkers    int           `yaml:"max_workers"`
		DefaultPeriod string        `yaml:"default_period"`
	} `yaml:"market_data"`
	Currency struct {
		Target      string             `yaml:"target"`
		BaseURL     string             `yaml:"base_url"`
		Timeout     time.Duration      `yaml:"timeout"`
		CacheTTL    time.Duration      `yaml:"cache_ttl"`
		StaticRates map[string]float64 `yaml:"static_rates"`
	} `yaml:"currency"`
	News struct {
		APIKey   string        `yaml:"api_key"`
		BaseURL  string        `yaml:"base_url"`
		PageSize int           `yaml:"page_size"`
		Lookback time.Duration `yaml:"lookback"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"news"`
	Advice struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"advice"`
	Cache struct {
		HistoryTTL   time.Duration `yaml:"history_ttl"`
		AggregateTTL time.Duration `yaml:"aggregate_ttl"`
		Prefix       string        `yaml:"prefix"`
		Redis        struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Refresher struct {
		Enabled    bool     `yaml:"enabled"`
		Schedule   string   `yaml:"schedule"`
		Markets    []string `yaml:"markets"`
		RunOnStart bool     `yaml:"run_on_start"`
	} `yaml:"refresher"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyEnv()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		c.News.APIKey = v
	}
	// GEMINI_API_KEY wins over the older GOOGLE_API_KEY name.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Advice.APIKey = v
	} else if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.Advice.APIKey = v
	}
	if v := os.Getenv("TARGET_CURRENCY"); v != "" {
		c.Currency.Target = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimit.Capacity <= 0 {
		c.Server.RateLimit.Capacity = 20
	}
	if c.Server.RateLimit.RefillPerSec <= 0 {
		c.Server.RateLimit.RefillPerSec = 5
	}
	if c.Server.RateLimit.Idle <= 0 {
		c.Server.RateLimit.Idle = 10 * time.Minute
	}
	if c.Server.RateLimit.PruneInterval <= 0 {
		c.Server.RateLimit.PruneInterval = time.Minute
	}
	if c.MarketData.MaxWorkers <= 0 || c.MarketData.MaxWorkers > MaxFetchWorkers {
		c.MarketData.MaxWorkers = MaxFetchWorkers
	}
	if c.MarketData.FetchTimeout <= 0 {
		c.MarketData.FetchTimeout = 15 * time.Second
	}
	if c.MarketData.DefaultPeriod == "" {
		c.MarketData.DefaultPeriod = "1y"
	}
	if c.Currency.Target == "" {
		c.Currency.Target = "INR"
	}
	c.Currency.Target = strings.ToUpper(c.Currency.Target)
	if c.Currency.CacheTTL <= 0 {
		c.Currency.CacheTTL = time.Hour
	}
	if c.News.PageSize <= 0 {
		c.News.PageSize = 10
	}
	if c.News.Lookback <= 0 {
		c.News.Lookback = 48 * time.Hour
	}
	if c.Advice.Timeout <= 0 {
		c.Advice.Timeout = 30 * time.Second
	}
	if c.Cache.HistoryTTL <= 0 {
		c.Cache.HistoryTTL = 15 * time.Minute
	}
	if c.Cache.AggregateTTL <= 0 {
		c.Cache.AggregateTTL = 5 * time.Minute
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "monexa"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "monexa.ticker-snapshots"
	}
	if c.Refresher.Schedule == "" {
		c.Refresher.Schedule = "@every 15m"
	}
	if len(c.Refresher.Markets) == 0 {
		c.Refresher.Markets = []string{"INDIA", "US"}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.MarketData.APIKey == "" {
		return fmt.Errorf("market_data.api_key is required")
	}
	if len(c.Currency.Target) != 3 {
		return fmt.Errorf("currency.target must be a 3-letter code, got '%s'", c.Currency.Target)
	}
	if c.MarketData.MaxWorkers < 1 || c.MarketData.MaxWorkers > MaxFetchWorkers {
		return fmt.Errorf("market_data.max_workers must be within 1..%d", MaxFetchWorkers)
	}
	for pair, rate := range c.Currency.StaticRates {
		if rate <= 0 {
			return fmt.Errorf("currency.static_rates[%s] must be positive", pair)
		}
	}
	return nil
}

// NewsEnabled reports whether the news collaborator has credentials.
func (c *Config) NewsEnabled() bool { return c.News.APIKey != "" }

// AdviceEnabled reports whether the remote advice generator has credentials.
func (c *Config) AdviceEnabled() bool { return c.Advice.APIKey != "" }

// KafkaEnabled reports whether snapshot publishing is configured.
func (c *Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 }
