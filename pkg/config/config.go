package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Upstream struct {
		Bases        []string      `yaml:"bases"`
		Path         string        `yaml:"path"`
		Timeout      time.Duration `yaml:"timeout"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"upstream"`
	RecordLog struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"record_log"`
	Normalize struct {
		DefaultAsset     string              `yaml:"default_asset"`
		DefaultTimeframe string              `yaml:"default_timeframe"`
		DefaultSession   string              `yaml:"default_session"`
		DefaultStrategy  string              `yaml:"default_strategy"`
		ValidityMinutes  float64             `yaml:"validity_minutes"`
		PipMultipliers   map[string]float64  `yaml:"pip_multipliers"`
		Synonyms         map[string][]string `yaml:"synonyms"`
	} `yaml:"normalize"`
	Render struct {
		Disclaimer       string         `yaml:"disclaimer"`
		DefaultPrecision int            `yaml:"default_precision"`
		PricePrecision   map[string]int `yaml:"price_precision"`
		Tiers            []struct {
			MinConfidence int    `yaml:"min_confidence"`
			Label         string `yaml:"label"`
			Class         string `yaml:"class"`
			Severity      int    `yaml:"severity"`
			Advisory      string `yaml:"advisory"`
		} `yaml:"tiers"`
	} `yaml:"render"`
	Pricefeed struct {
		Enabled        bool              `yaml:"enabled"`
		APIKey         string            `yaml:"api_key"`
		WebSocketURL   string            `yaml:"websocket_url"`
		Symbols        []string          `yaml:"symbols"`
		FeedSymbols    map[string]string `yaml:"feed_symbols"`
		ReconnectDelay time.Duration     `yaml:"reconnect_delay"`
		PingInterval   time.Duration     `yaml:"ping_interval"`
	} `yaml:"pricefeed"`
	Telegram struct {
		Enabled bool          `yaml:"enabled"`
		Token   string        `yaml:"token"`
		ChatID  string        `yaml:"chat_id"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"telegram"`
	Ledger struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"ledger"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic"`
		RecordsTopic string   `yaml:"records_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		Table        string        `yaml:"table"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("UPSTREAM_BASES"); v != "" {
		c.Upstream.Bases = strings.Split(v, ",")
	}
	if v := os.Getenv("RECORD_LOG_URL"); v != "" {
		c.RecordLog.URL = v
	}
	if v := os.Getenv("PRICEFEED_API_KEY"); v != "" {
		c.Pricefeed.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Upstream.Bases) == 0 {
		return fmt.Errorf("upstream.bases cannot be empty")
	}
	if c.Pricefeed.Enabled {
		if c.Pricefeed.APIKey == "" {
			return fmt.Errorf("pricefeed.api_key is required when pricefeed is enabled")
		}
		if len(c.Pricefeed.Symbols) == 0 {
			return fmt.Errorf("pricefeed.symbols cannot be empty when pricefeed is enabled")
		}
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.token and telegram.chat_id are required when telegram is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
