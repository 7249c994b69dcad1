package config

import (
	"fmt"
	"os"
	"strconv"
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
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		TradesTopic  string   `yaml:"trades_topic"`
		AlertsTopic  string   `yaml:"alerts_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string `yaml:"group_id"`
			Workers    int    `yaml:"workers"`
			BufferSize int    `yaml:"buffer_size"`
			MinBytes   int    `yaml:"min_bytes"`
			MaxBytes   int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		ScoreTTL time.Duration `yaml:"score_ttl"`
	} `yaml:"redis"`
	Ingest struct {
		Backend string `yaml:"backend"` // "kafka" or "clickhouse"
	} `yaml:"ingest"`
	Stream struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		Markets        []string      `yaml:"markets"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Detection struct {
		EnsembleWeights   map[string]float64 `yaml:"ensemble_weights"`
		CriticalThreshold float64            `yaml:"critical_threshold"`
		HighThreshold     float64            `yaml:"high_threshold"`
		GraphThreshold    float64            `yaml:"graph_threshold"`
		GraphConcurrency  int                `yaml:"graph_concurrency"`
		EmbeddingDim      int                `yaml:"embedding_dim"`
		MarketsOfInterest []string           `yaml:"markets_of_interest"`
		EnableSequence    bool               `yaml:"enable_sequence"`
		EnableGraph       bool               `yaml:"enable_graph"`
		EnableAnomaly     bool               `yaml:"enable_anomaly"`
		EnableExplain     bool               `yaml:"enable_explain"`
		RemoteModelURL    string             `yaml:"remote_model_url"`
		RemoteModelName   string             `yaml:"remote_model_name"`
		RemoteTimeout     time.Duration      `yaml:"remote_timeout"`
		RunRatePerMinute  float64            `yaml:"run_rate_per_minute"`
	} `yaml:"detection"`
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

	if v := os.Getenv("POLYWATCH_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("POLYWATCH_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("POLYWATCH_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("POLYWATCH_CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("POLYWATCH_CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("POLYWATCH_REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}

	return c, nil
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Kafka.TradesTopic == "" {
		return fmt.Errorf("kafka.trades_topic is required")
	}
	if c.Kafka.AlertsTopic == "" {
		return fmt.Errorf("kafka.alerts_topic is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	switch c.Ingest.Backend {
	case "":
		c.Ingest.Backend = "kafka"
	case "kafka", "clickhouse":
	default:
		return fmt.Errorf("ingest.backend must be kafka or clickhouse, got %q", c.Ingest.Backend)
	}
	if c.Detection.CriticalThreshold == 0 {
		c.Detection.CriticalThreshold = 0.9
	}
	if c.Detection.HighThreshold == 0 {
		c.Detection.HighThreshold = 0.7
	}
	if c.Detection.GraphThreshold == 0 {
		c.Detection.GraphThreshold = 0.7
	}
	if c.Detection.EmbeddingDim == 0 {
		c.Detection.EmbeddingDim = 8
	}
	if c.Detection.CriticalThreshold < c.Detection.HighThreshold {
		return fmt.Errorf("detection.critical_threshold must be >= high_threshold")
	}
	if c.Redis.ScoreTTL == 0 {
		c.Redis.ScoreTTL = 15 * time.Minute
	}
	return nil
}
