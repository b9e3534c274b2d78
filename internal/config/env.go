package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
// Delays drive the simulated PayPal, ENS and settlement steps; tests set them near zero.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"auto"` // auto, json or text

	FeePercent string `envconfig:"FEE_PERCENT" default:"1.0"`
	MinAmount  string `envconfig:"MIN_AMOUNT" default:"10"`
	MaxAmount  string `envconfig:"MAX_AMOUNT" default:"10000"`

	PayPalConnectDelay time.Duration `envconfig:"PAYPAL_CONNECT_DELAY" default:"1500ms"`
	ENSResolveDelay    time.Duration `envconfig:"ENS_RESOLVE_DELAY" default:"1500ms"`
	SubmitDelay        time.Duration `envconfig:"SUBMIT_DELAY" default:"2s"`
	SettleDelay        time.Duration `envconfig:"SETTLE_DELAY" default:"5s"`
	SuccessRate        float64       `envconfig:"SUCCESS_RATE" default:"0.9"`

	ExplorerBaseURL string `envconfig:"EXPLORER_BASE_URL" default:"https://basescan.org"`
	BaseChainID     int64  `envconfig:"BASE_CHAIN_ID" default:"8453"`

	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"10m"`

	KafkaAddr  string `envconfig:"KAFKA_ADDR"`
	KafkaTopic string `envconfig:"KAFKA_TOPIC" default:"settlement.events"`
}

// cfg is the global configuration instance
var cfg *Config

// Load reads configuration from environment variables without touching the global instance.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return fmt.Errorf("SUCCESS_RATE must be within [0, 1], got %v", c.SuccessRate)
	}
	if c.SettleDelay < 0 || c.SubmitDelay < 0 || c.PayPalConnectDelay < 0 || c.ENSResolveDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetExplorerBaseURL returns the block explorer used for transaction links
func GetExplorerBaseURL() string {
	return Get().ExplorerBaseURL
}
