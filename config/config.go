// Package config provides salesmesh configuration loaded from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds salesmesh runtime configuration.
type Config struct {
	// Dispatch policy
	DefaultTimeout time.Duration `envconfig:"SALESMESH_DEFAULT_TIMEOUT" default:"5s"`
	MaxRetries     int           `envconfig:"SALESMESH_MAX_RETRIES" default:"1"`

	// Reasoning backends. Empty keys select the static rule-based backend.
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	Model           string `envconfig:"SALESMESH_MODEL"`

	// Conversation persistence. Empty RedisAddr selects the in-memory store.
	RedisAddr       string        `envconfig:"SALESMESH_REDIS_ADDR"`
	RedisPassword   string        `envconfig:"SALESMESH_REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"SALESMESH_REDIS_DB" default:"0"`
	ConversationTTL time.Duration `envconfig:"SALESMESH_CONVERSATION_TTL" default:"0"`

	// NATS dispatch (empty = local in-process channel only)
	NATSURL string `envconfig:"SALESMESH_NATS_URL"`

	// Retrieval
	PolicyDir string `envconfig:"SALESMESH_POLICY_DIR" default:"docs/policies"`

	// Logging
	LogLevel string `envconfig:"SALESMESH_LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values a misconfigured environment commonly breaks.
func (c *Config) Validate() error {
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("SALESMESH_DEFAULT_TIMEOUT must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("SALESMESH_MAX_RETRIES must not be negative")
	}
	return nil
}
