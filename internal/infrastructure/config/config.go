package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration. Values resolve in three layers:
// compiled defaults, then an optional YAML file, then CALLSCREEN_ prefixed
// environment variables.
type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`

	Routing    RoutingConfig    `koanf:"routing"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Security   SecurityConfig   `koanf:"security"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL      string        `koanf:"url"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Enabled  bool          `koanf:"enabled"`
	MatchTTL time.Duration `koanf:"match_ttl"`
}

// RoutingConfig carries the numbers the engine forwards calls to.
type RoutingConfig struct {
	DestinationNumber string `koanf:"destination_number"`
}

// ClassifierConfig configures the LLM caller-intent classifier.
type ClassifierConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"`
}

type SecurityConfig struct {
	JWTSecret     string          `koanf:"jwt_secret"`
	TokenExpiry   time.Duration   `koanf:"token_expiry"`
	AdminUser     string          `koanf:"admin_user"`
	AdminPassword string          `koanf:"admin_password"`
	APIKey        string          `koanf:"api_key"`
	RateLimit     RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int  `koanf:"requests_per_minute"`
	Enabled           bool `koanf:"enabled"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	Enabled      bool   `koanf:"enabled"`
}

// Load reads configuration from the default file location.
func Load() (*Config, error) {
	return LoadFrom("configs/config.yaml")
}

// LoadFrom reads configuration layered over the given YAML file. The file
// is optional.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:      "localhost:6379",
			Enabled:  false,
			MatchTTL: 5 * time.Minute,
		},
		Classifier: ClassifierConfig{
			BaseURL:     "https://api.anthropic.com",
			Model:       "claude-3-haiku-20240307",
			MaxTokens:   150,
			Temperature: 0.1,
			Timeout:     4 * time.Second,
		},
		Security: SecurityConfig{
			TokenExpiry: 24 * time.Hour,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 120,
				Enabled:           true,
			},
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// The config file is optional; environment variables alone are enough
	// for containerized deployments.
	_ = k.Load(file.Provider(path), yaml.Parser())

	// Double underscore separates nesting levels so leaf keys may contain
	// single underscores: CALLSCREEN_ROUTING__DESTINATION_NUMBER.
	if err := k.Load(env.Provider("CALLSCREEN_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CALLSCREEN_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the service cannot start without.
func (c *Config) Validate() error {
	if c.Routing.DestinationNumber == "" {
		return fmt.Errorf("routing.destination_number is required")
	}
	if c.Environment == "production" {
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("security.jwt_secret is required in production")
		}
		if c.Classifier.APIKey == "" {
			return fmt.Errorf("classifier.api_key is required in production")
		}
	}
	return nil
}
