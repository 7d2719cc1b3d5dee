package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rpggio/nestly/internal/retry"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Retry     RetryConfig     `yaml:"retry"`
	Store     StoreConfig     `yaml:"store"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
	// MaxBytes caps the log file; once exceeded it is cut back to the
	// newest KeepBytes.
	MaxBytes  int64 `yaml:"max_bytes"`
	KeepBytes int64 `yaml:"keep_bytes"`
}

const (
	DefaultLogMaxBytes  = 6 * 1024 * 1024
	DefaultLogKeepBytes = 5 * 1024 * 1024
)

// TransportConfig selects how the server is reached: "http" serves REST and
// MCP over HTTP, "stdio" serves MCP on stdin/stdout.
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// DefaultUser is the caller identity when auth is disabled.
	DefaultUser string `yaml:"default_user"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
}

// Policy returns the loader retry policy.
func (c RetryConfig) Policy() retry.Policy {
	return retry.Policy{MaxRetries: c.MaxRetries, BaseDelay: c.BaseDelay}
}

type StoreConfig struct {
	// Dedup shares in-flight identical reads.
	Dedup bool `yaml:"dedup"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		DB: DBConfig{
			Path: "nestly.db",
		},
		Log: LogConfig{
			Level:     "info",
			MaxBytes:  DefaultLogMaxBytes,
			KeepBytes: DefaultLogKeepBytes,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Auth: AuthConfig{
			Enabled:     true,
			DefaultUser: "default",
		},
		Retry: RetryConfig{
			MaxRetries: retry.DefaultMaxRetries,
			BaseDelay:  retry.DefaultBaseDelay,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("NESTLY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("NESTLY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("NESTLY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("NESTLY_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_REQUEST_TIMEOUT: %w", err)
		}
		cfg.Server.RequestTimeout = d
	}
	if dbPath := os.Getenv("NESTLY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("NESTLY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("NESTLY_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if v := os.Getenv("NESTLY_LOG_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_LOG_MAX_BYTES: %w", err)
		}
		cfg.Log.MaxBytes = n
	}
	if v := os.Getenv("NESTLY_LOG_KEEP_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_LOG_KEEP_BYTES: %w", err)
		}
		cfg.Log.KeepBytes = n
	}
	if mode := os.Getenv("NESTLY_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if v := os.Getenv("NESTLY_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if v := os.Getenv("NESTLY_RETRY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_RETRY_MAX: %w", err)
		}
		cfg.Retry.MaxRetries = n
	}
	if v := os.Getenv("NESTLY_RETRY_BASE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_RETRY_BASE_DELAY: %w", err)
		}
		cfg.Retry.BaseDelay = d
	}
	if v := os.Getenv("NESTLY_STORE_DEDUP"); v != "" {
		dedup, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NESTLY_STORE_DEDUP: %w", err)
		}
		cfg.Store.Dedup = dedup
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q: want http or stdio", c.Transport.Mode)
	}
	if c.Log.MaxBytes <= 0 || c.Log.KeepBytes <= 0 || c.Log.KeepBytes >= c.Log.MaxBytes {
		return fmt.Errorf("invalid log sizes: keep_bytes %d must be positive and below max_bytes %d", c.Log.KeepBytes, c.Log.MaxBytes)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("invalid retry.max_retries %d", c.Retry.MaxRetries)
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("invalid retry.base_delay %s", c.Retry.BaseDelay)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
