package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tailscale/hujson"

	"fleetsync/internal/app/errors"
)

// Config represents the application configuration
type Config struct {
	Logging struct {
		Level  string `yaml:"level" mapstructure:"level"`
		Format string `yaml:"format" mapstructure:"format"`
	} `yaml:"logging" mapstructure:"logging"`
	API       API       `yaml:"api" mapstructure:"api"`
	Transport Transport `yaml:"transport" mapstructure:"transport"`
	Retry     struct {
		Attempts int           `yaml:"attempts" mapstructure:"attempts"`
		Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	} `yaml:"retry" mapstructure:"retry"`
	Facade struct {
		PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	} `yaml:"facade" mapstructure:"facade"`
	Cache  Cache  `yaml:"cache" mapstructure:"cache"`
	Auth   Auth   `yaml:"auth" mapstructure:"auth"`
	Sentry Sentry `yaml:"sentry" mapstructure:"sentry"`
	Watch  struct {
		Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	} `yaml:"watch" mapstructure:"watch"`
	Version int `yaml:"version" mapstructure:"version"`
}

// API describes where the realtime server lives
type API struct {
	URL      string `yaml:"url" mapstructure:"url"`
	Hostname string `yaml:"hostname" mapstructure:"hostname"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Path     string `yaml:"path" mapstructure:"path"`
}

// Transport selects the websocket driver and dial limits
type Transport struct {
	Driver         string        `yaml:"driver" mapstructure:"driver"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// Cache selects the invalidation target
type Cache struct {
	Driver    string `yaml:"driver" mapstructure:"driver"`
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	Channel   string `yaml:"channel" mapstructure:"channel"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// Auth holds the identity and where its bearer token comes from
type Auth struct {
	Token     string `yaml:"token" mapstructure:"token"`
	TokenFile string `yaml:"token_file" mapstructure:"token_file"`
	Identity  string `yaml:"identity" mapstructure:"identity"`
	Role      string `yaml:"role" mapstructure:"role"`
}

// Sentry configures escalation of persistent connection failures
type Sentry struct {
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Version: 1,
	}

	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat

	cfg.API.Hostname = DefaultHostname
	cfg.API.Port = DefaultPort
	cfg.API.Path = DefaultPath

	cfg.Transport.Driver = DriverGorilla
	cfg.Transport.ConnectTimeout = ConnectTimeout

	cfg.Retry.Attempts = RetryAttempts
	cfg.Retry.Interval = RetryInterval

	cfg.Facade.PollInterval = PollInterval

	cfg.Cache.Driver = CacheMemory
	cfg.Cache.Channel = CacheChannel
	cfg.Cache.Prefix = CachePrefix

	cfg.Auth.Identity = DefaultIdentity
	cfg.Auth.Role = DefaultRole

	cfg.Watch.Debounce = WatchDebounce

	return cfg
}

// Load loads the configuration from the working directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads .env, then fleetsync.yaml or fleetsync.jsonc from dir, then FLEETSYNC_* overrides
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(filepath.Join(dir, EnvFile)); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	data, format, err := readConfigFile(dir)
	if err != nil {
		return nil, err
	}

	if data != nil {
		v.SetConfigType(format)

		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrFailedToParseConfig, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToParseConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// readConfigFile returns the yaml file, or the jsonc file standardized to plain json
func readConfigFile(dir string) ([]byte, string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err == nil {
		return data, "yaml", nil
	}

	if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
	}

	data, err = os.ReadFile(filepath.Join(dir, ConfigFileJSONC))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}

		return nil, "", fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
	}

	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", errors.ErrFailedToParseConfig, err)
	}

	return standard, "json", nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("api.url", cfg.API.URL)
	v.SetDefault("api.hostname", cfg.API.Hostname)
	v.SetDefault("api.port", cfg.API.Port)
	v.SetDefault("api.path", cfg.API.Path)
	v.SetDefault("transport.driver", cfg.Transport.Driver)
	v.SetDefault("transport.connect_timeout", cfg.Transport.ConnectTimeout)
	v.SetDefault("retry.attempts", cfg.Retry.Attempts)
	v.SetDefault("retry.interval", cfg.Retry.Interval)
	v.SetDefault("facade.poll_interval", cfg.Facade.PollInterval)
	v.SetDefault("cache.driver", cfg.Cache.Driver)
	v.SetDefault("cache.redis_addr", cfg.Cache.RedisAddr)
	v.SetDefault("cache.channel", cfg.Cache.Channel)
	v.SetDefault("cache.prefix", cfg.Cache.Prefix)
	v.SetDefault("auth.token", cfg.Auth.Token)
	v.SetDefault("auth.token_file", cfg.Auth.TokenFile)
	v.SetDefault("auth.identity", cfg.Auth.Identity)
	v.SetDefault("auth.role", cfg.Auth.Role)
	v.SetDefault("sentry.dsn", cfg.Sentry.DSN)
	v.SetDefault("sentry.environment", cfg.Sentry.Environment)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
	v.SetDefault("version", cfg.Version)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateTransport(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	if c.Facade.PollInterval <= 0 {
		return errors.ErrInvalidPollInterval
	}

	return c.validateCache()
}

// validateAPI validates that an endpoint can be derived
func (c *Config) validateAPI() error {
	if c.API.URL == "" && c.API.Hostname == "" {
		return errors.ErrAPIHostRequired
	}

	if c.API.Path == "" {
		c.API.Path = DefaultPath
	}

	return nil
}

// validateTransport validates transport settings
func (c *Config) validateTransport() error {
	switch c.Transport.Driver {
	case DriverGorilla, DriverNhooyr:
	case "":
		c.Transport.Driver = DriverGorilla
	default:
		return fmt.Errorf("%w: '%s' (must be 'gorilla' or 'nhooyr')", errors.ErrInvalidTransportDriver, c.Transport.Driver)
	}

	if c.Transport.ConnectTimeout <= 0 {
		return errors.ErrInvalidConnectTimeout
	}

	return nil
}

// validateRetry validates reconnect settings
func (c *Config) validateRetry() error {
	if c.Retry.Attempts <= 0 {
		return errors.ErrInvalidRetryAttempts
	}

	if c.Retry.Interval <= 0 {
		return errors.ErrInvalidRetryInterval
	}

	return nil
}

// validateCache validates the invalidation target
func (c *Config) validateCache() error {
	switch c.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.ErrRedisAddrRequired
		}
	case "":
		c.Cache.Driver = CacheMemory
	default:
		return fmt.Errorf("%w: '%s' (must be 'memory' or 'redis')", errors.ErrInvalidCacheDriver, c.Cache.Driver)
	}

	return nil
}
