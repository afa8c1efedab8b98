package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetsync/internal/app/errors"
)

func Test_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, LogLevel, cfg.Logging.Level)
	assert.Equal(t, LogFormat, cfg.Logging.Format)
	assert.Equal(t, DefaultHostname, cfg.API.Hostname)
	assert.Equal(t, DefaultPort, cfg.API.Port)
	assert.Equal(t, DefaultPath, cfg.API.Path)
	assert.Equal(t, DriverGorilla, cfg.Transport.Driver)
	assert.Equal(t, ConnectTimeout, cfg.Transport.ConnectTimeout)
	assert.Equal(t, RetryAttempts, cfg.Retry.Attempts)
	assert.Equal(t, RetryInterval, cfg.Retry.Interval)
	assert.Equal(t, PollInterval, cfg.Facade.PollInterval)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 1, cfg.Version)
	assert.NoError(t, cfg.Validate())
}

func Test_LoadFrom(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
		error error
	}{
		{
			name: "no config file found - uses default",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "valid yaml config file",
			files: map[string]string{
				ConfigFile: `version: 1
logging:
  level: debug
  format: json
api:
  url: https://ops.example.com
transport:
  driver: nhooyr
  connect_timeout: 3s
retry:
  attempts: 2
  interval: 250ms
cache:
  driver: redis
  redis_addr: localhost:6379
`,
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "https://ops.example.com", cfg.API.URL)
				assert.Equal(t, DriverNhooyr, cfg.Transport.Driver)
				assert.Equal(t, 3*time.Second, cfg.Transport.ConnectTimeout)
				assert.Equal(t, 2, cfg.Retry.Attempts)
				assert.Equal(t, 250*time.Millisecond, cfg.Retry.Interval)
				assert.Equal(t, CacheRedis, cfg.Cache.Driver)
				assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
				assert.Equal(t, PollInterval, cfg.Facade.PollInterval)
			},
		},
		{
			name: "jsonc config file with comments and trailing commas",
			files: map[string]string{
				ConfigFileJSONC: `{
  // realtime server
  "api": {"hostname": "dispatch.example.com",},
  "retry": {"attempts": 7},
}`,
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "dispatch.example.com", cfg.API.Hostname)
				assert.Equal(t, 7, cfg.Retry.Attempts)
			},
		},
		{
			name: "dotenv and environment override file values",
			files: map[string]string{
				ConfigFile: "auth:\n  identity: from-file\n",
				EnvFile:    "FLEETSYNC_AUTH_TOKEN=tok-from-dotenv\n",
			},
			env: map[string]string{
				"FLEETSYNC_AUTH_IDENTITY": "from-env",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env", cfg.Auth.Identity)
				assert.Equal(t, "tok-from-dotenv", cfg.Auth.Token)
			},
		},
		{
			name:  "invalid yaml syntax",
			files: map[string]string{ConfigFile: "retry: [\n"},
			error: errors.ErrFailedToParseConfig,
		},
		{
			name:  "invalid value type for unmarshal",
			files: map[string]string{ConfigFile: "retry:\n  attempts: many\n"},
			error: errors.ErrFailedToParseConfig,
		},
		{
			name:  "invalid jsonc",
			files: map[string]string{ConfigFileJSONC: "{\"api\": "},
			error: errors.ErrFailedToParseConfig,
		},
		{
			name:  "validation failure",
			files: map[string]string{ConfigFile: "transport:\n  driver: carrier-pigeon\n"},
			error: errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			for name, content := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
			}

			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			if _, ok := tt.files[EnvFile]; ok {
				t.Setenv("FLEETSYNC_AUTH_TOKEN", "")
				require.NoError(t, os.Unsetenv("FLEETSYNC_AUTH_TOKEN"))
			}

			cfg, err := LoadFrom(dir)

			if tt.error != nil {
				assert.ErrorIs(t, err, tt.error)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func Test_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		error  error
	}{
		{name: "defaults are valid", mutate: func(cfg *Config) {}},
		{
			name:   "missing url and hostname",
			mutate: func(cfg *Config) { cfg.API.URL = ""; cfg.API.Hostname = "" },
			error:  errors.ErrAPIHostRequired,
		},
		{
			name:   "unknown transport driver",
			mutate: func(cfg *Config) { cfg.Transport.Driver = "tcp" },
			error:  errors.ErrInvalidTransportDriver,
		},
		{
			name:   "zero connect timeout",
			mutate: func(cfg *Config) { cfg.Transport.ConnectTimeout = 0 },
			error:  errors.ErrInvalidConnectTimeout,
		},
		{
			name:   "zero retry attempts",
			mutate: func(cfg *Config) { cfg.Retry.Attempts = 0 },
			error:  errors.ErrInvalidRetryAttempts,
		},
		{
			name:   "negative retry interval",
			mutate: func(cfg *Config) { cfg.Retry.Interval = -time.Second },
			error:  errors.ErrInvalidRetryInterval,
		},
		{
			name:   "zero poll interval",
			mutate: func(cfg *Config) { cfg.Facade.PollInterval = 0 },
			error:  errors.ErrInvalidPollInterval,
		},
		{
			name:   "redis without address",
			mutate: func(cfg *Config) { cfg.Cache.Driver = CacheRedis },
			error:  errors.ErrRedisAddrRequired,
		},
		{
			name:   "unknown cache driver",
			mutate: func(cfg *Config) { cfg.Cache.Driver = "memcached" },
			error:  errors.ErrInvalidCacheDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.error == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.error)
		})
	}
}

func Test_Validate_FillsEmptyDrivers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport.Driver = ""
	cfg.Cache.Driver = ""
	cfg.API.Path = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverGorilla, cfg.Transport.Driver)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, DefaultPath, cfg.API.Path)
}
