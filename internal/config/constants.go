package config

import "time"

// app constants
const (
	AppName        = "fleetsync"
	AppDescription = "Realtime update distribution for the fleet dashboard"

	LogLevel  = "info"
	LogFormat = "console"

	Version = "0.3.0"

	ConfigFile      = "fleetsync.yaml"
	ConfigFileJSONC = "fleetsync.jsonc"
	EnvFile         = ".env"
	EnvPrefix       = "FLEETSYNC"
)

// api constants
const (
	DefaultHostname = "localhost"
	DefaultPort     = 8000
	DefaultPath     = "/ws"
)

// transport constants
const (
	DriverGorilla = "gorilla"
	DriverNhooyr  = "nhooyr"

	ConnectTimeout = 10 * time.Second
)

// reconnect constants
const (
	RetryAttempts = 5
	RetryInterval = 5 * time.Second
)

// facade constants
const (
	PollInterval = time.Second
)

// cache constants
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"

	CacheChannel = "fleetsync:invalidate"
	CachePrefix  = "fleetsync"
)

// auth constants
const (
	DefaultIdentity = "local"
	DefaultRole     = "dispatcher"
	WatchDebounce   = 300 * time.Millisecond
)

// shutdown constants
const (
	SentryFlushTimeout = 2 * time.Second
)
