package errors

import (
	"errors"
)

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")

	ErrInvalidRetryAttempts   = errors.New("retry attempts must be greater than 0")
	ErrInvalidRetryInterval   = errors.New("retry interval must be greater than 0")
	ErrInvalidConnectTimeout  = errors.New("connect timeout must be greater than 0")
	ErrInvalidPollInterval    = errors.New("facade poll interval must be greater than 0")
	ErrInvalidTransportDriver = errors.New("invalid transport driver")
	ErrInvalidCacheDriver     = errors.New("invalid cache driver")
	ErrRedisAddrRequired      = errors.New("cache driver 'redis' requires redis_addr field")
	ErrAPIHostRequired        = errors.New("api url or hostname is required")

	ErrCredentialUnavailable = errors.New("credential unavailable")
	ErrIdentityRequired      = errors.New("identity id is required")
	ErrFailedToReadToken     = errors.New("failed to read token file")

	ErrInvalidBaseURL     = errors.New("invalid base url")
	ErrUnsupportedScheme  = errors.New("unsupported url scheme")
	ErrFailedToDial       = errors.New("failed to dial transport")
	ErrConnectTimeout     = errors.New("connect timed out")
	ErrTransportFailure   = errors.New("transport failure")
	ErrUnexpectedClosure  = errors.New("unexpected closure")
	ErrMaxRetriesExceeded = errors.New("max reconnect attempts exceeded")

	ErrMalformedFrame    = errors.New("malformed frame")
	ErrMissingEventType  = errors.New("envelope type is required")
	ErrSendUnsupported   = errors.New("outbound messages are not supported")
	ErrFacadeMounted     = errors.New("facade is already mounted")
	ErrInvalidTypeFilter = errors.New("invalid type filter pattern")
	ErrUnknownKind       = errors.New("unknown subscription kind")

	ErrFailedToInvalidate = errors.New("failed to invalidate cache keys")
	ErrFailedToReadInput  = errors.New("failed to read input")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
