package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"fleetsync/internal/app/errors"
	"fleetsync/internal/config"
)

// Close codes used by the connection lifecycle
const (
	CloseNormalClosure   = 1000
	CloseGoingAway       = 1001
	CloseAbnormalClosure = 1006
)

// Conn is one open streaming connection
type Conn interface {
	// Read blocks until the next frame arrives; closure is reported as *CloseError
	Read(ctx context.Context) ([]byte, error)
	Close(code int, reason string) error
}

// Dialer opens connections to an endpoint
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// CloseError reports that the peer or the client closed the connection
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("connection closed with code %d", e.Code)
	}

	return fmt.Sprintf("connection closed with code %d: %s", e.Code, e.Reason)
}

// CloseCode returns the closure code carried by err, or the abnormal code when there is none
func CloseCode(err error) int {
	var closeErr *CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code
	}

	return CloseAbnormalClosure
}

// IsClosure reports whether err is an orderly close rather than a transport failure
func IsClosure(err error) bool {
	var closeErr *CloseError
	return errors.As(err, &closeErr)
}

// BaseURL derives the HTTP(S) base address: the configured url wins, otherwise the hostname
// decides, with loopback hosts getting plain http and an explicit port
func BaseURL(api config.API) string {
	if api.URL != "" {
		return strings.TrimRight(api.URL, "/")
	}

	host := api.Hostname
	if host == "" {
		host = config.DefaultHostname
	}

	if isLoopback(host) {
		port := api.Port
		if port == 0 {
			port = config.DefaultPort
		}

		return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
	}

	return "https://" + host
}

// Endpoint converts base to the streaming scheme and appends path and the bearer credential
func Endpoint(base, path, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: '%s'", errors.ErrInvalidBaseURL, base)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: '%s'", errors.ErrUnsupportedScheme, u.Scheme)
	}

	if path == "" {
		path = config.DefaultPath
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u.Path = strings.TrimRight(u.Path, "/") + path

	query := u.Query()
	query.Set("token", token)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(strings.Trim(host, "[]"))

	return ip != nil && ip.IsLoopback()
}

// NewDialer returns the dialer for the configured driver
func NewDialer(cfg *config.Config) Dialer {
	switch cfg.Transport.Driver {
	case config.DriverNhooyr:
		return NewNhooyrDialer()
	default:
		return NewGorillaDialer(cfg.Transport.ConnectTimeout)
	}
}
