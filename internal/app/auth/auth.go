//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=auth
package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fleetsync/internal/app/errors"
	"fleetsync/internal/config"
)

// Identity is the authenticated user a connection belongs to
type Identity struct {
	ID   string
	Role string
}

// NewIdentity returns the configured identity
func NewIdentity(cfg *config.Config) Identity {
	return Identity{
		ID:   cfg.Auth.Identity,
		Role: cfg.Auth.Role,
	}
}

// Validate ensures the identity can own a connection
func (i Identity) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.ErrIdentityRequired
	}

	return nil
}

// TokenSource yields the current bearer credential
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// envSource reads the token from configuration, which already carries FLEETSYNC_AUTH_TOKEN and .env values
type envSource struct {
	token string
}

// fileSource reads the token from a file on every call
type fileSource struct {
	path string
}

// NewTokenSource prefers the token file when one is configured
func NewTokenSource(cfg *config.Config) TokenSource {
	if cfg.Auth.TokenFile != "" {
		return NewFileTokenSource(cfg.Auth.TokenFile)
	}

	return NewStaticTokenSource(cfg.Auth.Token)
}

// NewStaticTokenSource returns a source that always yields token
func NewStaticTokenSource(token string) TokenSource {
	return &envSource{token: token}
}

// NewFileTokenSource returns a source that reads path
func NewFileTokenSource(path string) TokenSource {
	return &fileSource{path: path}
}

func (s *envSource) Token(_ context.Context) (string, error) {
	token := strings.TrimSpace(s.token)
	if token == "" {
		return "", errors.ErrCredentialUnavailable
	}

	return token, nil
}

func (s *fileSource) Token(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.ErrCredentialUnavailable
		}

		return "", fmt.Errorf("%w: %w", errors.ErrFailedToReadToken, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errors.ErrCredentialUnavailable
	}

	return token, nil
}
