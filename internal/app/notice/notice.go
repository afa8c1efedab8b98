//go:generate mockgen -source=notice.go -destination=notice_mock.go -package=notice
package notice

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"

	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

// Notifier escalates failures the connection cannot recover from on its own
type Notifier interface {
	Escalate(identity string, err error)
	Flush(timeout time.Duration) bool
}

type notifier struct {
	hub *sentry.Hub
	log logger.Logger
}

// NewNotifier creates a Notifier; without a sentry dsn it only logs
func NewNotifier(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) (Notifier, error) {
	n, err := newNotifier(clientOptions(cfg), log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			n.Flush(config.SentryFlushTimeout)
			return nil
		},
	})

	return n, nil
}

func clientOptions(cfg *config.Config) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     config.AppName + "@" + config.Version,
	}
}

func newNotifier(options sentry.ClientOptions, log logger.Logger) (*notifier, error) {
	n := &notifier{log: log.WithComponent("NOTICE")}

	if options.Dsn == "" {
		return n, nil
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, err
	}

	n.hub = sentry.NewHub(client, sentry.NewScope())

	return n, nil
}

// Escalate logs err and captures it in sentry when configured
func (n *notifier) Escalate(identity string, err error) {
	n.log.Error().Err(err).Msgf("Giving up on realtime connection for '%s'", identity)

	if n.hub == nil {
		return
	}

	n.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("identity", identity)
		scope.SetLevel(sentry.LevelError)
		n.hub.CaptureException(err)
	})
}

// Flush waits for buffered sentry events
func (n *notifier) Flush(timeout time.Duration) bool {
	if n.hub == nil {
		return true
	}

	return n.hub.Flush(timeout)
}
