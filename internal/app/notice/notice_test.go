package notice

import (
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"fleetsync/internal/app/errors"
	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

func Test_NewNotifier_WithoutDSN(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	n, err := NewNotifier(lc, config.DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	n.Escalate("u1", errors.ErrMaxRetriesExceeded)
	assert.True(t, n.Flush(time.Millisecond))

	lc.RequireStart()
	lc.RequireStop()
}

func Test_NewNotifier_InvalidDSN(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sentry.DSN = "not a dsn"

	_, err := NewNotifier(fxtest.NewLifecycle(t), cfg, logger.Nop())
	assert.Error(t, err)
}

func Test_Escalate_CapturesException(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)

	cfg := config.DefaultConfig()
	cfg.Sentry.DSN = "https://public@127.0.0.1/1"
	cfg.Sentry.Environment = "test"

	options := clientOptions(cfg)
	options.BeforeSend = func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		mu.Lock()
		defer mu.Unlock()

		events = append(events, event)

		return nil
	}

	n, err := newNotifier(options, logger.Nop())
	require.NoError(t, err)

	n.Escalate("u1", errors.ErrMaxRetriesExceeded)

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, events, 1)
	assert.Equal(t, "u1", events[0].Tags["identity"])
	assert.Equal(t, "test", events[0].Environment)
	assert.Equal(t, sentry.LevelError, events[0].Level)
	assert.Equal(t, "fleetsync@"+config.Version, events[0].Release)
}
