package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

func Test_Debouncer_Coalesces(t *testing.T) {
	var calls atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func() {
		calls.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
}

func Test_Debouncer_Stop(t *testing.T) {
	var calls atomic.Int32

	d := NewDebouncer(30*time.Millisecond, func() {
		calls.Add(1)
	})

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())
}

func Test_Watcher_InertWithoutTokenFile(t *testing.T) {
	w := NewWatcher(config.DefaultConfig(), logger.Nop())

	assert.NoError(t, w.Start(context.Background(), func() {}))
	w.Close()
}

func Test_Watcher_ReportsTokenChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("tok1"), 0600))

	cfg := config.DefaultConfig()
	cfg.Auth.TokenFile = path
	cfg.Watch.Debounce = 20 * time.Millisecond

	var (
		mu      sync.Mutex
		changes int
	)

	w := NewWatcher(cfg, logger.Nop())
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx, func() {
		mu.Lock()
		defer mu.Unlock()

		changes++
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(path, []byte("tok2"), 0600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return changes == 1
	}, time.Second, 10*time.Millisecond)
}
