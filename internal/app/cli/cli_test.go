package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fleetsync/internal/app/auth"
	"fleetsync/internal/app/cache"
	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/facade"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/app/router"
	"fleetsync/internal/app/ui"
	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

type cliFixture struct {
	cli     *cli
	manager *connection.MockManager
	memory  *cache.Memory
	reg     registry.Registry
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newCLIFixture(t *testing.T, token string, args ...string) *cliFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	manager := connection.NewMockManager(ctrl)
	manager.EXPECT().Status().Return(connection.Connected).AnyTimes()

	cfg := config.DefaultConfig()
	cfg.Auth.Identity = "u1"

	reg := registry.NewRegistry(logger.Nop())
	memory := cache.NewMemory()
	boot := facade.NewBootstrapper(manager, auth.NewStaticTokenSource(token), logger.Nop())

	f := &cliFixture{
		manager: manager,
		memory:  memory,
		reg:     reg,
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}

	f.cli = &cli{
		cfg:      cfg,
		identity: auth.NewIdentity(cfg),
		factory: facade.NewFactory(facade.FactoryParams{
			Config:       cfg,
			Manager:      manager,
			Registry:     reg,
			Bootstrapper: boot,
			Logger:       logger.Nop(),
		}),
		bootstrapper: boot,
		registry:     reg,
		router:       router.NewRouter(memory, logger.Nop()),
		watcher:      auth.NewWatcher(cfg, logger.Nop()),
		sender:       ui.NewSender(),
		log:          logger.Nop(),
		args:         args,
		in:           strings.NewReader(""),
		out:          f.out,
		errOut:       f.errOut,
	}

	return f
}

func Test_NewCLI(t *testing.T) {
	cfg := config.DefaultConfig()
	sender := ui.NewSender()

	instance := NewCLI(Params{
		Config: cfg,
		Sender: sender,
		Logger: logger.Nop(),
	})

	c, ok := instance.(*cli)
	require.True(t, ok)
	assert.Equal(t, cfg, c.cfg)
	assert.Equal(t, sender, c.sender)
	assert.Equal(t, os.Args[1:], c.args)
}

func Test_Execute(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedExit int
		expectedErr  error
		contains     string
	}{
		{name: "version", args: []string{"version"}, contains: config.Version},
		{name: "help", args: []string{"--help"}, contains: "fleetsync route [file|-]"},
		{name: "config", args: []string{"config"}, contains: "attempts: 5"},
		{name: "unknown kind", args: []string{"watch", "--kind", "boats"}, expectedExit: 1, expectedErr: errors.ErrUnknownKind},
		{name: "invalid type glob", args: []string{"watch", "-t", "trip_[a"}, expectedExit: 1, expectedErr: errors.ErrInvalidTypeFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCLIFixture(t, "tok1", tt.args...)

			exitCode, err := f.cli.Execute()

			assert.Equal(t, tt.expectedExit, exitCode)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Contains(t, f.errOut.String(), "Error:")

				return
			}

			require.NoError(t, err)
			assert.Contains(t, f.out.String(), tt.contains)
		})
	}
}

func Test_Execute_UnknownCommand(t *testing.T) {
	f := newCLIFixture(t, "tok1", "replay")

	exitCode, err := f.cli.Execute()

	assert.Equal(t, 1, exitCode)
	assert.Error(t, err)
	assert.Contains(t, f.errOut.String(), "replay")
}

func Test_handleConfig_RedactsSecrets(t *testing.T) {
	f := newCLIFixture(t, "tok1")
	f.cli.cfg.Auth.Token = "secret-token"
	f.cli.cfg.Sentry.DSN = "https://key@sentry.example/1"

	require.NoError(t, f.cli.handleConfig())

	out := f.out.String()
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "sentry.example")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "interval: 5s")
	assert.Equal(t, "secret-token", f.cli.cfg.Auth.Token)
}

func Test_handleRoute(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"type":"trip_update","data":{"programId":"p1"}}`), 0o600))

	tests := []struct {
		name        string
		input       string
		stdin       string
		expectedErr error
		contains    []string
	}{
		{
			name:     "file",
			input:    file,
			contains: []string{"trip_update", "trips", "trips/program/p1"},
		},
		{
			name:     "stdin",
			input:    stdinInput,
			stdin:    `{"type":"system_update"}`,
			contains: []string{"system_update", "every cached query"},
		},
		{
			name:     "unknown type",
			input:    stdinInput,
			stdin:    `{"type":"weather_update"}`,
			contains: []string{"unknown event type, ignored"},
		},
		{
			name:     "connection notice",
			input:    stdinInput,
			stdin:    `{"type":"connection"}`,
			contains: []string{"nothing to invalidate"},
		},
		{
			name:        "missing file",
			input:       filepath.Join(dir, "missing.json"),
			expectedErr: errors.ErrFailedToReadInput,
		},
		{
			name:        "malformed envelope",
			input:       stdinInput,
			stdin:       `{"data":{}}`,
			expectedErr: errors.ErrMalformedFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCLIFixture(t, "tok1")
			f.cli.in = strings.NewReader(tt.stdin)

			err := f.cli.handleRoute(tt.input)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)

			for _, s := range tt.contains {
				assert.Contains(t, f.out.String(), s)
			}

			assert.Empty(t, f.memory.Stale())
		})
	}
}

func Test_handleWatch(t *testing.T) {
	f := newCLIFixture(t, "tok1")
	f.manager.EXPECT().Connect(auth.Identity{ID: "u1", Role: config.DefaultRole}, "tok1").Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- f.cli.handleWatch(ctx, &Options{Kind: "trips"})
	}()

	require.Eventually(t, func() bool { return f.reg.Count() == 2 }, time.Second, 5*time.Millisecond)

	f.reg.Notify(registry.Message(protocol.Envelope{
		Type: protocol.TripCreated,
		Data: json.RawMessage(`{"programId":"p1"}`),
	}))
	f.reg.Notify(registry.Message(protocol.Envelope{Type: protocol.DriverUpdate}))

	cancel()
	require.NoError(t, <-done)

	out := f.out.String()
	assert.Contains(t, out, "trip_created")
	assert.Contains(t, out, "trips/program/p1")
	assert.NotContains(t, out, "driver_update")

	assert.True(t, f.memory.IsStale(cache.Scoped(cache.DomainTrips, cache.ScopeProgram, "p1")))
	assert.True(t, f.memory.IsStale(cache.Collection(cache.DomainDrivers)))
	assert.Equal(t, 0, f.reg.Count())
}

func Test_handleWatch_CredentialUnavailable(t *testing.T) {
	f := newCLIFixture(t, "")
	f.manager.EXPECT().Connect(gomock.Any(), "").Times(1)

	err := f.cli.handleWatch(context.Background(), &Options{})

	assert.ErrorIs(t, err, errors.ErrCredentialUnavailable)
	assert.Equal(t, 0, f.reg.Count())
}

func Test_uiSink(t *testing.T) {
	sender := ui.NewSender()

	var got []tea.Msg
	sender.Set(func(msg tea.Msg) { got = append(got, msg) })

	s := uiSink{sender: sender}
	s.Status(connection.Connecting)
	s.Event(protocol.Envelope{Type: protocol.ClientUpdate})
	s.Error(errors.ErrConnectTimeout)

	require.Len(t, got, 3)
	assert.Equal(t, ui.StatusMsg(connection.Connecting), got[0])
	assert.Equal(t, ui.EventMsg{Envelope: protocol.Envelope{Type: protocol.ClientUpdate}, Invalidated: []string{"clients"}}, got[1])
	assert.Equal(t, ui.ErrorMsg{Err: errors.ErrConnectTimeout}, got[2])
}

type recordingSink struct {
	errs []error
}

func (s *recordingSink) Event(protocol.Envelope) {}

func (s *recordingSink) Status(connection.State) {}

func (s *recordingSink) Error(err error) {
	s.errs = append(s.errs, err)
}

func Test_reportError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		shown bool
	}{
		{name: "Dial failure", err: fmt.Errorf("%w: refused", errors.ErrFailedToDial), shown: false},
		{name: "Connect timeout", err: errors.ErrConnectTimeout, shown: false},
		{name: "Transport failure", err: fmt.Errorf("%w: reset", errors.ErrTransportFailure), shown: false},
		{name: "Retry ceiling", err: fmt.Errorf("%w: 5 attempts", errors.ErrMaxRetriesExceeded), shown: true},
		{name: "Missing credential", err: errors.ErrCredentialUnavailable, shown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCLIFixture(t, "tok1")
			out := &recordingSink{}

			f.cli.reportError(out)(tt.err)

			if tt.shown {
				assert.Equal(t, []error{tt.err}, out.errs)
			} else {
				assert.Empty(t, out.errs)
			}
		})
	}
}

func Test_watchTitle(t *testing.T) {
	assert.Equal(t, "all · u1", watchTitle(facade.KindAll, &Options{}, "u1"))
	assert.Equal(t, "trips trip_* · u1", watchTitle(facade.KindTrips, &Options{Types: []string{"trip_*"}}, "u1"))
}
