//go:generate mockgen -source=manager.go -destination=manager_mock.go -package=connection
package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"fleetsync/internal/app/auth"
	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/notice"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/reconnect"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/app/transport"
	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

// Manager owns the single realtime connection of the process
type Manager interface {
	// Connect opens the connection for identity; it is a no-op while connecting or connected
	Connect(identity auth.Identity, token string)
	// Disconnect closes the connection without reconnecting and forgets the credential
	Disconnect()
	Status() State
	IsConnected() bool
}

// manager implements the Manager interface
type manager struct {
	api      config.API
	timeout  time.Duration
	dialer   transport.Dialer
	policy   reconnect.Policy
	registry registry.Registry
	notifier notice.Notifier
	machine  *fsm.FSM
	log      logger.Logger

	mu       sync.Mutex
	identity *auth.Identity
	token    string
	conn     transport.Conn
	cancel   context.CancelFunc
	retry    *time.Timer
	attempts int
	gen      uint64
}

// NewManager creates a disconnected Manager
func NewManager(
	cfg *config.Config,
	dialer transport.Dialer,
	policy reconnect.Policy,
	reg registry.Registry,
	notifier notice.Notifier,
	log logger.Logger,
) Manager {
	log = log.WithComponent("CONNECTION")

	return &manager{
		api:      cfg.API,
		timeout:  cfg.Transport.ConnectTimeout,
		dialer:   dialer,
		policy:   policy,
		registry: reg,
		notifier: notifier,
		machine:  newConnectionFSM(log),
		log:      log,
	}
}

// Connect resets the retry budget and starts a connection attempt
func (m *manager) Connect(identity auth.Identity, token string) {
	m.mu.Lock()

	if s := m.state(); s == Connecting || s == Connected {
		m.mu.Unlock()
		m.log.Debug().Msgf("Connect ignored for '%s', already %s", identity.ID, s)

		return
	}

	m.stopRetry()
	m.gen++
	m.attempts = 0
	m.identity = &identity
	m.token = token

	err := m.start()
	m.mu.Unlock()

	if err != nil {
		m.registry.Notify(registry.Failed(err))
	}
}

// Disconnect tears the connection down; no closure is reported and no retry follows
func (m *manager) Disconnect() {
	m.mu.Lock()

	m.stopRetry()
	m.gen++

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	conn := m.conn
	m.conn = nil
	m.identity = nil
	m.token = ""
	m.attempts = 0
	m.fire(eventReset)

	m.mu.Unlock()

	if conn != nil {
		if err := conn.Close(transport.CloseNormalClosure, "client disconnect"); err != nil {
			m.log.Debug().Err(err).Msg("Close after disconnect failed")
		}
	}

	m.registry.Clear()
	m.log.Info().Msg("Disconnected")
}

// Status returns the current connection state
func (m *manager) Status() State {
	return State(m.machine.Current())
}

// IsConnected reports whether the connection is open
func (m *manager) IsConnected() bool {
	return m.Status() == Connected
}

func (m *manager) state() State {
	return State(m.machine.Current())
}

// fire applies a transition; rejected transitions leave the state unchanged
func (m *manager) fire(event string) {
	if err := m.machine.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			m.log.Debug().Err(err).Msgf("Transition '%s' rejected", event)
		}
	}
}

// start begins a dial for the stored credential; m.mu must be held.
// The returned error is reported to subscribers by the caller once the lock is released.
func (m *manager) start() error {
	if m.token == "" {
		m.fire(eventFail)
		m.log.Warn().Msgf("No credential for '%s'", m.identity.ID)

		return errors.ErrCredentialUnavailable
	}

	endpoint, err := transport.Endpoint(transport.BaseURL(m.api), m.api.Path, m.token)
	if err != nil {
		m.fire(eventFail)
		m.log.Error().Err(err).Msg("Cannot build realtime endpoint")

		return err
	}

	m.fire(eventConnect)
	m.gen++

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.log.Info().Msgf("Connecting '%s' to %s", m.identity.ID, transport.BaseURL(m.api))

	go m.run(ctx, cancel, m.gen, endpoint)

	return nil
}

// run dials and then reads until the connection ends
func (m *manager) run(ctx context.Context, cancel context.CancelFunc, gen uint64, endpoint string) {
	defer cancel()

	dialCtx, cancelDial := context.WithTimeout(ctx, m.timeout)
	conn, err := m.dialer.Dial(dialCtx, endpoint)
	timedOut := errors.Is(dialCtx.Err(), context.DeadlineExceeded)

	cancelDial()

	if err != nil {
		if timedOut {
			err = fmt.Errorf("%w after %s: %w", errors.ErrConnectTimeout, m.timeout, err)
		}

		m.handleDialFailure(gen, err)

		return
	}

	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()
		_ = conn.Close(transport.CloseNormalClosure, "superseded")

		return
	}

	m.conn = conn
	m.attempts = 0
	m.fire(eventOpen)

	m.mu.Unlock()

	m.log.Info().Msg("Connected")
	m.registry.Notify(registry.Connected())

	m.readLoop(ctx, gen, conn)
}

// readLoop decodes frames and fans them out in arrival order
func (m *manager) readLoop(ctx context.Context, gen uint64, conn transport.Conn) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			m.handleReadError(gen, conn, err)
			return
		}

		env, err := protocol.Decode(data)
		if err != nil {
			m.log.Debug().Err(err).Msg("Dropping frame")
			continue
		}

		if !m.current(gen) {
			return
		}

		m.registry.Notify(registry.Message(env))
	}
}

func (m *manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return gen == m.gen
}

// handleDialFailure reports a failed attempt and consults the retry policy
func (m *manager) handleDialFailure(gen uint64, err error) {
	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.cancel = nil
	m.fire(eventFail)

	m.mu.Unlock()

	m.log.Warn().Err(err).Msg("Connect failed")
	m.registry.Notify(registry.Failed(err))

	m.scheduleRetry(gen)
}

// handleReadError turns the end of the read loop into error and closure notifications
func (m *manager) handleReadError(gen uint64, conn transport.Conn, err error) {
	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.conn = nil
	m.cancel = nil

	code := transport.CloseCode(err)
	failure := !transport.IsClosure(err)

	if failure {
		m.fire(eventFail)
	}

	m.mu.Unlock()

	if failure {
		m.log.Warn().Err(err).Msg("Transport failure")
		m.registry.Notify(registry.Failed(fmt.Errorf("%w: %w", errors.ErrTransportFailure, err)))
	}

	if closeErr := conn.Close(transport.CloseGoingAway, ""); closeErr != nil {
		m.log.Debug().Err(closeErr).Msg("Releasing closed connection failed")
	}

	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.fire(eventClose)

	m.mu.Unlock()

	if cause := closureCause(err); cause != nil {
		m.log.Warn().Err(cause).Msg("Connection closed")
	} else {
		m.log.Info().Msgf("Connection closed with code %d", code)
	}

	m.registry.Notify(registry.Disconnected())

	m.scheduleRetry(gen)
}

// closureCause returns nil for a normal closure and wraps ErrUnexpectedClosure otherwise
func closureCause(err error) error {
	code := transport.CloseCode(err)
	if code == transport.CloseNormalClosure {
		return nil
	}

	return fmt.Errorf("%w: code %d: %w", errors.ErrUnexpectedClosure, code, err)
}

// scheduleRetry arms the retry timer, or escalates once the ceiling is reached
func (m *manager) scheduleRetry(gen uint64) {
	m.mu.Lock()

	if gen != m.gen || m.identity == nil || m.token == "" {
		m.mu.Unlock()
		return
	}

	decision := m.policy.Next(m.attempts)
	identity := m.identity.ID

	if !decision.Retry {
		m.mu.Unlock()

		err := fmt.Errorf("%w: %d attempts", errors.ErrMaxRetriesExceeded, decision.Attempt)
		m.notifier.Escalate(identity, err)
		m.registry.Notify(registry.Failed(err))

		return
	}

	m.attempts = decision.Attempt
	m.stopRetry()
	m.retry = time.AfterFunc(decision.Delay, func() {
		m.retryFired(gen)
	})

	m.mu.Unlock()

	m.log.Info().Msgf("Reconnecting in %s (attempt %d/%d)", decision.Delay, decision.Attempt, m.policy.MaxAttempts)
}

// retryFired starts the scheduled attempt unless it was superseded or the credential is gone
func (m *manager) retryFired(gen uint64) {
	m.mu.Lock()

	if gen != m.gen || m.identity == nil {
		m.mu.Unlock()
		return
	}

	m.retry = nil

	if s := m.state(); s == Connecting || s == Connected {
		m.mu.Unlock()
		return
	}

	err := m.start()
	m.mu.Unlock()

	if err != nil {
		m.registry.Notify(registry.Failed(err))
	}
}

// stopRetry cancels a pending retry; m.mu must be held
func (m *manager) stopRetry() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
}
