package facade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetsync/internal/app/auth"
	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/config/logger"
)

// Facade is one consumer's view of the shared connection
type Facade struct {
	manager      connection.Manager
	registry     registry.Registry
	bootstrapper Bootstrapper
	pollInterval time.Duration
	log          logger.Logger

	mu        sync.Mutex
	id        string
	status    connection.State
	onMessage func(protocol.Envelope)
	onStatus  func(connection.State)
	onError   func(error)
	mounted   bool
	stop      chan struct{}
	done      chan struct{}
}

// NewFacade creates an unmounted Facade
func NewFacade(
	manager connection.Manager,
	reg registry.Registry,
	bootstrapper Bootstrapper,
	pollInterval time.Duration,
	log logger.Logger,
) *Facade {
	return &Facade{
		manager:      manager,
		registry:     reg,
		bootstrapper: bootstrapper,
		pollInterval: pollInterval,
		log:          log.WithComponent("FACADE"),
		status:       connection.Disconnected,
	}
}

// ID returns the subscriber id, empty until the first mount
func (f *Facade) ID() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.id
}

// Mount subscribes to the shared connection and makes sure it is started for identity.
// The facade stays mounted when the credential is missing; the failure is reflected in Status.
// A mounted facade whose registration was cleared by a disconnect may be mounted again.
func (f *Facade) Mount(ctx context.Context, identity auth.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	f.mu.Lock()

	switch {
	case f.mounted && f.registry.Has(f.id):
		f.mu.Unlock()
		return errors.ErrFacadeMounted
	case f.mounted:
		f.subscribe()
		f.log.Info().Msgf("Subscriber '%s' was cleared, subscribed again", f.id)
	default:
		if f.id == "" {
			f.id = uuid.NewString()
		}

		f.subscribe()

		f.mounted = true
		f.stop = make(chan struct{})
		f.done = make(chan struct{})

		go f.poll(ctx, f.stop, f.done)
	}

	f.mu.Unlock()

	f.sync()

	return f.bootstrapper.Ensure(ctx, identity)
}

// Unmount unsubscribes and stops the status poller
func (f *Facade) Unmount() {
	f.mu.Lock()

	if !f.mounted {
		f.mu.Unlock()
		return
	}

	f.registry.Unsubscribe(f.id)
	f.mounted = false
	close(f.stop)
	done := f.done

	f.mu.Unlock()

	<-done
}

// Status returns the mirrored connection state
func (f *Facade) Status() connection.State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.status
}

// IsConnected reports whether the mirrored state is connected
func (f *Facade) IsConnected() bool {
	return f.Status() == connection.Connected
}

// OnMessage replaces the message handler; the registered dispatcher always calls the latest one
func (f *Facade) OnMessage(handler func(protocol.Envelope)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onMessage = handler
}

// OnStatus replaces the handler called when the mirrored state changes
func (f *Facade) OnStatus(handler func(connection.State)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onStatus = handler
}

// OnError replaces the handler called with connection errors
func (f *Facade) OnError(handler func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onError = handler
}

// SendMessage is a no-op: the connection carries server-to-client events only.
// The returned error is always ErrSendUnsupported and nothing is delivered.
func (f *Facade) SendMessage(msg any) error {
	f.log.Warn().Msgf("Dropping outbound message of type %T", msg)
	return fmt.Errorf("%w: %T", errors.ErrSendUnsupported, msg)
}

// subscribe registers the stable dispatcher under f.id; f.mu must be held
func (f *Facade) subscribe() {
	f.registry.Subscribe(f.id, registry.Callbacks{
		OnMessage:    f.dispatch,
		OnConnect:    f.sync,
		OnDisconnect: f.sync,
		OnError:      f.fail,
	})
}

// rejoin subscribes again when the registration was cleared while mounted
func (f *Facade) rejoin() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.mounted || f.registry.Has(f.id) {
		return
	}

	f.subscribe()
	f.log.Debug().Msgf("Subscriber '%s' was cleared, subscribed again", f.id)
}

func (f *Facade) dispatch(env protocol.Envelope) {
	f.mu.Lock()
	handler := f.onMessage
	f.mu.Unlock()

	if handler != nil {
		handler(env)
	}
}

func (f *Facade) fail(err error) {
	f.sync()

	f.mu.Lock()
	handler := f.onError
	f.mu.Unlock()

	if handler != nil {
		handler(err)
	}
}

// sync copies the manager state and reports a change
func (f *Facade) sync() {
	status := f.manager.Status()

	f.mu.Lock()

	if status == f.status {
		f.mu.Unlock()
		return
	}

	f.status = status
	handler := f.onStatus

	f.mu.Unlock()

	if handler != nil {
		handler(status)
	}
}

// poll re-syncs the mirrored state in case a lifecycle callback was missed,
// and restores the registration after a disconnect cleared the registry
func (f *Facade) poll(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			f.rejoin()
			f.sync()
		}
	}
}
