package facade

import (
	"context"
	"sync"

	"fleetsync/internal/app/auth"
	"fleetsync/internal/app/connection"
	"fleetsync/internal/config/logger"
)

// Bootstrapper triggers the shared connection once per identity no matter how many consumers mount
type Bootstrapper interface {
	Ensure(ctx context.Context, identity auth.Identity) error
	Reset(identity auth.Identity)
	Reauthenticate(ctx context.Context)
}

type bootstrapper struct {
	manager     connection.Manager
	tokens      auth.TokenSource
	log         logger.Logger
	mu          sync.Mutex
	requested   map[string]auth.Identity
	initialized map[string]bool
}

// NewBootstrapper creates the process-wide Bootstrapper
func NewBootstrapper(manager connection.Manager, tokens auth.TokenSource, log logger.Logger) Bootstrapper {
	return &bootstrapper{
		manager:     manager,
		tokens:      tokens,
		log:         log.WithComponent("FACADE"),
		requested:   make(map[string]auth.Identity),
		initialized: make(map[string]bool),
	}
}

// Ensure connects identity unless an earlier call already did.
// A missing credential is handed to the manager, which reports it, and leaves the identity uninitialized.
func (b *bootstrapper) Ensure(ctx context.Context, identity auth.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.requested[identity.ID] = identity

	if b.initialized[identity.ID] {
		return nil
	}

	return b.connect(ctx, identity)
}

// Reset disconnects on logout and forgets identity
func (b *bootstrapper) Reset(identity auth.Identity) {
	b.mu.Lock()
	delete(b.requested, identity.ID)
	delete(b.initialized, identity.ID)
	b.mu.Unlock()

	b.manager.Disconnect()
	b.log.Info().Msgf("Reset connection for '%s'", identity.ID)
}

// Reauthenticate reconnects every requested identity with a freshly read credential
func (b *bootstrapper) Reauthenticate(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, identity := range b.requested {
		b.log.Info().Msgf("Credential changed, reconnecting '%s'", identity.ID)

		if err := b.connect(ctx, identity); err != nil {
			b.log.Warn().Err(err).Msgf("Reconnect of '%s' without credential", identity.ID)
		}
	}
}

// connect reads the token and starts the manager; b.mu must be held
func (b *bootstrapper) connect(ctx context.Context, identity auth.Identity) error {
	token, err := b.tokens.Token(ctx)
	if err != nil {
		delete(b.initialized, identity.ID)
		b.manager.Connect(identity, "")

		return err
	}

	b.initialized[identity.ID] = true
	b.manager.Connect(identity, token)

	return nil
}
