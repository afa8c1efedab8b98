package router

import (
	"context"

	"fleetsync/internal/app/cache"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/config/logger"
)

// SubscriberID is the registry id the router subscribes under
const SubscriberID = "router"

// Plan is the invalidation an envelope causes
type Plan struct {
	Type protocol.EventType
	// All requests a full refresh
	All  bool
	Keys []cache.Key
}

// IsEmpty reports whether the plan invalidates nothing
func (p Plan) IsEmpty() bool {
	return !p.All && len(p.Keys) == 0
}

var domains = map[protocol.EventType]string{
	protocol.TripUpdate:   cache.DomainTrips,
	protocol.TripCreated:  cache.DomainTrips,
	protocol.DriverUpdate: cache.DomainDrivers,
	protocol.ClientUpdate: cache.DomainClients,
}

// Keys maps an envelope to the cache keys it makes stale
func Keys(env protocol.Envelope) Plan {
	plan := Plan{Type: env.Type}

	if env.Type == protocol.SystemUpdate {
		plan.All = true
		return plan
	}

	domain, ok := domains[env.Type]
	if !ok {
		return plan
	}

	plan.Keys = append(plan.Keys, cache.Collection(domain))

	scope := env.Scope()
	if scope.ProgramID != "" {
		plan.Keys = append(plan.Keys, cache.Scoped(domain, cache.ScopeProgram, scope.ProgramID))
	}

	if scope.CorporateClientID != "" {
		plan.Keys = append(plan.Keys, cache.Scoped(domain, cache.ScopeCorporateClient, scope.CorporateClientID))
	}

	return plan
}

// Router applies invalidation plans to the cache
type Router interface {
	Route(ctx context.Context, env protocol.Envelope) (Plan, error)
	Callbacks(ctx context.Context) registry.Callbacks
}

type router struct {
	cache cache.Invalidator
	log   logger.Logger
}

// NewRouter creates a Router over target
func NewRouter(target cache.Invalidator, log logger.Logger) Router {
	return &router{
		cache: target,
		log:   log.WithComponent("ROUTER"),
	}
}

// Route invalidates what env makes stale; unknown types are logged and ignored
func (r *router) Route(ctx context.Context, env protocol.Envelope) (Plan, error) {
	plan := Keys(env)

	switch {
	case plan.All:
		r.log.Info().Msg("System update, invalidating every cached query")

		return plan, r.cache.InvalidateAll(ctx)
	case len(plan.Keys) > 0:
		r.log.Debug().Msgf("Invalidating %v for %s", plan.Keys, env.Type)

		return plan, r.cache.Invalidate(ctx, plan.Keys...)
	case env.Type == protocol.Connection:
		return plan, nil
	default:
		r.log.Warn().Msgf("Ignoring unknown event type '%s'", env.Type)

		return plan, nil
	}
}

// Callbacks subscribes the router to incoming messages; invalidation failures are logged
func (r *router) Callbacks(ctx context.Context) registry.Callbacks {
	return registry.Callbacks{
		OnMessage: func(env protocol.Envelope) {
			if _, err := r.Route(ctx, env); err != nil {
				r.log.Error().Err(err).Msgf("Failed to invalidate for %s", env.Type)
			}
		},
	}
}
