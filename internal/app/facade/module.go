package facade

import (
	"go.uber.org/fx"

	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

// Factory creates a new consumer facade over the shared connection
type Factory func() *Facade

// Module provides the bootstrapper and the facade factory
var Module = fx.Options(
	fx.Provide(
		NewBootstrapper,
		NewFactory,
	),
)

// FactoryParams contains dependencies for creating facades
type FactoryParams struct {
	fx.In

	Config       *config.Config
	Manager      connection.Manager
	Registry     registry.Registry
	Bootstrapper Bootstrapper
	Logger       logger.Logger
}

// NewFactory creates the facade factory
func NewFactory(params FactoryParams) Factory {
	return func() *Facade {
		return NewFacade(
			params.Manager,
			params.Registry,
			params.Bootstrapper,
			params.Config.Facade.PollInterval,
			params.Logger,
		)
	}
}
