package registry

import "go.uber.org/fx"

// Module provides the subscriber registry
var Module = fx.Options(
	fx.Provide(
		NewRegistry,
	),
)
