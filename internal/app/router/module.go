package router

import "go.uber.org/fx"

// Module provides the event router
var Module = fx.Options(
	fx.Provide(NewRouter),
)
