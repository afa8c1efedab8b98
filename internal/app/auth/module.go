package auth

import "go.uber.org/fx"

// Module provides the identity, its token source and the token file watcher
var Module = fx.Options(
	fx.Provide(
		NewIdentity,
		NewTokenSource,
		NewWatcher,
	),
)
