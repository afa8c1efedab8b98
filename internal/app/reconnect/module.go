package reconnect

import "go.uber.org/fx"

// Module provides the reconnection policy
var Module = fx.Options(
	fx.Provide(NewPolicy),
)
