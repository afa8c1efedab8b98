package transport

import "go.uber.org/fx"

// Module provides the configured websocket dialer
var Module = fx.Options(
	fx.Provide(NewDialer),
)
