package connection

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the shared connection manager
var Module = fx.Options(
	fx.Provide(NewManager),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle closes the connection on shutdown
func registerLifecycle(lc fx.Lifecycle, m Manager) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Disconnect()
			return nil
		},
	})
}
