package notice

import "go.uber.org/fx"

// Module provides the failure notifier
var Module = fx.Options(
	fx.Provide(NewNotifier),
)
