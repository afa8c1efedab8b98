package app

import (
	"go.uber.org/fx"

	"fleetsync/internal/app/auth"
	"fleetsync/internal/app/cache"
	"fleetsync/internal/app/cli"
	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/facade"
	"fleetsync/internal/app/notice"
	"fleetsync/internal/app/reconnect"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/app/router"
	"fleetsync/internal/app/transport"
	"fleetsync/internal/app/ui"
	"fleetsync/internal/config/logger"
)

// Module wires every package of the application
var Module = fx.Options(
	logger.Module,
	registry.Module,
	reconnect.Module,
	transport.Module,
	cache.Module,
	auth.Module,
	notice.Module,
	connection.Module,
	facade.Module,
	router.Module,
	ui.Module,
	cli.Module,
	fx.Provide(NewApp),
	fx.Invoke(Register),
)
