package bootstrap

import (
	"tablebook/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Module wires everything a serving process needs. One-shot commands use the
// narrower CoreModule instead and skip the HTTP surface.
var Module = fx.Options(
	CoreModule,
	JWTModule,
	components.HandlerModule,
	SchedulerModule,
)

// CoreModule is config through use cases, with no handlers or cron.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	CacheModule,
	components.PersistenceModule,
	components.UseCaseModule,
)
