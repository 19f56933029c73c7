package components

import (
	"tablebook/internal/pkg/clock"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	fx.Annotate(
		clock.NewRealClock,
		fx.As(new(commands.Clock)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewHoldService,
		commands.NewRequestService,
		commands.NewConfirmService,
		commands.NewCancelService,
		commands.NewSweepService,
		commands.NewSlotGenService,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityService,
		queries.NewReservationQueryService,
	),
)
