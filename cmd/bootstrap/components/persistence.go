package components

import (
	"tablebook/internal/infra/cache"
	"tablebook/internal/infra/db"
	"tablebook/internal/infra/payment"
	"tablebook/internal/infra/readstore"
	"tablebook/internal/infra/uow"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"
	"tablebook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	gatewayModule,
)

var baseOption = fx.Provide(
	NewDBTX,
	uow.NewPostgresUoW,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewCommandReads,
			fx.As(new(shared.CommandReads)),
		),
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(queries.AvailabilityReadStore)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
	),
)

var gatewayModule = fx.Module("persistence/gateway",
	fx.Provide(
		fx.Annotate(
			func(client *redis.Client, cfg config.Config) *cache.AvailabilityCache {
				return cache.NewAvailabilityCache(client, cfg.Redis)
			},
			fx.As(new(commands.AvailabilityCache)),
			fx.As(new(queries.SearchCache)),
		),
		fx.Annotate(
			func(cfg config.Config) *payment.GatewayVerifier {
				return payment.NewGatewayVerifier(cfg.Payment)
			},
			fx.As(new(commands.PaymentVerifier)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
