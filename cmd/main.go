package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"tablebook/cmd/bootstrap"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
)

func init() {
	// Release mode unless explicitly overridden, so a missing env var never
	// exposes debug output.
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// @title           tablebook
// @version         1.0
// @description     Restaurant table reservation service

// @BasePath  /
// @schemes http https
// @in header
func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "tablebook",
		Short: "Restaurant table reservation service",
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newSlotsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background sweeps",
		RunE: func(_ *cobra.Command, _ []string) error {
			app := fx.New(
				bootstrap.Module,
				fx.Provide(
					func() *gin.Engine { return gin.New() },
				),
				fx.Invoke(startServer),
			)

			if err := app.Start(context.Background()); err != nil {
				return err
			}

			<-app.Done()

			if err := app.Stop(context.Background()); err != nil {
				slog.Error("shutdown did not complete cleanly", "error", err)
			}
			return nil
		},
	}
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			listenAddr := ":" + cfg.Server.Port
			logger.Info("starting server", "address", listenAddr, "mode", gin.Mode())
			go func() {
				if err := engine.Run(listenAddr); err != nil {
					logger.Error("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("stopping server")
			return nil
		},
	})
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			pool, cleanup, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()

			applied, err := db.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			slog.Info("migrations applied", "count", applied)
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry sweep and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var runErr error
			app := fx.New(
				bootstrap.CoreModule,
				fx.Invoke(func(sweeper *commands.SweepService, logger *slog.Logger) {
					report, err := sweeper.Run(cmd.Context())
					if err != nil {
						runErr = err
						return
					}
					logger.Info("sweep finished",
						"expired_holds", report.ExpiredHolds,
						"expired_table_sets", report.ExpiredTableSets,
						"expired_payment_links", report.ExpiredPaymentLinks,
						"purged_requests", report.PurgedRequests,
						"purged_slots", report.PurgedSlots,
					)
				}),
			)

			if err := app.Start(context.Background()); err != nil {
				return err
			}
			if err := app.Stop(context.Background()); err != nil {
				return err
			}
			return runErr
		},
	}
}

func newSlotsCmd() *cobra.Command {
	var (
		restaurantID string
		from         string
		to           string
		windows      []string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Generate bookable slots for a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rid, err := uuid.Parse(restaurantID)
			if err != nil {
				return fmt.Errorf("invalid --restaurant: %w", err)
			}
			fromDate, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			toDate, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			svcWindows, err := parseServiceWindows(windows)
			if err != nil {
				return err
			}

			var runErr error
			var inserted int64
			app := fx.New(
				bootstrap.CoreModule,
				fx.Invoke(func(gen *commands.SlotGenService) {
					inserted, runErr = gen.GenerateSlots(cmd.Context(), commands.GenerateSlotsInput{
						RestaurantID: rid,
						From:         fromDate,
						To:           toDate,
						Windows:      svcWindows,
					})
				}),
			)

			if err := app.Start(context.Background()); err != nil {
				return err
			}
			if err := app.Stop(context.Background()); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			slog.Info("slots generated", "inserted", inserted)
			return nil
		},
	}

	cmd.Flags().StringVar(&restaurantID, "restaurant", "", "restaurant id (required)")
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (required)")
	cmd.Flags().StringSliceVar(&windows, "window", nil, "service window as HH:MM-HH:MM, repeatable (required)")
	_ = cmd.MarkFlagRequired("restaurant")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("window")

	return cmd
}

func parseServiceWindows(specs []string) ([]commands.ServiceWindow, error) {
	out := make([]commands.ServiceWindow, 0, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(spec, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --window %q: want HH:MM-HH:MM", spec)
		}
		start, err := parseClockOffset(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid --window %q: %w", spec, err)
		}
		end, err := parseClockOffset(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid --window %q: %w", spec, err)
		}
		out = append(out, commands.ServiceWindow{Start: start, End: end})
	}
	return out, nil
}

func parseClockOffset(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
