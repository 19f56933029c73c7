package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
)

// Scheduler runs background maintenance on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(cfg config.SweepConfig, sweeper *commands.SweepService, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(cfg.Schedule, func() {
		ctx := context.Background()
		report, err := sweeper.Run(ctx)
		if err != nil {
			logger.Error("sweep run failed", "error", err)
			return
		}
		logger.Debug("sweep run finished",
			"expired_holds", report.ExpiredHolds,
			"expired_table_sets", report.ExpiredTableSets,
			"expired_payment_links", report.ExpiredPaymentLinks,
			"purged_requests", report.PurgedRequests,
			"purged_slots", report.PurgedSlots,
		)
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting background scheduler")
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping background scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
