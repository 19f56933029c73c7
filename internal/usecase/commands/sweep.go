package commands

import (
	"context"
	"log/slog"

	"tablebook/internal/domain/request"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/shared"
)

type SweepService struct {
	uow    shared.UnitOfWork
	clock  Clock
	cfg    config.SweepConfig
	logger *slog.Logger
}

func NewSweepService(uow shared.UnitOfWork, clock Clock, cfg config.SweepConfig, logger *slog.Logger) *SweepService {
	return &SweepService{uow: uow, clock: clock, cfg: cfg, logger: logger}
}

type SweepReport struct {
	ExpiredHolds        int64
	DeletedHoldRows     int64
	ExpiredTableSets    int64
	ExpiredPaymentLinks int
	PurgedRequests      int64
	PurgedSlots         int64
}

// Run reclaims everything past its deadline. Each UPDATE re-checks status
// and timestamp inside the statement, so concurrent sweeps and in-flight
// confirms cannot double-apply; running twice is a no-op the second time.
func (s *SweepService) Run(ctx context.Context) (SweepReport, error) {
	now := s.clock.Now()
	var report SweepReport

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if report.ExpiredHolds, err = tx.Slots().ExpireHolds(ctx, now); err != nil {
			return err
		}
		if report.DeletedHoldRows, err = tx.Holds().DeleteExpired(ctx, now); err != nil {
			return err
		}
		if report.ExpiredTableSets, err = tx.TableSets().ExpirePending(ctx, now); err != nil {
			return err
		}

		linkCutoff := now.Add(-s.cfg.StaleRequestAfter)
		expired, err := tx.Requests().ExpireStalePaymentLinks(ctx, linkCutoff)
		if err != nil {
			return err
		}
		report.ExpiredPaymentLinks = len(expired)
		for _, id := range expired {
			if err := tx.Requests().AppendEvent(ctx, id,
				request.StatusPendingCustomerPayment, request.StatusPaymentLinkExpired,
				"payment link expired by sweep"); err != nil {
				return err
			}
		}

		if report.PurgedRequests, err = tx.Requests().DeleteStale(ctx, linkCutoff); err != nil {
			return err
		}
		report.PurgedSlots, err = tx.Slots().DeletePastUnused(ctx, now.Add(-s.cfg.SlotRetention))
		return err
	})
	if err != nil {
		return SweepReport{}, err
	}

	if report.ExpiredHolds > 0 || report.ExpiredTableSets > 0 || report.ExpiredPaymentLinks > 0 {
		s.logger.Info("sweep reclaimed stale state",
			slog.Int64("expired_holds", report.ExpiredHolds),
			slog.Int64("expired_table_sets", report.ExpiredTableSets),
			slog.Int("expired_payment_links", report.ExpiredPaymentLinks),
			slog.Int64("purged_requests", report.PurgedRequests),
			slog.Int64("purged_slots", report.PurgedSlots))
	}
	return report, nil
}
