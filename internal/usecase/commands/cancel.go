package commands

import (
	"context"
	"log/slog"
	"time"

	"tablebook/internal/domain/refund"
	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CancelService struct {
	uow    shared.UnitOfWork
	clock  Clock
	holds  *HoldService
	logger *slog.Logger
}

func NewCancelService(uow shared.UnitOfWork, clock Clock, holds *HoldService, logger *slog.Logger) *CancelService {
	return &CancelService{uow: uow, clock: clock, holds: holds, logger: logger}
}

type CancelInput struct {
	ReservationID uuid.UUID
	CustomerID    uuid.UUID
}

type CancelResult struct {
	Window        refund.WindowType
	RefundPercent int
	RefundCents   int64
}

// ProcessTableCancellation validates, prices the refund, releases every slot
// the reservation occupies, and records the cancellation, all in one
// transaction. Merged reservations release each member slot and dissolve the
// table set; any slot that is not RESERVED by this reservation at update
// time aborts the whole unit.
func (s *CancelService) ProcessTableCancellation(ctx context.Context, in CancelInput) (*CancelResult, error) {
	now := s.clock.Now()
	var (
		result       *CancelResult
		restaurantID uuid.UUID
		start        time.Time
	)

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reads().ReservationByIDForUpdate(ctx, in.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if res.CustomerID != in.CustomerID {
			return ErrUnauthorizedCancellation
		}
		if res.Status == reservation.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if res.Status != reservation.StatusConfirmed {
			return ErrInvalidStatus
		}
		if !res.Start.After(now) {
			return ErrReservationInPast
		}
		pending, err := tx.Reads().PendingCancellationExists(ctx, res.ID)
		if err != nil {
			return err
		}
		if pending {
			return ErrPendingCancellationExists
		}
		restaurantID = res.RestaurantID
		start = res.Start

		outcome, err := s.evaluateRefund(ctx, tx, res, now)
		if err != nil {
			return err
		}
		refundCents := outcome.AmountCents(res.AdvancePaidCents)

		releasedSlots, err := s.releaseSlots(ctx, tx, res, now)
		if err != nil {
			return err
		}

		ok, err := tx.Reservations().UpdateStatus(ctx, res.ID, reservation.StatusConfirmed, reservation.StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotStateConflict
		}
		// Keep the originating request's lifecycle in step. A request already
		// moved on (completed elsewhere) is not an error.
		if _, err := tx.Requests().UpdateStatus(ctx, res.RequestID, request.StatusConfirmed, request.StatusCancelled); err != nil {
			return err
		}

		status := shared.CancellationApprovedNoRefund
		if refundCents > 0 {
			status = shared.CancellationApprovedPendingRefund
		}
		cancellationID := uuid.New()
		if err := tx.Cancellations().CreateRequest(ctx, shared.CancellationRecord{
			ID:              cancellationID,
			ReservationID:   res.ID,
			CustomerID:      in.CustomerID,
			WindowType:      outcome.Window,
			RefundCents:     refundCents,
			RefundPercent:   outcome.Percentage,
			ReleasedSlotIDs: releasedSlots,
			Status:          status,
			RequestedAt:     now,
		}); err != nil {
			return err
		}
		if refundCents > 0 {
			if err := tx.Cancellations().CreateRefund(ctx, shared.RefundRecord{
				ID:             uuid.New(),
				CancellationID: cancellationID,
				ReservationID:  res.ID,
				AmountCents:    refundCents,
				Status:         shared.RefundPending,
			}); err != nil {
				return err
			}
		}
		if err := tx.Reservations().AppendEvent(ctx, res.ID, "CANCELLED", string(outcome.Window)); err != nil {
			return err
		}

		result = &CancelResult{
			Window:        outcome.Window,
			RefundPercent: outcome.Percentage,
			RefundCents:   refundCents,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.holds.invalidate(ctx, restaurantID, start)
	return result, nil
}

func (s *CancelService) evaluateRefund(ctx context.Context, tx shared.Tx, res *shared.ReservationSnapshot, now time.Time) (refund.Outcome, error) {
	policySnap, err := tx.Reads().ActiveRefundPolicy(ctx, res.RestaurantID)
	if err != nil {
		// No active policy is an error, never an implicit NO_REFUND default.
		if infra.IsKind(err, infra.KindNotFound) {
			return refund.Outcome{}, errs.Mark(refund.ErrNoActivePolicy, ErrNoRefundPolicy)
		}
		return refund.Outcome{}, err
	}
	minutesUntil := int64(res.Start.Sub(now) / time.Minute)
	return policySnap.ToDomain().Evaluate(minutesUntil), nil
}

func (s *CancelService) releaseSlots(ctx context.Context, tx shared.Tx, res *shared.ReservationSnapshot, now time.Time) ([]uuid.UUID, error) {
	if res.TableSetID == nil {
		ok, err := tx.Slots().ReleaseReserved(ctx, res.SlotID, res.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSlotStateConflict
		}
		return []uuid.UUID{res.SlotID}, nil
	}

	set, err := tx.Reads().ActiveTableSetByReservation(ctx, res.ID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSlotStateConflict
		}
		return nil, err
	}
	slotIDs := set.SlotIDs()
	n, err := tx.Slots().ReleaseReservedMany(ctx, slotIDs, res.ID)
	if err != nil {
		return nil, err
	}
	if n != int64(len(slotIDs)) {
		return nil, ErrSlotStateConflict
	}
	ok, err := tx.TableSets().Dissolve(ctx, set.ID(), res.CustomerID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotStateConflict
	}
	return slotIDs, nil
}
