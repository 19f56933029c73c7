package commands

import (
	"context"
	"log/slog"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// Platform-level rates applied on top of the booking estimate.
const (
	serviceChargePercent = 10
	taxPercent           = 5
)

// confirmNumberAttempts bounds retries on reservation-number collisions.
const confirmNumberAttempts = 3

type ConfirmService struct {
	uow      shared.UnitOfWork
	clock    Clock
	holds    *HoldService
	verifier PaymentVerifier
	cache    AvailabilityCache
	booking  config.BookingConfig
	logger   *slog.Logger
}

func NewConfirmService(
	uow shared.UnitOfWork,
	clock Clock,
	holds *HoldService,
	verifier PaymentVerifier,
	cache AvailabilityCache,
	booking config.BookingConfig,
	logger *slog.Logger,
) *ConfirmService {
	return &ConfirmService{
		uow: uow, clock: clock, holds: holds,
		verifier: verifier, cache: cache, booking: booking, logger: logger,
	}
}

type ConfirmInput struct {
	RequestID  uuid.UUID
	CustomerID uuid.UUID
}

type ConfirmResult struct {
	ReservationID   uuid.UUID
	Number          string
	TableSetID      *uuid.UUID
	TotalCents      int64
	BalanceDueCents int64
	IsPaid          bool
}

// ConfirmTableReservation turns a staged request into a reservation in one
// transaction: re-validate the hold, generate a reservation number, persist
// the reservation and assignment, flip the slot(s) HELD to RESERVED, drop
// the hold rows, and move the request to CONFIRMED. A duplicate reservation
// number aborts the transaction and the whole unit retries with a fresh one.
func (s *ConfirmService) ConfirmTableReservation(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	req, err := s.uow.Reads().RequestByID(ctx, in.RequestID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.CustomerID != in.CustomerID {
		return nil, ErrNotOwner
	}
	if req.Status != request.StatusPending && req.Status != request.StatusPendingCustomerPayment {
		return nil, ErrRequestWrongStatus
	}

	fin, err := s.buildFinancials(ctx, req)
	if err != nil {
		return nil, err
	}

	var result *ConfirmResult
	for attempt := 0; attempt < confirmNumberAttempts; attempt++ {
		result, err = s.confirmOnce(ctx, req, fin)
		if err == nil {
			break
		}
		if infra.IsKind(err, infra.KindDuplicateKey) {
			s.logger.Warn("reservation number collision, retrying",
				slog.String("request_id", req.ID.String()))
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	snap, rerr := s.uow.Reads().SlotByID(ctx, req.HeldSlotID)
	if rerr == nil {
		s.holds.invalidate(ctx, snap.RestaurantID, snap.Date)
	}
	return result, nil
}

func (s *ConfirmService) confirmOnce(ctx context.Context, req *shared.RequestSnapshot, fin reservation.Financials) (*ConfirmResult, error) {
	now := s.clock.Now()
	number, err := reservation.GenerateNumber(req.RequestedDate)
	if err != nil {
		return nil, err
	}

	var result *ConfirmResult
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().SlotByIDForUpdate(ctx, req.HeldSlotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrHoldNotFound
			}
			return err
		}
		if err := s.holds.validateHeldSnapshot(snap); err != nil {
			return err
		}
		w, err := snap.Window()
		if err != nil {
			return err
		}

		set, err := tx.Reads().PendingTableSetBySlot(ctx, snap.ID)
		if err != nil {
			return err
		}

		assignment := reservation.Assignment{
			TableID:   snap.TableID,
			SectionID: snap.SectionID,
			SlotID:    snap.ID,
			Window:    w,
		}
		var tableSetID *uuid.UUID
		if set != nil {
			assignment.TableID = set.PrimaryTableID()
			id := set.ID()
			tableSetID = &id
		}

		res := reservation.NewReservation(
			number,
			req.ID, req.CustomerID, req.RestaurantID,
			req.RequestedDate,
			req.PartySize(),
			string(req.MealType),
			fin,
			assignment,
			tableSetID,
		)
		if err := tx.Reservations().Create(ctx, res); err != nil {
			return err
		}

		if set != nil {
			slotIDs := set.SlotIDs()
			n, err := tx.Slots().ConfirmHeldMany(ctx, slotIDs, res.ID(), now)
			if err != nil {
				return err
			}
			if n != int64(len(slotIDs)) {
				return ErrSlotStateConflict
			}
			ok, err := tx.TableSets().Activate(ctx, set.ID(), res.ID())
			if err != nil {
				return err
			}
			if !ok {
				return ErrSlotStateConflict
			}
			for _, id := range slotIDs {
				if _, err := tx.Holds().DeleteBySlot(ctx, id); err != nil {
					return err
				}
			}
		} else {
			ok, err := tx.Slots().ConfirmHeld(ctx, snap.ID, res.ID(), now)
			if err != nil {
				return err
			}
			if !ok {
				return ErrSlotStateConflict
			}
			if _, err := tx.Holds().DeleteBySlot(ctx, snap.ID); err != nil {
				return err
			}
		}

		ok, err := tx.Requests().UpdateStatus(ctx, req.ID, req.Status, request.StatusConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotStateConflict
		}
		if err := tx.Requests().AppendEvent(ctx, req.ID, req.Status, request.StatusConfirmed, "reservation "+number); err != nil {
			return err
		}
		if err := tx.Reservations().AppendEvent(ctx, res.ID(), "CREATED", "confirmed from request"); err != nil {
			return err
		}

		result = &ConfirmResult{
			ReservationID:   res.ID(),
			Number:          number,
			TableSetID:      tableSetID,
			TotalCents:      fin.Total().Cents(),
			BalanceDueCents: fin.BalanceDueCents(),
			IsPaid:          fin.IsPaid(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildFinancials prices the booking and, when the restaurant requires an
// advance, verifies the payment with the gateway before any state changes.
// An unverified advance parks the request in PENDING_CUSTOMER_PAYMENT.
func (s *ConfirmService) buildFinancials(ctx context.Context, req *shared.RequestSnapshot) (reservation.Financials, error) {
	net := reservation.MustMoney(req.EstimateCents)
	serviceCharge := net.Percent(serviceChargePercent)
	tax := net.Percent(taxPercent)
	total := net.Add(serviceCharge).Add(tax)

	advancePaid := reservation.MustMoney(0)
	settings, err := s.uow.Reads().BookingSettings(ctx, req.RestaurantID)
	if err != nil {
		return reservation.Financials{}, err
	}
	if settings != nil && settings.RequireAdvance {
		paid, err := s.verifier.VerifyPaid(ctx, req.ID)
		if err != nil {
			return reservation.Financials{}, err
		}
		if !paid {
			if req.Status == request.StatusPending {
				werr := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
					ok, err := tx.Requests().UpdateStatus(ctx, req.ID, request.StatusPending, request.StatusPendingCustomerPayment)
					if err != nil || !ok {
						return err
					}
					return tx.Requests().AppendEvent(ctx, req.ID,
						request.StatusPending, request.StatusPendingCustomerPayment,
						"advance payment required")
				})
				if werr != nil {
					return reservation.Financials{}, werr
				}
			}
			return reservation.Financials{}, ErrPaymentNotVerified
		}
		advancePaid = total.Percent(settings.AdvancePercent)
	}

	return reservation.NewFinancials(net, serviceCharge, tax, advancePaid), nil
}

type ReassignInput struct {
	ReservationID uuid.UUID
	CustomerID    uuid.UUID
	NewTableID    uuid.UUID
	NewDate       time.Time
	NewStart      time.Time
	Note          string
}

// ReassignTableReservation moves a CONFIRMED single-table reservation to a
// different table slot in one transaction: validate the destination, reserve
// it, release the old slot, update the assignment.
func (s *ConfirmService) ReassignTableReservation(ctx context.Context, in ReassignInput) error {
	var restaurantID uuid.UUID
	var oldDate, newDate time.Time

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reads().ReservationByIDForUpdate(ctx, in.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if res.CustomerID != in.CustomerID {
			return ErrNotOwner
		}
		if res.Status != reservation.StatusConfirmed {
			return ErrInvalidStatus
		}
		if res.TableSetID != nil {
			return ErrMergedNotReassignable
		}
		restaurantID = res.RestaurantID
		oldDate = res.Start

		dest, err := tx.Reads().AvailableSlotForTableAt(ctx, in.NewTableID, in.NewDate, in.NewStart)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSlotUnavailable
			}
			return err
		}
		if dest.TableCapacity < res.PartySize {
			return ErrPartyExceedsCapacity
		}

		dwell, _, err := s.holds.bookingParams(ctx, res.RestaurantID)
		if err != nil {
			return err
		}
		w, err := dest.Window()
		if err != nil {
			return err
		}
		occ, err := tx.Reads().Occupancies(ctx, in.NewTableID, in.NewDate)
		if err != nil {
			return err
		}
		filtered := occ[:0]
		for _, o := range occ {
			if o.SlotID != dest.ID && o.SlotID != res.SlotID {
				filtered = append(filtered, o)
			}
		}
		if c := shared.DetectOverlap(s.clock.Now(), w, filtered, dwell); c != nil {
			return ErrSlotUnavailable
		}
		newDate = dest.Date

		ok, err := tx.Slots().ReserveAvailable(ctx, dest.ID, res.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotStateConflict
		}
		ok, err = tx.Slots().ReleaseReserved(ctx, res.SlotID, res.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSlotStateConflict
		}

		if err := tx.Reservations().UpdateAssignment(ctx, res.ID, reservation.Assignment{
			TableID:   dest.TableID,
			SectionID: dest.SectionID,
			SlotID:    dest.ID,
			Window:    w,
		}); err != nil {
			return err
		}
		return tx.Reservations().AppendEvent(ctx, res.ID, "REASSIGNED", in.Note)
	})
	if err != nil {
		return err
	}

	s.holds.invalidate(ctx, restaurantID, oldDate)
	if !newDate.Equal(oldDate) {
		s.holds.invalidate(ctx, restaurantID, newDate)
	}
	return nil
}
