package commands

import (
	"context"
	"log/slog"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type RequestService struct {
	uow    shared.UnitOfWork
	clock  Clock
	holds  *HoldService
	logger *slog.Logger
}

func NewRequestService(uow shared.UnitOfWork, clock Clock, holds *HoldService, logger *slog.Logger) *RequestService {
	return &RequestService{uow: uow, clock: clock, holds: holds, logger: logger}
}

type CreateRequestInput struct {
	RestaurantID  uuid.UUID
	CustomerID    uuid.UUID
	HeldSlotID    uuid.UUID
	RequestedDate time.Time
	RequestedTime time.Time
	Adults        int
	Children      int
	ContactName   string
	ContactPhone  string
	ContactEmail  string
	MealType      request.MealType
	EstimateCents int64
	TableDetails  *request.TableDetails
}

// CreateReservationRequest stages a booking against a live hold. The held
// slot's date and time-of-day must each match the requested values; a hold
// on the right clock time of the wrong day is rejected.
func (s *RequestService) CreateReservationRequest(ctx context.Context, in CreateRequestInput) (*request.Request, error) {
	snap, err := s.uow.Reads().SlotByID(ctx, in.HeldSlotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	if err := s.holds.validateHeldSnapshot(snap); err != nil {
		return nil, err
	}

	party, err := request.NewParty(in.Adults, in.Children)
	if err != nil {
		return nil, err
	}
	contact, err := request.NewContact(in.ContactName, in.ContactPhone, in.ContactEmail)
	if err != nil {
		return nil, err
	}
	req, err := request.NewRequest(
		in.RestaurantID, in.CustomerID, in.HeldSlotID,
		in.RequestedDate, in.RequestedTime,
		party, contact, in.MealType, in.EstimateCents, in.TableDetails,
	)
	if err != nil {
		return nil, err
	}

	w, err := snap.Window()
	if err != nil {
		return nil, err
	}
	if err := request.ValidateSlotTiming(w, in.RequestedDate, in.RequestedTime); err != nil {
		return nil, errs.Mark(err, ErrSlotTimingDrift)
	}

	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Requests().Create(ctx, req); err != nil {
			return err
		}
		return tx.Holds().AttachRequest(ctx, in.HeldSlotID, req.ID())
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

type UpdateDetailsInput struct {
	ReservationID uuid.UUID
	CustomerID    uuid.UUID
	PartySize     *int
	Note          string
}

// UpdateReservationDetails edits a CONFIRMED reservation in place. A party
// size change re-checks capacity against the assigned table, or the combined
// capacity when the reservation spans a merged set.
func (s *RequestService) UpdateReservationDetails(ctx context.Context, in UpdateDetailsInput) error {
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
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

		if in.PartySize != nil {
			capacity, err := s.assignedCapacity(ctx, tx, res)
			if err != nil {
				return err
			}
			if *in.PartySize > capacity {
				return ErrPartyExceedsCapacity
			}
			ok, err := tx.Reservations().UpdatePartySize(ctx, res.ID, *in.PartySize)
			if err != nil {
				return err
			}
			if !ok {
				return ErrSlotStateConflict
			}
		}
		return tx.Reservations().AppendEvent(ctx, res.ID, "DETAILS_UPDATED", in.Note)
	})
}

func (s *RequestService) assignedCapacity(ctx context.Context, tx shared.Tx, res *shared.ReservationSnapshot) (int, error) {
	if res.TableSetID != nil {
		set, err := tx.Reads().ActiveTableSetByReservation(ctx, res.ID)
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return 0, err
		}
		if set != nil {
			return set.CombinedCapacity(), nil
		}
	}
	snap, err := tx.Reads().SlotByID(ctx, res.SlotID)
	if err != nil {
		return 0, err
	}
	return snap.TableCapacity, nil
}
