package reservation

import (
	"errors"
	"time"

	"tablebook/internal/domain/slot"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid reservation status transition")
	ErrAlreadyCancelled  = errors.New("reservation is already cancelled")
	ErrNotCancellable    = errors.New("reservation is not in a cancellable status")
	ErrInPast            = errors.New("reservation start time is in the past")
)

// Assignment binds a reservation to the slot and table that seat it. A
// merged booking keeps the primary table here; the full member list lives on
// the table set.
type Assignment struct {
	TableID   uuid.UUID
	SectionID *uuid.UUID
	SlotID    uuid.UUID
	Window    slot.Window
}

type Reservation struct {
	id         uuid.UUID
	number     string
	requestID  uuid.UUID
	customerID uuid.UUID
	restaurant uuid.UUID
	date       time.Time
	partySize  int
	mealType   string
	financials Financials
	status     Status
	assignment Assignment
	tableSetID *uuid.UUID
	createdAt  time.Time
	updatedAt  time.Time
}

func NewReservation(
	number string,
	requestID, customerID, restaurantID uuid.UUID,
	date time.Time,
	partySize int,
	mealType string,
	financials Financials,
	assignment Assignment,
	tableSetID *uuid.UUID,
) *Reservation {
	return &Reservation{
		id:         uuid.New(),
		number:     number,
		requestID:  requestID,
		customerID: customerID,
		restaurant: restaurantID,
		date:       date,
		partySize:  partySize,
		mealType:   mealType,
		financials: financials,
		status:     StatusConfirmed,
		assignment: assignment,
		tableSetID: tableSetID,
	}
}

func ReconstructReservation(
	id uuid.UUID,
	number string,
	requestID, customerID, restaurantID uuid.UUID,
	date time.Time,
	partySize int,
	mealType string,
	financials Financials,
	status Status,
	assignment Assignment,
	tableSetID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:         id,
		number:     number,
		requestID:  requestID,
		customerID: customerID,
		restaurant: restaurantID,
		date:       date,
		partySize:  partySize,
		mealType:   mealType,
		financials: financials,
		status:     status,
		assignment: assignment,
		tableSetID: tableSetID,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (r *Reservation) ID() uuid.UUID           { return r.id }
func (r *Reservation) Number() string          { return r.number }
func (r *Reservation) RequestID() uuid.UUID    { return r.requestID }
func (r *Reservation) CustomerID() uuid.UUID   { return r.customerID }
func (r *Reservation) RestaurantID() uuid.UUID { return r.restaurant }
func (r *Reservation) Date() time.Time         { return r.date }
func (r *Reservation) PartySize() int          { return r.partySize }
func (r *Reservation) MealType() string        { return r.mealType }
func (r *Reservation) Financials() Financials  { return r.financials }
func (r *Reservation) Status() Status          { return r.status }
func (r *Reservation) Assignment() Assignment  { return r.assignment }
func (r *Reservation) TableSetID() *uuid.UUID  { return r.tableSetID }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time    { return r.updatedAt }

func (r *Reservation) IsCancelled() bool {
	return r.status == StatusCancelled
}

// ValidateCancellable enforces the cancellation preconditions that depend
// only on the reservation itself; ownership and pending-cancellation checks
// happen in the engine with store access.
func (r *Reservation) ValidateCancellable(now time.Time) error {
	if r.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if r.status != StatusConfirmed {
		return ErrNotCancellable
	}
	if !r.assignment.Window.Start().After(now) {
		return ErrInPast
	}
	return nil
}

func (r *Reservation) TransitionTo(next Status) error {
	if !r.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.status = next
	return nil
}
