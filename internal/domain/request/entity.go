package request

import (
	"errors"
	"time"

	"tablebook/internal/domain/slot"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid request status transition")
	ErrSlotTimingDrift   = errors.New("held slot timing does not match requested date and time")
	ErrInvalidMealType   = errors.New("invalid meal type")
)

// Request is a staged, not-yet-final booking. It references the held slot
// that backs it; confirming consumes the hold and produces a Reservation.
type Request struct {
	id            uuid.UUID
	restaurantID  uuid.UUID
	customerID    uuid.UUID
	heldSlotID    uuid.UUID
	requestedDate time.Time
	requestedTime time.Time
	party         Party
	contact       Contact
	mealType      MealType
	estimateCents int64
	status        Status
	tableDetails  *TableDetails
	createdAt     time.Time
	updatedAt     time.Time
}

func NewRequest(
	restaurantID, customerID, heldSlotID uuid.UUID,
	requestedDate, requestedTime time.Time,
	party Party,
	contact Contact,
	mealType MealType,
	estimateCents int64,
	details *TableDetails,
) (*Request, error) {
	if !mealType.IsValid() {
		return nil, ErrInvalidMealType
	}
	return &Request{
		id:            uuid.New(),
		restaurantID:  restaurantID,
		customerID:    customerID,
		heldSlotID:    heldSlotID,
		requestedDate: requestedDate,
		requestedTime: requestedTime,
		party:         party,
		contact:       contact,
		mealType:      mealType,
		estimateCents: estimateCents,
		status:        StatusPending,
		tableDetails:  details,
	}, nil
}

func ReconstructRequest(
	id, restaurantID, customerID, heldSlotID uuid.UUID,
	requestedDate, requestedTime time.Time,
	party Party,
	contact Contact,
	mealType MealType,
	estimateCents int64,
	status Status,
	details *TableDetails,
	createdAt, updatedAt time.Time,
) *Request {
	return &Request{
		id:            id,
		restaurantID:  restaurantID,
		customerID:    customerID,
		heldSlotID:    heldSlotID,
		requestedDate: requestedDate,
		requestedTime: requestedTime,
		party:         party,
		contact:       contact,
		mealType:      mealType,
		estimateCents: estimateCents,
		status:        status,
		tableDetails:  details,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (r *Request) ID() uuid.UUID               { return r.id }
func (r *Request) RestaurantID() uuid.UUID     { return r.restaurantID }
func (r *Request) CustomerID() uuid.UUID       { return r.customerID }
func (r *Request) HeldSlotID() uuid.UUID       { return r.heldSlotID }
func (r *Request) RequestedDate() time.Time    { return r.requestedDate }
func (r *Request) RequestedTime() time.Time    { return r.requestedTime }
func (r *Request) Party() Party                { return r.party }
func (r *Request) Contact() Contact            { return r.contact }
func (r *Request) MealType() MealType          { return r.mealType }
func (r *Request) EstimateCents() int64        { return r.estimateCents }
func (r *Request) Status() Status              { return r.status }
func (r *Request) TableDetails() *TableDetails { return r.tableDetails }
func (r *Request) CreatedAt() time.Time        { return r.createdAt }
func (r *Request) UpdatedAt() time.Time        { return r.updatedAt }

// TransitionTo enforces the request state machine. Every accepted transition
// must also be recorded in the append-only event log by the caller.
func (r *Request) TransitionTo(next Status) error {
	if !r.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.status = next
	return nil
}

// ValidateSlotTiming checks that the held slot backing this request starts
// exactly at the requested date and time. Date components and clock
// components are compared independently to avoid timezone drift between the
// stored slot window and the caller-supplied values.
func ValidateSlotTiming(w slot.Window, requestedDate, requestedTime time.Time) error {
	sy, sm, sd := w.Start().Date()
	ry, rm, rd := requestedDate.Date()
	if sy != ry || sm != rm || sd != rd {
		return ErrSlotTimingDrift
	}
	sh, smin, _ := w.Start().Clock()
	rh, rmin, _ := requestedTime.Clock()
	if sh != rh || smin != rmin {
		return ErrSlotTimingDrift
	}
	return nil
}
