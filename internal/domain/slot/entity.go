package slot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotAvailable      = errors.New("slot is not available")
	ErrNotHeld           = errors.New("slot is not held")
	ErrHoldExpired       = errors.New("hold on slot has expired")
	ErrHoldExpiryMissing = errors.New("held slot has no expiry timestamp")
)

// Slot is one bookable (table, date, window) unit. The corresponding row is
// the single source of truth for who may write it; every mutation in the
// repository layer is a status-guarded update.
type Slot struct {
	id            uuid.UUID
	restaurantID  uuid.UUID
	tableID       uuid.UUID
	date          time.Time
	window        Window
	status        Status
	holdExpiresAt *time.Time
	reservationID *uuid.UUID
}

func NewSlot(restaurantID, tableID uuid.UUID, date time.Time, window Window) *Slot {
	return &Slot{
		id:           uuid.New(),
		restaurantID: restaurantID,
		tableID:      tableID,
		date:         date,
		window:       window,
		status:       StatusAvailable,
	}
}

func ReconstructSlot(
	id, restaurantID, tableID uuid.UUID,
	date time.Time,
	window Window,
	status Status,
	holdExpiresAt *time.Time,
	reservationID *uuid.UUID,
) *Slot {
	return &Slot{
		id:            id,
		restaurantID:  restaurantID,
		tableID:       tableID,
		date:          date,
		window:        window,
		status:        status,
		holdExpiresAt: holdExpiresAt,
		reservationID: reservationID,
	}
}

func (s *Slot) ID() uuid.UUID             { return s.id }
func (s *Slot) RestaurantID() uuid.UUID   { return s.restaurantID }
func (s *Slot) TableID() uuid.UUID        { return s.tableID }
func (s *Slot) Date() time.Time           { return s.date }
func (s *Slot) Window() Window            { return s.window }
func (s *Slot) Status() Status            { return s.status }
func (s *Slot) HoldExpiresAt() *time.Time { return s.holdExpiresAt }
func (s *Slot) ReservationID() *uuid.UUID { return s.reservationID }

// HoldExpired reports whether a HELD slot's hold has lapsed. A HELD slot
// with no expiry violates the hold invariant and is treated as expired so it
// can never be confirmed; callers surface ErrHoldExpiryMissing for logging.
func (s *Slot) HoldExpired(now time.Time) bool {
	if s.status != StatusHeld {
		return false
	}
	if s.holdExpiresAt == nil {
		return true
	}
	return !s.holdExpiresAt.After(now)
}

// ValidateHeld checks that the slot carries a live hold. It distinguishes
// wrong-status from expired so callers can return precise error codes.
func (s *Slot) ValidateHeld(now time.Time) error {
	if s.status != StatusHeld {
		return ErrNotHeld
	}
	if s.holdExpiresAt == nil {
		return ErrHoldExpiryMissing
	}
	if !s.holdExpiresAt.After(now) {
		return ErrHoldExpired
	}
	return nil
}

// OccupiesAt reports whether the slot blocks its table for the given window
// at the given instant. Expired holds no longer occupy.
func (s *Slot) OccupiesAt(now time.Time, candidate Window) bool {
	if !s.status.Occupying() {
		return false
	}
	if s.status == StatusHeld && s.HoldExpired(now) {
		return false
	}
	return s.window.Overlaps(candidate)
}
