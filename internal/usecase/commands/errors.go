package commands

import "errors"

// Sentinel errors the handler layer maps to machine-readable codes.
var (
	ErrNoTablesAvailable = errors.New("no table can seat the party at the requested time")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotUnavailable   = errors.New("slot is not available")

	ErrHoldNotFound    = errors.New("hold not found")
	ErrHoldWrongStatus = errors.New("slot is not in held status")
	ErrHoldExpired     = errors.New("hold has expired")

	ErrRequestNotFound    = errors.New("reservation request not found")
	ErrRequestWrongStatus = errors.New("reservation request is not in a confirmable status")
	ErrSlotTimingDrift    = errors.New("held slot timing does not match the requested date and time")

	ErrPaymentNotVerified = errors.New("advance payment has not been verified")

	ErrReservationNotFound       = errors.New("reservation not found")
	ErrNotOwner                  = errors.New("resource belongs to another customer")
	ErrUnauthorizedCancellation  = errors.New("reservation belongs to another customer")
	ErrAlreadyCancelled          = errors.New("reservation is already cancelled")
	ErrInvalidStatus             = errors.New("reservation status does not allow this operation")
	ErrPendingCancellationExists = errors.New("a cancellation is already pending for this reservation")
	ErrReservationInPast         = errors.New("reservation start time is in the past")
	ErrNoRefundPolicy            = errors.New("restaurant has no active refund policy")

	ErrPartyExceedsCapacity  = errors.New("party size exceeds the assigned table capacity")
	ErrMergedNotReassignable = errors.New("merged table reservations cannot be reassigned")
	ErrSlotStateConflict     = errors.New("slot state changed concurrently")
)
