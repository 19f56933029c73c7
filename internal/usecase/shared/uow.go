package shared

import (
	"context"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/slot"
	"tablebook/internal/domain/tableset"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full read-committed transaction for write operations. The
	// implementation applies the bounded lock wait and overall timeout and
	// retries only store-level serialization/deadlock failures.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: direct access for validation reads outside transactions.
	Reads() CommandReads
}

type Tx interface {
	Slots() SlotRepository
	Holds() HoldRepository
	Requests() RequestRepository
	Reservations() ReservationRepository
	TableSets() TableSetRepository
	Cancellations() CancellationRepository
	Reads() CommandReads
}

// CommandReads serves the snapshot reads commands need for validation.
// Obtained via Tx.Reads() the queries share the transaction's consistency;
// via UnitOfWork.Reads() they are plain reads.
type CommandReads interface {
	SlotByID(ctx context.Context, id uuid.UUID) (*SlotSnapshot, error)
	// SlotByIDForUpdate row-locks the slot; only valid inside a transaction.
	SlotByIDForUpdate(ctx context.Context, id uuid.UUID) (*SlotSnapshot, error)
	// AvailableSlotForTableAt finds the AVAILABLE slot starting exactly at start.
	AvailableSlotForTableAt(ctx context.Context, tableID uuid.UUID, date, start time.Time) (*SlotSnapshot, error)
	CandidateTables(ctx context.Context, restaurantID uuid.UUID, sectionID *uuid.UUID) ([]TableSnapshot, error)
	// Occupancies lists every slot that could block the table on the date:
	// RESERVED, BLOCKED, MAINTENANCE, and HELD rows regardless of expiry.
	// Expiry filtering happens in the overlap detector.
	Occupancies(ctx context.Context, tableID uuid.UUID, date time.Time) ([]Occupancy, error)
	HoldBySlotID(ctx context.Context, slotID uuid.UUID) (*HoldSnapshot, error)
	RequestByID(ctx context.Context, id uuid.UUID) (*RequestSnapshot, error)
	ReservationByID(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
	// ReservationByIDForUpdate row-locks the reservation row.
	ReservationByIDForUpdate(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
	ActiveTableSetByReservation(ctx context.Context, reservationID uuid.UUID) (*tableset.TableSet, error)
	// PendingTableSetBySlot finds the PENDING_MERGE set a held slot belongs
	// to, or nil when the slot is a plain single-table hold.
	PendingTableSetBySlot(ctx context.Context, slotID uuid.UUID) (*tableset.TableSet, error)
	PendingCancellationExists(ctx context.Context, reservationID uuid.UUID) (bool, error)
	ActiveRefundPolicy(ctx context.Context, restaurantID uuid.UUID) (*RefundPolicySnapshot, error)
	// BookingSettings returns nil when the restaurant has no settings row;
	// callers fall back to platform defaults.
	BookingSettings(ctx context.Context, restaurantID uuid.UUID) (*BookingSettingsSnapshot, error)
}

type SlotRepository interface {
	// InsertBatch creates AVAILABLE slots, skipping rows that already exist.
	InsertBatch(ctx context.Context, slots []*slot.Slot) (int64, error)
	// Hold flips AVAILABLE -> HELD; false means a concurrent writer won.
	Hold(ctx context.Context, slotID uuid.UUID, expiresAt time.Time) (bool, error)
	// HoldMany flips a set of AVAILABLE slots to HELD and returns the number
	// flipped; a short count means some member was contended.
	HoldMany(ctx context.Context, slotIDs []uuid.UUID, expiresAt time.Time) (int64, error)
	// ConfirmHeld flips HELD -> RESERVED only while the hold is unexpired,
	// linking the reservation and clearing the expiry.
	ConfirmHeld(ctx context.Context, slotID, reservationID uuid.UUID, now time.Time) (bool, error)
	ConfirmHeldMany(ctx context.Context, slotIDs []uuid.UUID, reservationID uuid.UUID, now time.Time) (int64, error)
	// ReserveAvailable flips AVAILABLE -> RESERVED directly, for
	// reassignment targets that never pass through a hold.
	ReserveAvailable(ctx context.Context, slotID, reservationID uuid.UUID) (bool, error)
	// Release unconditionally resets a slot to AVAILABLE.
	Release(ctx context.Context, slotID uuid.UUID) error
	// ReleaseReserved resets only a slot presently RESERVED by this
	// reservation; false signals a state conflict, never silent success.
	ReleaseReserved(ctx context.Context, slotID, reservationID uuid.UUID) (bool, error)
	ReleaseReservedMany(ctx context.Context, slotIDs []uuid.UUID, reservationID uuid.UUID) (int64, error)
	// ExpireHolds reclaims slots still HELD past expiry; the status and
	// timestamp are re-checked inside the update so the sweep is idempotent.
	ExpireHolds(ctx context.Context, now time.Time) (int64, error)
	// DeletePastUnused removes retention-expired slots with no reservation
	// or hold attached.
	DeletePastUnused(ctx context.Context, before time.Time) (int64, error)
}

type HoldRepository interface {
	Create(ctx context.Context, rec HoldRecord) error
	AttachRequest(ctx context.Context, slotID, requestID uuid.UUID) error
	DeleteBySlot(ctx context.Context, slotID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req *request.Request) error
	// UpdateStatus is guarded by the expected current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to request.Status) (bool, error)
	AppendEvent(ctx context.Context, requestID uuid.UUID, from, to request.Status, note string) error
	// ExpireStalePaymentLinks moves unpaid requests past the cutoff to
	// PAYMENT_LINK_EXPIRED and returns the affected ids for event logging.
	ExpireStalePaymentLinks(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	// DeleteStale purges terminal unpaid requests older than the cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReservationRepository interface {
	// Create persists the reservation and its table assignment. A duplicate
	// reservation number surfaces as a duplicate-key repository error.
	Create(ctx context.Context, res *reservation.Reservation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to reservation.Status) (bool, error)
	UpdateAssignment(ctx context.Context, id uuid.UUID, a reservation.Assignment) error
	// UpdatePartySize is guarded by CONFIRMED status.
	UpdatePartySize(ctx context.Context, id uuid.UUID, partySize int) (bool, error)
	AppendEvent(ctx context.Context, reservationID uuid.UUID, kind, note string) error
}

type TableSetRepository interface {
	Create(ctx context.Context, ts *tableset.TableSet) error
	Activate(ctx context.Context, id, reservationID uuid.UUID) (bool, error)
	Dissolve(ctx context.Context, id, dissolvedBy uuid.UUID, at time.Time) (bool, error)
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type CancellationRepository interface {
	CreateRequest(ctx context.Context, rec CancellationRecord) error
	CreateRefund(ctx context.Context, rec RefundRecord) error
}
