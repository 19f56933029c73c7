package shared

import (
	"time"

	"tablebook/internal/domain/refund"
	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/slot"

	"github.com/google/uuid"
)

// Minimal snapshots for command read operations.

type SlotSnapshot struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	TableID       uuid.UUID
	SectionID     *uuid.UUID
	TableCapacity int
	Date          time.Time
	Start         time.Time
	End           time.Time
	Status        slot.Status
	HoldExpiresAt *time.Time
	ReservationID *uuid.UUID
}

func (s *SlotSnapshot) Window() (slot.Window, error) {
	return slot.NewWindow(s.Start, s.End)
}

type TableSnapshot struct {
	ID              uuid.UUID
	RestaurantID    uuid.UUID
	SectionID       *uuid.UUID
	SeatingCapacity int
	MergeGroup      *string
	IsActive        bool
}

// Occupancy is one slot that may block a table for a window.
type Occupancy struct {
	SlotID        uuid.UUID
	Status        slot.Status
	Start         time.Time
	End           time.Time
	HoldExpiresAt *time.Time
	ReservationID *uuid.UUID
}

type HoldRecord struct {
	ID        uuid.UUID
	SlotID    uuid.UUID
	ExpiresAt time.Time
}

type HoldSnapshot struct {
	ID        uuid.UUID
	SlotID    uuid.UUID
	RequestID *uuid.UUID
	ExpiresAt time.Time
}

type RequestSnapshot struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	CustomerID    uuid.UUID
	HeldSlotID    uuid.UUID
	RequestedDate time.Time
	RequestedTime time.Time
	Adults        int
	Children      int
	MealType      request.MealType
	EstimateCents int64
	Status        request.Status
}

func (r *RequestSnapshot) PartySize() int {
	return r.Adults + r.Children
}

type ReservationSnapshot struct {
	ID               uuid.UUID
	Number           string
	RequestID        uuid.UUID
	CustomerID       uuid.UUID
	RestaurantID     uuid.UUID
	Status           reservation.Status
	PartySize        int
	TotalCents       int64
	AdvancePaidCents int64
	TableID          uuid.UUID
	SectionID        *uuid.UUID
	SlotID           uuid.UUID
	Start            time.Time
	End              time.Time
	TableSetID       *uuid.UUID
}

type RefundPolicySnapshot struct {
	ID                         uuid.UUID
	RestaurantID               uuid.UUID
	FullRefundBeforeMinutes    int
	PartialRefundBeforeMinutes *int
	PartialRefundPercentage    *int
}

func (p *RefundPolicySnapshot) ToDomain() refund.Policy {
	return refund.Policy{
		ID:                         p.ID,
		RestaurantID:               p.RestaurantID,
		FullRefundBeforeMinutes:    p.FullRefundBeforeMinutes,
		PartialRefundBeforeMinutes: p.PartialRefundBeforeMinutes,
		PartialRefundPercentage:    p.PartialRefundPercentage,
	}
}

type BookingSettingsSnapshot struct {
	RestaurantID        uuid.UUID
	DwellTimeMinutes    int
	HoldDurationMinutes int
	RequireAdvance      bool
	AdvancePercent      int
}

type CancellationStatus string

const (
	CancellationApprovedPendingRefund CancellationStatus = "APPROVED_PENDING_REFUND"
	CancellationApprovedNoRefund      CancellationStatus = "APPROVED_NO_REFUND"
)

type CancellationRecord struct {
	ID              uuid.UUID
	ReservationID   uuid.UUID
	CustomerID      uuid.UUID
	WindowType      refund.WindowType
	RefundCents     int64
	RefundPercent   int
	ReleasedSlotIDs []uuid.UUID
	Status          CancellationStatus
	RequestedAt     time.Time
}

type RefundStatus string

const RefundPending RefundStatus = "PENDING"

type RefundRecord struct {
	ID             uuid.UUID
	CancellationID uuid.UUID
	ReservationID  uuid.UUID
	AmountCents    int64
	Status         RefundStatus
}
