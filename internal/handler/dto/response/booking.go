package response

import (
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
)

type HoldResponse struct {
	SlotID        uuid.UUID   `json:"slot_id"`
	TableID       uuid.UUID   `json:"table_id"`
	TableSetID    *uuid.UUID  `json:"table_set_id,omitempty"`
	MemberSlotIDs []uuid.UUID `json:"member_slot_ids,omitempty"`
	ExpiresAt     time.Time   `json:"expires_at"`
}

func FromHoldResult(r *commands.HoldResult) *HoldResponse {
	return &HoldResponse{
		SlotID:        r.SlotID,
		TableID:       r.TableID,
		TableSetID:    r.TableSetID,
		MemberSlotIDs: r.MemberSlotIDs,
		ExpiresAt:     r.ExpiresAt,
	}
}

type RequestResponse struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	HeldSlotID    uuid.UUID `json:"held_slot_id"`
	RequestedDate time.Time `json:"requested_date"`
	RequestedTime time.Time `json:"requested_time"`
	PartySize     int       `json:"party_size"`
	MealType      string    `json:"meal_type"`
	EstimateCents int64     `json:"estimate_cents"`
}

func FromRequest(r *request.Request) *RequestResponse {
	return &RequestResponse{
		ID:            r.ID(),
		Status:        r.Status().String(),
		HeldSlotID:    r.HeldSlotID(),
		RequestedDate: r.RequestedDate(),
		RequestedTime: r.RequestedTime(),
		PartySize:     r.Party().Size(),
		MealType:      string(r.MealType()),
		EstimateCents: r.EstimateCents(),
	}
}

type ConfirmResponse struct {
	ReservationID   uuid.UUID  `json:"reservation_id"`
	Number          string     `json:"number"`
	TableSetID      *uuid.UUID `json:"table_set_id,omitempty"`
	TotalCents      int64      `json:"total_cents"`
	BalanceDueCents int64      `json:"balance_due_cents"`
	IsPaid          bool       `json:"is_paid"`
}

func FromConfirmResult(r *commands.ConfirmResult) *ConfirmResponse {
	return &ConfirmResponse{
		ReservationID:   r.ReservationID,
		Number:          r.Number,
		TableSetID:      r.TableSetID,
		TotalCents:      r.TotalCents,
		BalanceDueCents: r.BalanceDueCents,
		IsPaid:          r.IsPaid,
	}
}

type CancelResponse struct {
	Window        string `json:"refund_window"`
	RefundPercent int    `json:"refund_percent"`
	RefundCents   int64  `json:"refund_cents"`
}

func FromCancelResult(r *commands.CancelResult) *CancelResponse {
	return &CancelResponse{
		Window:        r.Window.String(),
		RefundPercent: r.RefundPercent,
		RefundCents:   r.RefundCents,
	}
}

type AvailabilityResponse struct {
	Slots []queries.AvailableSlotView `json:"slots"`
}
