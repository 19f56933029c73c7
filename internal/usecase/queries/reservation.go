package queries

import (
	"context"
	"errors"
	"time"

	"tablebook/internal/infra"

	"github.com/google/uuid"
)

var ErrReservationNotFound = errors.New("reservation not found")

type ReservationDetail struct {
	ID                 uuid.UUID  `json:"id"`
	Number             string     `json:"number"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	RestaurantID       uuid.UUID  `json:"restaurant_id"`
	Status             string     `json:"status"`
	Date               time.Time  `json:"date"`
	PartySize          int        `json:"party_size"`
	MealType           string     `json:"meal_type"`
	TableID            uuid.UUID  `json:"table_id"`
	SectionID          *uuid.UUID `json:"section_id,omitempty"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	TableSetID         *uuid.UUID `json:"table_set_id,omitempty"`
	NetCents           int64      `json:"net_cents"`
	ServiceChargeCents int64      `json:"service_charge_cents"`
	TaxCents           int64      `json:"tax_cents"`
	AdvancePaidCents   int64      `json:"advance_paid_cents"`
	TotalCents         int64      `json:"total_cents"`
	BalanceDueCents    int64      `json:"balance_due_cents"`
	IsPaid             bool       `json:"is_paid"`
	CreatedAt          time.Time  `json:"created_at"`
}

type ReservationSummary struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
	PartySize int       `json:"party_size"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type ReservationReadStore interface {
	ReservationDetail(ctx context.Context, id uuid.UUID) (*ReservationDetail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]ReservationSummary, error)
}

type ReservationQueryService struct {
	store ReservationReadStore
}

func NewReservationQueryService(store ReservationReadStore) *ReservationQueryService {
	return &ReservationQueryService{store: store}
}

// GetReservation returns the detail view, scoped to the owning customer.
func (s *ReservationQueryService) GetReservation(ctx context.Context, id, customerID uuid.UUID) (*ReservationDetail, error) {
	detail, err := s.store.ReservationDetail(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if detail.CustomerID != customerID {
		return nil, ErrReservationNotFound
	}
	return detail, nil
}

func (s *ReservationQueryService) ListReservations(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]ReservationSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByCustomer(ctx, customerID, limit, offset)
}
