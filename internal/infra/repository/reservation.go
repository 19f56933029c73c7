package repository

import (
	"context"

	"tablebook/internal/domain/reservation"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ReservationRepository struct {
	dbtx db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{dbtx: dbtx}
}

// Create persists the reservation row and its table assignment together.
// The unique index on reservation_number turns a generator collision into a
// DUPLICATE_KEY error the caller retries with a fresh number.
func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	fin := res.Financials()
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO reservations (
			id, reservation_number, request_id, customer_id, restaurant_id,
			reservation_date, party_size, meal_type,
			net_cents, service_charge_cents, tax_cents, advance_paid_cents,
			status, table_set_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		pgconv.UUIDToPgtype(res.ID()),
		res.Number(),
		pgconv.UUIDToPgtype(res.RequestID()),
		pgconv.UUIDToPgtype(res.CustomerID()),
		pgconv.UUIDToPgtype(res.RestaurantID()),
		pgconv.DateToPgtype(res.Date()),
		res.PartySize(),
		res.MealType(),
		fin.Net().Cents(),
		fin.ServiceCharge().Cents(),
		fin.Tax().Cents(),
		fin.AdvancePaid().Cents(),
		res.Status().String(),
		pgconv.UUIDPtrToPgtype(res.TableSetID()),
	)
	if err != nil {
		return classify("failed to create reservation", err)
	}

	a := res.Assignment()
	_, err = r.dbtx.Exec(ctx, `
		INSERT INTO table_assignments (
			reservation_id, table_id, section_id, slot_id, start_time, end_time
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		pgconv.UUIDToPgtype(res.ID()),
		pgconv.UUIDToPgtype(a.TableID),
		pgconv.UUIDPtrToPgtype(a.SectionID),
		pgconv.UUIDToPgtype(a.SlotID),
		pgconv.TimeToPgtype(a.Window.Start()),
		pgconv.TimeToPgtype(a.Window.End()),
	)
	if err != nil {
		return classify("failed to create table assignment", err)
	}
	return nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to reservation.Status) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE reservations
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, pgconv.UUIDToPgtype(id), from.String(), to.String())
	if err != nil {
		return false, classify("failed to update reservation status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepository) UpdateAssignment(ctx context.Context, id uuid.UUID, a reservation.Assignment) error {
	_, err := r.dbtx.Exec(ctx, `
		UPDATE table_assignments
		SET table_id = $2, section_id = $3, slot_id = $4, start_time = $5, end_time = $6
		WHERE reservation_id = $1
	`,
		pgconv.UUIDToPgtype(id),
		pgconv.UUIDToPgtype(a.TableID),
		pgconv.UUIDPtrToPgtype(a.SectionID),
		pgconv.UUIDToPgtype(a.SlotID),
		pgconv.TimeToPgtype(a.Window.Start()),
		pgconv.TimeToPgtype(a.Window.End()),
	)
	if err != nil {
		return classify("failed to update table assignment", err)
	}
	return nil
}

func (r *ReservationRepository) UpdatePartySize(ctx context.Context, id uuid.UUID, partySize int) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE reservations
		SET party_size = $2, updated_at = now()
		WHERE id = $1 AND status = 'CONFIRMED'
	`, pgconv.UUIDToPgtype(id), partySize)
	if err != nil {
		return false, classify("failed to update party size", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepository) AppendEvent(ctx context.Context, reservationID uuid.UUID, kind, note string) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO reservation_events (reservation_id, kind, note)
		VALUES ($1, $2, $3)
	`, pgconv.UUIDToPgtype(reservationID), kind, note)
	if err != nil {
		return classify("failed to append reservation event", err)
	}
	return nil
}
