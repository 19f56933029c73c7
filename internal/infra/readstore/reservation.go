package readstore

import (
	"context"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationReadStore struct {
	dbtx db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{dbtx: dbtx}
}

func (r *ReservationReadStore) ReservationDetail(ctx context.Context, id uuid.UUID) (*queries.ReservationDetail, error) {
	var (
		resID, customerID, restaurantID pgtype.UUID
		tableID, sectionID, tableSetID  pgtype.UUID
		number, status, mealType        string
		date                            pgtype.Date
		partySize                       int
		net, serviceCharge, tax, adv    int64
		start, end, createdAt           pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT r.id, r.reservation_number, r.customer_id, r.restaurant_id,
		       r.status, r.reservation_date, r.party_size, r.meal_type,
		       r.net_cents, r.service_charge_cents, r.tax_cents, r.advance_paid_cents,
		       a.table_id, a.section_id, a.start_time, a.end_time,
		       r.table_set_id, r.created_at
		FROM reservations r
		JOIN table_assignments a ON a.reservation_id = r.id
		WHERE r.id = $1
	`, pgconv.UUIDToPgtype(id)).Scan(
		&resID, &number, &customerID, &restaurantID,
		&status, &date, &partySize, &mealType,
		&net, &serviceCharge, &tax, &adv,
		&tableID, &sectionID, &start, &end,
		&tableSetID, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read reservation detail", err)
	}

	total := net + serviceCharge + tax
	balance := total - adv
	return &queries.ReservationDetail{
		ID:                 uuid.UUID(resID.Bytes),
		Number:             number,
		CustomerID:         uuid.UUID(customerID.Bytes),
		RestaurantID:       uuid.UUID(restaurantID.Bytes),
		Status:             status,
		Date:               pgconv.DateFromPgtype(date),
		PartySize:          partySize,
		MealType:           mealType,
		TableID:            uuid.UUID(tableID.Bytes),
		SectionID:          pgconv.UUIDPtrFromPgtype(sectionID),
		Start:              pgconv.TimeFromPgtype(start),
		End:                pgconv.TimeFromPgtype(end),
		TableSetID:         pgconv.UUIDPtrFromPgtype(tableSetID),
		NetCents:           net,
		ServiceChargeCents: serviceCharge,
		TaxCents:           tax,
		AdvancePaidCents:   adv,
		TotalCents:         total,
		BalanceDueCents:    balance,
		IsPaid:             balance <= 0,
		CreatedAt:          pgconv.TimeFromPgtype(createdAt),
	}, nil
}

func (r *ReservationReadStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]queries.ReservationSummary, error) {
	rows, err := r.dbtx.Query(ctx, `
		SELECT r.id, r.reservation_number, r.status, r.reservation_date,
		       r.party_size, a.start_time, a.end_time
		FROM reservations r
		JOIN table_assignments a ON a.reservation_id = r.id
		WHERE r.customer_id = $1
		ORDER BY a.start_time DESC
		LIMIT $2 OFFSET $3
	`, pgconv.UUIDToPgtype(customerID), limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var out []queries.ReservationSummary
	for rows.Next() {
		var (
			id         pgtype.UUID
			number     string
			status     string
			date       pgtype.Date
			partySize  int
			start, end pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &number, &status, &date, &partySize, &start, &end); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation summary", err)
		}
		out = append(out, queries.ReservationSummary{
			ID:        uuid.UUID(id.Bytes),
			Number:    number,
			Status:    status,
			Date:      pgconv.DateFromPgtype(date),
			PartySize: partySize,
			Start:     pgconv.TimeFromPgtype(start),
			End:       pgconv.TimeFromPgtype(end),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read reservation summaries", err)
	}
	return out, nil
}
