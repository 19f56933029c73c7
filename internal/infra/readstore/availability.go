package readstore

import (
	"context"
	"time"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AvailabilityReadStore struct {
	dbtx db.DBTX
}

func NewAvailabilityReadStore(dbtx db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{dbtx: dbtx}
}

// AvailableSlots lists AVAILABLE slots on the date whose table can seat the
// party, smallest table first so results mirror the hold preference order.
func (r *AvailabilityReadStore) AvailableSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time, minCapacity int) ([]queries.AvailableSlotView, error) {
	rows, err := r.dbtx.Query(ctx, `
		SELECT s.id, s.table_id, t.section_id, t.seating_capacity, s.start_time, s.end_time
		FROM table_slots s
		JOIN restaurant_tables t ON t.id = s.table_id
		WHERE s.restaurant_id = $1
		  AND s.slot_date = $2
		  AND s.status = 'AVAILABLE'
		  AND t.is_active
		  AND t.seating_capacity >= $3
		ORDER BY s.start_time, t.seating_capacity, s.id
	`, pgconv.UUIDToPgtype(restaurantID), pgconv.DateToPgtype(date), minCapacity)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list available slots", err)
	}
	defer rows.Close()

	var out []queries.AvailableSlotView
	for rows.Next() {
		var (
			id, tableID, sectionID pgtype.UUID
			capacity               int
			start, end             pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &tableID, &sectionID, &capacity, &start, &end); err != nil {
			return nil, infra.WrapRepoErr("failed to scan available slot", err)
		}
		out = append(out, queries.AvailableSlotView{
			SlotID:        uuid.UUID(id.Bytes),
			TableID:       uuid.UUID(tableID.Bytes),
			SectionID:     pgconv.UUIDPtrFromPgtype(sectionID),
			TableCapacity: capacity,
			Start:         pgconv.TimeFromPgtype(start),
			End:           pgconv.TimeFromPgtype(end),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read available slots", err)
	}
	return out, nil
}
