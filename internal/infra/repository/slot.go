package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/slot"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type SlotRepository struct {
	dbtx db.DBTX
}

func NewSlotRepository(dbtx db.DBTX) *SlotRepository {
	return &SlotRepository{dbtx: dbtx}
}

const insertSlotQuery = `
INSERT INTO table_slots (id, restaurant_id, table_id, slot_date, start_time, end_time, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (table_id, slot_date, start_time) DO NOTHING
`

func (r *SlotRepository) InsertBatch(ctx context.Context, slots []*slot.Slot) (int64, error) {
	var inserted int64
	for _, s := range slots {
		tag, err := r.dbtx.Exec(ctx, insertSlotQuery,
			pgconv.UUIDToPgtype(s.ID()),
			pgconv.UUIDToPgtype(s.RestaurantID()),
			pgconv.UUIDToPgtype(s.TableID()),
			pgconv.DateToPgtype(s.Date()),
			pgconv.TimeToPgtype(s.Window().Start()),
			pgconv.TimeToPgtype(s.Window().End()),
			s.Status().String(),
		)
		if err != nil {
			return inserted, classify("failed to insert slot", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// Hold flips AVAILABLE -> HELD. The status guard in the WHERE clause makes
// this the single authority on hold exclusivity.
func (r *SlotRepository) Hold(ctx context.Context, slotID uuid.UUID, expiresAt time.Time) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'HELD', hold_expires_at = $2
		WHERE id = $1 AND status = 'AVAILABLE'
	`, pgconv.UUIDToPgtype(slotID), pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return false, classify("failed to hold slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) HoldMany(ctx context.Context, slotIDs []uuid.UUID, expiresAt time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'HELD', hold_expires_at = $2
		WHERE id = ANY($1) AND status = 'AVAILABLE'
	`, uuidArray(slotIDs), pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return 0, classify("failed to hold slots", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) ConfirmHeld(ctx context.Context, slotID, reservationID uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'RESERVED', reservation_id = $2, hold_expires_at = NULL
		WHERE id = $1 AND status = 'HELD' AND hold_expires_at > $3
	`, pgconv.UUIDToPgtype(slotID), pgconv.UUIDToPgtype(reservationID), pgconv.TimeToPgtype(now))
	if err != nil {
		return false, classify("failed to confirm held slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) ConfirmHeldMany(ctx context.Context, slotIDs []uuid.UUID, reservationID uuid.UUID, now time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'RESERVED', reservation_id = $2, hold_expires_at = NULL
		WHERE id = ANY($1) AND status = 'HELD' AND hold_expires_at > $3
	`, uuidArray(slotIDs), pgconv.UUIDToPgtype(reservationID), pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, classify("failed to confirm held slots", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) ReserveAvailable(ctx context.Context, slotID, reservationID uuid.UUID) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'RESERVED', reservation_id = $2
		WHERE id = $1 AND status = 'AVAILABLE'
	`, pgconv.UUIDToPgtype(slotID), pgconv.UUIDToPgtype(reservationID))
	if err != nil {
		return false, classify("failed to reserve slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) Release(ctx context.Context, slotID uuid.UUID) error {
	_, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'AVAILABLE', hold_expires_at = NULL, reservation_id = NULL
		WHERE id = $1
	`, pgconv.UUIDToPgtype(slotID))
	if err != nil {
		return classify("failed to release slot", err)
	}
	return nil
}

func (r *SlotRepository) ReleaseReserved(ctx context.Context, slotID, reservationID uuid.UUID) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'AVAILABLE', hold_expires_at = NULL, reservation_id = NULL
		WHERE id = $1 AND status = 'RESERVED' AND reservation_id = $2
	`, pgconv.UUIDToPgtype(slotID), pgconv.UUIDToPgtype(reservationID))
	if err != nil {
		return false, classify("failed to release reserved slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) ReleaseReservedMany(ctx context.Context, slotIDs []uuid.UUID, reservationID uuid.UUID) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'AVAILABLE', hold_expires_at = NULL, reservation_id = NULL
		WHERE id = ANY($1) AND status = 'RESERVED' AND reservation_id = $2
	`, uuidArray(slotIDs), pgconv.UUIDToPgtype(reservationID))
	if err != nil {
		return 0, classify("failed to release reserved slots", err)
	}
	return tag.RowsAffected(), nil
}

// ExpireHolds also reclaims HELD rows with no expiry at all; those are
// invariant violations and treating them as expired is the safe direction.
func (r *SlotRepository) ExpireHolds(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_slots
		SET status = 'AVAILABLE', hold_expires_at = NULL
		WHERE status = 'HELD' AND (hold_expires_at IS NULL OR hold_expires_at <= $1)
	`, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, classify("failed to expire held slots", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) DeletePastUnused(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		DELETE FROM table_slots
		WHERE end_time < $1
		  AND reservation_id IS NULL
		  AND status IN ('AVAILABLE', 'BLOCKED', 'MAINTENANCE')
		  AND NOT EXISTS (
			SELECT 1 FROM reservation_table_holds h WHERE h.slot_id = table_slots.id
		  )
	`, pgconv.TimeToPgtype(before))
	if err != nil {
		return 0, classify("failed to delete past slots", err)
	}
	return tag.RowsAffected(), nil
}
