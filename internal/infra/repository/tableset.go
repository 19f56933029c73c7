package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/tableset"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type TableSetRepository struct {
	dbtx db.DBTX
}

func NewTableSetRepository(dbtx db.DBTX) *TableSetRepository {
	return &TableSetRepository{dbtx: dbtx}
}

func (r *TableSetRepository) Create(ctx context.Context, ts *tableset.TableSet) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO table_sets (id, primary_table_id, combined_capacity, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		pgconv.UUIDToPgtype(ts.ID()),
		pgconv.UUIDToPgtype(ts.PrimaryTableID()),
		ts.CombinedCapacity(),
		ts.Status().String(),
		pgconv.TimeToPgtype(ts.ExpiresAt()),
	)
	if err != nil {
		return classify("failed to create table set", err)
	}
	for _, m := range ts.Members() {
		_, err = r.dbtx.Exec(ctx, `
			INSERT INTO table_set_members (table_set_id, slot_id, table_id, original_status)
			VALUES ($1, $2, $3, $4)
		`,
			pgconv.UUIDToPgtype(ts.ID()),
			pgconv.UUIDToPgtype(m.SlotID),
			pgconv.UUIDToPgtype(m.TableID),
			m.OriginalStatus.String(),
		)
		if err != nil {
			return classify("failed to create table set member", err)
		}
	}
	return nil
}

func (r *TableSetRepository) Activate(ctx context.Context, id, reservationID uuid.UUID) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_sets
		SET status = 'ACTIVE', reservation_id = $2
		WHERE id = $1 AND status = 'PENDING_MERGE'
	`, pgconv.UUIDToPgtype(id), pgconv.UUIDToPgtype(reservationID))
	if err != nil {
		return false, classify("failed to activate table set", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TableSetRepository) Dissolve(ctx context.Context, id, dissolvedBy uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_sets
		SET status = 'DISSOLVED', dissolved_by = $2, dissolved_at = $3
		WHERE id = $1 AND status IN ('PENDING_MERGE', 'ACTIVE')
	`, pgconv.UUIDToPgtype(id), pgconv.UUIDToPgtype(dissolvedBy), pgconv.TimeToPgtype(at))
	if err != nil {
		return false, classify("failed to dissolve table set", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TableSetRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE table_sets
		SET status = 'EXPIRED'
		WHERE status = 'PENDING_MERGE' AND expires_at <= $1
	`, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, classify("failed to expire pending table sets", err)
	}
	return tag.RowsAffected(), nil
}
