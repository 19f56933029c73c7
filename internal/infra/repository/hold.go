package repository

import (
	"context"
	"time"

	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type HoldRepository struct {
	dbtx db.DBTX
}

func NewHoldRepository(dbtx db.DBTX) *HoldRepository {
	return &HoldRepository{dbtx: dbtx}
}

func (r *HoldRepository) Create(ctx context.Context, rec shared.HoldRecord) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO reservation_table_holds (id, slot_id, expires_at)
		VALUES ($1, $2, $3)
	`, pgconv.UUIDToPgtype(rec.ID), pgconv.UUIDToPgtype(rec.SlotID), pgconv.TimeToPgtype(rec.ExpiresAt))
	if err != nil {
		return classify("failed to create hold", err)
	}
	return nil
}

func (r *HoldRepository) AttachRequest(ctx context.Context, slotID, requestID uuid.UUID) error {
	_, err := r.dbtx.Exec(ctx, `
		UPDATE reservation_table_holds SET request_id = $2 WHERE slot_id = $1
	`, pgconv.UUIDToPgtype(slotID), pgconv.UUIDToPgtype(requestID))
	if err != nil {
		return classify("failed to attach request to hold", err)
	}
	return nil
}

func (r *HoldRepository) DeleteBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		DELETE FROM reservation_table_holds WHERE slot_id = $1
	`, pgconv.UUIDToPgtype(slotID))
	if err != nil {
		return 0, classify("failed to delete hold", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HoldRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		DELETE FROM reservation_table_holds WHERE expires_at <= $1
	`, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, classify("failed to delete expired holds", err)
	}
	return tag.RowsAffected(), nil
}
