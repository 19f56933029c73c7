package repository

import (
	"context"

	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"
	"tablebook/internal/usecase/shared"
)

type CancellationRepository struct {
	dbtx db.DBTX
}

func NewCancellationRepository(dbtx db.DBTX) *CancellationRepository {
	return &CancellationRepository{dbtx: dbtx}
}

func (r *CancellationRepository) CreateRequest(ctx context.Context, rec shared.CancellationRecord) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO cancellation_requests (
			id, reservation_id, customer_id, window_type,
			refund_cents, refund_percent, released_slot_ids, status, requested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		pgconv.UUIDToPgtype(rec.ID),
		pgconv.UUIDToPgtype(rec.ReservationID),
		pgconv.UUIDToPgtype(rec.CustomerID),
		string(rec.WindowType),
		rec.RefundCents,
		rec.RefundPercent,
		uuidArray(rec.ReleasedSlotIDs),
		string(rec.Status),
		pgconv.TimeToPgtype(rec.RequestedAt),
	)
	if err != nil {
		return classify("failed to create cancellation request", err)
	}
	return nil
}

func (r *CancellationRepository) CreateRefund(ctx context.Context, rec shared.RefundRecord) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO refund_transactions (id, cancellation_id, reservation_id, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5)
	`,
		pgconv.UUIDToPgtype(rec.ID),
		pgconv.UUIDToPgtype(rec.CancellationID),
		pgconv.UUIDToPgtype(rec.ReservationID),
		rec.AmountCents,
		string(rec.Status),
	)
	if err != nil {
		return classify("failed to create refund transaction", err)
	}
	return nil
}
