package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type RequestRepository struct {
	dbtx db.DBTX
}

func NewRequestRepository(dbtx db.DBTX) *RequestRepository {
	return &RequestRepository{dbtx: dbtx}
}

func (r *RequestRepository) Create(ctx context.Context, req *request.Request) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO reservation_requests (
			id, restaurant_id, customer_id, held_slot_id,
			requested_date, requested_time,
			adult_count, child_count,
			contact_name, contact_phone, contact_email,
			meal_type, estimate_cents, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		pgconv.UUIDToPgtype(req.ID()),
		pgconv.UUIDToPgtype(req.RestaurantID()),
		pgconv.UUIDToPgtype(req.CustomerID()),
		pgconv.UUIDToPgtype(req.HeldSlotID()),
		pgconv.DateToPgtype(req.RequestedDate()),
		pgconv.TimeToPgtype(req.RequestedTime()),
		req.Party().Adults(),
		req.Party().Children(),
		req.Contact().Name(),
		req.Contact().Phone(),
		req.Contact().Email(),
		string(req.MealType()),
		req.EstimateCents(),
		req.Status().String(),
	)
	if err != nil {
		return classify("failed to create reservation request", err)
	}
	if td := req.TableDetails(); td != nil {
		_, err = r.dbtx.Exec(ctx, `
			INSERT INTO table_details (
				request_id, preferred_section_id, preferred_table_id,
				section_flexible, time_flexible
			) VALUES ($1, $2, $3, $4, $5)
		`,
			pgconv.UUIDToPgtype(req.ID()),
			pgconv.UUIDPtrToPgtype(td.PreferredSectionID),
			pgconv.UUIDPtrToPgtype(td.PreferredTableID),
			td.SectionFlexible,
			td.TimeFlexible,
		)
		if err != nil {
			return classify("failed to create table details", err)
		}
	}
	return nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to request.Status) (bool, error) {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE reservation_requests
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, pgconv.UUIDToPgtype(id), from.String(), to.String())
	if err != nil {
		return false, classify("failed to update request status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RequestRepository) AppendEvent(ctx context.Context, requestID uuid.UUID, from, to request.Status, note string) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO reservation_request_events (request_id, from_status, to_status, note)
		VALUES ($1, $2, $3, $4)
	`, pgconv.UUIDToPgtype(requestID), from.String(), to.String(), note)
	if err != nil {
		return classify("failed to append request event", err)
	}
	return nil
}

func (r *RequestRepository) ExpireStalePaymentLinks(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.dbtx.Query(ctx, `
		UPDATE reservation_requests
		SET status = 'PAYMENT_LINK_EXPIRED', updated_at = now()
		WHERE status = 'PENDING_CUSTOMER_PAYMENT' AND updated_at <= $1
		RETURNING id
	`, pgconv.TimeToPgtype(cutoff))
	if err != nil {
		return nil, classify("failed to expire stale payment links", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, classify("failed to scan expired request id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to read expired request ids", err)
	}
	return ids, nil
}

func (r *RequestRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.dbtx.Exec(ctx, `
		DELETE FROM reservation_requests
		WHERE status IN ('PAYMENT_LINK_EXPIRED', 'PAYMENT_FAILED', 'CANCELLED')
		  AND updated_at <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM reservations res WHERE res.request_id = reservation_requests.id
		  )
	`, pgconv.TimeToPgtype(cutoff))
	if err != nil {
		return 0, classify("failed to delete stale requests", err)
	}
	return tag.RowsAffected(), nil
}
