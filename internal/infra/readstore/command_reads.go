package readstore

import (
	"context"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/slot"
	"tablebook/internal/domain/tableset"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/pgconv"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CommandReads answers the lookups commands need before mutating. On a
// transaction dbtx the reads share its snapshot; on the pool they are plain.
type CommandReads struct {
	dbtx db.DBTX
}

func NewCommandReads(dbtx db.DBTX) *CommandReads {
	return &CommandReads{dbtx: dbtx}
}

const slotSnapshotQuery = `
SELECT s.id, s.restaurant_id, s.table_id, t.section_id, t.seating_capacity,
       s.slot_date, s.start_time, s.end_time, s.status, s.hold_expires_at, s.reservation_id
FROM table_slots s
JOIN restaurant_tables t ON t.id = s.table_id
`

func (r *CommandReads) scanSlot(row interface{ Scan(...any) error }) (*shared.SlotSnapshot, error) {
	var (
		id, restaurantID, tableID pgtype.UUID
		sectionID, reservationID  pgtype.UUID
		capacity                  int
		date                      pgtype.Date
		start, end, holdExpires   pgtype.Timestamptz
		status                    string
	)
	if err := row.Scan(&id, &restaurantID, &tableID, &sectionID, &capacity,
		&date, &start, &end, &status, &holdExpires, &reservationID); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("slot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read slot", err)
	}
	return &shared.SlotSnapshot{
		ID:            uuid.UUID(id.Bytes),
		RestaurantID:  uuid.UUID(restaurantID.Bytes),
		TableID:       uuid.UUID(tableID.Bytes),
		SectionID:     pgconv.UUIDPtrFromPgtype(sectionID),
		TableCapacity: capacity,
		Date:          pgconv.DateFromPgtype(date),
		Start:         pgconv.TimeFromPgtype(start),
		End:           pgconv.TimeFromPgtype(end),
		Status:        slot.Status(status),
		HoldExpiresAt: pgconv.TimePtrFromPgtype(holdExpires),
		ReservationID: pgconv.UUIDPtrFromPgtype(reservationID),
	}, nil
}

func (r *CommandReads) SlotByID(ctx context.Context, id uuid.UUID) (*shared.SlotSnapshot, error) {
	row := r.dbtx.QueryRow(ctx, slotSnapshotQuery+`WHERE s.id = $1`, pgconv.UUIDToPgtype(id))
	return r.scanSlot(row)
}

func (r *CommandReads) SlotByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.SlotSnapshot, error) {
	row := r.dbtx.QueryRow(ctx, slotSnapshotQuery+`WHERE s.id = $1 FOR UPDATE OF s`, pgconv.UUIDToPgtype(id))
	return r.scanSlot(row)
}

func (r *CommandReads) AvailableSlotForTableAt(ctx context.Context, tableID uuid.UUID, date, start time.Time) (*shared.SlotSnapshot, error) {
	row := r.dbtx.QueryRow(ctx, slotSnapshotQuery+`
		WHERE s.table_id = $1 AND s.slot_date = $2 AND s.start_time = $3 AND s.status = 'AVAILABLE'
	`, pgconv.UUIDToPgtype(tableID), pgconv.DateToPgtype(date), pgconv.TimeToPgtype(start))
	return r.scanSlot(row)
}

func (r *CommandReads) CandidateTables(ctx context.Context, restaurantID uuid.UUID, sectionID *uuid.UUID) ([]shared.TableSnapshot, error) {
	rows, err := r.dbtx.Query(ctx, `
		SELECT id, restaurant_id, section_id, seating_capacity, merge_group, is_active
		FROM restaurant_tables
		WHERE restaurant_id = $1
		  AND is_active
		  AND ($2::uuid IS NULL OR section_id = $2)
		ORDER BY seating_capacity, id
	`, pgconv.UUIDToPgtype(restaurantID), pgconv.UUIDPtrToPgtype(sectionID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list candidate tables", err)
	}
	defer rows.Close()

	var out []shared.TableSnapshot
	for rows.Next() {
		var (
			id, restID, secID pgtype.UUID
			capacity          int
			mergeGroup        pgtype.Text
			isActive          bool
		)
		if err := rows.Scan(&id, &restID, &secID, &capacity, &mergeGroup, &isActive); err != nil {
			return nil, infra.WrapRepoErr("failed to scan table", err)
		}
		out = append(out, shared.TableSnapshot{
			ID:              uuid.UUID(id.Bytes),
			RestaurantID:    uuid.UUID(restID.Bytes),
			SectionID:       pgconv.UUIDPtrFromPgtype(secID),
			SeatingCapacity: capacity,
			MergeGroup:      pgconv.StringPtrFromPgtype(mergeGroup),
			IsActive:        isActive,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read candidate tables", err)
	}
	return out, nil
}

func (r *CommandReads) Occupancies(ctx context.Context, tableID uuid.UUID, date time.Time) ([]shared.Occupancy, error) {
	rows, err := r.dbtx.Query(ctx, `
		SELECT id, status, start_time, end_time, hold_expires_at, reservation_id
		FROM table_slots
		WHERE table_id = $1 AND slot_date = $2
		  AND status IN ('HELD', 'RESERVED', 'BLOCKED', 'MAINTENANCE')
		ORDER BY start_time
	`, pgconv.UUIDToPgtype(tableID), pgconv.DateToPgtype(date))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list occupancies", err)
	}
	defer rows.Close()

	var out []shared.Occupancy
	for rows.Next() {
		var (
			id, reservationID       pgtype.UUID
			status                  string
			start, end, holdExpires pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &status, &start, &end, &holdExpires, &reservationID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan occupancy", err)
		}
		out = append(out, shared.Occupancy{
			SlotID:        uuid.UUID(id.Bytes),
			Status:        slot.Status(status),
			Start:         pgconv.TimeFromPgtype(start),
			End:           pgconv.TimeFromPgtype(end),
			HoldExpiresAt: pgconv.TimePtrFromPgtype(holdExpires),
			ReservationID: pgconv.UUIDPtrFromPgtype(reservationID),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read occupancies", err)
	}
	return out, nil
}

func (r *CommandReads) HoldBySlotID(ctx context.Context, slotID uuid.UUID) (*shared.HoldSnapshot, error) {
	var (
		id, slotPg, requestID pgtype.UUID
		expiresAt             pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT id, slot_id, request_id, expires_at
		FROM reservation_table_holds
		WHERE slot_id = $1
	`, pgconv.UUIDToPgtype(slotID)).Scan(&id, &slotPg, &requestID, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("hold not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read hold", err)
	}
	return &shared.HoldSnapshot{
		ID:        uuid.UUID(id.Bytes),
		SlotID:    uuid.UUID(slotPg.Bytes),
		RequestID: pgconv.UUIDPtrFromPgtype(requestID),
		ExpiresAt: pgconv.TimeFromPgtype(expiresAt),
	}, nil
}

func (r *CommandReads) RequestByID(ctx context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	var (
		reqID, restaurantID, customerID, heldSlotID pgtype.UUID
		requestedDate                               pgtype.Date
		requestedTime                               pgtype.Timestamptz
		adults, children                            int
		mealType, status                            string
		estimateCents                               int64
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT id, restaurant_id, customer_id, held_slot_id,
		       requested_date, requested_time, adult_count, child_count,
		       meal_type, estimate_cents, status
		FROM reservation_requests
		WHERE id = $1
	`, pgconv.UUIDToPgtype(id)).Scan(
		&reqID, &restaurantID, &customerID, &heldSlotID,
		&requestedDate, &requestedTime, &adults, &children,
		&mealType, &estimateCents, &status,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read request", err)
	}
	return &shared.RequestSnapshot{
		ID:            uuid.UUID(reqID.Bytes),
		RestaurantID:  uuid.UUID(restaurantID.Bytes),
		CustomerID:    uuid.UUID(customerID.Bytes),
		HeldSlotID:    uuid.UUID(heldSlotID.Bytes),
		RequestedDate: pgconv.DateFromPgtype(requestedDate),
		RequestedTime: pgconv.TimeFromPgtype(requestedTime),
		Adults:        adults,
		Children:      children,
		MealType:      request.MealType(mealType),
		EstimateCents: estimateCents,
		Status:        request.Status(status),
	}, nil
}

const reservationSnapshotQuery = `
SELECT r.id, r.reservation_number, r.request_id, r.customer_id, r.restaurant_id,
       r.status, r.party_size,
       r.net_cents + r.service_charge_cents + r.tax_cents AS total_cents,
       r.advance_paid_cents,
       a.table_id, a.section_id, a.slot_id, a.start_time, a.end_time,
       r.table_set_id
FROM reservations r
JOIN table_assignments a ON a.reservation_id = r.id
`

func (r *CommandReads) scanReservation(row interface{ Scan(...any) error }) (*shared.ReservationSnapshot, error) {
	var (
		id, requestID, customerID, restaurantID pgtype.UUID
		tableID, sectionID, slotID, tableSetID  pgtype.UUID
		number, status                          string
		partySize                               int
		totalCents, advanceCents                int64
		start, end                              pgtype.Timestamptz
	)
	if err := row.Scan(&id, &number, &requestID, &customerID, &restaurantID,
		&status, &partySize, &totalCents, &advanceCents,
		&tableID, &sectionID, &slotID, &start, &end, &tableSetID); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read reservation", err)
	}
	return &shared.ReservationSnapshot{
		ID:               uuid.UUID(id.Bytes),
		Number:           number,
		RequestID:        uuid.UUID(requestID.Bytes),
		CustomerID:       uuid.UUID(customerID.Bytes),
		RestaurantID:     uuid.UUID(restaurantID.Bytes),
		Status:           reservation.Status(status),
		PartySize:        partySize,
		TotalCents:       totalCents,
		AdvancePaidCents: advanceCents,
		TableID:          uuid.UUID(tableID.Bytes),
		SectionID:        pgconv.UUIDPtrFromPgtype(sectionID),
		SlotID:           uuid.UUID(slotID.Bytes),
		Start:            pgconv.TimeFromPgtype(start),
		End:              pgconv.TimeFromPgtype(end),
		TableSetID:       pgconv.UUIDPtrFromPgtype(tableSetID),
	}, nil
}

func (r *CommandReads) ReservationByID(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	row := r.dbtx.QueryRow(ctx, reservationSnapshotQuery+`WHERE r.id = $1`, pgconv.UUIDToPgtype(id))
	return r.scanReservation(row)
}

func (r *CommandReads) ReservationByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	row := r.dbtx.QueryRow(ctx, reservationSnapshotQuery+`WHERE r.id = $1 FOR UPDATE OF r`, pgconv.UUIDToPgtype(id))
	return r.scanReservation(row)
}

func (r *CommandReads) ActiveTableSetByReservation(ctx context.Context, reservationID uuid.UUID) (*tableset.TableSet, error) {
	var (
		id, resID, primaryTableID pgtype.UUID
		dissolvedBy               pgtype.UUID
		capacity                  int
		status                    string
		expiresAt, dissolvedAt    pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT id, reservation_id, primary_table_id, combined_capacity,
		       status, expires_at, dissolved_at, dissolved_by
		FROM table_sets
		WHERE reservation_id = $1 AND status = 'ACTIVE'
		FOR UPDATE
	`, pgconv.UUIDToPgtype(reservationID)).Scan(
		&id, &resID, &primaryTableID, &capacity,
		&status, &expiresAt, &dissolvedAt, &dissolvedBy,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("active table set not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read table set", err)
	}

	members, err := r.tableSetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return tableset.ReconstructTableSet(
		uuid.UUID(id.Bytes),
		pgconv.UUIDPtrFromPgtype(resID),
		uuid.UUID(primaryTableID.Bytes),
		capacity,
		members,
		tableset.Status(status),
		pgconv.TimeFromPgtype(expiresAt),
		pgconv.TimePtrFromPgtype(dissolvedAt),
		pgconv.UUIDPtrFromPgtype(dissolvedBy),
	), nil
}

func (r *CommandReads) PendingTableSetBySlot(ctx context.Context, slotID uuid.UUID) (*tableset.TableSet, error) {
	var (
		id, resID, primaryTableID pgtype.UUID
		dissolvedBy               pgtype.UUID
		capacity                  int
		status                    string
		expiresAt, dissolvedAt    pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT ts.id, ts.reservation_id, ts.primary_table_id, ts.combined_capacity,
		       ts.status, ts.expires_at, ts.dissolved_at, ts.dissolved_by
		FROM table_sets ts
		JOIN table_set_members m ON m.table_set_id = ts.id
		WHERE m.slot_id = $1 AND ts.status = 'PENDING_MERGE'
	`, pgconv.UUIDToPgtype(slotID)).Scan(
		&id, &resID, &primaryTableID, &capacity,
		&status, &expiresAt, &dissolvedAt, &dissolvedBy,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to read pending table set", err)
	}

	members, err := r.tableSetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return tableset.ReconstructTableSet(
		uuid.UUID(id.Bytes),
		pgconv.UUIDPtrFromPgtype(resID),
		uuid.UUID(primaryTableID.Bytes),
		capacity,
		members,
		tableset.Status(status),
		pgconv.TimeFromPgtype(expiresAt),
		pgconv.TimePtrFromPgtype(dissolvedAt),
		pgconv.UUIDPtrFromPgtype(dissolvedBy),
	), nil
}

func (r *CommandReads) tableSetMembers(ctx context.Context, setID pgtype.UUID) ([]tableset.Member, error) {
	rows, err := r.dbtx.Query(ctx, `
		SELECT slot_id, table_id, original_status
		FROM table_set_members
		WHERE table_set_id = $1
	`, setID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list table set members", err)
	}
	defer rows.Close()

	var members []tableset.Member
	for rows.Next() {
		var (
			slotID, tableID pgtype.UUID
			origStatus      string
		)
		if err := rows.Scan(&slotID, &tableID, &origStatus); err != nil {
			return nil, infra.WrapRepoErr("failed to scan table set member", err)
		}
		members = append(members, tableset.Member{
			SlotID:         uuid.UUID(slotID.Bytes),
			TableID:        uuid.UUID(tableID.Bytes),
			OriginalStatus: slot.Status(origStatus),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read table set members", err)
	}
	return members, nil
}

func (r *CommandReads) PendingCancellationExists(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.dbtx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM cancellation_requests
			WHERE reservation_id = $1 AND status = 'APPROVED_PENDING_REFUND'
		)
	`, pgconv.UUIDToPgtype(reservationID)).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check pending cancellation", err)
	}
	return exists, nil
}

func (r *CommandReads) ActiveRefundPolicy(ctx context.Context, restaurantID uuid.UUID) (*shared.RefundPolicySnapshot, error) {
	var (
		id, restID    pgtype.UUID
		fullBefore    int
		partialBefore pgtype.Int4
		partialPct    pgtype.Int4
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT id, restaurant_id, full_refund_before_minutes,
		       partial_refund_before_minutes, partial_refund_percentage
		FROM refund_policies
		WHERE restaurant_id = $1 AND is_active
	`, pgconv.UUIDToPgtype(restaurantID)).Scan(
		&id, &restID, &fullBefore, &partialBefore, &partialPct,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("refund policy not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read refund policy", err)
	}
	return &shared.RefundPolicySnapshot{
		ID:                         uuid.UUID(id.Bytes),
		RestaurantID:               uuid.UUID(restID.Bytes),
		FullRefundBeforeMinutes:    fullBefore,
		PartialRefundBeforeMinutes: intPtr(partialBefore),
		PartialRefundPercentage:    intPtr(partialPct),
	}, nil
}

func (r *CommandReads) BookingSettings(ctx context.Context, restaurantID uuid.UUID) (*shared.BookingSettingsSnapshot, error) {
	var (
		restID                    pgtype.UUID
		dwellMin, holdMin, advPct int
		requireAdvance            bool
	)
	err := r.dbtx.QueryRow(ctx, `
		SELECT restaurant_id, dwell_time_minutes, hold_duration_minutes,
		       require_advance, advance_percent
		FROM booking_settings
		WHERE restaurant_id = $1
	`, pgconv.UUIDToPgtype(restaurantID)).Scan(
		&restID, &dwellMin, &holdMin, &requireAdvance, &advPct,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to read booking settings", err)
	}
	return &shared.BookingSettingsSnapshot{
		RestaurantID:        uuid.UUID(restID.Bytes),
		DwellTimeMinutes:    dwellMin,
		HoldDurationMinutes: holdMin,
		RequireAdvance:      requireAdvance,
		AdvancePercent:      advPct,
	}, nil
}

func intPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}
