package tableset

import (
	"errors"
	"time"

	"tablebook/internal/domain/slot"

	"github.com/google/uuid"
)

var (
	ErrNotPending     = errors.New("table set is not pending merge")
	ErrNotDissolvable = errors.New("table set cannot be dissolved in its current status")
	ErrTooFewMembers  = errors.New("table set needs at least one member")
)

type Status string

const (
	StatusPendingMerge Status = "PENDING_MERGE"
	StatusActive       Status = "ACTIVE"
	StatusDissolved    Status = "DISSOLVED"
	StatusExpired      Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingMerge, StatusActive, StatusDissolved, StatusExpired:
		return true
	default:
		return false
	}
}

// Member records one merged slot together with the status its slot had
// before the merge, so a dissolution can restore exactly what it found.
type Member struct {
	SlotID         uuid.UUID
	TableID        uuid.UUID
	OriginalStatus slot.Status
}

// TableSet groups adjacent tables' slots under one assignment for an
// oversized party.
type TableSet struct {
	id               uuid.UUID
	reservationID    *uuid.UUID
	primaryTableID   uuid.UUID
	combinedCapacity int
	members          []Member
	status           Status
	expiresAt        time.Time
	dissolvedAt      *time.Time
	dissolvedBy      *uuid.UUID
}

func NewTableSet(primaryTableID uuid.UUID, combinedCapacity int, members []Member, expiresAt time.Time) (*TableSet, error) {
	if len(members) == 0 {
		return nil, ErrTooFewMembers
	}
	return &TableSet{
		id:               uuid.New(),
		primaryTableID:   primaryTableID,
		combinedCapacity: combinedCapacity,
		members:          members,
		status:           StatusPendingMerge,
		expiresAt:        expiresAt,
	}, nil
}

func ReconstructTableSet(
	id uuid.UUID,
	reservationID *uuid.UUID,
	primaryTableID uuid.UUID,
	combinedCapacity int,
	members []Member,
	status Status,
	expiresAt time.Time,
	dissolvedAt *time.Time,
	dissolvedBy *uuid.UUID,
) *TableSet {
	return &TableSet{
		id:               id,
		reservationID:    reservationID,
		primaryTableID:   primaryTableID,
		combinedCapacity: combinedCapacity,
		members:          members,
		status:           status,
		expiresAt:        expiresAt,
		dissolvedAt:      dissolvedAt,
		dissolvedBy:      dissolvedBy,
	}
}

func (t *TableSet) ID() uuid.UUID             { return t.id }
func (t *TableSet) ReservationID() *uuid.UUID { return t.reservationID }
func (t *TableSet) PrimaryTableID() uuid.UUID { return t.primaryTableID }
func (t *TableSet) CombinedCapacity() int     { return t.combinedCapacity }
func (t *TableSet) Members() []Member         { return t.members }
func (t *TableSet) Status() Status            { return t.status }
func (t *TableSet) ExpiresAt() time.Time      { return t.expiresAt }
func (t *TableSet) DissolvedAt() *time.Time   { return t.dissolvedAt }
func (t *TableSet) DissolvedBy() *uuid.UUID   { return t.dissolvedBy }

func (t *TableSet) SlotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.members))
	for i, m := range t.members {
		ids[i] = m.SlotID
	}
	return ids
}

// Activate binds the set to its confirmed reservation.
func (t *TableSet) Activate(reservationID uuid.UUID) error {
	if t.status != StatusPendingMerge {
		return ErrNotPending
	}
	t.status = StatusActive
	t.reservationID = &reservationID
	return nil
}

// Dissolve ends the merge on cancellation or reassignment. EXPIRED sets stay
// EXPIRED; the two terminal states record why the merge ended.
func (t *TableSet) Dissolve(by uuid.UUID, at time.Time) error {
	if t.status != StatusActive && t.status != StatusPendingMerge {
		return ErrNotDissolvable
	}
	t.status = StatusDissolved
	t.dissolvedAt = &at
	t.dissolvedBy = &by
	return nil
}

// ExpireIfStale moves a pending merge past its deadline to EXPIRED.
func (t *TableSet) ExpireIfStale(now time.Time) bool {
	if t.status != StatusPendingMerge || t.expiresAt.After(now) {
		return false
	}
	t.status = StatusExpired
	return true
}
