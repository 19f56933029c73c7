package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tablebook/internal/domain/slot"
	"tablebook/internal/domain/table"
	"tablebook/internal/domain/tableset"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type HoldService struct {
	uow     shared.UnitOfWork
	clock   Clock
	cache   AvailabilityCache
	booking config.BookingConfig
	logger  *slog.Logger
}

func NewHoldService(uow shared.UnitOfWork, clock Clock, cache AvailabilityCache, booking config.BookingConfig, logger *slog.Logger) *HoldService {
	return &HoldService{uow: uow, clock: clock, cache: cache, booking: booking, logger: logger}
}

type FindHoldInput struct {
	RestaurantID uuid.UUID
	SectionID    *uuid.UUID
	Date         time.Time
	StartTime    time.Time
	PartySize    int
}

type HoldResult struct {
	SlotID     uuid.UUID
	TableID    uuid.UUID
	TableSetID *uuid.UUID
	// MemberSlotIDs is populated for merged holds, primary slot first.
	MemberSlotIDs []uuid.UUID
	ExpiresAt     time.Time
}

// FindAndHoldBestSlot walks capacity-fitting tables smallest-sufficient-first
// and takes the first AVAILABLE, non-conflicting slot with an atomic
// status-guarded flip to HELD. Losing a flip to a concurrent caller just
// moves on to the next candidate. When no single table fits it tries merging
// adjacent tables, and as a last resort searches every active table largest
// first with no capacity filter, so a party is seated somewhere before it is
// turned away.
func (s *HoldService) FindAndHoldBestSlot(ctx context.Context, in FindHoldInput) (*HoldResult, error) {
	now := s.clock.Now()
	dwell, holdFor, err := s.bookingParams(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(holdFor)

	reads := s.uow.Reads()
	snapshots, err := reads.CandidateTables(ctx, in.RestaurantID, in.SectionID)
	if err != nil {
		return nil, err
	}
	scoped := toDomainTables(snapshots)

	fitting := make([]table.Table, 0, len(scoped))
	for _, t := range scoped {
		if t.SeatingCapacity >= in.PartySize {
			fitting = append(fitting, t)
		}
	}
	table.SortBySmallestFit(fitting)

	if res, err := s.holdFirstFit(ctx, fitting, in, now, dwell, expiresAt); err != nil || res != nil {
		return res, err
	}

	all := scoped
	if in.SectionID != nil {
		wide, err := reads.CandidateTables(ctx, in.RestaurantID, nil)
		if err != nil {
			return nil, err
		}
		all = toDomainTables(wide)
	}

	res, mergeErr := s.holdMergedTables(ctx, all, in, now, dwell, expiresAt)
	if res != nil {
		return res, nil
	}
	if mergeErr != nil && !errors.Is(mergeErr, ErrNoTablesAvailable) && !errors.Is(mergeErr, ErrSlotStateConflict) {
		return nil, mergeErr
	}

	// Fallback pass: every active table regardless of section or capacity,
	// larger tables first.
	fallback := append(make([]table.Table, 0, len(all)), all...)
	table.SortByLargestFirst(fallback)
	if res, err := s.holdFirstFit(ctx, fallback, in, now, dwell, expiresAt); err != nil || res != nil {
		return res, err
	}

	if mergeErr != nil && errors.Is(mergeErr, ErrNoTablesAvailable) {
		return nil, mergeErr
	}
	return nil, ErrNoTablesAvailable
}

func (s *HoldService) holdFirstFit(ctx context.Context, candidates []table.Table, in FindHoldInput, now time.Time, dwell time.Duration, expiresAt time.Time) (*HoldResult, error) {
	reads := s.uow.Reads()
	for _, t := range candidates {
		snap, err := reads.AvailableSlotForTableAt(ctx, t.ID, in.Date, in.StartTime)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				continue
			}
			return nil, err
		}
		free, err := s.windowFree(ctx, t.ID, snap, in.Date, now, dwell)
		if err != nil {
			return nil, err
		}
		if !free {
			continue
		}

		var won bool
		err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			won, err = tx.Slots().Hold(ctx, snap.ID, expiresAt)
			if err != nil || !won {
				return err
			}
			return tx.Holds().Create(ctx, shared.HoldRecord{
				ID:        uuid.New(),
				SlotID:    snap.ID,
				ExpiresAt: expiresAt,
			})
		})
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}

		s.invalidate(ctx, in.RestaurantID, in.Date)
		return &HoldResult{SlotID: snap.ID, TableID: t.ID, ExpiresAt: expiresAt}, nil
	}
	return nil, nil
}

// holdMergedTables joins adjacent tables from one merge group when no single
// table fits. All member slots flip to HELD in one transaction or none do.
func (s *HoldService) holdMergedTables(ctx context.Context, tables []table.Table, in FindHoldInput, now time.Time, dwell time.Duration, expiresAt time.Time) (*HoldResult, error) {
	picked, err := table.SelectMergeCandidates(tables, in.PartySize)
	if err != nil {
		return nil, errs.Mark(err, ErrNoTablesAvailable)
	}

	reads := s.uow.Reads()
	members := make([]tableset.Member, 0, len(picked))
	slotIDs := make([]uuid.UUID, 0, len(picked))
	combined := 0
	for _, t := range picked {
		snap, err := reads.AvailableSlotForTableAt(ctx, t.ID, in.Date, in.StartTime)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrNoTablesAvailable
			}
			return nil, err
		}
		free, err := s.windowFree(ctx, t.ID, snap, in.Date, now, dwell)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, ErrNoTablesAvailable
		}
		members = append(members, tableset.Member{
			SlotID:         snap.ID,
			TableID:        t.ID,
			OriginalStatus: snap.Status,
		})
		slotIDs = append(slotIDs, snap.ID)
		combined += t.SeatingCapacity
	}

	// Largest member anchors the set.
	primary := picked[0]
	for _, t := range picked[1:] {
		if t.SeatingCapacity > primary.SeatingCapacity {
			primary = t
		}
	}
	set, err := tableset.NewTableSet(primary.ID, combined, members, expiresAt)
	if err != nil {
		return nil, err
	}

	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		held, err := tx.Slots().HoldMany(ctx, slotIDs, expiresAt)
		if err != nil {
			return err
		}
		if held != int64(len(slotIDs)) {
			return ErrSlotStateConflict
		}
		for _, id := range slotIDs {
			if err := tx.Holds().Create(ctx, shared.HoldRecord{
				ID:        uuid.New(),
				SlotID:    id,
				ExpiresAt: expiresAt,
			}); err != nil {
				return err
			}
		}
		return tx.TableSets().Create(ctx, set)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.RestaurantID, in.Date)
	primarySlot := slotIDs[0]
	for i, m := range members {
		if m.TableID == primary.ID {
			primarySlot = slotIDs[i]
			break
		}
	}
	setID := set.ID()
	return &HoldResult{
		SlotID:        primarySlot,
		TableID:       primary.ID,
		TableSetID:    &setID,
		MemberSlotIDs: slotIDs,
		ExpiresAt:     expiresAt,
	}, nil
}

// ReleaseTableSlot unconditionally resets the slot and removes its hold row.
func (s *HoldService) ReleaseTableSlot(ctx context.Context, slotID uuid.UUID) error {
	snap, err := s.uow.Reads().SlotByID(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Slots().Release(ctx, slotID); err != nil {
			return err
		}
		_, err := tx.Holds().DeleteBySlot(ctx, slotID)
		return err
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, snap.RestaurantID, snap.Date)
	return nil
}

// ValidateHeldSlot distinguishes a missing slot, a slot in some other
// status, and an expired hold. A HELD slot with no expiry is an invariant
// violation; it is logged and reported expired, never honored.
func (s *HoldService) ValidateHeldSlot(ctx context.Context, slotID uuid.UUID) error {
	snap, err := s.uow.Reads().SlotByID(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrHoldNotFound
		}
		return err
	}
	return s.validateHeldSnapshot(snap)
}

func (s *HoldService) validateHeldSnapshot(snap *shared.SlotSnapshot) error {
	if snap.Status != slot.StatusHeld {
		return ErrHoldWrongStatus
	}
	if snap.HoldExpiresAt == nil {
		s.logger.Error("held slot has no expiry timestamp",
			slog.String("slot_id", snap.ID.String()))
		return ErrHoldExpired
	}
	if !snap.HoldExpiresAt.After(s.clock.Now()) {
		return ErrHoldExpired
	}
	return nil
}

// windowFree runs the overlap check for the slot's window against every
// other occupancy on the table, dwell buffer included.
func (s *HoldService) windowFree(ctx context.Context, tableID uuid.UUID, snap *shared.SlotSnapshot, date time.Time, now time.Time, dwell time.Duration) (bool, error) {
	w, err := snap.Window()
	if err != nil {
		return false, err
	}
	occ, err := s.uow.Reads().Occupancies(ctx, tableID, date)
	if err != nil {
		return false, err
	}
	filtered := occ[:0]
	for _, o := range occ {
		if o.SlotID != snap.ID {
			filtered = append(filtered, o)
		}
	}
	return shared.DetectOverlap(now, w, filtered, dwell) == nil, nil
}

func (s *HoldService) bookingParams(ctx context.Context, restaurantID uuid.UUID) (dwell, holdFor time.Duration, err error) {
	dwell = time.Duration(s.booking.DwellTimeMinutes) * time.Minute
	holdFor = time.Duration(s.booking.HoldDurationMinutes) * time.Minute
	settings, err := s.uow.Reads().BookingSettings(ctx, restaurantID)
	if err != nil {
		return 0, 0, err
	}
	if settings != nil {
		dwell = time.Duration(settings.DwellTimeMinutes) * time.Minute
		holdFor = time.Duration(settings.HoldDurationMinutes) * time.Minute
	}
	return dwell, holdFor, nil
}

func (s *HoldService) invalidate(ctx context.Context, restaurantID uuid.UUID, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID, date); err != nil {
		s.logger.Warn("failed to invalidate availability cache",
			slog.String("restaurant_id", restaurantID.String()),
			slog.String("error", err.Error()))
	}
}

func toDomainTables(snapshots []shared.TableSnapshot) []table.Table {
	out := make([]table.Table, 0, len(snapshots))
	for _, t := range snapshots {
		out = append(out, table.Table{
			ID:              t.ID,
			RestaurantID:    t.RestaurantID,
			SectionID:       t.SectionID,
			SeatingCapacity: t.SeatingCapacity,
			MergeGroup:      t.MergeGroup,
			IsActive:        t.IsActive,
		})
	}
	return out
}
