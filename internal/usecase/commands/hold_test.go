//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tablebook/internal/domain/slot"
	"tablebook/internal/domain/tableset"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBooking() config.BookingConfig {
	return config.BookingConfig{DwellTimeMinutes: 90, HoldDurationMinutes: 10}
}

type fixture struct {
	uow          *fakeUoW
	clock        *clock.MockClock
	holds        *commands.HoldService
	restaurantID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	uow := newFakeUoW()
	mc := clock.NewMockClock(testNow)
	holds := commands.NewHoldService(uow, mc, noopCache{}, testBooking(), testLogger())
	return &fixture{uow: uow, clock: mc, holds: holds, restaurantID: uuid.New()}
}

func (f *fixture) addTable(capacity int, mergeGroup *string) shared.TableSnapshot {
	t := shared.TableSnapshot{
		ID:              uuid.New(),
		RestaurantID:    f.restaurantID,
		SeatingCapacity: capacity,
		MergeGroup:      mergeGroup,
		IsActive:        true,
	}
	f.uow.state.tables = append(f.uow.state.tables, t)
	return t
}

func (f *fixture) addSlot(tableID uuid.UUID, start time.Time, status slot.Status) *shared.SlotSnapshot {
	var capacity int
	for _, t := range f.uow.state.tables {
		if t.ID == tableID {
			capacity = t.SeatingCapacity
		}
	}
	row := &shared.SlotSnapshot{
		ID:            uuid.New(),
		RestaurantID:  f.restaurantID,
		TableID:       tableID,
		TableCapacity: capacity,
		Date:          start.Truncate(24 * time.Hour),
		Start:         start,
		End:           start.Add(2 * time.Hour),
		Status:        status,
	}
	f.uow.state.slots[row.ID] = row
	return row
}

func (f *fixture) findInput(partySize int, start time.Time) commands.FindHoldInput {
	return commands.FindHoldInput{
		RestaurantID: f.restaurantID,
		Date:         start.Truncate(24 * time.Hour),
		StartTime:    start,
		PartySize:    partySize,
	}
}

func TestFindAndHoldBestSlot(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(6 * time.Hour)

	t.Run("smallest sufficient table wins", func(t *testing.T) {
		f := newFixture(t)
		small := f.addTable(2, nil)
		medium := f.addTable(4, nil)
		large := f.addTable(8, nil)
		f.addSlot(small.ID, start, slot.StatusAvailable)
		mediumSlot := f.addSlot(medium.ID, start, slot.StatusAvailable)
		f.addSlot(large.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(4, start))
		require.NoError(t, err)
		assert.Equal(t, medium.ID, res.TableID)
		assert.Equal(t, mediumSlot.ID, res.SlotID)
		assert.Nil(t, res.TableSetID)
		assert.Equal(t, testNow.Add(10*time.Minute), res.ExpiresAt)

		held := f.uow.state.slots[mediumSlot.ID]
		assert.Equal(t, slot.StatusHeld, held.Status)
		require.NotNil(t, held.HoldExpiresAt)
		_, hasHoldRow := f.uow.state.holds[mediumSlot.ID]
		assert.True(t, hasHoldRow)
	})

	t.Run("contended table is skipped", func(t *testing.T) {
		f := newFixture(t)
		small := f.addTable(4, nil)
		large := f.addTable(6, nil)
		f.addSlot(small.ID, start, slot.StatusHeld) // somebody else got here first
		largeSlot := f.addSlot(large.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(4, start))
		require.NoError(t, err)
		assert.Equal(t, largeSlot.ID, res.SlotID)
	})

	t.Run("dwell buffer blocks a tight turnaround", func(t *testing.T) {
		f := newFixture(t)
		busy := f.addTable(4, nil)
		quiet := f.addTable(6, nil)
		// Previous seating on the busy table ends exactly when ours starts;
		// the 90 minute dwell makes that a conflict.
		prev := f.addSlot(busy.ID, start.Add(-2*time.Hour), slot.StatusReserved)
		resID := uuid.New()
		prev.ReservationID = &resID
		f.addSlot(busy.ID, start, slot.StatusAvailable)
		quietSlot := f.addSlot(quiet.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(4, start))
		require.NoError(t, err)
		assert.Equal(t, quietSlot.ID, res.SlotID)
	})

	t.Run("expired hold on another slot does not block", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		stale := f.addSlot(table.ID, start.Add(-time.Hour), slot.StatusHeld)
		expiry := testNow.Add(-time.Minute)
		stale.HoldExpiresAt = &expiry
		target := f.addSlot(table.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(4, start))
		require.NoError(t, err)
		assert.Equal(t, target.ID, res.SlotID)
	})

	t.Run("restaurant settings override hold duration", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		f.addSlot(table.ID, start, slot.StatusAvailable)
		f.uow.state.settings[f.restaurantID] = &shared.BookingSettingsSnapshot{
			RestaurantID:        f.restaurantID,
			DwellTimeMinutes:    30,
			HoldDurationMinutes: 20,
		}

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(4, start))
		require.NoError(t, err)
		assert.Equal(t, testNow.Add(20*time.Minute), res.ExpiresAt)
	})

	t.Run("oversized party merges a group", func(t *testing.T) {
		f := newFixture(t)
		g := "window-row"
		a := f.addTable(4, &g)
		b := f.addTable(6, &g)
		f.addTable(4, nil) // ungrouped, too small anyway
		slotA := f.addSlot(a.ID, start, slot.StatusAvailable)
		slotB := f.addSlot(b.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(9, start))
		require.NoError(t, err)
		require.NotNil(t, res.TableSetID)
		assert.ElementsMatch(t, []uuid.UUID{slotA.ID, slotB.ID}, res.MemberSlotIDs)
		assert.Equal(t, b.ID, res.TableID, "largest member anchors the set")

		for _, id := range res.MemberSlotIDs {
			assert.Equal(t, slot.StatusHeld, f.uow.state.slots[id].Status)
			_, ok := f.uow.state.holds[id]
			assert.True(t, ok)
		}
		set := f.uow.state.tableSets[*res.TableSetID]
		require.NotNil(t, set)
		assert.Equal(t, tableset.StatusPendingMerge, set.Status())
		assert.Equal(t, 10, set.CombinedCapacity())
	})

	t.Run("merge aborts atomically when a member is taken", func(t *testing.T) {
		f := newFixture(t)
		g := "patio"
		a := f.addTable(4, &g)
		b := f.addTable(6, &g)
		slotA := f.addSlot(a.ID, start, slot.StatusAvailable)
		f.addSlot(b.ID, start, slot.StatusAvailable)

		// The second member flip fails inside the transaction.
		f.uow.state.failOn["tablesets.Create"] = assert.AnError

		_, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(9, start))
		require.Error(t, err)

		// Rollback restored every member slot.
		assert.Equal(t, slot.StatusAvailable, f.uow.state.slots[slotA.ID].Status)
		assert.Empty(t, f.uow.state.holds)
		assert.Empty(t, f.uow.state.tableSets)
	})

	t.Run("undersized table still seats the party as a last resort", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		fourTop := f.addSlot(table.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(5, start))
		require.NoError(t, err)
		assert.Equal(t, fourTop.ID, res.SlotID)
		assert.Nil(t, res.TableSetID)
		assert.Equal(t, slot.StatusHeld, f.uow.state.slots[fourTop.ID].Status)
	})

	t.Run("last resort prefers the largest free table", func(t *testing.T) {
		f := newFixture(t)
		small := f.addTable(2, nil)
		large := f.addTable(4, nil)
		f.addSlot(small.ID, start, slot.StatusAvailable)
		largeSlot := f.addSlot(large.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(6, start))
		require.NoError(t, err)
		assert.Equal(t, largeSlot.ID, res.SlotID)
	})

	t.Run("mergeable group wins over an undersized single table", func(t *testing.T) {
		f := newFixture(t)
		g := "terrace"
		a := f.addTable(4, &g)
		b := f.addTable(4, &g)
		lone := f.addTable(6, nil)
		f.addSlot(a.ID, start, slot.StatusAvailable)
		f.addSlot(b.ID, start, slot.StatusAvailable)
		loneSlot := f.addSlot(lone.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(7, start))
		require.NoError(t, err)
		require.NotNil(t, res.TableSetID)
		assert.Equal(t, slot.StatusAvailable, f.uow.state.slots[loneSlot.ID].Status)
	})

	t.Run("nothing can seat the party", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(2, nil)
		taken := f.addSlot(table.ID, start, slot.StatusHeld)
		expiry := testNow.Add(5 * time.Minute)
		taken.HoldExpiresAt = &expiry

		_, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(10, start))
		assert.ErrorIs(t, err, commands.ErrNoTablesAvailable)
	})
}

func TestReleaseTableSlot(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(6 * time.Hour)

	t.Run("release resets slot and removes hold row", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		f.addSlot(table.ID, start, slot.StatusAvailable)

		res, err := f.holds.FindAndHoldBestSlot(ctx, f.findInput(4, start))
		require.NoError(t, err)

		require.NoError(t, f.holds.ReleaseTableSlot(ctx, res.SlotID))
		assert.Equal(t, slot.StatusAvailable, f.uow.state.slots[res.SlotID].Status)
		assert.Nil(t, f.uow.state.slots[res.SlotID].HoldExpiresAt)
		assert.Empty(t, f.uow.state.holds)
	})

	t.Run("unknown slot", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.holds.ReleaseTableSlot(ctx, uuid.New()), commands.ErrSlotNotFound)
	})
}

func TestValidateHeldSlot(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(6 * time.Hour)

	t.Run("live hold", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		row := f.addSlot(table.ID, start, slot.StatusHeld)
		expiry := testNow.Add(5 * time.Minute)
		row.HoldExpiresAt = &expiry

		assert.NoError(t, f.holds.ValidateHeldSlot(ctx, row.ID))
	})

	t.Run("missing slot", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.holds.ValidateHeldSlot(ctx, uuid.New()), commands.ErrHoldNotFound)
	})

	t.Run("wrong status", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		row := f.addSlot(table.ID, start, slot.StatusAvailable)
		assert.ErrorIs(t, f.holds.ValidateHeldSlot(ctx, row.ID), commands.ErrHoldWrongStatus)
	})

	t.Run("expired hold", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		row := f.addSlot(table.ID, start, slot.StatusHeld)
		expiry := testNow.Add(-time.Minute)
		row.HoldExpiresAt = &expiry
		assert.ErrorIs(t, f.holds.ValidateHeldSlot(ctx, row.ID), commands.ErrHoldExpired)
	})

	t.Run("held with no expiry reads expired", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(4, nil)
		row := f.addSlot(table.ID, start, slot.StatusHeld)
		assert.ErrorIs(t, f.holds.ValidateHeldSlot(ctx, row.ID), commands.ErrHoldExpired)
	})
}
