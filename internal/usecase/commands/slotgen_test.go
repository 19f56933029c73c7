//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/domain/slot"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) slotGenService() *commands.SlotGenService {
	return commands.NewSlotGenService(f.uow, testLogger())
}

func TestGenerateSlots(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	lunch := commands.ServiceWindow{Start: 12 * time.Hour, End: 14 * time.Hour}
	dinner := commands.ServiceWindow{Start: 18 * time.Hour, End: 20 * time.Hour}

	t.Run("covers every table, date, and window", func(t *testing.T) {
		f := newFixture(t)
		svc := f.slotGenService()
		f.addTable(2, nil)
		f.addTable(4, nil)

		inserted, err := svc.GenerateSlots(ctx, commands.GenerateSlotsInput{
			RestaurantID: f.restaurantID,
			From:         from,
			To:           from.AddDate(0, 0, 2),
			Windows:      []commands.ServiceWindow{lunch, dinner},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), inserted, "2 tables x 3 days x 2 windows")
		assert.Len(t, f.uow.state.slots, 12)

		var dinners int
		for _, row := range f.uow.state.slots {
			assert.Equal(t, slot.StatusAvailable, row.Status)
			assert.Equal(t, 2*time.Hour, row.End.Sub(row.Start))
			if row.Start.Hour() == 18 {
				dinners++
			}
		}
		assert.Equal(t, 6, dinners)
	})

	t.Run("regenerating skips rows that already exist", func(t *testing.T) {
		f := newFixture(t)
		svc := f.slotGenService()
		f.addTable(4, nil)

		in := commands.GenerateSlotsInput{
			RestaurantID: f.restaurantID,
			From:         from,
			To:           from,
			Windows:      []commands.ServiceWindow{lunch, dinner},
		}
		_, err := svc.GenerateSlots(ctx, in)
		require.NoError(t, err)

		// A live hold on one of the rows must survive a regenerate.
		var heldID uuid.UUID
		for id, row := range f.uow.state.slots {
			if row.Start.Hour() == 12 {
				row.Status = slot.StatusHeld
				expiry := testNow.Add(10 * time.Minute)
				row.HoldExpiresAt = &expiry
				heldID = id
			}
		}

		inserted, err := svc.GenerateSlots(ctx, in)
		require.NoError(t, err)
		assert.Zero(t, inserted)
		assert.Len(t, f.uow.state.slots, 2)
		assert.Equal(t, slot.StatusHeld, f.uow.state.slots[heldID].Status)
	})

	t.Run("inactive tables are skipped", func(t *testing.T) {
		f := newFixture(t)
		svc := f.slotGenService()
		f.addTable(4, nil)
		f.uow.state.tables = append(f.uow.state.tables, shared.TableSnapshot{
			ID: uuid.New(), RestaurantID: f.restaurantID, SeatingCapacity: 4, IsActive: false,
		})

		inserted, err := svc.GenerateSlots(ctx, commands.GenerateSlotsInput{
			RestaurantID: f.restaurantID,
			From:         from,
			To:           from,
			Windows:      []commands.ServiceWindow{dinner},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), inserted)
	})

	t.Run("input validation", func(t *testing.T) {
		f := newFixture(t)
		svc := f.slotGenService()
		f.addTable(4, nil)

		_, err := svc.GenerateSlots(ctx, commands.GenerateSlotsInput{
			RestaurantID: f.restaurantID, From: from, To: from,
		})
		assert.ErrorIs(t, err, commands.ErrNoServiceWindows)

		_, err = svc.GenerateSlots(ctx, commands.GenerateSlotsInput{
			RestaurantID: f.restaurantID, From: from, To: from,
			Windows: []commands.ServiceWindow{{Start: 14 * time.Hour, End: 12 * time.Hour}},
		})
		assert.ErrorIs(t, err, slot.ErrInvalidWindow)
	})
}
