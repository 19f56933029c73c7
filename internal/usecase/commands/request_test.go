//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/domain/request"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/domain/slot"
	"tablebook/internal/domain/tableset"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) requestService() *commands.RequestService {
	return commands.NewRequestService(f.uow, f.clock, f.holds, testLogger())
}

// stageHold puts a live hold on a fresh slot, the precondition for staging a
// request.
func (f *fixture) stageHold(start time.Time) *shared.SlotSnapshot {
	table := f.addTable(4, nil)
	row := f.addSlot(table.ID, start, slot.StatusHeld)
	expiry := testNow.Add(10 * time.Minute)
	row.HoldExpiresAt = &expiry
	f.uow.state.holds[row.ID] = shared.HoldRecord{ID: uuid.New(), SlotID: row.ID, ExpiresAt: expiry}
	return row
}

func createInput(f *fixture, slotRow *shared.SlotSnapshot) commands.CreateRequestInput {
	return commands.CreateRequestInput{
		RestaurantID:  f.restaurantID,
		CustomerID:    uuid.New(),
		HeldSlotID:    slotRow.ID,
		RequestedDate: slotRow.Start.Truncate(24 * time.Hour),
		RequestedTime: slotRow.Start,
		Adults:        2,
		Children:      1,
		ContactName:   "Aiko Tanaka",
		ContactPhone:  "+81-90-0000-0000",
		ContactEmail:  "aiko@example.com",
		MealType:      request.MealTypeDinner,
		EstimateCents: 12000,
	}
}

func TestCreateReservationRequest(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(26 * time.Hour)

	t.Run("stages against a live hold", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		slotRow := f.stageHold(start)

		req, err := svc.CreateReservationRequest(ctx, createInput(f, slotRow))
		require.NoError(t, err)
		assert.Equal(t, request.StatusPending, req.Status())

		stored := f.uow.state.requests[req.ID()]
		require.NotNil(t, stored)
		assert.Equal(t, slotRow.ID, stored.snap.HeldSlotID)
		assert.Equal(t, 3, stored.snap.Adults+stored.snap.Children)
		assert.Equal(t, req.ID(), f.uow.state.holdRequests[slotRow.ID], "hold linked to the request")
	})

	t.Run("requested time drifting from the hold is rejected", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		slotRow := f.stageHold(start)

		in := createInput(f, slotRow)
		in.RequestedTime = slotRow.Start.Add(30 * time.Minute)

		_, err := svc.CreateReservationRequest(ctx, in)
		assert.ErrorIs(t, err, commands.ErrSlotTimingDrift)
		assert.Empty(t, f.uow.state.requests)
	})

	t.Run("requested date drifting from the hold is rejected", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		slotRow := f.stageHold(start)

		in := createInput(f, slotRow)
		in.RequestedDate = in.RequestedDate.AddDate(0, 0, 1)
		in.RequestedTime = in.RequestedTime.AddDate(0, 0, 1)

		_, err := svc.CreateReservationRequest(ctx, in)
		assert.ErrorIs(t, err, commands.ErrSlotTimingDrift)
	})

	t.Run("slot without a hold cannot be staged", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		table := f.addTable(4, nil)
		open := f.addSlot(table.ID, start, slot.StatusAvailable)

		_, err := svc.CreateReservationRequest(ctx, createInput(f, open))
		assert.ErrorIs(t, err, commands.ErrHoldWrongStatus)
	})

	t.Run("unknown slot", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		in := createInput(f, &shared.SlotSnapshot{ID: uuid.New(), Start: start})

		_, err := svc.CreateReservationRequest(ctx, in)
		assert.ErrorIs(t, err, commands.ErrHoldNotFound)
	})

	t.Run("party of only children is rejected", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		slotRow := f.stageHold(start)

		in := createInput(f, slotRow)
		in.Adults = 0
		in.Children = 2

		_, err := svc.CreateReservationRequest(ctx, in)
		assert.ErrorIs(t, err, request.ErrEmptyParty)
	})
}

func TestUpdateReservationDetails(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("party size change within capacity", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		res, _ := f.seedReservation(26*time.Hour, customerID, 0)

		size := 3
		err := svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: res.ID, CustomerID: customerID, PartySize: &size, Note: "one guest dropped",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, f.uow.state.reservations[res.ID].PartySize)
		require.NotEmpty(t, f.uow.state.resEvents)
		assert.Equal(t, "DETAILS_UPDATED", f.uow.state.resEvents[0].Kind)
	})

	t.Run("party size over the table capacity", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		res, _ := f.seedReservation(26*time.Hour, customerID, 0)

		size := 5
		err := svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: res.ID, CustomerID: customerID, PartySize: &size,
		})
		assert.ErrorIs(t, err, commands.ErrPartyExceedsCapacity)
		assert.Equal(t, 4, f.uow.state.reservations[res.ID].PartySize)
	})

	t.Run("merged reservation checks the combined capacity", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		res, slotRow := f.seedReservation(26*time.Hour, customerID, 0)

		set, err := tableset.NewTableSet(slotRow.TableID, 10, []tableset.Member{
			{SlotID: slotRow.ID, TableID: slotRow.TableID, OriginalStatus: slot.StatusAvailable},
		}, testNow.Add(10*time.Minute))
		require.NoError(t, err)
		require.NoError(t, set.Activate(res.ID))
		f.uow.state.tableSets[set.ID()] = set
		setID := set.ID()
		res.TableSetID = &setID

		size := 9
		err = svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: res.ID, CustomerID: customerID, PartySize: &size,
		})
		require.NoError(t, err)
		assert.Equal(t, 9, f.uow.state.reservations[res.ID].PartySize)
	})

	t.Run("note-only update appends an event without touching the party", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		res, _ := f.seedReservation(26*time.Hour, customerID, 0)

		err := svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: res.ID, CustomerID: customerID, Note: "window seat if possible",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, f.uow.state.reservations[res.ID].PartySize)
		require.Len(t, f.uow.state.resEvents, 1)
		assert.Equal(t, "window seat if possible", f.uow.state.resEvents[0].Note)
	})

	t.Run("guards", func(t *testing.T) {
		f := newFixture(t)
		svc := f.requestService()
		res, _ := f.seedReservation(26*time.Hour, customerID, 0)

		err := svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: uuid.New(), CustomerID: customerID,
		})
		assert.ErrorIs(t, err, commands.ErrReservationNotFound)

		err = svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: res.ID, CustomerID: uuid.New(),
		})
		assert.ErrorIs(t, err, commands.ErrNotOwner)

		f.uow.state.reservations[res.ID].Status = reservation.StatusCompleted
		err = svc.UpdateReservationDetails(ctx, commands.UpdateDetailsInput{
			ReservationID: res.ID, CustomerID: customerID,
		})
		assert.ErrorIs(t, err, commands.ErrInvalidStatus)
	})
}
