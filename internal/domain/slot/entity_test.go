//go:build unit

package slot_test

import (
	"testing"
	"time"

	"tablebook/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heldSlot(t *testing.T, window slot.Window, expiresAt *time.Time) *slot.Slot {
	t.Helper()
	return slot.ReconstructSlot(
		uuid.New(), uuid.New(), uuid.New(),
		window.Start().Truncate(24*time.Hour),
		window,
		slot.StatusHeld,
		expiresAt,
		nil,
	)
}

func TestSlotValidateHeld(t *testing.T) {
	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	w := mustWindow(t, now.Add(time.Hour), now.Add(3*time.Hour))

	t.Run("live hold passes", func(t *testing.T) {
		expiry := now.Add(10 * time.Minute)
		s := heldSlot(t, w, &expiry)
		require.NoError(t, s.ValidateHeld(now))
	})

	t.Run("not held", func(t *testing.T) {
		s := slot.NewSlot(uuid.New(), uuid.New(), now, w)
		assert.ErrorIs(t, s.ValidateHeld(now), slot.ErrNotHeld)
	})

	t.Run("expired hold", func(t *testing.T) {
		expiry := now.Add(-time.Second)
		s := heldSlot(t, w, &expiry)
		assert.ErrorIs(t, s.ValidateHeld(now), slot.ErrHoldExpired)
	})

	t.Run("expiry exactly now counts as expired", func(t *testing.T) {
		expiry := now
		s := heldSlot(t, w, &expiry)
		assert.ErrorIs(t, s.ValidateHeld(now), slot.ErrHoldExpired)
	})

	t.Run("held with missing expiry violates the invariant", func(t *testing.T) {
		s := heldSlot(t, w, nil)
		assert.ErrorIs(t, s.ValidateHeld(now), slot.ErrHoldExpiryMissing)
		assert.True(t, s.HoldExpired(now), "missing expiry must read as expired")
	})
}

func TestSlotOccupiesAt(t *testing.T) {
	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	w := mustWindow(t, now, now.Add(2*time.Hour))
	candidate := mustWindow(t, now.Add(time.Hour), now.Add(3*time.Hour))

	t.Run("fresh slot is available and never occupies", func(t *testing.T) {
		s := slot.NewSlot(uuid.New(), uuid.New(), now, w)
		assert.Equal(t, slot.StatusAvailable, s.Status())
		assert.False(t, s.OccupiesAt(now, candidate))
	})

	t.Run("reserved slot occupies overlapping window", func(t *testing.T) {
		resID := uuid.New()
		s := slot.ReconstructSlot(uuid.New(), uuid.New(), uuid.New(), now, w, slot.StatusReserved, nil, &resID)
		assert.True(t, s.OccupiesAt(now, candidate))
	})

	t.Run("expired hold does not occupy", func(t *testing.T) {
		expiry := now.Add(-time.Minute)
		s := heldSlot(t, w, &expiry)
		assert.False(t, s.OccupiesAt(now, candidate))
	})

	t.Run("live hold occupies", func(t *testing.T) {
		expiry := now.Add(10 * time.Minute)
		s := heldSlot(t, w, &expiry)
		assert.True(t, s.OccupiesAt(now, candidate))
	})

	t.Run("blocked slot occupies without expiry semantics", func(t *testing.T) {
		s := slot.ReconstructSlot(uuid.New(), uuid.New(), uuid.New(), now, w, slot.StatusBlocked, nil, nil)
		assert.True(t, s.OccupiesAt(now, candidate))
	})
}

func TestSlotStatus(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		for _, s := range []slot.Status{
			slot.StatusAvailable, slot.StatusHeld, slot.StatusReserved,
			slot.StatusBlocked, slot.StatusMaintenance,
		} {
			assert.True(t, s.IsValid(), s.String())
		}
		assert.False(t, slot.Status("BOOKED").IsValid())
		assert.False(t, slot.Status("").IsValid())
	})

	t.Run("occupying statuses", func(t *testing.T) {
		assert.False(t, slot.StatusAvailable.Occupying())
		assert.True(t, slot.StatusHeld.Occupying())
		assert.True(t, slot.StatusReserved.Occupying())
		assert.True(t, slot.StatusBlocked.Occupying())
		assert.True(t, slot.StatusMaintenance.Occupying())
	})
}
