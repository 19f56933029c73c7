package shared

import (
	"time"

	"tablebook/internal/domain/slot"

	"github.com/google/uuid"
)

// Conflict describes the occupancy that blocks a candidate window.
// EffectiveEnd includes the dwell buffer when one applied.
type Conflict struct {
	SlotID       uuid.UUID
	Status       slot.Status
	Start        time.Time
	End          time.Time
	EffectiveEnd time.Time
}

// DetectOverlap reports the first occupancy whose effective window collides
// with the candidate. Windows are half-open, so back-to-back slots never
// conflict on their shared boundary. Expired holds are treated as free; a
// HELD row with no expiry at all is also treated as free because the sweep
// reclaims it.
//
// The dwell buffer extends each RESERVED occupancy's end so the table has
// turnaround time before the next party.
func DetectOverlap(now time.Time, candidate slot.Window, occupancies []Occupancy, dwell time.Duration) *Conflict {
	for _, occ := range occupancies {
		if occ.Status == slot.StatusHeld {
			if occ.HoldExpiresAt == nil || !occ.HoldExpiresAt.After(now) {
				continue
			}
		}
		w, err := slot.NewWindow(occ.Start, occ.End)
		if err != nil {
			continue
		}
		effective := w
		if occ.Status == slot.StatusReserved && dwell > 0 {
			effective = w.ExtendedBy(dwell)
		}
		if effective.Overlaps(candidate) {
			return &Conflict{
				SlotID:       occ.SlotID,
				Status:       occ.Status,
				Start:        occ.Start,
				End:          occ.End,
				EffectiveEnd: effective.End(),
			}
		}
	}
	return nil
}
