package queries

import (
	"context"
	"log/slog"
	"time"

	"tablebook/internal/domain/slot"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// AvailableSlotView is one bookable slot in a search result.
type AvailableSlotView struct {
	SlotID        uuid.UUID  `json:"slot_id"`
	TableID       uuid.UUID  `json:"table_id"`
	SectionID     *uuid.UUID `json:"section_id,omitempty"`
	TableCapacity int        `json:"table_capacity"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
}

// AvailabilityReadStore lists the candidate slots for a search.
type AvailabilityReadStore interface {
	AvailableSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time, minCapacity int) ([]AvailableSlotView, error)
}

// SearchCache is a read-through cache of search results keyed by restaurant
// and date. Purely an optimization; a miss or error falls through to the
// store.
type SearchCache interface {
	Get(ctx context.Context, restaurantID uuid.UUID, date time.Time, minCapacity int) ([]AvailableSlotView, bool, error)
	Set(ctx context.Context, restaurantID uuid.UUID, date time.Time, minCapacity int, views []AvailableSlotView) error
}

type AvailabilityService struct {
	reads   shared.CommandReads
	store   AvailabilityReadStore
	cache   SearchCache
	booking config.BookingConfig
	logger  *slog.Logger
}

func NewAvailabilityService(
	reads shared.CommandReads,
	store AvailabilityReadStore,
	cache SearchCache,
	booking config.BookingConfig,
	logger *slog.Logger,
) *AvailabilityService {
	return &AvailabilityService{reads: reads, store: store, cache: cache, booking: booking, logger: logger}
}

type SearchInput struct {
	RestaurantID uuid.UUID
	Date         time.Time
	PartySize    int
}

func (s *AvailabilityService) Search(ctx context.Context, in SearchInput) ([]AvailableSlotView, error) {
	if s.cache != nil {
		if views, hit, err := s.cache.Get(ctx, in.RestaurantID, in.Date, in.PartySize); err != nil {
			s.logger.Warn("availability cache read failed", slog.String("error", err.Error()))
		} else if hit {
			return views, nil
		}
	}

	views, err := s.store.AvailableSlots(ctx, in.RestaurantID, in.Date, in.PartySize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, in.RestaurantID, in.Date, in.PartySize, views); err != nil {
			s.logger.Warn("availability cache write failed", slog.String("error", err.Error()))
		}
	}
	return views, nil
}

// HasOverlap reports whether any live occupancy on the table collides with
// the candidate window, before any dwell buffer.
func (s *AvailabilityService) HasOverlap(ctx context.Context, tableID uuid.UUID, date time.Time, w slot.Window, now time.Time) (bool, error) {
	occ, err := s.reads.Occupancies(ctx, tableID, date)
	if err != nil {
		return false, err
	}
	return shared.DetectOverlap(now, w, occ, 0) != nil, nil
}

// CheckDwellTime runs the overlap check with the dwell buffer applied and
// returns the conflicting occupancy (effective end included) rather than a
// bare boolean, so callers can explain the rejection.
func (s *AvailabilityService) CheckDwellTime(ctx context.Context, restaurantID, tableID uuid.UUID, date time.Time, w slot.Window, now time.Time) (*shared.Conflict, error) {
	dwell := time.Duration(s.booking.DwellTimeMinutes) * time.Minute
	settings, err := s.reads.BookingSettings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		dwell = time.Duration(settings.DwellTimeMinutes) * time.Minute
	}

	occ, err := s.reads.Occupancies(ctx, tableID, date)
	if err != nil {
		return nil, err
	}
	return shared.DetectOverlap(now, w, occ, dwell), nil
}
