package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tablebook/internal/domain/slot"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrNoServiceWindows = errors.New("at least one service window is required")

type SlotGenService struct {
	uow    shared.UnitOfWork
	logger *slog.Logger
}

func NewSlotGenService(uow shared.UnitOfWork, logger *slog.Logger) *SlotGenService {
	return &SlotGenService{uow: uow, logger: logger}
}

// ServiceWindow is one bookable window template, applied to every table on
// every date in the range. Times are clock offsets from midnight.
type ServiceWindow struct {
	Start time.Duration
	End   time.Duration
}

type GenerateSlotsInput struct {
	RestaurantID uuid.UUID
	From         time.Time
	To           time.Time
	Windows      []ServiceWindow
}

// GenerateSlots batch-creates AVAILABLE slots for every active table and
// date in [From, To]. Rows that already exist are skipped, so regenerating a
// range never disturbs live slots.
func (s *SlotGenService) GenerateSlots(ctx context.Context, in GenerateSlotsInput) (int64, error) {
	if len(in.Windows) == 0 {
		return 0, ErrNoServiceWindows
	}
	for _, w := range in.Windows {
		if w.End <= w.Start {
			return 0, slot.ErrInvalidWindow
		}
	}

	tables, err := s.uow.Reads().CandidateTables(ctx, in.RestaurantID, nil)
	if err != nil {
		return 0, err
	}

	var slots []*slot.Slot
	from := truncateToDay(in.From)
	to := truncateToDay(in.To)
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		for _, t := range tables {
			for _, sw := range in.Windows {
				w, err := slot.NewWindow(date.Add(sw.Start), date.Add(sw.End))
				if err != nil {
					return 0, err
				}
				slots = append(slots, slot.NewSlot(in.RestaurantID, t.ID, date, w))
			}
		}
	}

	var inserted int64
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		inserted, err = tx.Slots().InsertBatch(ctx, slots)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("generated slots",
		slog.String("restaurant_id", in.RestaurantID.String()),
		slog.Int("candidates", len(slots)),
		slog.Int64("inserted", inserted))
	return inserted, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
