package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// PaymentVerifier checks the gateway-side status of an advance payment
// before a reservation is confirmed.
type PaymentVerifier interface {
	VerifyPaid(ctx context.Context, requestID uuid.UUID) (bool, error)
}

// AvailabilityCache invalidates cached availability after slot mutations.
// A nil-safe no-op implementation is acceptable.
type AvailabilityCache interface {
	Invalidate(ctx context.Context, restaurantID uuid.UUID, date time.Time) error
}
