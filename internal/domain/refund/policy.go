package refund

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNoActivePolicy      = errors.New("restaurant has no active refund policy")
	ErrInvalidThresholds   = errors.New("partial threshold must be below the full-refund threshold")
	ErrIncompletePartial   = errors.New("partial window needs both a threshold and a percentage")
	ErrInvalidPercentage   = errors.New("partial percentage must be between 1 and 99")
)

type WindowType string

const (
	WindowFree     WindowType = "FREE"
	WindowPartial  WindowType = "PARTIAL"
	WindowNoRefund WindowType = "NO_REFUND"
)

func (w WindowType) String() string {
	return string(w)
}

// Policy is a restaurant's time-window refund schedule. The partial window
// is optional; when absent the policy is a two-step FREE/NO_REFUND cliff.
type Policy struct {
	ID                         uuid.UUID
	RestaurantID               uuid.UUID
	FullRefundBeforeMinutes    int
	PartialRefundBeforeMinutes *int
	PartialRefundPercentage    *int
}

func (p Policy) Validate() error {
	if (p.PartialRefundBeforeMinutes == nil) != (p.PartialRefundPercentage == nil) {
		return ErrIncompletePartial
	}
	if p.PartialRefundBeforeMinutes != nil {
		if *p.PartialRefundBeforeMinutes >= p.FullRefundBeforeMinutes {
			return ErrInvalidThresholds
		}
		if *p.PartialRefundPercentage < 1 || *p.PartialRefundPercentage > 99 {
			return ErrInvalidPercentage
		}
	}
	return nil
}

type Outcome struct {
	Window     WindowType
	Percentage int
}

// Evaluate selects exactly one refund window for the given minutes remaining
// until the reservation. The schedule is a non-increasing step function of
// elapsed time: cancelling later never yields a larger refund.
func (p Policy) Evaluate(minutesUntil int64) Outcome {
	if minutesUntil >= int64(p.FullRefundBeforeMinutes) {
		return Outcome{Window: WindowFree, Percentage: 100}
	}
	if p.PartialRefundBeforeMinutes != nil && minutesUntil >= int64(*p.PartialRefundBeforeMinutes) {
		return Outcome{Window: WindowPartial, Percentage: *p.PartialRefundPercentage}
	}
	return Outcome{Window: WindowNoRefund, Percentage: 0}
}

// AmountCents applies the outcome's percentage to the paid total, rounding
// to the nearest whole cent.
func (o Outcome) AmountCents(totalCents int64) int64 {
	if o.Percentage <= 0 {
		return 0
	}
	return (totalCents*int64(o.Percentage) + 50) / 100
}
