package api

import (
	"errors"
	"log/slog"
	"net/http"

	"tablebook/internal/handler/httperr"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type errMapping struct {
	sentinel error
	status   int
	code     string
	message  string
}

var commandErrMappings = []errMapping{
	{commands.ErrNoTablesAvailable, http.StatusConflict, "NO_TABLES_AVAILABLE", "No table can seat the party at the requested time"},
	{commands.ErrSlotNotFound, http.StatusNotFound, "SLOT_NOT_FOUND", "Slot not found"},
	{commands.ErrSlotUnavailable, http.StatusConflict, "SLOT_UNAVAILABLE", "Slot is not available"},
	{commands.ErrHoldNotFound, http.StatusNotFound, "HOLD_NOT_FOUND", "Hold not found"},
	{commands.ErrHoldWrongStatus, http.StatusConflict, "HOLD_WRONG_STATUS", "Slot is not held"},
	{commands.ErrHoldExpired, http.StatusConflict, "HOLD_EXPIRED", "Hold has expired"},
	{commands.ErrRequestNotFound, http.StatusNotFound, "REQUEST_NOT_FOUND", "Reservation request not found"},
	{commands.ErrRequestWrongStatus, http.StatusConflict, "REQUEST_WRONG_STATUS", "Request is not in a confirmable status"},
	{commands.ErrSlotTimingDrift, http.StatusUnprocessableEntity, "SLOT_TIMING_MISMATCH", "Held slot timing does not match the requested date and time"},
	{commands.ErrPaymentNotVerified, http.StatusPaymentRequired, "PAYMENT_NOT_VERIFIED", "Advance payment has not been verified"},
	{commands.ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found"},
	{commands.ErrNotOwner, http.StatusForbidden, "NOT_OWNER", "Resource belongs to another customer"},
	{commands.ErrUnauthorizedCancellation, http.StatusForbidden, "UNAUTHORIZED_CANCELLATION", "Reservation belongs to another customer"},
	{commands.ErrAlreadyCancelled, http.StatusConflict, "ALREADY_CANCELLED", "Reservation is already cancelled"},
	{commands.ErrInvalidStatus, http.StatusConflict, "INVALID_STATUS", "Reservation status does not allow this operation"},
	{commands.ErrPendingCancellationExists, http.StatusConflict, "PENDING_CANCELLATION_EXISTS", "A cancellation is already pending"},
	{commands.ErrReservationInPast, http.StatusUnprocessableEntity, "RESERVATION_IN_PAST", "Reservation start time is in the past"},
	{commands.ErrNoRefundPolicy, http.StatusConflict, "NO_REFUND_POLICY", "Restaurant has no active refund policy"},
	{commands.ErrPartyExceedsCapacity, http.StatusUnprocessableEntity, "PARTY_EXCEEDS_CAPACITY", "Party size exceeds the table capacity"},
	{commands.ErrMergedNotReassignable, http.StatusConflict, "MERGED_NOT_REASSIGNABLE", "Merged table reservations cannot be reassigned"},
	{commands.ErrSlotStateConflict, http.StatusConflict, "CONCURRENT_MODIFICATION", "The slot state changed concurrently, retry the operation"},
	{queries.ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found"},
}

// abortWithUsecaseError translates sentinel errors into the stable error
// envelope. Unknown errors become opaque 500s so storage internals never
// leak to callers.
func abortWithUsecaseError(c *gin.Context, err error) {
	for _, m := range commandErrMappings {
		if errors.Is(err, m.sentinel) {
			httperr.AbortWithError(c, m.status, err, m.code, m.message, nil)
			return
		}
	}
	slog.Error("unhandled usecase error",
		slog.String("path", c.Request.URL.Path),
		slog.Any("stack", errs.ExtractStackLines(err, 10)))
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "Internal server error", nil)
}
