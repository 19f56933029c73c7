package api

import (
	"net/http"
	"strconv"

	"tablebook/internal/domain/request"
	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/handler/middleware"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	requests *commands.RequestService
	confirms *commands.ConfirmService
	cancels  *commands.CancelService
	views    *queries.ReservationQueryService
}

func NewReservationHandler(
	requests *commands.RequestService,
	confirms *commands.ConfirmService,
	cancels *commands.CancelService,
	views *queries.ReservationQueryService,
) *ReservationHandler {
	return &ReservationHandler{requests: requests, confirms: confirms, cancels: cancels, views: views}
}

// @Summary Create reservation request
// @Description Stage a booking against a held slot
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateRequestRequest true "Request payload"
// @Success 201 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /requests [post]
func (h *ReservationHandler) CreateRequest(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}

	var req reqdto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	var details *request.TableDetails
	if req.TableDetails != nil {
		details = &request.TableDetails{
			PreferredSectionID: req.TableDetails.PreferredSectionID,
			PreferredTableID:   req.TableDetails.PreferredTableID,
			SectionFlexible:    req.TableDetails.SectionFlexible,
			TimeFlexible:       req.TableDetails.TimeFlexible,
		}
	}

	created, err := h.requests.CreateReservationRequest(c.Request.Context(), commands.CreateRequestInput{
		RestaurantID:  req.RestaurantID,
		CustomerID:    customerID,
		HeldSlotID:    req.HeldSlotID,
		RequestedDate: req.RequestedDate,
		RequestedTime: req.RequestedTime,
		Adults:        req.Adults,
		Children:      req.Children,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		MealType:      request.MealType(req.MealType),
		EstimateCents: req.EstimateCents,
		TableDetails:  details,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromRequest(created))
}

// @Summary Confirm a reservation
// @Description Turn a staged request into a confirmed reservation
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ConfirmRequest true "Confirm payload"
// @Success 201 {object} resdto.ConfirmResponse
// @Failure 402 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}

	var req reqdto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	result, err := h.confirms.ConfirmTableReservation(c.Request.Context(), commands.ConfirmInput{
		RequestID:  req.RequestID,
		CustomerID: customerID,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromConfirmResult(result))
}

// @Summary Reassign a reservation
// @Description Move a confirmed reservation to a different table slot
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.ReassignRequest true "Reassign payload"
// @Success 204
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/reassign [post]
func (h *ReservationHandler) Reassign(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid reservation ID format", nil)
		return
	}

	var req reqdto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	err = h.confirms.ReassignTableReservation(c.Request.Context(), commands.ReassignInput{
		ReservationID: id,
		CustomerID:    customerID,
		NewTableID:    req.NewTableID,
		NewDate:       req.NewDate,
		NewStart:      req.NewStart,
		Note:          req.Note,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Cancel a reservation
// @Description Cancel a confirmed reservation and compute the refund
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.CancelResponse
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid reservation ID format", nil)
		return
	}

	result, err := h.cancels.ProcessTableCancellation(c.Request.Context(), commands.CancelInput{
		ReservationID: id,
		CustomerID:    customerID,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCancelResult(result))
}

// @Summary Update reservation details
// @Description Edit party size or notes on a confirmed reservation
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateDetailsRequest true "Update payload"
// @Success 204
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /reservations/{id} [patch]
func (h *ReservationHandler) UpdateDetails(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid reservation ID format", nil)
		return
	}

	var req reqdto.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	err = h.requests.UpdateReservationDetails(c.Request.Context(), commands.UpdateDetailsInput{
		ReservationID: id,
		CustomerID:    customerID,
		PartySize:     req.PartySize,
		Note:          req.Note,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get reservation
// @Description Get one reservation owned by the caller
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} queries.ReservationDetail
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid reservation ID format", nil)
		return
	}

	detail, err := h.views.GetReservation(c.Request.Context(), id, customerID)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary List reservations
// @Description List the caller's reservations, newest first
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} queries.ReservationSummary
// @Router /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": "Internal server error"}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	summaries, err := h.views.ListReservations(c.Request.Context(), customerID, limit, offset)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
