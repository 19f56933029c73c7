package api

import (
	"net/http"

	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availability *queries.AvailabilityService
}

func NewAvailabilityHandler(availability *queries.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// @Summary Search availability
// @Description List bookable slots for a restaurant, date and party size
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SearchAvailabilityRequest true "Search parameters"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Router /availability/search [post]
func (h *AvailabilityHandler) Search(c *gin.Context) {
	var req reqdto.SearchAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	views, err := h.availability.Search(c.Request.Context(), queries.SearchInput{
		RestaurantID: req.RestaurantID,
		Date:         req.Date,
		PartySize:    req.PartySize,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.AvailabilityResponse{Slots: views})
}
