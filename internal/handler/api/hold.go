package api

import (
	"net/http"

	reqdto "tablebook/internal/handler/dto/request"
	resdto "tablebook/internal/handler/dto/response"
	"tablebook/internal/handler/httperr"
	"tablebook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HoldHandler struct {
	holds *commands.HoldService
}

func NewHoldHandler(holds *commands.HoldService) *HoldHandler {
	return &HoldHandler{holds: holds}
}

// @Summary Find and hold the best slot
// @Description Place a time-boxed hold on the best-fitting table slot
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.FindHoldRequest true "Hold parameters"
// @Success 201 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /holds [post]
func (h *HoldHandler) Create(c *gin.Context) {
	var req reqdto.FindHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	result, err := h.holds.FindAndHoldBestSlot(c.Request.Context(), commands.FindHoldInput{
		RestaurantID: req.RestaurantID,
		SectionID:    req.SectionID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		PartySize:    req.PartySize,
	})
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromHoldResult(result))
}

// @Summary Release a held slot
// @Description Release a hold and make the slot available again
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /holds/{slotID} [delete]
func (h *HoldHandler) Release(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("slotID"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid slot ID format", nil)
		return
	}

	if err := h.holds.ReleaseTableSlot(c.Request.Context(), slotID); err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
