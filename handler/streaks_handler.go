package handler

import (
	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type StreakHandler struct {
	streaks *usecase.StreakService
}

func NewStreakHandler(streaks *usecase.StreakService) *StreakHandler {
	return &StreakHandler{streaks: streaks}
}

func (h *StreakHandler) UserStreak(c *gin.Context) {
	info, err := h.streaks.UserStreak(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToStreakResponse(info))
}

func (h *StreakHandler) ListStreaks(c *gin.Context) {
	infos, err := h.streaks.ListStreaks(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToStreakResponses(infos))
}

func (h *StreakHandler) ApplyShield(c *gin.Context) {
	// Bind request body
	var req dto.ShieldRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	day, ok := date(c, "date", req.Date)
	if !ok {
		return
	}

	shield, err := h.streaks.ApplyShield(c.Request.Context(), middleware.Identity(c), day)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, shield)
}
