package handler

import (
	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/model"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type GuardianHandler struct {
	guardians *usecase.GuardianService
}

func NewGuardianHandler(guardians *usecase.GuardianService) *GuardianHandler {
	return &GuardianHandler{guardians: guardians}
}

func (h *GuardianHandler) Invite(c *gin.Context) {
	var req dto.InviteGuardianRequest
	if !bind(c, &req) {
		return
	}
	g, err := h.guardians.Invite(c.Request.Context(), middleware.Identity(c), req.GoalID, req.Username)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, g)
}

func (h *GuardianHandler) Accept(c *gin.Context) {
	g, err := h.guardians.Accept(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, g)
}

func (h *GuardianHandler) Revoke(c *gin.Context) {
	g, err := h.guardians.Revoke(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, g)
}

func (h *GuardianHandler) List(c *gin.Context) {
	list, err := h.guardians.List(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, list)
}

func (h *GuardianHandler) SendNudge(c *gin.Context) {
	var req dto.NudgeRequest
	if !bind(c, &req) {
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = model.NudgeMessage
	}

	n, err := h.guardians.SendNudge(c.Request.Context(), middleware.Identity(c), c.Param("id"), kind, req.Message)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, n)
}

func (h *GuardianHandler) ListNudges(c *gin.Context) {
	list, err := h.guardians.ListNudges(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, list)
}
