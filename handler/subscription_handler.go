package handler

import (
	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subs *usecase.SubscriptionService
}

func NewSubscriptionHandler(subs *usecase.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

func (h *SubscriptionHandler) Entitlement(c *gin.Context) {
	id := middleware.Identity(c)
	sub, err := h.subs.Subscription(c.Request.Context(), id.UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToEntitlementResponse(sub))
}

func (h *SubscriptionHandler) Purchases(c *gin.Context) {
	purchases, err := h.subs.ListPurchases(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, purchases)
}
