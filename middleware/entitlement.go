package middleware

import (
	"context"

	"goaltracker/model"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

// EntitlementChecker is satisfied by usecase.SubscriptionService.
type EntitlementChecker interface {
	Require(ctx context.Context, id model.Identity, req usecase.Requirement) error
}

// RequireEntitlement rejects a route group before any handler runs when the
// caller's tier or features do not meet req. It must run after AuthMiddleware.
func RequireEntitlement(checker EntitlementChecker, req usecase.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checker.Require(c.Request.Context(), Identity(c), req); err != nil {
			utils.Fail(c, err)
			return
		}
		c.Next()
	}
}
