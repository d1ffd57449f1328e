package middleware

import (
	"net/http"
	"runtime/debug"

	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.Log.WithField("request_id", c.GetString("request_id")).
					WithField("path", c.Request.URL.Path).
					WithField("panic", err).
					WithField("stack", string(debug.Stack())).
					Error("recovered from panic")
				utils.TrackError("panic", "recovered")
				utils.InternalError(c, http.StatusText(http.StatusInternalServerError))
			}
		}()
		c.Next()
	}
}
