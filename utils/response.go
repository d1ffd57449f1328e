package utils

import (
	"net/http"

	"goaltracker/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  int         `json:"-"`                 // HTTP status code
	Message string      `json:"message,omitempty"` // Optional message
	Error   string      `json:"error,omitempty"`   // Error message
	Code    string      `json:"code,omitempty"`    // Error kind
	Data    interface{} `json:"data,omitempty"`    // Response data
}

// Success responses
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status: http.StatusOK,
		Data:   data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, &Response{
		Status:  http.StatusCreated,
		Message: "Resource created successfully",
		Data:    data,
	})
}

// Error responses
func Unauthorized(c *gin.Context, message string) {
	abortWith(c, http.StatusUnauthorized, errs.KindUnauthorized, message)
}

func BadRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, errs.KindBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	abortWith(c, http.StatusNotFound, errs.KindNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	abortWith(c, http.StatusInternalServerError, errs.KindInternal, message)
}

func TooManyRequests(c *gin.Context, message string) {
	abortWith(c, http.StatusTooManyRequests, errs.KindUsageLimitExceeded, message)
}

func Conflict(c *gin.Context, message string) {
	abortWith(c, http.StatusConflict, errs.KindConflict, message)
}

func Forbidden(c *gin.Context, message string) {
	abortWith(c, http.StatusForbidden, errs.KindForbidden, message)
}

// StatusFor maps an error kind to the HTTP status the API reports for it.
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindDuplicate, errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindSubscriptionRequired:
		return http.StatusPaymentRequired
	case errs.KindUsageLimitExceeded:
		return http.StatusTooManyRequests
	case errs.KindBadRequest:
		return http.StatusBadRequest
	case errs.KindUpstreamPayment:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as a JSON error response. Internal errors are logged and
// reported with a generic message.
func Fail(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := StatusFor(kind)

	message := err.Error()
	if kind == errs.KindInternal {
		Log.WithError(err).
			WithField("request_id", c.GetString("request_id")).
			WithField("path", c.FullPath()).
			Error("request failed")
		message = "internal server error"
	}

	TrackError("api", string(kind))
	abortWith(c, status, kind, message)
}

func abortWith(c *gin.Context, status int, kind errs.Kind, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Status: status,
		Error:  message,
		Code:   string(kind),
	})
}
