package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"goaltracker/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"not found", errs.NotFound("goal", "g1"), http.StatusNotFound, "NOT_FOUND", `goal "g1" not found`},
		{"duplicate", errs.Duplicate("journal entry already exists"), http.StatusConflict, "DUPLICATE", "journal entry already exists"},
		{"gate", errs.SubscriptionRequired("premium required"), http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", "premium required"},
		{"quota", fmt.Errorf("wrap: %w", errs.UsageLimitExceeded("no shields")), http.StatusTooManyRequests, "USAGE_LIMIT_EXCEEDED", "wrap: no shields"},
		{"forbidden", errs.Forbidden("not a guardian"), http.StatusForbidden, "FORBIDDEN", "not a guardian"},
		{"payment", errs.UpstreamPayment(errors.New("timeout")), http.StatusBadGateway, "UPSTREAM_PAYMENT_ERROR", "payment provider error: timeout"},
		{"internal", errors.New("socket closed"), http.StatusInternalServerError, "INTERNAL", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}
