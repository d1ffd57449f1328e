package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/services"
	"goaltracker/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIssuer() *services.TokenIssuer {
	return services.NewTokenIssuer("middleware-secret", "goaltracker", time.Hour, 24*time.Hour)
}

func authRouter(tokens TokenParser, blacklist TokenBlacklist) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(tokens, blacklist))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, Identity(c).UserID)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	issuer := newIssuer()
	blacklist := services.NewLocalTokenBlacklist()
	r := authRouter(issuer, blacklist)

	access, err := issuer.GenerateToken("user-42")
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken("user-42")
	require.NoError(t, err)

	w := get(r, "/me", access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", refresh).Code)

	require.NoError(t, blacklist.Blacklist(context.Background(), access, time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", access).Code)
}

type denyAll struct{}

func (denyAll) Require(context.Context, model.Identity, usecase.Requirement) error {
	return errs.SubscriptionRequired("a premium subscription is required")
}

func TestRequireEntitlementStopsChain(t *testing.T) {
	r := gin.New()
	called := false
	r.GET("/premium", RequireEntitlement(denyAll{}, usecase.Requirement{Tier: model.TierPremium}), func(c *gin.Context) {
		called = true
	})

	w := get(r, "/premium", "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), string(errs.KindSubscriptionRequired))
	assert.False(t, called)
}

func TestRateLimiterPerCaller(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other callers have their own bucket")

	rl.Cleanup()
	assert.Empty(t, rl.limiters)
}

func TestRequestTracingReusesValidID(t *testing.T) {
	r := gin.New()
	r.Use(RequestTracingMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	id := "0b7c1f9e-4a5d-4f3b-9c2e-8d6a1b3c5e7f"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(EnhancedRecoveryMiddleware())
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := get(r, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestCORSAllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{name: "allowed", method: http.MethodGet, origin: "https://app.example.com", wantStatus: http.StatusOK, wantAllow: "https://app.example.com"},
		{name: "unknown origin gets no headers", method: http.MethodGet, origin: "https://evil.example.com", wantStatus: http.StatusOK},
		{name: "preflight allowed", method: http.MethodOptions, origin: "https://app.example.com", wantStatus: http.StatusNoContent, wantAllow: "https://app.example.com"},
		{name: "preflight refused", method: http.MethodOptions, origin: "https://evil.example.com", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestSizeLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimiter(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("tiny"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
