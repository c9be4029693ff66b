package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"pagecrafter/internal/middleware"
	"pagecrafter/internal/port"
	"pagecrafter/internal/service"
	"pagecrafter/mocks"
)

func rateLimitedRouter(limiter port.RateLimiter, style middleware.ErrorStyle, pre ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(pre...)
	r.Use(middleware.RateLimit(limiter, "generate", style, zap.NewNop()))
	r.POST("/api/generate", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestRateLimit_Allowed(t *testing.T) {
	limiter := new(mocks.MockRateLimiter)
	limiter.On("Allow", mock.Anything, "generate:ip:192.0.2.1").
		Return(port.RateDecision{Allowed: true, Remaining: 4}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", http.NoBody)
	req.RemoteAddr = "192.0.2.1:1234"
	rateLimitedRouter(limiter, middleware.StylePlain).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	limiter.AssertExpectations(t)
}

func TestRateLimit_RejectedPlain(t *testing.T) {
	limiter := new(mocks.MockRateLimiter)
	limiter.On("Allow", mock.Anything, mock.Anything).
		Return(port.RateDecision{Allowed: false, RetryAfter: 2500 * time.Millisecond}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", http.NoBody)
	rateLimitedRouter(limiter, middleware.StylePlain).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.IsType(t, "", resp["error"])
}

func TestRateLimit_RejectedEnvelope(t *testing.T) {
	limiter := new(mocks.MockRateLimiter)
	limiter.On("Allow", mock.Anything, mock.Anything).
		Return(port.RateDecision{Allowed: false, RetryAfter: time.Minute}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", http.NoBody)
	rateLimitedRouter(limiter, middleware.StyleEnvelope).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, false, resp["success"])
	errObj, ok := resp["error"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "RATE_LIMITED", errObj["code"])
}

func TestRateLimit_KeysByUser(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	userID := uuid.New()
	mockAuth.On("ValidateToken", "tok").Return(&service.Claims{UserID: userID}, nil)

	limiter := new(mocks.MockRateLimiter)
	limiter.On("Allow", mock.Anything, "generate:user:"+userID.String()).
		Return(port.RateDecision{Allowed: true}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", http.NoBody)
	req.Header.Set("Authorization", "Bearer tok")
	rateLimitedRouter(limiter, middleware.StylePlain, middleware.OptionalAuth(mockAuth)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	limiter.AssertExpectations(t)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := new(mocks.MockRateLimiter)
	limiter.On("Allow", mock.Anything, mock.Anything).
		Return(port.RateDecision{}, errors.New("redis: connection refused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", http.NoBody)
	rateLimitedRouter(limiter, middleware.StylePlain).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_NilLimiter(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", http.NoBody)
	rateLimitedRouter(nil, middleware.StylePlain).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
