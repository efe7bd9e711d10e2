package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/grigta/numbering/pkg/logger"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestIDFrom(c.Request.Context()))
	})
	return r
}

func doGet(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok, "third request in window must be rejected")

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok, "new window resets the counter")
}

func TestMemoryLimiter_SweepsStaleKeys(t *testing.T) {
	l := NewMemoryLimiter(1, time.Second)
	now := time.Now()
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "old")
	now = now.Add(5 * time.Second)
	_, _ = l.Allow(context.Background(), "new")

	assert.NotContains(t, l.requests, "old")
	assert.Contains(t, l.requests, "new")
}

func TestRateLimit_Rejects(t *testing.T) {
	limiter := new(MockLimiter)
	limiter.On("Allow", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	w := doGet(newRouter(RateLimit(limiter, time.Minute)), nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := new(MockLimiter)
	limiter.On("Allow", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

	w := doGet(newRouter(RateLimit(limiter, time.Minute)), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	limiter.AssertExpectations(t)
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := newRouter(RequestID())

	w := doGet(r, nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = doGet(r, http.Header{RequestIDHeader: {"given-id"}})
	assert.Equal(t, "given-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "given-id", w.Body.String())

	w = doGet(r, http.Header{"x-request-id": {"lower-id"}})
	assert.Equal(t, "lower-id", w.Body.String())
}

func TestRequestLogger_SkipsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf})

	r := newRouter(RequestID(), RequestLogger(log, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Zero(t, buf.Len())

	doGet(r, nil)
	assert.Contains(t, buf.String(), "Request completed")
	assert.Contains(t, buf.String(), "request_id")
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(DefaultCORSConfig([]string{"https://app.example.com", "https://preview-*"})))
	r.OPTIONS("/ping", func(c *gin.Context) {})

	w := doGet(r, http.Header{"Origin": {"https://app.example.com"}})
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = doGet(r, http.Header{"Origin": {"https://evil.example.org"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://preview-42")
	pre := httptest.NewRecorder()
	r.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Contains(t, pre.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
