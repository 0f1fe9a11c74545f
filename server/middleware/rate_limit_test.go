package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	aierrors "github.com/hrygo/nlcal/server/internal/errors"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	// Keys are independent.
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_KeyBudget(t *testing.T) {
	rl := newRateLimiter(0.001, 1, 2, time.Hour)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	assert.True(t, rl.Allow("b"))
	assert.True(t, rl.Allow("c"))
	assert.Equal(t, 2, rl.limits.Len())
	// "a" was the least recently seen key and got dropped.
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_IdleKeysDropped(t *testing.T) {
	rl := newRateLimiter(0.001, 1, 10, 20*time.Millisecond)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_ManyClientsBounded(t *testing.T) {
	rl := newRateLimiter(1, 1, 100, time.Hour)
	for i := 0; i < 1000; i++ {
		rl.Allow("192.0.2." + strconv.Itoa(i))
	}
	assert.Equal(t, 100, rl.limits.Len())
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(0.001, 1)
	h := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		return rec, h(e.NewContext(req, rec))
	}

	rec, err := call()
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = call()
	assert.True(t, aierrors.IsCode(err, aierrors.ErrCodeRateLimitExceeded))
}
