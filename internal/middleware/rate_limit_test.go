package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/pkg/config"
)

func setupLimiter(t *testing.T, class string, limit config.RateLimit) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	handler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
	e.GET("/limited", handler, testClaims, RateLimitMiddleware(rdb, class, limit))
	return e, mr
}

// testClaims stands in for the JWT middleware: a numeric X-Test-User header
// becomes the authenticated subject.
func testClaims(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := c.Request().Header.Get("X-Test-User"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err == nil {
				c.Set("user", &models.JwtCustomClaims{UserID: uint(id)})
			}
		}
		return next(c)
	}
}

func doRequest(e *echo.Echo, userID uint) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	e, _ := setupLimiter(t, "posts", config.RateLimit{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		rec := doRequest(e, 42)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	e, _ := setupLimiter(t, "posts", config.RateLimit{Limit: 2, Window: time.Minute})

	doRequest(e, 42)
	doRequest(e, 42)
	rec := doRequest(e, 42)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitIsPerSubject(t *testing.T) {
	e, _ := setupLimiter(t, "posts", config.RateLimit{Limit: 1, Window: time.Minute})

	assert.Equal(t, http.StatusOK, doRequest(e, 1).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(e, 1).Code)

	// A different user has their own window
	assert.Equal(t, http.StatusOK, doRequest(e, 2).Code)
}

func TestRateLimitWindowExpires(t *testing.T) {
	e, mr := setupLimiter(t, "posts", config.RateLimit{Limit: 1, Window: time.Minute})

	assert.Equal(t, http.StatusOK, doRequest(e, 9).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(e, 9).Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doRequest(e, 9).Code)
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	e, mr := setupLimiter(t, "default", config.RateLimit{Limit: 1, Window: time.Minute})

	rec := doRequest(e, 0)
	require.Equal(t, http.StatusOK, rec.Code)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], ":u")
}

func TestRateLimitOpenOnRedisFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, RateLimitMiddleware(rdb, "posts", config.RateLimit{Limit: 1, Window: time.Minute}))

	mr.Close()

	rec := doRequest(e, 42)
	assert.Equal(t, http.StatusOK, rec.Code)
}
