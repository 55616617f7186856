package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/pkg/config"
)

// RateLimitMiddleware enforces a fixed window per action class, keyed by
// the authenticated user id with the client IP as fallback. The counter is
// a Redis INCR whose key expires at the end of the window; if Redis is
// unreachable the request is allowed through.
func RateLimitMiddleware(rdb *redis.Client, class string, limit config.RateLimit) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := c.RealIP()
			if claims, ok := c.Get("user").(*models.JwtCustomClaims); ok {
				subject = fmt.Sprintf("u%d", claims.UserID)
			}

			key := fmt.Sprintf("rl:%s:%s", class, subject)
			ctx := c.Request().Context()

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				rdb.Expire(ctx, key, limit.Window)
			}
			if count > int64(limit.Limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}
