package handlers

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/appforge-dev/chirper/backend/internal/models"
)

// getUserIDFromContext returns the authenticated user's id, or 0 when the
// request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// pageParams clamps page/limit query parameters to sane bounds.
func pageParams(c echo.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}

// paginationMeta builds the standard pagination block.
func paginationMeta(page, limit int, total int64) echo.Map {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": pages,
	}
}
