package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// SearchHandler handles full-text search over posts and users
type SearchHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *SearchHandler {
	return &SearchHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterSearchRoutes registers search routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search matches posts by content substring or users by handle and display
// name, selected by the type query param. Defaults to posts.
func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query")
	}

	page, limit := pageParams(c, 20, 50)

	switch c.QueryParam("type") {
	case "users":
		users, total, err := h.userRepository.SearchUsers(query, page, limit)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		compact := make([]models.UserCompact, len(users))
		for i, u := range users {
			compact[i] = u.ToCompact()
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success":    true,
			"data":       echo.Map{"users": compact},
			"pagination": paginationMeta(page, limit, total),
		})

	case "", "posts":
		skip := int64((page - 1) * limit)
		posts, total, err := h.postRepository.SearchPosts(c.Request().Context(), query, skip, int64(limit))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success":    true,
			"data":       echo.Map{"posts": posts},
			"pagination": paginationMeta(page, limit, total),
		})

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid search type")
	}
}
