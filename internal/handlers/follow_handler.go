package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	blockRepository  repositories.BlockRepository
	userRepository   repositories.UserRepository
	events           fanout.Emitter
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, blockRepo repositories.BlockRepository, userRepo repositories.UserRepository, events fanout.Emitter) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		blockRepository:  blockRepo,
		userRepository:   userRepo,
		events:           events,
	}
}

// RegisterFollowRoutes registers follow-related routes. The follow action
// carries its own rate limit class.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, followLimit echo.MiddlewareFunc) {
	g.POST("/users/:handle/follow", h.FollowUser, followLimit)
	g.DELETE("/users/:handle/follow", h.UnfollowUser, followLimit)
	g.GET("/users/:handle/followers", h.GetFollowers)
	g.GET("/users/:handle/following", h.GetFollowing)
}

func (h *FollowHandler) resolveTarget(c echo.Context) (*models.User, error) {
	user, err := h.userRepository.GetUserByHandle(c.Param("handle"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}

// FollowUser creates the follow edge and bumps both parties' counters.
// The edge insert and the two counter updates are sequential writes, not a
// transaction.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if currentUserID == target.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	blocked, err := h.blockRepository.IsBlockedEither(currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if blocked {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot follow this user")
	}

	isFollowing, err := h.followRepository.IsFollowing(currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{
		FollowerID:  currentUserID,
		FollowingID: target.ID,
	}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.userRepository.AdjustFollowingCount(currentUserID, 1)
	h.userRepository.AdjustFollowersCount(target.ID, 1)

	h.events.Emit(fanout.Event{
		Type:        models.NotificationFollow,
		ActorID:     currentUserID,
		RecipientID: target.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser removes the edge; the absence of the edge is an error, not
// a no-op.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.DeleteFollow(currentUserID, target.ID); err != nil {
		if err == repositories.ErrEdgeNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Not following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.userRepository.AdjustFollowingCount(currentUserID, -1)
	h.userRepository.AdjustFollowersCount(target.ID, -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// GetFollowers lists a user's followers, newest edge first.
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c, 20, 50)
	users, total, err := h.followRepository.GetFollowers(target.ID, page, limit)
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
}

// GetFollowing lists the users a user follows, newest edge first.
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c, 20, 50)
	users, total, err := h.followRepository.GetFollowing(target.ID, page, limit)
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
}
