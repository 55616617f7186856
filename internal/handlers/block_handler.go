package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// BlockHandler handles block and mute HTTP requests
type BlockHandler struct {
	blockRepository  repositories.BlockRepository
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(blockRepo repositories.BlockRepository, followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *BlockHandler {
	return &BlockHandler{
		blockRepository:  blockRepo,
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterBlockRoutes registers block and mute routes
func (h *BlockHandler) RegisterBlockRoutes(g *echo.Group) {
	g.POST("/users/:handle/block", h.BlockUser)
	g.DELETE("/users/:handle/block", h.UnblockUser)
	g.POST("/users/:handle/mute", h.MuteUser)
	g.DELETE("/users/:handle/mute", h.UnmuteUser)
}

func (h *BlockHandler) resolveTarget(c echo.Context) (*models.User, error) {
	user, err := h.userRepository.GetUserByHandle(c.Param("handle"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}

// BlockUser creates the block edge and removes any follow edges in both
// directions, decrementing the corresponding counters for each edge that
// actually existed.
func (h *BlockHandler) BlockUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if currentUserID == target.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot block yourself")
	}

	isBlocking, err := h.blockRepository.IsBlocking(currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isBlocking {
		return echo.NewHTTPError(http.StatusConflict, "Already blocking this user")
	}

	block := &models.Block{
		BlockerID: currentUserID,
		BlockedID: target.ID,
	}
	if err := h.blockRepository.CreateBlock(block); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Tear down existing follow edges in both directions
	if err := h.followRepository.DeleteFollow(currentUserID, target.ID); err == nil {
		h.userRepository.AdjustFollowingCount(currentUserID, -1)
		h.userRepository.AdjustFollowersCount(target.ID, -1)
	}
	if err := h.followRepository.DeleteFollow(target.ID, currentUserID); err == nil {
		h.userRepository.AdjustFollowingCount(target.ID, -1)
		h.userRepository.AdjustFollowersCount(currentUserID, -1)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"blocking": true}})
}

// UnblockUser removes the block edge.
func (h *BlockHandler) UnblockUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if err := h.blockRepository.DeleteBlock(currentUserID, target.ID); err != nil {
		if err == repositories.ErrEdgeNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Not blocking this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"blocking": false}})
}

// MuteUser suppresses the target from the muter's home timeline only.
func (h *BlockHandler) MuteUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if currentUserID == target.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot mute yourself")
	}

	isMuting, err := h.blockRepository.IsMuting(currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isMuting {
		return echo.NewHTTPError(http.StatusConflict, "Already muting this user")
	}

	mute := &models.Mute{
		MuterID: currentUserID,
		MutedID: target.ID,
	}
	if err := h.blockRepository.CreateMute(mute); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"muting": true}})
}

// UnmuteUser removes the mute edge.
func (h *BlockHandler) UnmuteUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.resolveTarget(c)
	if err != nil {
		return err
	}

	if err := h.blockRepository.DeleteMute(currentUserID, target.ID); err != nil {
		if err == repositories.ErrEdgeNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Not muting this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"muting": false}})
}
