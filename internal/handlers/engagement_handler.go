package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// EngagementHandler handles likes, reposts, bookmarks and poll votes
type EngagementHandler struct {
	engagementRepository repositories.EngagementRepository
	postRepository       repositories.PostRepository
	userRepository       repositories.UserRepository
	events               fanout.Emitter
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(
	engagementRepo repositories.EngagementRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	events fanout.Emitter,
) *EngagementHandler {
	return &EngagementHandler{
		engagementRepository: engagementRepo,
		postRepository:       postRepo,
		userRepository:       userRepo,
		events:               events,
	}
}

// RegisterEngagementRoutes registers engagement routes. Likes and reposts
// share the like rate limit class.
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group, likeLimit echo.MiddlewareFunc) {
	g.POST("/posts/:id/like", h.LikePost, likeLimit)
	g.DELETE("/posts/:id/like", h.UnlikePost, likeLimit)
	g.POST("/posts/:id/repost", h.RepostPost, likeLimit)
	g.DELETE("/posts/:id/repost", h.UnrepostPost, likeLimit)
	g.POST("/posts/:id/bookmark", h.BookmarkPost)
	g.DELETE("/posts/:id/bookmark", h.UnbookmarkPost)
	g.GET("/bookmarks", h.ListBookmarks)
	g.POST("/posts/:id/poll/vote", h.VoteOnPoll)
}

func (h *EngagementHandler) livePost(c echo.Context) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil || post.IsDeleted {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return post, nil
}

// LikePost creates the like edge, bumps the post's counter and the
// author's received-likes counter, then emits a like event. The edge and
// the counters are separate writes.
func (h *EngagementHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	hasLiked, err := h.engagementRepository.HasLiked(currentUserID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked")
	}

	like := &models.Like{UserID: currentUserID, PostID: postID}
	if err := h.engagementRepository.CreateLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	h.postRepository.AdjustCounter(ctx, postID, "likes_count", 1)
	h.userRepository.AdjustLikesCount(post.AuthorID, 1)

	h.events.Emit(fanout.Event{
		Type:        models.NotificationLike,
		ActorID:     currentUserID,
		RecipientID: post.AuthorID,
		PostID:      postID,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": true}})
}

// UnlikePost removes the edge; unliking a post never liked is an error.
func (h *EngagementHandler) UnlikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	if err := h.engagementRepository.DeleteLike(currentUserID, postID); err != nil {
		if err == repositories.ErrEdgeNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Post not liked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	h.postRepository.AdjustCounter(ctx, postID, "likes_count", -1)
	h.userRepository.AdjustLikesCount(post.AuthorID, -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": false}})
}

// RepostPost creates the repost edge. Quotes do not come through here;
// they are posts with an original_post reference.
func (h *EngagementHandler) RepostPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	hasReposted, err := h.engagementRepository.HasReposted(currentUserID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasReposted {
		return echo.NewHTTPError(http.StatusConflict, "Post already reposted")
	}

	repost := &models.Repost{UserID: currentUserID, PostID: postID}
	if err := h.engagementRepository.CreateRepost(repost); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.postRepository.AdjustCounter(c.Request().Context(), postID, "reposts_count", 1)

	h.events.Emit(fanout.Event{
		Type:        models.NotificationRepost,
		ActorID:     currentUserID,
		RecipientID: post.AuthorID,
		PostID:      postID,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reposted": true}})
}

// UnrepostPost removes the edge; undoing a repost that never happened is
// an error.
func (h *EngagementHandler) UnrepostPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	if err := h.engagementRepository.DeleteRepost(currentUserID, postID); err != nil {
		if err == repositories.ErrEdgeNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Post not reposted")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.postRepository.AdjustCounter(c.Request().Context(), postID, "reposts_count", -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reposted": false}})
}

// BookmarkPost creates the private bookmark edge. No fan-out.
func (h *EngagementHandler) BookmarkPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	hasBookmarked, err := h.engagementRepository.HasBookmarked(currentUserID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasBookmarked {
		return echo.NewHTTPError(http.StatusConflict, "Post already bookmarked")
	}

	bookmark := &models.Bookmark{UserID: currentUserID, PostID: postID}
	if err := h.engagementRepository.CreateBookmark(bookmark); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.postRepository.AdjustCounter(c.Request().Context(), postID, "bookmarks_count", 1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"bookmarked": true}})
}

// UnbookmarkPost removes the edge; an absent edge is an error.
func (h *EngagementHandler) UnbookmarkPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	if err := h.engagementRepository.DeleteBookmark(currentUserID, postID); err != nil {
		if err == repositories.ErrEdgeNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Post not bookmarked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.postRepository.AdjustCounter(c.Request().Context(), postID, "bookmarks_count", -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"bookmarked": false}})
}

// ListBookmarks returns the viewer's bookmarked posts, newest bookmark first.
func (h *EngagementHandler) ListBookmarks(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, limit := pageParams(c, 20, 50)
	postIDs, total, err := h.engagementRepository.ListBookmarks(currentUserID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByIDs(c.Request().Context(), postIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"posts": posts},
		"pagination": paginationMeta(page, limit, total),
	})
}

// VoteOnPoll records a vote: closed polls and second votes are rejected.
// On success the chosen option's count and the poll total move together in
// one update, but nothing reconciles them against the vote edges.
func (h *EngagementHandler) VoteOnPoll(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.VotePollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.livePost(c)
	if err != nil {
		return err
	}
	postID := post.ID.Hex()

	if post.Poll == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Post has no poll")
	}
	if time.Now().After(post.Poll.EndsAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "Poll has ended")
	}
	optionIndex := *req.OptionIndex
	if optionIndex >= len(post.Poll.Options) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid poll option")
	}

	hasVoted, err := h.engagementRepository.HasVoted(currentUserID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasVoted {
		return echo.NewHTTPError(http.StatusConflict, "Already voted on this poll")
	}

	vote := &models.PollVote{UserID: currentUserID, PostID: postID, OptionIndex: optionIndex}
	if err := h.engagementRepository.CreatePollVote(vote); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.postRepository.AdjustPollVote(c.Request().Context(), postID, optionIndex, 1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"voted": true}})
}
