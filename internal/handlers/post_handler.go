package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
	"github.com/appforge-dev/chirper/backend/internal/textscan"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository       repositories.PostRepository
	userRepository       repositories.UserRepository
	followRepository     repositories.FollowRepository
	engagementRepository repositories.EngagementRepository
	hashtagRepository    repositories.HashtagRepository
	events               fanout.Emitter
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	engagementRepo repositories.EngagementRepository,
	hashtagRepo repositories.HashtagRepository,
	events fanout.Emitter,
) *PostHandler {
	return &PostHandler{
		postRepository:       postRepo,
		userRepository:       userRepo,
		followRepository:     followRepo,
		engagementRepository: engagementRepo,
		hashtagRepository:    hashtagRepo,
		events:               events,
	}
}

// RegisterPostRoutes registers post-related routes. Creation carries its
// own rate limit class.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, postLimit echo.MiddlewareFunc) {
	g.POST("/posts", h.CreatePost, postLimit)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/posts/:id/replies", h.GetReplies)
	g.POST("/posts/:id/view", h.RecordView)
	g.GET("/users/:handle/posts", h.GetUserPosts)
}

// CreatePost creates a post, a reply (reply_to set) or a quote
// (original_post set). Hashtag and mention extraction run synchronously
// here; mention notifications go through the fan-out bus.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Poll != nil && req.Poll.EndsAt.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Poll end time must be in the future")
	}

	// A post is a reply or a quote, never both
	if req.ReplyTo != "" && req.OriginalPost != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "A post cannot be both a reply and a quote")
	}

	ctx := c.Request().Context()

	// Replies must target a live parent
	var parent *models.Post
	if req.ReplyTo != "" {
		var err error
		parent, err = h.postRepository.GetPostByID(ctx, req.ReplyTo)
		if err != nil || parent.IsDeleted {
			return echo.NewHTTPError(http.StatusNotFound, "Parent post not found")
		}
	}

	// Quotes must target a live original
	var original *models.Post
	if req.OriginalPost != "" {
		var err error
		original, err = h.postRepository.GetPostByID(ctx, req.OriginalPost)
		if err != nil || original.IsDeleted {
			return echo.NewHTTPError(http.StatusNotFound, "Original post not found")
		}
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	hashtags := textscan.Hashtags(req.Content)
	mentionedUsers := h.resolveMentions(req.Content)
	mentionIDs := make([]uint, 0, len(mentionedUsers))
	for _, u := range mentionedUsers {
		mentionIDs = append(mentionIDs, u.ID)
	}

	post := &models.Post{
		AuthorID:     currentUserID,
		Content:      req.Content,
		MediaURLs:    req.MediaURLs,
		ReplyTo:      req.ReplyTo,
		OriginalPost: req.OriginalPost,
		Hashtags:     hashtags,
		Mentions:     mentionIDs,
		Visibility:   visibility,
		ScheduledFor: req.ScheduledFor,
	}
	if req.Poll != nil {
		options := make([]models.PollOption, len(req.Poll.Options))
		for i, text := range req.Poll.Options {
			options[i] = models.PollOption{Text: text}
		}
		post.Poll = &models.Poll{Options: options, EndsAt: req.Poll.EndsAt}
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.userRepository.AdjustPostsCount(currentUserID, 1)

	for _, tag := range hashtags {
		h.hashtagRepository.UpsertTag(ctx, tag)
	}

	postID := post.ID.Hex()
	if parent != nil {
		h.postRepository.AdjustCounter(ctx, req.ReplyTo, "replies_count", 1)
		h.events.Emit(fanout.Event{
			Type:        models.NotificationReply,
			ActorID:     currentUserID,
			RecipientID: parent.AuthorID,
			PostID:      postID,
		})
	}
	if original != nil {
		h.postRepository.AdjustCounter(ctx, req.OriginalPost, "quotes_count", 1)
		h.events.Emit(fanout.Event{
			Type:        models.NotificationQuote,
			ActorID:     currentUserID,
			RecipientID: original.AuthorID,
			PostID:      postID,
		})
	}
	for _, mentioned := range mentionedUsers {
		h.events.Emit(fanout.Event{
			Type:        models.NotificationMention,
			ActorID:     currentUserID,
			RecipientID: mentioned.ID,
			PostID:      postID,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

// resolveMentions maps @tokens onto registered users; unknown handles are
// dropped silently.
func (h *PostHandler) resolveMentions(content string) []*models.User {
	var users []*models.User
	for _, handle := range textscan.Mentions(content) {
		user, err := h.userRepository.GetUserByHandle(handle)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users
}

// GetPost returns one post with the viewer's engagement flags.
func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.IsDeleted {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	// Followers-only posts require a follow edge (or authorship)
	if post.Visibility == models.VisibilityFollowers && viewerID != post.AuthorID {
		following, err := h.followRepository.IsFollowing(viewerID, post.AuthorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !following {
			return echo.NewHTTPError(http.StatusForbidden, "This post is limited to followers")
		}
	}

	enriched := EnrichedPost{Post: *post}
	if author, err := h.userRepository.GetUserByID(post.AuthorID); err == nil {
		enriched.Author = author.ToCompact()
	}
	if viewerID != 0 {
		postID := post.ID.Hex()
		enriched.IsLiked, _ = h.engagementRepository.HasLiked(viewerID, postID)
		enriched.IsReposted, _ = h.engagementRepository.HasReposted(viewerID, postID)
		enriched.IsBookmarked, _ = h.engagementRepository.HasBookmarked(viewerID, postID)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post": enriched}})
}

// DeletePost soft-deletes; only the author or a moderator may do it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if post.AuthorID != currentUserID {
		user, err := h.userRepository.GetUserByID(currentUserID)
		if err != nil || !(user.IsModerator || user.IsAdmin) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
		}
	}

	if err := h.postRepository.SoftDeletePost(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.userRepository.AdjustPostsCount(post.AuthorID, -1)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": true}})
}

// GetReplies lists replies to a post, newest first.
func (h *PostHandler) GetReplies(c echo.Context) error {
	page, limit := pageParams(c, 20, 50)
	skip := int64((page - 1) * limit)

	posts, total, err := h.postRepository.GetReplies(c.Request().Context(), c.Param("id"), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"posts": posts},
		"pagination": paginationMeta(page, limit, total),
	})
}

// RecordView bumps the view counter. Unauthenticated views count too.
func (h *PostHandler) RecordView(c echo.Context) error {
	if err := h.postRepository.AdjustCounter(c.Request().Context(), c.Param("id"), "views_count", 1); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetUserPosts lists a user's own posts, replies excluded by default.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	user, err := h.userRepository.GetUserByHandle(c.Param("handle"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	includeReplies := c.QueryParam("replies") == "true"
	page, limit := pageParams(c, 20, 50)
	skip := int64((page - 1) * limit)

	posts, total, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), user.ID, includeReplies, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"posts": posts},
		"pagination": paginationMeta(page, limit, total),
	})
}
