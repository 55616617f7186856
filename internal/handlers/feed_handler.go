package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// EnrichedPost is a post decorated with author info and the viewer's
// engagement flags.
type EnrichedPost struct {
	models.Post
	Author       models.UserCompact `json:"author"`
	IsLiked      bool               `json:"is_liked"`
	IsReposted   bool               `json:"is_reposted"`
	IsBookmarked bool               `json:"is_bookmarked"`
}

// FeedHandler assembles the home timeline and the trending feed
type FeedHandler struct {
	postRepository       repositories.PostRepository
	userRepository       repositories.UserRepository
	followRepository     repositories.FollowRepository
	blockRepository      repositories.BlockRepository
	engagementRepository repositories.EngagementRepository
	hashtagRepository    repositories.HashtagRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	blockRepo repositories.BlockRepository,
	engagementRepo repositories.EngagementRepository,
	hashtagRepo repositories.HashtagRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:       postRepo,
		userRepository:       userRepo,
		followRepository:     followRepo,
		blockRepository:      blockRepo,
		engagementRepository: engagementRepo,
		hashtagRepository:    hashtagRepo,
	}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetHomeTimeline)
	g.GET("/trending", h.GetTrending)
	g.GET("/trending/hashtags", h.GetTrendingHashtags)
}

// GetHomeTimeline returns posts from the viewer and everyone they follow,
// minus muted authors, newest first. Pages are offset-based over a live
// collection, so new posts can shift entries between pages.
func (h *FeedHandler) GetHomeTimeline(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	mutedIDs, err := h.blockRepository.GetMutedIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	muted := make(map[uint]bool, len(mutedIDs))
	for _, id := range mutedIDs {
		muted[id] = true
	}

	authorIDs := make([]uint, 0, len(followingIDs)+1)
	authorIDs = append(authorIDs, currentUserID)
	for _, id := range followingIDs {
		if !muted[id] {
			authorIDs = append(authorIDs, id)
		}
	}

	page, limit := pageParams(c, 20, 50)
	skip := int64((page - 1) * limit)

	posts, total, err := h.postRepository.GetTimeline(c.Request().Context(), authorIDs, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched, err := h.enrichPosts(posts, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"posts": enriched},
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetTrending returns the last 24 hours of public posts ordered by raw
// engagement.
func (h *FeedHandler) GetTrending(c echo.Context) error {
	viewerID := getUserIDFromContext(c)

	page, limit := pageParams(c, 20, 50)
	skip := int64((page - 1) * limit)
	since := time.Now().Add(-24 * time.Hour)

	posts, total, err := h.postRepository.GetTrending(c.Request().Context(), since, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched, err := h.enrichPosts(posts, viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"posts": enriched},
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetTrendingHashtags returns the most used tags of the last 24 hours.
func (h *FeedHandler) GetTrendingHashtags(c echo.Context) error {
	since := time.Now().Add(-24 * time.Hour)

	tags, err := h.hashtagRepository.GetTrendingTags(c.Request().Context(), since, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"hashtags": tags}})
}

// enrichPosts attaches authors and, when a viewer is present, the viewer's
// like/repost/bookmark flags. Authors are fetched once per distinct id and
// engagement flags come back as one set query per edge kind.
func (h *FeedHandler) enrichPosts(posts []models.Post, viewerID uint) ([]EnrichedPost, error) {
	authors := make(map[uint]models.UserCompact)
	for _, post := range posts {
		if _, ok := authors[post.AuthorID]; ok {
			continue
		}
		user, err := h.userRepository.GetUserByID(post.AuthorID)
		if err != nil {
			continue
		}
		authors[post.AuthorID] = user.ToCompact()
	}

	var liked, reposted, bookmarked map[string]bool
	if viewerID != 0 {
		postIDs := make([]string, len(posts))
		for i, post := range posts {
			postIDs[i] = post.ID.Hex()
		}

		var err error
		if liked, err = h.engagementRepository.GetLikedPostIDs(viewerID, postIDs); err != nil {
			return nil, err
		}
		if reposted, err = h.engagementRepository.GetRepostedPostIDs(viewerID, postIDs); err != nil {
			return nil, err
		}
		if bookmarked, err = h.engagementRepository.GetBookmarkedPostIDs(viewerID, postIDs); err != nil {
			return nil, err
		}
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, post := range posts {
		postID := post.ID.Hex()
		enriched[i] = EnrichedPost{
			Post:         post,
			Author:       authors[post.AuthorID],
			IsLiked:      liked[postID],
			IsReposted:   reposted[postID],
			IsBookmarked: bookmarked[postID],
		}
	}
	return enriched, nil
}
