package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

type feedFixture struct {
	db         *gorm.DB
	posts      *fakePostRepo
	handler    *FeedHandler
	follows    repositories.FollowRepository
	blocks     repositories.BlockRepository
	engagement repositories.EngagementRepository
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()

	db := newTestDB(t)
	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	blockRepo := repositories.NewPostgresBlockRepository(db)
	engagementRepo := repositories.NewPostgresEngagementRepository(db)
	posts := newFakePostRepo()

	return &feedFixture{
		db:         db,
		posts:      posts,
		handler:    NewFeedHandler(posts, userRepo, followRepo, blockRepo, engagementRepo, &fakeHashtagRepo{}),
		follows:    followRepo,
		blocks:     blockRepo,
		engagement: engagementRepo,
	}
}

type feedResponse struct {
	Data struct {
		Posts []EnrichedPost `json:"posts"`
	} `json:"data"`
}

func (f *feedFixture) timeline(t *testing.T, viewerID uint) feedResponse {
	t.Helper()
	c, rec := newContext(t, http.MethodGet, "/feed", "", viewerID)
	require.NoError(t, f.handler.GetHomeTimeline(c))

	var body feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHomeTimelineScope(t *testing.T) {
	f := newFeedFixture(t)
	viewer := seedUser(t, f.db, "viewer")
	followed := seedUser(t, f.db, "followed")
	muted := seedUser(t, f.db, "muted")
	stranger := seedUser(t, f.db, "stranger")

	require.NoError(t, f.follows.CreateFollow(&models.Follow{FollowerID: viewer.ID, FollowingID: followed.ID}))
	require.NoError(t, f.follows.CreateFollow(&models.Follow{FollowerID: viewer.ID, FollowingID: muted.ID}))
	require.NoError(t, f.blocks.CreateMute(&models.Mute{MuterID: viewer.ID, MutedID: muted.ID}))

	f.posts.addPost(&models.Post{AuthorID: viewer.ID, Content: "own post"})
	f.posts.addPost(&models.Post{AuthorID: followed.ID, Content: "followed post"})
	f.posts.addPost(&models.Post{AuthorID: muted.ID, Content: "muted post"})
	f.posts.addPost(&models.Post{AuthorID: stranger.ID, Content: "stranger post"})

	body := f.timeline(t, viewer.ID)

	contents := make([]string, len(body.Data.Posts))
	for i, p := range body.Data.Posts {
		contents[i] = p.Content
	}
	assert.ElementsMatch(t, []string{"own post", "followed post"}, contents)
}

func TestHomeTimelineEnrichment(t *testing.T) {
	f := newFeedFixture(t)
	viewer := seedUser(t, f.db, "viewer")
	author := seedUser(t, f.db, "author")
	require.NoError(t, f.follows.CreateFollow(&models.Follow{FollowerID: viewer.ID, FollowingID: author.ID}))

	liked := f.posts.addPost(&models.Post{AuthorID: author.ID, Content: "liked one"})
	f.posts.addPost(&models.Post{AuthorID: author.ID, Content: "plain one"})
	require.NoError(t, f.engagement.CreateLike(&models.Like{UserID: viewer.ID, PostID: liked.ID.Hex()}))

	body := f.timeline(t, viewer.ID)
	require.Len(t, body.Data.Posts, 2)

	for _, p := range body.Data.Posts {
		assert.Equal(t, "author", p.Author.Handle)
		if p.Content == "liked one" {
			assert.True(t, p.IsLiked)
		} else {
			assert.False(t, p.IsLiked)
		}
		assert.False(t, p.IsReposted)
		assert.False(t, p.IsBookmarked)
	}
}

func TestHomeTimelineRequiresAuth(t *testing.T) {
	f := newFeedFixture(t)

	c, _ := newContext(t, http.MethodGet, "/feed", "", 0)
	err := f.handler.GetHomeTimeline(c)
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}
