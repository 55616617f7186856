package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/validators"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Block{},
		&models.Mute{},
		&models.Like{},
		&models.Repost{},
		&models.Bookmark{},
		&models.PollVote{},
		&models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, handle string) *models.User {
	t.Helper()

	user := &models.User{
		Handle:      handle,
		DisplayName: handle,
		Email:       fmt.Sprintf("%s@example.com", handle),
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

// newContext builds an echo context with the validator installed and, when
// userID is non-zero, JWT claims as the auth middleware would set them.
func newContext(t *testing.T, method, path, body string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validators.NewValidator()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he.Code
}

// recordingEmitter captures fan-out events synchronously.
type recordingEmitter struct {
	mu     sync.Mutex
	events []fanout.Event
}

func (r *recordingEmitter) Emit(event fanout.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) byType(eventType string) []fanout.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []fanout.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakePostRepo is an in-memory stand-in for the MongoDB post repository.
// Counter adjustments are recorded per (post, field) for assertions.
type fakePostRepo struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	counters map[string]int
	votes    map[string]int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    make(map[string]*models.Post),
		counters: make(map[string]int),
		votes:    make(map[string]int),
	}
}

func (f *fakePostRepo) addPost(post *models.Post) *models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	f.posts[post.ID.Hex()] = post
	return post
}

func (f *fakePostRepo) counter(postID, field string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[postID+"/"+field]
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	f.addPost(post)
	return nil
}

func (f *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post not found")
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) SoftDeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return fmt.Errorf("post not found")
	}
	post.IsDeleted = true
	return nil
}

func (f *fakePostRepo) GetTimeline(_ context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var out []models.Post
	for _, post := range f.posts {
		if allowed[post.AuthorID] && !post.IsDeleted {
			out = append(out, *post)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) GetPostsByAuthor(_ context.Context, authorID uint, includeReplies bool, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, post := range f.posts {
		if post.AuthorID != authorID || post.IsDeleted {
			continue
		}
		if !includeReplies && post.ReplyTo != "" {
			continue
		}
		out = append(out, *post)
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) GetReplies(_ context.Context, postID string, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, post := range f.posts {
		if post.ReplyTo == postID && !post.IsDeleted {
			out = append(out, *post)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) GetPostsByIDs(_ context.Context, ids []string) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, id := range ids {
		if post, ok := f.posts[id]; ok && !post.IsDeleted {
			out = append(out, *post)
		}
	}
	return out, nil
}

func (f *fakePostRepo) GetTrending(_ context.Context, since time.Time, skip, limit int64) ([]models.Post, int64, error) {
	return nil, 0, nil
}

func (f *fakePostRepo) SearchPosts(_ context.Context, query string, skip, limit int64) ([]models.Post, int64, error) {
	return nil, 0, nil
}

func (f *fakePostRepo) AdjustCounter(_ context.Context, postID, field string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[postID]; !ok {
		return fmt.Errorf("post not found")
	}
	f.counters[postID+"/"+field] += delta
	return nil
}

func (f *fakePostRepo) AdjustPollVote(_ context.Context, postID string, optionIndex, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes[fmt.Sprintf("%s/%d", postID, optionIndex)] += delta
	return nil
}

// fakeHashtagRepo records upserted tags.
type fakeHashtagRepo struct {
	mu   sync.Mutex
	tags []string
}

func (f *fakeHashtagRepo) UpsertTag(_ context.Context, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	return nil
}

func (f *fakeHashtagRepo) GetTrendingTags(_ context.Context, since time.Time, limit int64) ([]models.Hashtag, error) {
	return nil, nil
}
