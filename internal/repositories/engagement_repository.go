package repositories

import (
	"github.com/appforge-dev/chirper/backend/internal/models"
	"gorm.io/gorm"
)

// EngagementRepository defines the interface for the (user, post) edge
// collections: likes, reposts, bookmarks and poll votes.
type EngagementRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(userID uint, postID string) error
	HasLiked(userID uint, postID string) (bool, error)
	GetLikedPostIDs(userID uint, postIDs []string) (map[string]bool, error)

	CreateRepost(repost *models.Repost) error
	DeleteRepost(userID uint, postID string) error
	HasReposted(userID uint, postID string) (bool, error)
	GetRepostedPostIDs(userID uint, postIDs []string) (map[string]bool, error)

	CreateBookmark(bookmark *models.Bookmark) error
	DeleteBookmark(userID uint, postID string) error
	HasBookmarked(userID uint, postID string) (bool, error)
	GetBookmarkedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
	ListBookmarks(userID uint, page, limit int) ([]string, int64, error)

	CreatePollVote(vote *models.PollVote) error
	HasVoted(userID uint, postID string) (bool, error)
}

// PostgresEngagementRepository implements EngagementRepository for PostgreSQL
type PostgresEngagementRepository struct {
	db *gorm.DB
}

// NewPostgresEngagementRepository creates a new PostgresEngagementRepository
func NewPostgresEngagementRepository(db *gorm.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

func (r *PostgresEngagementRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

func (r *PostgresEngagementRepository) DeleteLike(userID uint, postID string) error {
	return r.deleteEdge(&models.Like{}, userID, postID)
}

func (r *PostgresEngagementRepository) HasLiked(userID uint, postID string) (bool, error) {
	return r.hasEdge(&models.Like{}, userID, postID)
}

func (r *PostgresEngagementRepository) GetLikedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	return r.edgeSet(&models.Like{}, userID, postIDs)
}

func (r *PostgresEngagementRepository) CreateRepost(repost *models.Repost) error {
	return r.db.Create(repost).Error
}

func (r *PostgresEngagementRepository) DeleteRepost(userID uint, postID string) error {
	return r.deleteEdge(&models.Repost{}, userID, postID)
}

func (r *PostgresEngagementRepository) HasReposted(userID uint, postID string) (bool, error) {
	return r.hasEdge(&models.Repost{}, userID, postID)
}

func (r *PostgresEngagementRepository) GetRepostedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	return r.edgeSet(&models.Repost{}, userID, postIDs)
}

func (r *PostgresEngagementRepository) CreateBookmark(bookmark *models.Bookmark) error {
	return r.db.Create(bookmark).Error
}

func (r *PostgresEngagementRepository) DeleteBookmark(userID uint, postID string) error {
	return r.deleteEdge(&models.Bookmark{}, userID, postID)
}

func (r *PostgresEngagementRepository) HasBookmarked(userID uint, postID string) (bool, error) {
	return r.hasEdge(&models.Bookmark{}, userID, postID)
}

func (r *PostgresEngagementRepository) GetBookmarkedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	return r.edgeSet(&models.Bookmark{}, userID, postIDs)
}

// ListBookmarks returns post ids bookmarked by userID, newest first.
func (r *PostgresEngagementRepository) ListBookmarks(userID uint, page, limit int) ([]string, int64, error) {
	var total int64
	if err := r.db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var postIDs []string
	offset := (page - 1) * limit
	err := r.db.Model(&models.Bookmark{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Pluck("post_id", &postIDs).Error
	return postIDs, total, err
}

func (r *PostgresEngagementRepository) CreatePollVote(vote *models.PollVote) error {
	return r.db.Create(vote).Error
}

func (r *PostgresEngagementRepository) HasVoted(userID uint, postID string) (bool, error) {
	return r.hasEdge(&models.PollVote{}, userID, postID)
}

func (r *PostgresEngagementRepository) deleteEdge(model interface{}, userID uint, postID string) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

func (r *PostgresEngagementRepository) hasEdge(model interface{}, userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.Model(model).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresEngagementRepository) edgeSet(model interface{}, userID uint, postIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return set, nil
	}
	var found []string
	err := r.db.Model(model).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}
