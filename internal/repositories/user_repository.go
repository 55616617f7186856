package repositories

import (
	"github.com/appforge-dev/chirper/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByHandle(handle string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(uid string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeactivateUser(id uint) error
	SearchUsers(query string, page, limit int) ([]models.User, int64, error)
	AdjustFollowersCount(id uint, delta int) error
	AdjustFollowingCount(id uint, delta int) error
	AdjustPostsCount(id uint, delta int) error
	AdjustLikesCount(id uint, delta int) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	user.IsActive = true
	return r.db.Create(user).Error
}

func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByHandle(handle string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("handle = ?", handle).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(uid string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// DeactivateUser soft-deactivates an account. The row is never removed.
func (r *PostgresUserRepository) DeactivateUser(id uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("is_active", false).Error
}

// SearchUsers does a case-insensitive substring match on handle and
// display name, active accounts only.
func (r *PostgresUserRepository) SearchUsers(query string, page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	pattern := "%" + query + "%"
	q := r.db.Model(&models.User{}).
		Where("is_active = ? AND is_suspended = ?", true, false).
		Where("LOWER(handle) LIKE LOWER(?) OR LOWER(display_name) LIKE LOWER(?)", pattern, pattern)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *PostgresUserRepository) adjustCounter(id uint, column string, delta int) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *PostgresUserRepository) AdjustFollowersCount(id uint, delta int) error {
	return r.adjustCounter(id, "followers_count", delta)
}

func (r *PostgresUserRepository) AdjustFollowingCount(id uint, delta int) error {
	return r.adjustCounter(id, "following_count", delta)
}

func (r *PostgresUserRepository) AdjustPostsCount(id uint, delta int) error {
	return r.adjustCounter(id, "posts_count", delta)
}

func (r *PostgresUserRepository) AdjustLikesCount(id uint, delta int) error {
	return r.adjustCounter(id, "likes_count", delta)
}
