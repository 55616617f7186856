package repositories

import (
	"github.com/appforge-dev/chirper/backend/internal/models"
	"gorm.io/gorm"
)

// BlockRepository defines the interface for block and mute edge operations
type BlockRepository interface {
	CreateBlock(block *models.Block) error
	DeleteBlock(blockerID, blockedID uint) error
	IsBlocking(blockerID, blockedID uint) (bool, error)
	IsBlockedEither(a, b uint) (bool, error)
	CreateMute(mute *models.Mute) error
	DeleteMute(muterID, mutedID uint) error
	IsMuting(muterID, mutedID uint) (bool, error)
	GetMutedIDs(muterID uint) ([]uint, error)
}

// PostgresBlockRepository implements BlockRepository for PostgreSQL
type PostgresBlockRepository struct {
	db *gorm.DB
}

// NewPostgresBlockRepository creates a new PostgresBlockRepository
func NewPostgresBlockRepository(db *gorm.DB) *PostgresBlockRepository {
	return &PostgresBlockRepository{db: db}
}

func (r *PostgresBlockRepository) CreateBlock(block *models.Block) error {
	return r.db.Create(block).Error
}

func (r *PostgresBlockRepository) DeleteBlock(blockerID, blockedID uint) error {
	res := r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

func (r *PostgresBlockRepository) IsBlocking(blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// IsBlockedEither reports whether a block exists in either direction
// between a and b. Follows are forbidden while one exists.
func (r *PostgresBlockRepository) IsBlockedEither(a, b uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresBlockRepository) CreateMute(mute *models.Mute) error {
	return r.db.Create(mute).Error
}

func (r *PostgresBlockRepository) DeleteMute(muterID, mutedID uint) error {
	res := r.db.Where("muter_id = ? AND muted_id = ?", muterID, mutedID).
		Delete(&models.Mute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

func (r *PostgresBlockRepository) IsMuting(muterID, mutedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Mute{}).
		Where("muter_id = ? AND muted_id = ?", muterID, mutedID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresBlockRepository) GetMutedIDs(muterID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Mute{}).Where("muter_id = ?", muterID).
		Pluck("muted_id", &ids).Error
	return ids, err
}
