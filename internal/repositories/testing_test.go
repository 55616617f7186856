package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/appforge-dev/chirper/backend/internal/models"
)

// newTestDB opens an in-memory SQLite database with the relational schema
// migrated.
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

// seedUser inserts a minimal active account.
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
