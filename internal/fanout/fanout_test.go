package fanout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

func setupBus(t *testing.T) (*Bus, repositories.NotificationRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))

	notifRepo := repositories.NewPostgresNotificationRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)

	bus := NewBus(notifRepo, userRepo, zap.NewNop(), 16)
	stop := bus.Start()
	t.Cleanup(stop)

	return bus, notifRepo, db
}

func seedUser(t *testing.T, db *gorm.DB, handle, displayName string) *models.User {
	t.Helper()
	user := &models.User{Handle: handle, DisplayName: displayName, Email: handle + "@example.com", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestEmitCreatesNotification(t *testing.T) {
	bus, notifRepo, db := setupBus(t)
	actor := seedUser(t, db, "alice", "Alice")
	recipient := seedUser(t, db, "bob", "Bob")

	bus.Emit(Event{
		Type:        models.NotificationLike,
		ActorID:     actor.ID,
		RecipientID: recipient.ID,
		PostID:      "656a1f77bcf86cd799439011",
	})

	require.Eventually(t, func() bool {
		count, err := notifRepo.GetUnreadCount(recipient.ID)
		return err == nil && count == 1
	}, time.Second, 10*time.Millisecond)

	notifications, total, err := notifRepo.GetByRecipientID(recipient.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationLike, notifications[0].Type)
	assert.Equal(t, actor.ID, notifications[0].ActorID)
	assert.Equal(t, "Alice liked your post", notifications[0].Message)
	assert.False(t, notifications[0].IsRead)
}

func TestEmitFallsBackToHandle(t *testing.T) {
	bus, notifRepo, db := setupBus(t)
	actor := seedUser(t, db, "alice", "")
	recipient := seedUser(t, db, "bob", "Bob")

	bus.Emit(Event{Type: models.NotificationFollow, ActorID: actor.ID, RecipientID: recipient.ID})

	require.Eventually(t, func() bool {
		count, err := notifRepo.GetUnreadCount(recipient.ID)
		return err == nil && count == 1
	}, time.Second, 10*time.Millisecond)

	notifications, _, err := notifRepo.GetByRecipientID(recipient.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "@alice started following you", notifications[0].Message)
}

func TestEmitSuppressesSelfNotification(t *testing.T) {
	bus, notifRepo, db := setupBus(t)
	actor := seedUser(t, db, "alice", "Alice")

	bus.Emit(Event{Type: models.NotificationLike, ActorID: actor.ID, RecipientID: actor.ID})

	// Give the consumer a chance to misbehave before asserting
	time.Sleep(50 * time.Millisecond)
	count, err := notifRepo.GetUnreadCount(actor.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestStopDrainsQueue(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))

	notifRepo := repositories.NewPostgresNotificationRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)
	actor := seedUser(t, db, "alice", "Alice")
	recipient := seedUser(t, db, "bob", "Bob")

	bus := NewBus(notifRepo, userRepo, zap.NewNop(), 16)
	stop := bus.Start()

	for i := 0; i < 5; i++ {
		bus.Emit(Event{Type: models.NotificationLike, ActorID: actor.ID, RecipientID: recipient.ID})
	}
	stop()

	count, err := notifRepo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestEmitAfterStopIsDropped(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))

	notifRepo := repositories.NewPostgresNotificationRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)
	actor := seedUser(t, db, "alice", "Alice")
	recipient := seedUser(t, db, "bob", "Bob")

	bus := NewBus(notifRepo, userRepo, zap.NewNop(), 16)
	stop := bus.Start()
	stop()

	// A handler still in flight after shutdown must not crash the server
	assert.NotPanics(t, func() {
		bus.Emit(Event{Type: models.NotificationLike, ActorID: actor.ID, RecipientID: recipient.ID})
	})

	count, err := notifRepo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
