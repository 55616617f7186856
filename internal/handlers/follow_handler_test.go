package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

type followFixture struct {
	db      *gorm.DB
	handler *FollowHandler
	blocks  *BlockHandler
	emitter *recordingEmitter
}

func newFollowFixture(t *testing.T) *followFixture {
	t.Helper()

	db := newTestDB(t)
	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	blockRepo := repositories.NewPostgresBlockRepository(db)
	emitter := &recordingEmitter{}

	return &followFixture{
		db:      db,
		handler: NewFollowHandler(followRepo, blockRepo, userRepo, emitter),
		blocks:  NewBlockHandler(blockRepo, followRepo, userRepo),
		emitter: emitter,
	}
}

func (f *followFixture) follow(t *testing.T, actorID uint, targetHandle string) error {
	t.Helper()
	c, _ := newContext(t, http.MethodPost, "/users/"+targetHandle+"/follow", "", actorID)
	c.SetParamNames("handle")
	c.SetParamValues(targetHandle)
	return f.handler.FollowUser(c)
}

func (f *followFixture) unfollow(t *testing.T, actorID uint, targetHandle string) error {
	t.Helper()
	c, _ := newContext(t, http.MethodDelete, "/users/"+targetHandle+"/follow", "", actorID)
	c.SetParamNames("handle")
	c.SetParamValues(targetHandle)
	return f.handler.UnfollowUser(c)
}

func (f *followFixture) block(t *testing.T, actorID uint, targetHandle string) error {
	t.Helper()
	c, _ := newContext(t, http.MethodPost, "/users/"+targetHandle+"/block", "", actorID)
	c.SetParamNames("handle")
	c.SetParamValues(targetHandle)
	return f.blocks.BlockUser(c)
}

func TestFollowAdjustsCountersAndNotifies(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	require.NoError(t, f.follow(t, alice.ID, "bob"))

	assert.Equal(t, 1, reloadUser(t, f.db, alice.ID).FollowingCount)
	assert.Equal(t, 1, reloadUser(t, f.db, bob.ID).FollowersCount)
	assert.Equal(t, 0, reloadUser(t, f.db, bob.ID).FollowingCount)

	events := f.emitter.byType(models.NotificationFollow)
	require.Len(t, events, 1)
	assert.Equal(t, alice.ID, events[0].ActorID)
	assert.Equal(t, bob.ID, events[0].RecipientID)
}

func TestFollowSelfRejected(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")

	err := f.follow(t, alice.ID, "alice")
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	assert.Equal(t, 0, reloadUser(t, f.db, alice.ID).FollowingCount)
}

func TestFollowDuplicateRejected(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	require.NoError(t, f.follow(t, alice.ID, "bob"))
	err := f.follow(t, alice.ID, "bob")
	assert.Equal(t, http.StatusConflict, httpCode(t, err))

	// Counters unchanged by the rejected attempt
	assert.Equal(t, 1, reloadUser(t, f.db, bob.ID).FollowersCount)
}

func TestFollowUnknownTarget(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")

	err := f.follow(t, alice.ID, "ghost")
	assert.Equal(t, http.StatusNotFound, httpCode(t, err))
}

func TestUnfollowWithoutEdgeRejected(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	err := f.unfollow(t, alice.ID, "bob")
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	assert.Equal(t, 0, reloadUser(t, f.db, bob.ID).FollowersCount)
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	require.NoError(t, f.follow(t, alice.ID, "bob"))
	require.NoError(t, f.unfollow(t, alice.ID, "bob"))

	assert.Equal(t, 0, reloadUser(t, f.db, alice.ID).FollowingCount)
	assert.Equal(t, 0, reloadUser(t, f.db, bob.ID).FollowersCount)
}

func TestBlockTearsDownFollowEdges(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	// Mutual follows first
	require.NoError(t, f.follow(t, alice.ID, "bob"))
	require.NoError(t, f.follow(t, bob.ID, "alice"))

	require.NoError(t, f.block(t, alice.ID, "bob"))

	// Both directions removed and all four counters rolled back
	for _, id := range []uint{alice.ID, bob.ID} {
		user := reloadUser(t, f.db, id)
		assert.Equal(t, 0, user.FollowersCount, "user %d followers", id)
		assert.Equal(t, 0, user.FollowingCount, "user %d following", id)
	}

	// Following while blocked is forbidden in both directions
	err := f.follow(t, bob.ID, "alice")
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))
	err = f.follow(t, alice.ID, "bob")
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))
}

func TestBlockWithoutFollowLeavesCountersAlone(t *testing.T) {
	f := newFollowFixture(t)
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	require.NoError(t, f.block(t, alice.ID, "bob"))

	assert.Equal(t, 0, reloadUser(t, f.db, alice.ID).FollowingCount)
	assert.Equal(t, 0, reloadUser(t, f.db, bob.ID).FollowersCount)
}
