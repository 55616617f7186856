package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-dev/chirper/backend/internal/models"
)

func TestFollowRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	following, err := repo.IsFollowing(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}))

	following, err = repo.IsFollowing(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Directional: bob does not follow alice
	following, err = repo.IsFollowing(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, repo.DeleteFollow(alice.ID, bob.ID))

	following, err = repo.IsFollowing(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestDeleteFollowWithoutEdge(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	err := repo.DeleteFollow(alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrEdgeNotFound)
}

func TestGetFollowersPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	target := seedUser(t, db, "target")

	for _, handle := range []string{"f1", "f2", "f3"} {
		follower := seedUser(t, db, handle)
		require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: follower.ID, FollowingID: target.ID}))
	}

	users, total, err := repo.GetFollowers(target.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 2)
	// Newest edge first
	assert.Equal(t, "f3", users[0].Handle)

	users, _, err = repo.GetFollowers(target.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "f1", users[0].Handle)
}

func TestGetFollowingIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}))
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: alice.ID, FollowingID: carol.ID}))

	ids, err := repo.GetFollowingIDs(alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, ids)
}

func TestBlockEdges(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresBlockRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, repo.CreateBlock(&models.Block{BlockerID: alice.ID, BlockedID: bob.ID}))

	blocking, err := repo.IsBlocking(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocking)

	// Either direction reports blocked regardless of argument order
	blocked, err := repo.IsBlockedEither(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, repo.DeleteBlock(alice.ID, bob.ID))
	assert.ErrorIs(t, repo.DeleteBlock(alice.ID, bob.ID), ErrEdgeNotFound)
}

func TestMutedIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresBlockRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, repo.CreateMute(&models.Mute{MuterID: alice.ID, MutedID: bob.ID}))

	ids, err := repo.GetMutedIDs(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	// Muting is one-way
	ids, err = repo.GetMutedIDs(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
