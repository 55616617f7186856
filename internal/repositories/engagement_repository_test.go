package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-dev/chirper/backend/internal/models"
)

const (
	postA = "656a1f77bcf86cd799439011"
	postB = "656a1f77bcf86cd799439012"
	postC = "656a1f77bcf86cd799439013"
)

func TestLikeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEngagementRepository(db)
	alice := seedUser(t, db, "alice")

	liked, err := repo.HasLiked(alice.ID, postA)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, repo.CreateLike(&models.Like{UserID: alice.ID, PostID: postA}))

	liked, err = repo.HasLiked(alice.ID, postA)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.DeleteLike(alice.ID, postA))
	assert.ErrorIs(t, repo.DeleteLike(alice.ID, postA), ErrEdgeNotFound)
}

func TestDuplicateLikeRejectedByIndex(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEngagementRepository(db)
	alice := seedUser(t, db, "alice")

	require.NoError(t, repo.CreateLike(&models.Like{UserID: alice.ID, PostID: postA}))
	assert.Error(t, repo.CreateLike(&models.Like{UserID: alice.ID, PostID: postA}))
}

func TestGetLikedPostIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEngagementRepository(db)
	alice := seedUser(t, db, "alice")

	require.NoError(t, repo.CreateLike(&models.Like{UserID: alice.ID, PostID: postA}))
	require.NoError(t, repo.CreateLike(&models.Like{UserID: alice.ID, PostID: postC}))

	set, err := repo.GetLikedPostIDs(alice.ID, []string{postA, postB, postC})
	require.NoError(t, err)
	assert.True(t, set[postA])
	assert.False(t, set[postB])
	assert.True(t, set[postC])

	// Empty input short-circuits
	set, err = repo.GetLikedPostIDs(alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestRepostIndependentOfLike(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEngagementRepository(db)
	alice := seedUser(t, db, "alice")

	require.NoError(t, repo.CreateRepost(&models.Repost{UserID: alice.ID, PostID: postA}))

	reposted, err := repo.HasReposted(alice.ID, postA)
	require.NoError(t, err)
	assert.True(t, reposted)

	liked, err := repo.HasLiked(alice.ID, postA)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestListBookmarksNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEngagementRepository(db)
	alice := seedUser(t, db, "alice")

	for _, id := range []string{postA, postB, postC} {
		require.NoError(t, repo.CreateBookmark(&models.Bookmark{UserID: alice.ID, PostID: id}))
	}

	ids, total, err := repo.ListBookmarks(alice.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{postC, postB}, ids)

	ids, _, err = repo.ListBookmarks(alice.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{postA}, ids)
}

func TestPollVoteOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEngagementRepository(db)
	alice := seedUser(t, db, "alice")

	require.NoError(t, repo.CreatePollVote(&models.PollVote{UserID: alice.ID, PostID: postA, OptionIndex: 1}))

	voted, err := repo.HasVoted(alice.ID, postA)
	require.NoError(t, err)
	assert.True(t, voted)

	// Second vote on the same poll violates the pair index
	assert.Error(t, repo.CreatePollVote(&models.PollVote{UserID: alice.ID, PostID: postA, OptionIndex: 0}))
}
