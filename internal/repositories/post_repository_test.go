package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/appforge-dev/chirper/backend/internal/models"
)

func TestTimelineFilter(t *testing.T) {
	now := time.Now()
	filter := timelineFilter([]uint{1, 2, 3}, now)

	assert.Equal(t, bson.M{"$in": []uint{1, 2, 3}}, filter["author_id"])
	assert.Equal(t, false, filter["is_deleted"])

	// Scheduled posts stay hidden until their time: the filter admits
	// documents without scheduled_for or with scheduled_for <= now.
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"scheduled_for": bson.M{"$exists": false}}, or[0])
	assert.Equal(t, bson.M{"scheduled_for": bson.M{"$lte": now}}, or[1])
}

func TestTrendingFilter(t *testing.T) {
	since := time.Now().Add(-24 * time.Hour)
	filter := trendingFilter(since)

	assert.Equal(t, models.VisibilityPublic, filter["visibility"])
	assert.Equal(t, false, filter["is_deleted"])
	assert.Equal(t, bson.M{"$gte": since}, filter["created_at"])
}

func TestSearchFilterEscapesRegexMeta(t *testing.T) {
	filter := searchFilter("c++ (beta)")

	content, ok := filter["content"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `c\+\+ \(beta\)`, content["$regex"])
	assert.Equal(t, "i", content["$options"])

	// Search never surfaces deleted or followers-only posts
	assert.Equal(t, models.VisibilityPublic, filter["visibility"])
	assert.Equal(t, false, filter["is_deleted"])
}
