package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// testDatabase connects to TEAM_OPS_TEST_MONGO_URI and returns a throwaway database.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEAM_OPS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEAM_OPS_TEST_MONGO_URI not set")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)
	db := client.Database("team_ops_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = DisconnectDB(client)
	})
	return db
}

func TestWellnessRepository_SaveDayVersions(t *testing.T) {
	db := testDatabase(t)
	repo := NewMongoWellnessRepository(db)
	ctx := context.Background()

	// seeded without a version field
	_, err := db.Collection(wellnessCollectionName).InsertOne(ctx, bson.M{
		"_id":       "2025-03-03",
		"responses": bson.M{"p1": bson.M{"sleep": 6, "fatigue": 5, "soreness": 4}},
	})
	require.NoError(t, err)

	day, err := repo.GetDay(ctx, "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, int64(0), day.Version)
	require.Contains(t, day.Responses, "p1")

	day.Responses["p2"] = domain.WellnessResponse{Sleep: 8, Fatigue: 3, Soreness: 2}
	require.NoError(t, repo.SaveDay(ctx, day, 0))
	assert.Equal(t, int64(1), day.Version)

	tests := []struct {
		name     string
		date     string
		expected int64
		wantErr  error
	}{
		{"stale create on a versioned day", "2025-03-03", 0, repository.ErrVersionConflict},
		{"stale update", "2025-03-03", 7, repository.ErrVersionConflict},
		{"current update", "2025-03-03", 1, nil},
		{"fresh day", "2025-03-04", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.WellnessDay{Date: tt.date, Responses: map[string]domain.WellnessResponse{}}
			err := repo.SaveDay(ctx, &d, tt.expected)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected+1, d.Version)
		})
	}

	stored, err := repo.GetDay(ctx, "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}
