package memory

import (
	"context"
	"testing"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellnessRepo_SaveDayVersions(t *testing.T) {
	s := NewStore()
	repo := s.Wellness()
	ctx := context.Background()

	// a day stored without a version, as after a raw import
	s.wellness["2025-03-03"] = domain.WellnessDay{
		Date:      "2025-03-03",
		Responses: map[string]domain.WellnessResponse{"p1": {Sleep: 6, Fatigue: 5, Soreness: 4}},
	}

	day, err := repo.GetDay(ctx, "2025-03-03")
	require.NoError(t, err)
	day.Responses["p2"] = domain.WellnessResponse{Sleep: 8, Fatigue: 3, Soreness: 2}
	require.NoError(t, repo.SaveDay(ctx, day, day.Version))
	assert.Equal(t, int64(1), day.Version)

	tests := []struct {
		name     string
		date     string
		expected int64
		wantErr  error
	}{
		{"stale create on a versioned day", "2025-03-03", 0, repository.ErrVersionConflict},
		{"update of a missing day", "2025-03-09", 3, repository.ErrVersionConflict},
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
}
