package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellnessDay_MergeAverages(t *testing.T) {
	day := NewWellnessDay("2026-10-18")

	day.Merge("p1", WellnessResponse{Sleep: 7, Fatigue: 4, Soreness: 3})
	day.Merge("p2", WellnessResponse{Sleep: 8, Fatigue: 5, Soreness: 6})
	day.Merge("p3", WellnessResponse{Sleep: 6, Fatigue: 5, Soreness: 2})

	assert.Equal(t, 3, day.ResponseCount)
	assert.Equal(t, 7.0, day.Averages.Sleep)
	assert.Equal(t, 4.7, day.Averages.Fatigue)
	assert.Equal(t, 3.7, day.Averages.Soreness)

	// N+1th response re-averages over all four.
	day.Merge("p4", WellnessResponse{Sleep: 10, Fatigue: 1, Soreness: 1})
	assert.Equal(t, 4, day.ResponseCount)
	assert.Equal(t, 7.8, day.Averages.Sleep)
	assert.Equal(t, 3.8, day.Averages.Fatigue)
	assert.Equal(t, 3.0, day.Averages.Soreness)
}

func TestWellnessDay_MergeOverwritesSamePlayer(t *testing.T) {
	day := NewWellnessDay("2026-10-18")
	day.Merge("p1", WellnessResponse{Sleep: 2, Fatigue: 2, Soreness: 2})
	day.Merge("p1", WellnessResponse{Sleep: 8, Fatigue: 6, Soreness: 4})

	assert.Equal(t, 1, day.ResponseCount)
	assert.Equal(t, 8.0, day.Averages.Sleep)
}

func TestWellnessDay_RecomputeEmpty(t *testing.T) {
	day := &WellnessDay{Averages: WellnessAverages{Sleep: 5}}
	day.Recompute()
	assert.Zero(t, day.ResponseCount)
	assert.Equal(t, WellnessAverages{}, day.Averages)
}

func TestWellnessResponse_Validate(t *testing.T) {
	require.NoError(t, WellnessResponse{Sleep: 1, Fatigue: 10, Soreness: 5}.Validate())
	require.Error(t, WellnessResponse{Sleep: 0, Fatigue: 5, Soreness: 5}.Validate())
	require.Error(t, WellnessResponse{Sleep: 5, Fatigue: 11, Soreness: 5}.Validate())
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 6.7, Round1(20.0/3.0))
	assert.Equal(t, 2.5, Round1(2.45))
	assert.Equal(t, 3.0, Round1(3))
}
