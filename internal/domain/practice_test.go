package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPracticeData_PresentPlayersSorted(t *testing.T) {
	p := NewPracticeData(primitive.NewObjectID())
	p.Attendance["c"] = AttendanceRecord{Present: true}
	p.Attendance["a"] = AttendanceRecord{Present: true}
	p.Attendance["b"] = AttendanceRecord{Present: false, Reason: "Injury"}

	assert.Equal(t, []string{"a", "c"}, p.PresentPlayers())
}

func TestPracticeData_SurveyEligibility(t *testing.T) {
	p := NewPracticeData(primitive.NewObjectID())
	assert.False(t, p.SurveyOpen(SurveyCourt))

	now := time.Now()
	p.SurveyOpenedAt = &now
	p.SurveyPlayers = []string{"a", "b"}
	p.SurveyData["a"] = SurveyResponse{RPE: 6, Legs: 5}

	assert.True(t, p.SurveyOpen(SurveyCourt))
	assert.False(t, p.SurveyOpen(SurveyGym))
	assert.True(t, p.Eligible(SurveyCourt, "b"))
	assert.False(t, p.Eligible(SurveyCourt, "z"))
	assert.False(t, p.Eligible(SurveyGym, "a"))
	assert.True(t, p.Responded(SurveyCourt, "a"))
	assert.False(t, p.Responded(SurveyCourt, "b"))
}

func TestMetricsFromDrills(t *testing.T) {
	m := MetricsFromDrills([]DrillRow{
		{Name: "Shell", Minutes: 12},
		{Name: "Transition", Minutes: 18, HighIntensity: true},
	}, 2)
	assert.Equal(t, PracticeMetrics{TotalMinutes: 30, HighIntensityMinutes: 18, Courts: 2}, m)
}

func TestSurveyResponse_Validate(t *testing.T) {
	assert.NoError(t, SurveyResponse{RPE: 7, Legs: 4}.Validate())
	assert.Error(t, SurveyResponse{RPE: 11, Legs: 4}.Validate())
	assert.Error(t, SurveyResponse{RPE: 7}.Validate())
	assert.NoError(t, GymSurveyResponse{RPE: 1}.Validate())
	assert.Error(t, GymSurveyResponse{RPE: 0}.Validate())
}
