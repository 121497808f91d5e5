package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr bool
	}{
		{"team plan", Plan{Name: "Lower body A", Type: PlanTeam, Exercises: []PlanExercise{{Name: "Squat", Sets: 4}}}, false},
		{"individual plan", Plan{Name: "Rehab", Type: PlanIndividual, Players: []PlanPlayer{{PlayerID: "p1", Exercises: []PlanExercise{{Name: "Band walk"}}}}}, false},
		{"missing name", Plan{Type: PlanTeam}, true},
		{"unknown type", Plan{Name: "X", Type: "circuit"}, true},
		{"team plan with players", Plan{Name: "X", Type: PlanTeam, Players: []PlanPlayer{{PlayerID: "p1"}}}, true},
		{"individual plan with exercises", Plan{Name: "X", Type: PlanIndividual, Exercises: []PlanExercise{{Name: "Squat"}}}, true},
		{"exercise without name", Plan{Name: "X", Type: PlanTeam, Exercises: []PlanExercise{{Sets: 3}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPlan_CloneGetsFreshIDs(t *testing.T) {
	src := &Plan{Name: "Upper", Type: PlanTeam, Exercises: []PlanExercise{{Name: "Bench"}, {Name: "Row"}}, IsArchived: true}
	src.Normalize()

	cp := src.Clone("Upper (copy)")

	assert.Equal(t, "Upper (copy)", cp.Name)
	assert.False(t, cp.IsArchived)
	require.Len(t, cp.Exercises, 2)
	assert.NotEqual(t, src.Exercises[0].ID, cp.Exercises[0].ID)
	assert.Equal(t, 1, cp.Exercises[0].Order)
	assert.Equal(t, 2, cp.Exercises[1].Order)
	assert.Equal(t, "Row", cp.Exercises[1].Name)
}

func TestPlayerNames_Name(t *testing.T) {
	names := PlayerNames{"abc": "Avi Cohen"}
	assert.Equal(t, "Avi Cohen", names.Name("abc"))
	assert.Equal(t, "zzz", names.Name("zzz"))
}
