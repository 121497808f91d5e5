package report

import (
	"bytes"
	"strings"
	"testing"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/gameclock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii untouched", "Box out, 3x", "Box out, 3x"},
		{"diacritics stripped", "José Núñez", "Jose Nunez"},
		{"hebrew run", "Notes: שלום עולם!", "Notes: [Hebrew]!"},
		{"two hebrew runs", "אבג and דהו", "[Hebrew] and [Hebrew]"},
		{"smart punctuation", "“fast” – break…", `"fast" - break...`},
		{"other scripts", "Ёж 東京", "?? ??"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "a long...", Truncate("a long note here", 9))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "10:00", FormatClock(600))
	assert.Equal(t, "01:05", FormatClock(65))
}

func fixture() (domain.Session, domain.PracticeData, domain.PlayerNames) {
	sess := domain.Session{
		ID: primitive.NewObjectID(), Date: "2025-03-03", Slot: domain.SlotAM,
		Type: domain.SessionPractice, TotalMinutes: 90, Courts: 2,
	}
	p := *domain.NewPracticeData(sess.ID)
	p.Attendance = map[string]domain.AttendanceRecord{
		"p1": {Present: true},
		"p2": {Present: false, Reason: "Injury"},
	}
	p.SurveyData = map[string]domain.SurveyResponse{
		"p1": {RPE: 7, Legs: 5},
	}
	names := domain.PlayerNames{"p1": "Avi", "p2": "Ben"}
	return sess, p, names
}

func TestPracticeSummary(t *testing.T) {
	sess, p, names := fixture()
	doc := PracticeSummary(sess, p, names)

	require.Len(t, doc.Tables, 5)
	att := doc.Tables[2]
	assert.Equal(t, "Attendance", att.Title)
	assert.Equal(t, []string{"Avi", "Present", "", ""}, att.Rows[0])
	assert.Equal(t, []string{"Ben", "Absent", "Injury", ""}, att.Rows[1])
	assert.Equal(t, "1/2", att.Rows[2][1])

	court := doc.Tables[3]
	assert.Equal(t, []string{"Avi", "7", "5", "630", ""}, court.Rows[0])
	assert.Equal(t, "Average", court.Rows[1][0])
}

func TestPrePractice_WellnessAverages(t *testing.T) {
	sess, p, names := fixture()
	day := domain.NewWellnessDay(sess.Date)
	day.Merge("p1", domain.WellnessResponse{Sleep: 8, Fatigue: 4, Soreness: 3})
	day.Merge("p2", domain.WellnessResponse{Sleep: 6, Fatigue: 5, Soreness: 4})

	doc := PrePractice(sess, p.Attendance, day, names)
	well := doc.Tables[len(doc.Tables)-1]
	require.Len(t, well.Rows, 3)
	assert.Equal(t, []string{"Team average", "7.0", "4.5", "3.5", ""}, well.Rows[2])

	empty := PrePractice(sess, nil, nil, names)
	assert.Empty(t, empty.Tables[len(empty.Tables)-1].Rows)
}

func TestRPEWeekly(t *testing.T) {
	am, p, names := fixture()
	pm := domain.Session{ID: primitive.NewObjectID(), Date: "2025-03-03", Slot: domain.SlotPM, TotalMinutes: 30}
	pmData := *domain.NewPracticeData(pm.ID)
	pmData.SurveyData["p1"] = domain.SurveyResponse{RPE: 5, Legs: 5}
	outside := domain.Session{ID: primitive.NewObjectID(), Date: "2025-03-20", TotalMinutes: 60}
	outsideData := *domain.NewPracticeData(outside.ID)
	outsideData.SurveyData["p1"] = domain.SurveyResponse{RPE: 9, Legs: 9}

	rep, err := RPEWeekly([]domain.Session{am, pm, outside}, []domain.PracticeData{p, pmData, outsideData}, names, "2025-03-03", "2025-03-09")
	require.NoError(t, err)
	assert.Len(t, rep.Days, 7)
	require.Len(t, rep.Players, 1)
	row := rep.Players[0]
	assert.Equal(t, "Avi", row.Name)
	assert.Equal(t, []int{7, 5}, row.Days["2025-03-03"].RPE)
	assert.Equal(t, 7*90+5*30, row.TotalLoad)
	assert.Equal(t, 6.0, row.AvgRPE)

	doc := rep.Document()
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, "7/5", doc.Tables[0].Rows[0][1])
	assert.Equal(t, "Team total", doc.Tables[1].Rows[1][0])
}

func TestDaysBetween(t *testing.T) {
	_, err := DaysBetween("2025-03-09", "2025-03-03")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = DaysBetween("2025-01-01", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = DaysBetween("yesterday", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
	days, err := DaysBetween("2025-02-27", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01"}, days)
}

func TestGymPlan(t *testing.T) {
	names := domain.PlayerNames{"p1": "Avi"}
	team := domain.Plan{Name: "Strength A", Type: domain.PlanTeam, Exercises: []domain.PlanExercise{
		{Name: "Squat", Sets: 3, Reps: "5", Order: 2},
		{Name: "Bench", Sets: 4, Reps: "8", RestSeconds: 90, Order: 1},
	}}
	doc := GymPlan(team, names)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, []string{"1", "Bench", "4", "8", "", "01:30", ""}, doc.Tables[0].Rows[0])

	ind := domain.Plan{Name: "Rehab", Type: domain.PlanIndividual, Players: []domain.PlanPlayer{
		{PlayerID: "p1", Exercises: []domain.PlanExercise{{Name: "Band walk", Sets: 2}}},
	}}
	doc = GymPlan(ind, names)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, "Avi", doc.Tables[0].Title)
}

func TestGameMinutes(t *testing.T) {
	c := gameclock.New()
	c.Toggle()
	require.NoError(t, c.PutIn("p1"))
	for i := 0; i < 60; i++ {
		c.TickGame()
	}
	require.NoError(t, c.TakeOut("p1"))

	doc := GameMinutes("Game", c.Snapshot(), domain.PlayerNames{"p1": "Avi"})
	assert.Equal(t, []string{"Avi", "1.0", "Q1 10:00-09:00"}, doc.Tables[0].Rows[0])
}

func TestDocumentWriteCSV(t *testing.T) {
	doc := Document{Title: "Título", Tables: []Table{{
		Title:   "Attendance",
		Headers: []string{"Player", "Status"},
		Rows:    [][]string{{"Dana, \"D\"", "Present"}, {"שרה", "Absent"}},
	}}}
	var buf bytes.Buffer
	require.NoError(t, doc.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Titulo",
		"Attendance",
		"Player,Status",
		`"Dana, ""D""",Present`,
		"[Hebrew],Absent",
	}, lines)
}
