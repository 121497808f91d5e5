package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"courtside/team-ops/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	objects    map[string][]byte
	presignErr error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (s *fakeStorage) PutObject(_ context.Context, key, _ string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://exports.example.test/" + key, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (f *fixture) reports(fs *fakeStorage) ReportService {
	if fs == nil {
		return NewReportService(f.sessions, f.practice, f.practiceRepo, f.roster, f.wellness, f.plans, f.games, nil, "exports", 0)
	}
	return NewReportService(f.sessions, f.practice, f.practiceRepo, f.roster, f.wellness, f.plans, f.games, fs, "exports", time.Minute)
}

// surveyed creates a practice where each player answers the court survey with the given RPE.
func (f *fixture) surveyed(t *testing.T, date string, rpe map[string]int) *domain.Session {
	t.Helper()
	ctx := context.Background()
	sess := f.session(t, date, domain.SlotAM, domain.SessionPractice)
	for id := range rpe {
		_, err := f.practice.SetPresent(ctx, "", sess.ID, id, AttendanceUpdate{Present: true})
		require.NoError(t, err)
	}
	_, err := f.surveys.Open(ctx, sess.ID, domain.SurveyCourt)
	require.NoError(t, err)
	for id, v := range rpe {
		require.NoError(t, f.surveys.Submit(ctx, sess.ID, id, domain.SurveyResponse{RPE: v, Legs: 5}))
	}
	return sess
}

func TestReportService_RPE(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	avi := f.player(t, "Avi", 4)
	ben := f.player(t, "Ben", 7)
	f.surveyed(t, "2025-03-03", map[string]int{avi: 6, ben: 4})
	f.surveyed(t, "2025-03-05", map[string]int{avi: 8})
	f.surveyed(t, "2025-03-20", map[string]int{avi: 10})

	rpe, err := f.reports(nil).RPE(ctx, "2025-03-03", "2025-03-09")
	require.NoError(t, err)
	assert.Len(t, rpe.Days, 7)
	require.Len(t, rpe.Players, 2)
	assert.Equal(t, "Avi", rpe.Players[0].Name)
	assert.Equal(t, (6+8)*90, rpe.Players[0].TotalLoad)
	assert.Equal(t, 7.0, rpe.Players[0].AvgRPE)
	assert.Equal(t, 4*90, rpe.Players[1].Days["2025-03-03"].Load)

	_, err = f.reports(nil).RPE(ctx, "2025-03-01", "2025-05-01")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestReportService_RPEFollowsScheduleChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	avi := f.player(t, "Avi", 4)
	sess := f.surveyed(t, "2025-03-03", map[string]int{avi: 6})

	require.NoError(t, f.sessions.Delete(ctx, sess.ID))
	rpe, err := f.reports(nil).RPE(ctx, "2025-03-03", "2025-03-09")
	require.NoError(t, err)
	assert.Empty(t, rpe.Players)
}

func TestReportService_PracticeSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	avi := f.player(t, "Avi", 4)
	sess := f.surveyed(t, "2025-03-03", map[string]int{avi: 6})
	_, err := f.practice.SaveDrills(ctx, "", sess.ID, []domain.DrillRow{{Name: "Shell drill", Minutes: 20}}, 1)
	require.NoError(t, err)

	doc, err := f.reports(nil).PracticeSummary(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 5)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteCSV(&buf))
	assert.Contains(t, buf.String(), "Shell drill")
	assert.Contains(t, buf.String(), "Avi")
}

func TestReportService_Export(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	avi := f.player(t, "Avi", 4)
	f.surveyed(t, "2025-03-03", map[string]int{avi: 6})

	_, err := f.reports(nil).Export(ctx, ReportRequest{Kind: ReportRPE, From: "2025-03-03", To: "2025-03-09"})
	assert.ErrorIs(t, err, ErrExportUnavailable)

	fs := newFakeStorage()
	res, err := f.reports(fs).Export(ctx, ReportRequest{Kind: ReportRPE, From: "2025-03-03", To: "2025-03-09"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.ObjectKey, "exports/rpe/"))
	assert.True(t, strings.HasSuffix(res.ObjectKey, ".csv"))
	assert.Equal(t, "https://exports.example.test/"+res.ObjectKey, res.DownloadURL)
	assert.Contains(t, string(fs.objects[res.ObjectKey]), "Session load")

	fs.presignErr = errors.New("no credentials")
	_, err = f.reports(fs).Export(ctx, ReportRequest{Kind: ReportRPE, From: "2025-03-03", To: "2025-03-09"})
	assert.ErrorIs(t, err, ErrDownloadURLError)

	_, err = f.reports(fs).Export(ctx, ReportRequest{Kind: "payroll"})
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestReportService_GymPlanAndGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	avi := f.player(t, "Avi", 4)
	plan, err := f.plans.CreatePlan(ctx, squatDay())
	require.NoError(t, err)

	doc, err := f.reports(nil).Build(ctx, ReportRequest{Kind: ReportGymPlan, PlanID: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, "Gym plan: Lower body A", doc.Title)

	game := f.session(t, "2025-03-05", domain.SlotPM, domain.SessionGame)
	_, err = f.games.PutIn(ctx, game.ID, avi)
	require.NoError(t, err)
	doc, err = f.reports(nil).Build(ctx, ReportRequest{Kind: ReportGame, SessionID: game.ID})
	require.NoError(t, err)
	assert.Contains(t, doc.Title, "2025-03-05")
}
