package service

import (
	"context"
	"testing"
	"time"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSessionService_CreateRejectsTakenSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session(t, "2025-03-03", domain.SlotAM, domain.SessionPractice)

	_, err := f.sessions.Create(ctx, &domain.Session{Date: "2025-03-03", Slot: domain.SlotAM, Type: domain.SessionGame})
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, err = f.sessions.Create(ctx, &domain.Session{Date: "2025-03-03", Slot: domain.SlotPM, Type: domain.SessionGame})
	assert.NoError(t, err)
}

// blindSlotRepo never sees an existing slot, as when two creators race past the check.
type blindSlotRepo struct {
	repository.SessionRepository
}

func (blindSlotRepo) GetBySlot(context.Context, string, domain.Slot) (*domain.Session, error) {
	return nil, repository.ErrNotFound
}

func TestSessionService_CreateRaceMapsDuplicateKey(t *testing.T) {
	f := newFixture(t)
	svc := NewSessionService(blindSlotRepo{f.store.Sessions()}, f.practiceRepo, f.cache, f.retry)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.Session{Date: "2025-03-03", Slot: domain.SlotAM, Type: domain.SessionPractice})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.Session{Date: "2025-03-03", Slot: domain.SlotAM, Type: domain.SessionPractice})
	assert.ErrorIs(t, err, ErrSlotTaken)

	all, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   domain.Session
	}{
		{"bad date", domain.Session{Date: "03/03/2025", Slot: domain.SlotAM, Type: domain.SessionPractice}},
		{"bad slot", domain.Session{Date: "2025-03-03", Slot: "NOON", Type: domain.SessionPractice}},
		{"bad type", domain.Session{Date: "2025-03-03", Slot: domain.SlotAM, Type: "Party"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := f.sessions.Create(context.Background(), &in)
			assert.ErrorIs(t, err, domain.ErrInvalid)
		})
	}
}

func TestSessionService_UpdateMovesAndRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	am := f.session(t, "2025-03-03", domain.SlotAM, domain.SessionPractice)
	f.session(t, "2025-03-04", domain.SlotAM, domain.SessionPractice)

	taken := "2025-03-04"
	_, err := f.sessions.Update(ctx, am.ID, domain.SessionPatch{Date: &taken})
	assert.ErrorIs(t, err, ErrSlotTaken)

	parts := []domain.SessionPart{{Label: "Warm-up", Minutes: 15}, {Label: "Scrimmage", Minutes: 30, HighIntensity: true}}
	pm := domain.SlotPM
	got, err := f.sessions.Update(ctx, am.ID, domain.SessionPatch{Slot: &pm, Parts: &parts})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotPM, got.Slot)
	assert.Equal(t, 45, got.TotalMinutes)
	assert.Equal(t, 30, got.HighIntensityMinutes)
	assert.NotEmpty(t, got.Parts[0].ID)

	_, err = f.sessions.Update(ctx, primitive.NewObjectID(), domain.SessionPatch{Slot: &pm})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_ListOrderAndCacheFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session(t, "2025-03-04", domain.SlotAM, domain.SessionPractice)
	f.session(t, "2025-03-03", domain.SlotPM, domain.SessionGame)
	f.session(t, "2025-03-03", domain.SlotAM, domain.SessionPractice)

	list, err := f.sessions.List(ctx, "2025-03-01", "2025-03-07")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"2025-03-03 AM", "2025-03-03 PM", "2025-03-04 AM"}, []string{
		list[0].Date + " " + string(list[0].Slot),
		list[1].Date + " " + string(list[1].Slot),
		list[2].Date + " " + string(list[2].Slot),
	})

	f.sessionRepo.failList = true
	cached, err := f.sessions.List(ctx, "2025-03-01", "2025-03-07")
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	_, err = f.sessions.List(ctx, "2025-04-01", "2025-04-07")
	assert.ErrorIs(t, err, errStoreDown)

	_, err = f.sessions.List(ctx, "tomorrow", "")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestSessionService_CachedScheduleFollowsWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kept := f.session(t, "2025-03-03", domain.SlotAM, domain.SessionPractice)
	gone := f.session(t, "2025-03-04", domain.SlotPM, domain.SessionGame)
	moved := f.session(t, "2025-03-05", domain.SlotAM, domain.SessionPractice)

	_, err := f.sessions.List(ctx, "2025-03-01", "2025-03-07")
	require.NoError(t, err)
	_, err = f.sessions.List(ctx, "", "")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Delete(ctx, gone.ID))
	added := f.session(t, "2025-03-02", domain.SlotPM, domain.SessionMeeting)
	later := "2025-03-20"
	_, err = f.sessions.Update(ctx, moved.ID, domain.SessionPatch{Date: &later})
	require.NoError(t, err)

	f.sessionRepo.failList = true
	tests := []struct {
		name     string
		from, to string
		want     []primitive.ObjectID
	}{
		{"week", "2025-03-01", "2025-03-07", []primitive.ObjectID{added.ID, kept.ID}},
		{"open range", "", "", []primitive.ObjectID{added.ID, kept.ID, moved.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cached, err := f.sessions.List(ctx, tt.from, tt.to)
			require.NoError(t, err)
			ids := make([]primitive.ObjectID, 0, len(cached))
			for _, sess := range cached {
				ids = append(ids, sess.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSessionService_CachedRangesAreBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := cache.ScheduleKey("2025-01-01", "2025-01-01")

	for day := 1; day <= maxCachedRanges+1; day++ {
		date := time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		_, err := f.sessions.List(ctx, date, date)
		require.NoError(t, err)
	}

	_, err := f.cache.Get(ctx, first)
	assert.ErrorIs(t, err, cache.ErrMiss)
	ranges, ok := cache.GetJSON(ctx, f.cache, cache.ScheduleIndexKey(), []cache.ScheduleRange(nil))
	require.True(t, ok)
	assert.Len(t, ranges, maxCachedRanges)
}

func TestSessionService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.session(t, "2025-03-03", domain.SlotAM, domain.SessionPractice)
	p1 := f.player(t, "Avi", 4)

	_, err := f.practice.SetPresent(ctx, "tablet", sess.ID, p1, AttendanceUpdate{Present: true})
	require.NoError(t, err)
	require.NoError(t, f.practice.Flush(ctx, sess.ID))
	_, err = f.practice.Get(ctx, sess.ID)
	require.NoError(t, err)

	require.NoError(t, f.sessions.Delete(ctx, sess.ID))

	list, err := f.sessions.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.store.Practices().Get(ctx, sess.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	for _, key := range cache.SessionKeys(sess.ID.Hex()) {
		_, err := f.cache.Get(ctx, key)
		assert.ErrorIs(t, err, cache.ErrMiss, key)
	}
	assert.Equal(t, 0, f.retry.Len())

	assert.ErrorIs(t, f.sessions.Delete(ctx, sess.ID), ErrSessionNotFound)
}

func TestSessionService_DeleteQueuesFailedChild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.session(t, "2025-03-03", domain.SlotAM, domain.SessionPractice)
	p1 := f.player(t, "Avi", 4)
	_, err := f.practice.SetPresent(ctx, "tablet", sess.ID, p1, AttendanceUpdate{Present: true})
	require.NoError(t, err)
	require.NoError(t, f.practice.Flush(ctx, sess.ID))

	f.practiceRepo.failDelete = true
	require.NoError(t, f.sessions.Delete(ctx, sess.ID))

	// the session is gone and its practice data reads as the empty default
	list, err := f.sessions.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
	data, err := f.practice.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, data.Attendance)
	assert.Equal(t, 1, f.retry.Len())

	f.practiceRepo.failDelete = false
	assert.Eventually(t, func() bool { return f.retry.ProcessDue(ctx) == 1 }, time.Second, 5*time.Millisecond)
	_, err = f.store.Practices().Get(ctx, sess.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
