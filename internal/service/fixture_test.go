package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/gameclock"
	"courtside/team-ops/internal/repository"
	"courtside/team-ops/internal/repository/memory"
	"courtside/team-ops/internal/scheduler"
	"courtside/team-ops/internal/syncer"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

// flakyPracticeRepo fails selected calls while failing is set.
type flakyPracticeRepo struct {
	repository.PracticeRepository
	failGet    bool
	failDelete bool
}

func (r *flakyPracticeRepo) Get(ctx context.Context, id primitive.ObjectID) (*domain.PracticeData, error) {
	if r.failGet {
		return nil, errStoreDown
	}
	return r.PracticeRepository.Get(ctx, id)
}

func (r *flakyPracticeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if r.failDelete {
		return errStoreDown
	}
	return r.PracticeRepository.Delete(ctx, id)
}

type flakySessionRepo struct {
	repository.SessionRepository
	failList bool
}

func (r *flakySessionRepo) ListByDateRange(ctx context.Context, from, to string) ([]domain.Session, error) {
	if r.failList {
		return nil, errStoreDown
	}
	return r.SessionRepository.ListByDateRange(ctx, from, to)
}

type fixture struct {
	store        *memory.Store
	sessionRepo  *flakySessionRepo
	practiceRepo *flakyPracticeRepo
	cache        *cache.MemoryCache
	retry        *scheduler.RetryQueue
	debouncers   *syncer.Registry
	contexts     *syncer.Contexts
	clocks       *gameclock.Manager

	sessions SessionService
	roster   RosterService
	practice PracticeService
	surveys  SurveyService
	wellness WellnessService
	plans    PlanService
	games    GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		cache:      cache.NewMemoryCache(),
		retry:      scheduler.NewRetryQueue(scheduler.RetryConfig{Interval: time.Hour, BaseDelay: time.Millisecond}),
		debouncers: syncer.NewRegistry(time.Hour, 16),
		contexts:   syncer.NewContexts(),
		clocks:     gameclock.NewManager(context.Background(), time.Hour),
	}
	t.Cleanup(f.clocks.Close)
	f.sessionRepo = &flakySessionRepo{SessionRepository: f.store.Sessions()}
	f.practiceRepo = &flakyPracticeRepo{PracticeRepository: f.store.Practices()}

	f.sessions = NewSessionService(f.sessionRepo, f.practiceRepo, f.cache, f.retry)
	f.roster = NewRosterService(f.store.Roster(), f.cache)
	f.practice = NewPracticeService(f.sessions, f.practiceRepo, f.roster, f.cache, f.debouncers, f.contexts)
	f.surveys = NewSurveyService(f.sessions, f.practice, f.practiceRepo, f.cache)
	f.wellness = NewWellnessService(f.store.Wellness(), f.roster, f.cache, 5)
	f.plans = NewPlanService(f.store.Plans(), f.store.Folders())
	f.games = NewGameService(f.sessions, f.roster, f.clocks)
	return f
}

func (f *fixture) session(t *testing.T, date string, slot domain.Slot, typ domain.SessionType) *domain.Session {
	t.Helper()
	s, err := f.sessions.Create(context.Background(), &domain.Session{Date: date, Slot: slot, Type: typ, TotalMinutes: 90})
	require.NoError(t, err)
	return s
}

func (f *fixture) player(t *testing.T, name string, number int) string {
	t.Helper()
	p, err := f.roster.Create(context.Background(), &domain.Player{Name: name, Number: number, Active: true})
	require.NoError(t, err)
	return p.ID.Hex()
}
