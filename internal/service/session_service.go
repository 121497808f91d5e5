package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/metrics"
	"courtside/team-ops/internal/repository"
	"courtside/team-ops/internal/scheduler"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// maxCachedRanges bounds the schedule windows mirrored at once; the oldest is evicted first.
const maxCachedRanges = 32

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSlotTaken       = errors.New("a session already exists for this date and slot")
)

// RetryScheduler accepts follow-up work that failed and must be retried later.
type RetryScheduler interface {
	Enqueue(name string, task scheduler.Task)
}

// SessionDeleteHook releases in-memory state tied to a deleted session.
type SessionDeleteHook func(sessionID primitive.ObjectID)

type SessionService interface {
	List(ctx context.Context, from, to string) ([]domain.Session, error)
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	Update(ctx context.Context, id primitive.ObjectID, patch domain.SessionPatch) (*domain.Session, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	OnDelete(hook SessionDeleteHook)
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	practiceRepo repository.PracticeRepository
	cache        cache.Store
	retry        RetryScheduler

	mu    sync.RWMutex
	hooks []SessionDeleteHook

	// rangesMu serialises read-modify-write of the cached schedule windows.
	rangesMu sync.Mutex
}

func NewSessionService(sessionRepo repository.SessionRepository, practiceRepo repository.PracticeRepository, store cache.Store, retry RetryScheduler) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		practiceRepo: practiceRepo,
		cache:        store,
		retry:        retry,
	}
}

// List returns the schedule between from and to (inclusive, either may be empty), ordered by
// date then slot. The cached copy of the same range is served when the store read fails.
func (s *sessionService) List(ctx context.Context, from, to string) ([]domain.Session, error) {
	if (from != "" && !domain.ValidDate(from)) || (to != "" && !domain.ValidDate(to)) {
		return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", domain.ErrInvalid)
	}
	key := cache.ScheduleKey(from, to)
	sessions, err := s.sessionRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		cached, ok := cache.GetJSON(ctx, s.cache, key, []domain.Session(nil))
		if !ok {
			return nil, err
		}
		log.Printf("WARN: [Schedule] store read failed, serving cached %s: %v", key, err)
		return cached, nil
	}
	s.mirrorRange(ctx, cache.ScheduleRange{From: from, To: to}, sessions)
	return sessions, nil
}

// mirrorRange stores one window and records it in the range index.
func (s *sessionService) mirrorRange(ctx context.Context, r cache.ScheduleRange, sessions []domain.Session) {
	s.rangesMu.Lock()
	defer s.rangesMu.Unlock()

	ranges, _ := cache.GetJSON(ctx, s.cache, cache.ScheduleIndexKey(), []cache.ScheduleRange(nil))
	known := false
	for _, existing := range ranges {
		if existing == r {
			known = true
			break
		}
	}
	if !known {
		ranges = append(ranges, r)
		if len(ranges) > maxCachedRanges {
			evicted := ranges[0]
			ranges = ranges[1:]
			if err := s.cache.Delete(ctx, evicted.Key()); err != nil {
				log.Printf("WARN: [Schedule] evicting cached %s: %v", evicted.Key(), err)
			}
		}
		cache.SetJSON(ctx, s.cache, cache.ScheduleIndexKey(), ranges)
	}
	cache.SetJSON(ctx, s.cache, r.Key(), sessions)
}

// patchCachedRanges removes the session with id drop from every cached window and, when add is
// set, puts add back into the windows that contain its date. The first write error is returned.
func (s *sessionService) patchCachedRanges(ctx context.Context, drop primitive.ObjectID, add *domain.Session) error {
	s.rangesMu.Lock()
	defer s.rangesMu.Unlock()

	ranges, _ := cache.GetJSON(ctx, s.cache, cache.ScheduleIndexKey(), []cache.ScheduleRange(nil))
	var firstErr error
	for _, r := range ranges {
		cached, ok := cache.GetJSON(ctx, s.cache, r.Key(), []domain.Session(nil))
		if !ok {
			continue
		}
		patched := make([]domain.Session, 0, len(cached)+1)
		for _, sess := range cached {
			if sess.ID != drop {
				patched = append(patched, sess)
			}
		}
		if add != nil && r.Contains(add.Date) {
			patched = append(patched, *add)
			sortSessions(patched)
		}
		raw, err := json.Marshal(patched)
		if err == nil {
			err = s.cache.Set(ctx, r.Key(), raw)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("rewriting cached %s: %w", r.Key(), err)
		}
	}
	return firstErr
}

func sortSessions(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		return sessions[i].Slot < sessions[j].Slot
	})
}

func (s *sessionService) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	session.Normalize()
	if err := session.Validate(); err != nil {
		return nil, err
	}

	_, err := s.sessionRepo.GetBySlot(ctx, session.Date, session.Slot)
	if err == nil {
		return nil, ErrSlotTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		// unique (date, slot) index: a concurrent creator got there first
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	session.ID = id
	if err := s.patchCachedRanges(ctx, id, session); err != nil {
		log.Printf("WARN: [Schedule] %v", err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Update(ctx context.Context, id primitive.ObjectID, patch domain.SessionPatch) (*domain.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	moves := patch.MovesSlot(session)
	patch.Apply(session)
	if err := session.Validate(); err != nil {
		return nil, err
	}

	if moves {
		other, err := s.sessionRepo.GetBySlot(ctx, session.Date, session.Slot)
		if err == nil && other.ID != session.ID {
			return nil, ErrSlotTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrSlotTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if err := s.patchCachedRanges(ctx, session.ID, session); err != nil {
		log.Printf("WARN: [Schedule] %v", err)
	}
	return session, nil
}

func (s *sessionService) OnDelete(hook SessionDeleteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Delete removes the session record, then cascades to its practice document and cached copies.
// A failed child deletion is queued for retry; the session delete itself is never undone.
func (s *sessionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	log.Printf("INFO: [Schedule] deleted session %s", id.Hex())

	s.mu.RLock()
	hooks := append([]SessionDeleteHook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, h := range hooks {
		h(id)
	}

	children := []struct {
		name string
		run  scheduler.Task
	}{
		{"practice", func(ctx context.Context) error {
			err := s.practiceRepo.Delete(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}},
		{"cache", func(ctx context.Context) error {
			if err := s.cache.Delete(ctx, cache.SessionKeys(id.Hex())...); err != nil {
				return err
			}
			return s.patchCachedRanges(ctx, id, nil)
		}},
	}

	var g errgroup.Group
	for _, child := range children {
		child := child
		g.Go(func() error {
			if err := child.run(ctx); err != nil {
				metrics.RecordCascadeFailure(child.name)
				log.Printf("WARN: [Schedule] cascade %s for session %s failed: %v", child.name, id.Hex(), err)
				s.retry.Enqueue(fmt.Sprintf("cascade %s %s", child.name, id.Hex()), child.run)
			}
			return nil
		})
	}
	return g.Wait()
}
