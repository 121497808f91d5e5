package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"
	"courtside/team-ops/internal/syncer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServerClientID stamps writes that did not come from an identified client.
const ServerClientID = "server"

// AttendanceUpdate is one player's attendance change.
type AttendanceUpdate struct {
	Present       bool
	Reason        string
	ReasonDetails string
}

type PracticeService interface {
	// Get returns the session's practice data with unsaved local changes applied. Sessions that
	// no longer exist read as the empty default.
	Get(ctx context.Context, sessionID primitive.ObjectID) (*domain.PracticeData, error)
	SaveDrills(ctx context.Context, clientID string, sessionID primitive.ObjectID, rows []domain.DrillRow, courts int) (*domain.PracticeData, error)
	SetPresent(ctx context.Context, clientID string, sessionID primitive.ObjectID, playerID string, update AttendanceUpdate) (map[string]domain.AttendanceRecord, error)
	Attendance(ctx context.Context, sessionID primitive.ObjectID) (map[string]domain.AttendanceRecord, error)
	Flush(ctx context.Context, sessionID primitive.ObjectID) error
	FlushAll(ctx context.Context) error
	Forget(sessionID primitive.ObjectID)
}

// workingCopy holds a session's changes that have not reached the store yet.
type workingCopy struct {
	attendance   map[string]domain.AttendanceRecord
	attVersion   uint64
	drills       []domain.DrillRow
	metrics      domain.PracticeMetrics
	drillVersion uint64
}

type practiceService struct {
	sessions     SessionService
	practiceRepo repository.PracticeRepository
	roster       RosterService
	cache        cache.Store
	debouncers   *syncer.Registry
	contexts     *syncer.Contexts

	mu      sync.Mutex
	working map[primitive.ObjectID]*workingCopy
}

func NewPracticeService(
	sessions SessionService,
	practiceRepo repository.PracticeRepository,
	roster RosterService,
	store cache.Store,
	debouncers *syncer.Registry,
	contexts *syncer.Contexts,
) PracticeService {
	s := &practiceService{
		sessions:     sessions,
		practiceRepo: practiceRepo,
		roster:       roster,
		cache:        store,
		debouncers:   debouncers,
		contexts:     contexts,
		working:      map[primitive.ObjectID]*workingCopy{},
	}
	sessions.OnDelete(s.Forget)
	return s
}

func attendanceKey(id primitive.ObjectID) string { return "attendance:" + id.Hex() }
func drillsKey(id primitive.ObjectID) string     { return "drills:" + id.Hex() }

func copyAttendance(in map[string]domain.AttendanceRecord) map[string]domain.AttendanceRecord {
	out := make(map[string]domain.AttendanceRecord, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// storeStamp is the write time at the store's millisecond precision.
func storeStamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *practiceService) Get(ctx context.Context, sessionID primitive.ObjectID) (*domain.PracticeData, error) {
	if _, err := s.sessions.Get(ctx, sessionID); errors.Is(err, ErrSessionNotFound) {
		return domain.NewPracticeData(sessionID), nil
	}

	key := cache.PracticeKey(sessionID.Hex())
	fromStore := true
	data, err := s.practiceRepo.Get(ctx, sessionID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		data = domain.NewPracticeData(sessionID)
	case err != nil:
		cached, ok := cache.GetJSON(ctx, s.cache, key, domain.PracticeData{})
		if !ok {
			return nil, err
		}
		log.Printf("WARN: [Practice] store read failed, serving cached %s: %v", key, err)
		data, fromStore = &cached, false
		if att, ok := cache.GetJSON(ctx, s.cache, cache.AttendanceKey(sessionID.Hex()), map[string]domain.AttendanceRecord(nil)); ok {
			data.Attendance = att
		}
	}
	data.EnsureMaps()

	s.mu.Lock()
	if wc, ok := s.working[sessionID]; ok {
		if wc.attendance != nil {
			data.Attendance = copyAttendance(wc.attendance)
		}
		if wc.drills != nil {
			data.DrillRows = append([]domain.DrillRow(nil), wc.drills...)
			data.Metrics = wc.metrics
		}
	}
	s.mu.Unlock()

	if fromStore {
		cache.SetJSON(ctx, s.cache, key, data)
	}
	return data, nil
}

// loadAttendance reads the stored attendance, then the cached mirror.
func (s *practiceService) loadAttendance(ctx context.Context, sessionID primitive.ObjectID) (map[string]domain.AttendanceRecord, error) {
	data, err := s.practiceRepo.Get(ctx, sessionID)
	if err == nil {
		data.EnsureMaps()
		return data.Attendance, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return map[string]domain.AttendanceRecord{}, nil
	}
	cached, ok := cache.GetJSON(ctx, s.cache, cache.AttendanceKey(sessionID.Hex()), map[string]domain.AttendanceRecord(nil))
	if !ok {
		return nil, err
	}
	log.Printf("WARN: [Attendance] store read failed, serving cached attendance for %s: %v", sessionID.Hex(), err)
	return cached, nil
}

// Attendance returns the working copy, else the stored map, else the cached mirror.
func (s *practiceService) Attendance(ctx context.Context, sessionID primitive.ObjectID) (map[string]domain.AttendanceRecord, error) {
	s.mu.Lock()
	if wc, ok := s.working[sessionID]; ok && wc.attendance != nil {
		out := copyAttendance(wc.attendance)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	if _, err := s.sessions.Get(ctx, sessionID); errors.Is(err, ErrSessionNotFound) {
		return map[string]domain.AttendanceRecord{}, nil
	}
	return s.loadAttendance(ctx, sessionID)
}

func (s *practiceService) workingLocked(sessionID primitive.ObjectID) *workingCopy {
	wc, ok := s.working[sessionID]
	if !ok {
		wc = &workingCopy{}
		s.working[sessionID] = wc
	}
	return wc
}

// SetPresent updates the working copy, mirrors it to the cache at once and schedules the
// debounced store write. The last local write wins.
func (s *practiceService) SetPresent(ctx context.Context, clientID string, sessionID primitive.ObjectID, playerID string, update AttendanceUpdate) (map[string]domain.AttendanceRecord, error) {
	if clientID == "" {
		clientID = ServerClientID
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	if _, err := s.roster.Get(ctx, playerID); err != nil {
		return nil, err
	}
	rec := domain.AttendanceRecord{Present: update.Present, Reason: update.Reason, ReasonDetails: update.ReasonDetails}
	if rec.Present {
		rec.Reason, rec.ReasonDetails = "", ""
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	needBase := s.working[sessionID] == nil || s.working[sessionID].attendance == nil
	s.mu.Unlock()
	var base map[string]domain.AttendanceRecord
	if needBase {
		var err error
		if base, err = s.loadAttendance(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	wc := s.workingLocked(sessionID)
	if wc.attendance == nil {
		wc.attendance = copyAttendance(base)
	}
	wc.attendance[playerID] = rec
	wc.attVersion++
	version := wc.attVersion
	snapshot := copyAttendance(wc.attendance)
	s.mu.Unlock()

	cache.SetJSON(ctx, s.cache, cache.AttendanceKey(sessionID.Hex()), snapshot)

	syncCtx := s.contexts.Get(clientID, sessionID.Hex())
	s.debouncers.For(attendanceKey(sessionID)).Schedule(func(ctx context.Context) error {
		if _, err := s.sessions.Get(ctx, sessionID); errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		at := storeStamp()
		syncCtx.MarkWrite(at)
		return s.practiceRepo.SetAttendance(ctx, sessionID, snapshot, clientID, at)
	}, func(err error) {
		if err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if wc, ok := s.working[sessionID]; ok && wc.attVersion == version {
			wc.attendance = nil
			s.dropIfEmptyLocked(sessionID, wc)
		}
	})
	return snapshot, nil
}

// SaveDrills replaces the drill sheet and schedules a debounced write like attendance.
func (s *practiceService) SaveDrills(ctx context.Context, clientID string, sessionID primitive.ObjectID, rows []domain.DrillRow, courts int) (*domain.PracticeData, error) {
	if clientID == "" {
		clientID = ServerClientID
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	drills := make([]domain.DrillRow, len(rows))
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		drills[i] = r
	}
	if courts < 0 {
		courts = 0
	}
	m := domain.MetricsFromDrills(drills, courts)

	s.mu.Lock()
	wc := s.workingLocked(sessionID)
	wc.drills = drills
	wc.metrics = m
	wc.drillVersion++
	version := wc.drillVersion
	s.mu.Unlock()

	syncCtx := s.contexts.Get(clientID, sessionID.Hex())
	s.debouncers.For(drillsKey(sessionID)).Schedule(func(ctx context.Context) error {
		if _, err := s.sessions.Get(ctx, sessionID); errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		at := storeStamp()
		syncCtx.MarkWrite(at)
		return s.practiceRepo.SaveDrills(ctx, sessionID, drills, m, clientID, at)
	}, func(err error) {
		if err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if wc, ok := s.working[sessionID]; ok && wc.drillVersion == version {
			wc.drills = nil
			s.dropIfEmptyLocked(sessionID, wc)
		}
	})
	return s.Get(ctx, sessionID)
}

func (s *practiceService) dropIfEmptyLocked(sessionID primitive.ObjectID, wc *workingCopy) {
	if wc.attendance == nil && wc.drills == nil {
		delete(s.working, sessionID)
	}
}

// Flush forces the session's pending writes.
func (s *practiceService) Flush(ctx context.Context, sessionID primitive.ObjectID) error {
	return errors.Join(
		s.debouncers.Flush(ctx, attendanceKey(sessionID)),
		s.debouncers.Flush(ctx, drillsKey(sessionID)),
	)
}

func (s *practiceService) FlushAll(ctx context.Context) error {
	return s.debouncers.FlushAll(ctx)
}

// Forget discards pending writes, working copies and sync contexts of a deleted session.
func (s *practiceService) Forget(sessionID primitive.ObjectID) {
	s.debouncers.Drop(attendanceKey(sessionID))
	s.debouncers.Drop(drillsKey(sessionID))
	s.contexts.DropSession(sessionID.Hex())
	s.mu.Lock()
	delete(s.working, sessionID)
	s.mu.Unlock()
}
